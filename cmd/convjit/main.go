// Command convjit plans and emits AVX2+FMA convolution microkernels from
// the command line: point it at a problem shape and it either reports why
// the shape is unimplemented or writes the sealed machine code to a file.
package main

import "os"

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
