// Package cpu probes the running CPU for the capabilities this generator
// requires: AVX2 (256-bit vector registers) and FMA (the fused
// multiply-add the reduction loop relies on for vfmadd231ps). A kernel
// emitted by this module must never run on hardware lacking either.
package cpu

// Supported reports whether the current CPU (and OS, via XCR0/XGETBV) can
// execute the AVX2+FMA instruction stream this generator emits. The
// result is probed once at package init and cached, mirroring the
// teacher's hasAVX2/HasAVX2 split (package-level var set in init, read
// through an exported accessor).
var supported bool

func init() {
	supported = avx2FMASupportCheck()
}

// Supported is exported for callers (convjit.Emit, and the CLI's "inspect"
// command through convjit.CPUSupported) that need to refuse to emit on
// hardware that can't run the result.
func Supported() bool { return supported }
