//go:build !amd64

package cpu

// avx2FMASupportCheck always reports unsupported off amd64: there is no
// AVX2/FMA to probe for, and this generator has nothing to emit for any
// other architecture (spec's Non-goals exclude wider vector widths and
// other ISAs entirely).
func avx2FMASupportCheck() bool { return false }
