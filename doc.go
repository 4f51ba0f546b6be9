// Package convjit is a just-in-time code generator for 2-D single-precision
// convolution kernels targeting CPUs with a 256-bit SIMD instruction set
// (AVX2) and FMA.
//
// Given a convolution problem description (tensor shapes, padding, stride,
// bias/activation options, and memory layouts) the planner decides whether
// the shape fits the generator's template and, if so, picks block factors,
// unroll widths, and an edge-case schedule. The matching emitter then
// streams AVX2+FMA machine code for one of three directions — forward,
// backward-data, or backward-weights — into a byte buffer the caller places
// in executable memory and invokes per spatial tile.
//
// This package does not itself manage executable memory, dispatch work
// across threads, or provide a reference convolution for correctness
// checking — those are the responsibility of the outer driver.
//
// Basic usage:
//
//	conf, err := convjit.Plan(convjit.Forward, cd, src, weights, dst, false, 0)
//	if err != nil {
//		// convjit.ErrUnimplemented: shape/layout not supported, fall back
//	}
//	blob, relocs, err := convjit.Emit(conf)
package convjit
