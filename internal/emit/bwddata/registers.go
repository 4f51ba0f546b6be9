// Package bwddata emits the backward-data microkernel: propagates
// diff_dst back through the transposed (8o8i) weights into diff_src,
// reusing the same ic_flag chaining convention as the forward kernel
// (spec §4.3).
package bwddata

import "github.com/deepteams/convjit/internal/asm"

const (
	paramReg  = asm.RDI
	regDSrc   = asm.RAX
	regDDst   = asm.RBX
	regKernel = asm.RCX
	regKH     = asm.R8
	regICFlag = asm.R9
	auxDDst   = asm.R10
	auxKernel = asm.R11
)

var savedGPRegs = []asm.GPReg{asm.RBX}
