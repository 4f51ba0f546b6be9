// Package fwd emits the forward-convolution microkernel: one generated
// function per planned ConvConf, called once per (mb, oh-row, ic-chunk)
// combination by the out-of-scope driver, with ic_flag telling it whether
// to initialise, continue, or finalise the accumulation (spec §4.2).
package fwd

import "github.com/deepteams/convjit/internal/asm"

// GP register roles, fixed for every forward kernel this package emits.
// param1 (RDI) is the ArgRecord pointer per the SysV AMD64 ABI; the rest
// are loaded from it once in the prologue and held for the kernel body.
const (
	paramReg    = asm.RDI
	regInput    = asm.RAX
	regOutput   = asm.RBX
	regKernel   = asm.RCX
	regBias     = asm.RDX
	regKH       = asm.R8  // decrementing K_H trip counter
	regICFlag   = asm.R9
	auxInput    = asm.R10 // row-advancing copy of regInput within the K_H loop
	auxKernel   = asm.R11 // row-advancing copy of regKernel within the K_H loop
)

// savedGPRegs lists the callee-saved registers this kernel's register plan
// uses and must restore before returning. auxInput/auxKernel (R10/R11) are
// caller-saved under the SysV ABI and need no save/restore.
var savedGPRegs = []asm.GPReg{asm.RBX}
