package jcp

// NumVecRegs is the number of vector registers (YMM0..YMM15) the target
// provides. All register-plan functions below are pure functions of tile
// geometry; they never allocate or track state — callers assert the
// invariants documented in spec §3 before using the returned indices.
const NumVecRegs = 16

// Forward / backward-data register plan.
//
//	[0, nbBlocking*urW)        output accumulators, acc_reg(ii, jj)
//	[nbBlocking*urW, 15)       broadcast inputs, bcast_reg(jj)
//	15                         scratch (kernel/filter load)
//	14                         ReLU comparison mask (only when WithRelu; used
//	                           by the epilogue after the main loop, so it may
//	                           double as a broadcast register but never as an
//	                           accumulator)

// FwdAccReg returns the accumulator register for output-block ii,
// spatial position jj, within a tile unrolled urW wide.
func FwdAccReg(ii, jj, urW int) int { return urW*ii + jj }

// FwdBcastReg returns the broadcast-input register for spatial position
// jj, given how many output blocks (nbBlocking) are processed per tile.
func FwdBcastReg(jj, nbBlocking, urW int) int { return nbBlocking*urW + jj }

// ScratchReg is the fixed kernel/filter-load scratch register.
func ScratchReg() int { return 15 }

// ReluMaskReg is the fixed ReLU comparison-mask register, used only when
// the tile's epilogue applies ReLU.
func ReluMaskReg() int { return 14 }

// FwdRegisterBudget reports the first free register index above the
// accumulator+broadcast range for a tile of the given shape, and whether
// the plan fits within NumVecRegs, leaving ScratchReg unused by the main
// loop. When relu is set the accumulators must also stay below
// ReluMaskReg, which the epilogue uses once the broadcast registers are
// free.
func FwdRegisterBudget(nbBlocking, urW int, withRelu bool) (highWatermark int, ok bool) {
	highWatermark = nbBlocking*urW + urW
	ok = highWatermark <= NumVecRegs-1 // reserve register 15
	if withRelu {
		ok = ok && nbBlocking*urW <= ReluMaskReg() // accumulators end below register 14
	}
	return highWatermark, ok
}

// Backward-weights register plan.
//
//	[0, kw*icBlockStep)   filter accumulators, bwAccReg(iKw, iIc)
//	kw*icBlockStep        output-value scratch
//	kw*icBlockStep+1      input-broadcast scratch

// BWAccReg returns the filter-accumulator register for kernel column
// iKw and in-step channel iIc, given the current ic_block_step.
func BWAccReg(iKw, iIc, icBlockStep int) int { return iKw*icBlockStep + iIc }

// BWOutputScratch is the register holding the ddst OC-vector for the
// current output column.
func BWOutputScratch(kw, icBlockStep int) int { return kw * icBlockStep }

// BWInputScratch is the register holding the broadcast src value FMA'd
// against the output scratch.
func BWInputScratch(kw, icBlockStep int) int { return kw*icBlockStep + 1 }

// BWRegisterBudget reports the high-water register index used by the
// backward-weights microkernel and whether it fits in NumVecRegs.
func BWRegisterBudget(kw, icBlockStep int) (highWatermark int, ok bool) {
	highWatermark = kw*icBlockStep + 1
	return highWatermark, highWatermark < NumVecRegs
}
