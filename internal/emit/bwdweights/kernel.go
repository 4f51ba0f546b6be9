package bwdweights

import (
	"github.com/deepteams/convjit/internal/asm"
	"github.com/deepteams/convjit/internal/jcp"
)

// Emit generates the machine code for one backward-weights ConvConf. Every
// loop bound (mb aside, which the driver supplies one image at a time) is
// a ConvConf constant, so ic_block_step/kh/kw/oh/ow are fully unrolled
// here rather than counted at runtime. The KW*icBlockStep accumulator
// registers only cover one (ic-chunk, kh) pass at a time, so the IC block
// is walked in icBlockStep-wide chunks (the original's runtime b_ic loop,
// spec §4.4's compute_ic_block_step) with kh nested inside each chunk:
// every (chunk, kh) pair gets its own init/accumulate/store sequence,
// addressing a different ic-slice and row of diff_weights. One Emit call
// covers the whole ICBlock — the external driver only partitions
// mb×ngroups×nb_oc×oh (spec §5), never IC sub-chunks. Padding clipping at
// the top, middle, and bottom of the OH range falls out of the same
// per-position static bounds check used for the left/right W padding,
// rather than three separate emitted code paths.
func Emit(conf *jcp.ConvConf) ([]byte, []asm.Relocation) {
	asm.Invariant(conf.Direction == jcp.BackwardWeights, "bwdweights.Emit called with %v config", conf.Direction)
	hw, ok := jcp.BWRegisterBudget(conf.KW, conf.ICBlockStep)
	asm.Invariant(ok, "backward-weights register plan overflow: high watermark %d", hw)

	b := asm.NewBuffer(4096)
	b.Prologue(savedGPRegs)
	loadArgs(b, conf)
	for icChunk := 0; icChunk < conf.ICBlock; icChunk += conf.ICBlockStep {
		for kh := 0; kh < conf.KH; kh++ {
			emitKHPass(b, conf, kh, icChunk)
		}
	}
	b.Epilogue(savedGPRegs)
	return b.Seal()
}

func loadArgs(b *asm.Buffer, conf *jcp.ConvConf) {
	b.MOVRegMem(regSrc, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgSrc))})
	b.MOVRegMem(regDDst, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgDst))})
	b.MOVRegMem(regFilt, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgFilt))})
	b.MOVRegMem(regICFlag, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgICFlag))})
}

// emitKHPass accumulates every (oh, ow, kw) contribution landing on filter
// row kh for the ic-chunk [icChunk, icChunk+ICBlockStep), starting from
// either zero (ic_flag.First) or the partial gradient already in memory
// from an earlier mb call, then stores the result back unconditionally —
// there is no store-time epilogue for a weight gradient the way there is
// a ReLU for the forward activation.
func emitKHPass(b *asm.Buffer, conf *jcp.ConvConf, kh, icChunk int) {
	initLbl := b.NewLabelID("bwdw.init")
	doneInitLbl := initLbl + ".done"

	b.TESTRegImm32(regICFlag, int32(jcp.ICFlagFirst))
	b.JCC(asm.CondNE, initLbl)
	for kw := 0; kw < conf.KW; kw++ {
		for ic := 0; ic < conf.ICBlockStep; ic++ {
			acc := asm.Ymm(jcp.BWAccReg(kw, ic, conf.ICBlockStep))
			b.VMOVUPSLoad(acc, filtMem(conf, kh, kw, icChunk+ic))
		}
	}
	b.JMP(doneInitLbl)
	b.Label(initLbl)
	for kw := 0; kw < conf.KW; kw++ {
		for ic := 0; ic < conf.ICBlockStep; ic++ {
			b.ZeroYmm(asm.Ymm(jcp.BWAccReg(kw, ic, conf.ICBlockStep)))
		}
	}
	b.Label(doneInitLbl)

	for oh := 0; oh < conf.OH; oh++ {
		ih := oh*conf.StrideH - conf.TPad + kh
		if ih < 0 || ih >= conf.IH {
			continue
		}
		computeOHStep(b, conf, oh, ih, icChunk)
	}

	for kw := 0; kw < conf.KW; kw++ {
		for ic := 0; ic < conf.ICBlockStep; ic++ {
			acc := asm.Ymm(jcp.BWAccReg(kw, ic, conf.ICBlockStep))
			b.VMOVUPSStore(filtMem(conf, kh, kw, icChunk+ic), acc)
		}
	}
}

// computeOHStep emits one (oh, ih) row's contribution for the (icChunk,
// kh) pass currently being accumulated: for every ow position and every
// kw, load the diff_dst OC-vector once (BWOutputScratch) and, for each ic
// in the current chunk, broadcast the matching src scalar
// (BWInputScratch) and accumulate into that (kw, ic) weight-gradient
// register.
func computeOHStep(b *asm.Buffer, conf *jcp.ConvConf, oh, ih, icChunk int) {
	for ow := 0; ow < conf.OW; ow++ {
		iw0 := ow*conf.StrideW - conf.LPad
		for kw := 0; kw < conf.KW; kw++ {
			iw := iw0 + kw
			if iw < 0 || iw >= conf.IW {
				continue
			}
			outScratch := asm.Ymm(jcp.BWOutputScratch(conf.KW, conf.ICBlockStep))
			b.VMOVUPSLoad(outScratch, ddstMem(conf, oh, ow))
			for ic := 0; ic < conf.ICBlockStep; ic++ {
				inScratch := asm.Ymm(jcp.BWInputScratch(conf.KW, conf.ICBlockStep))
				b.VBROADCASTSS(inScratch, srcMem(conf, ih, iw, icChunk+ic))
				acc := asm.Ymm(jcp.BWAccReg(kw, ic, conf.ICBlockStep))
				b.VFMADD231PSReg(acc, inScratch, outScratch)
			}
		}
	}
}

func srcMem(conf *jcp.ConvConf, ih, iw, ic int) asm.Mem {
	rowStride := conf.IW * conf.ICBlock * asm.FloatSize
	disp := ih*rowStride + iw*conf.ICBlock*asm.FloatSize + ic*asm.FloatSize
	return asm.Mem{Base: regSrc, Disp: int32(disp)}
}

func ddstMem(conf *jcp.ConvConf, oh, ow int) asm.Mem {
	rowStride := conf.OW * conf.OCBlock * asm.FloatSize
	disp := oh*rowStride + ow*conf.OCBlock*asm.FloatSize
	return asm.Mem{Base: regDDst, Disp: int32(disp)}
}

func filtMem(conf *jcp.ConvConf, kh, kw, ic int) asm.Mem {
	khStride := conf.KW * conf.ICBlock * conf.OCBlock * asm.FloatSize
	disp := kh*khStride + kw*conf.ICBlock*conf.OCBlock*asm.FloatSize + ic*conf.OCBlock*asm.FloatSize
	return asm.Mem{Base: regFilt, Disp: int32(disp)}
}
