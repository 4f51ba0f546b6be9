package fwd

import (
	"github.com/deepteams/convjit/internal/asm"
	"github.com/deepteams/convjit/internal/desc"
	"github.com/deepteams/convjit/internal/jcp"
)

// Emit generates the machine code for one forward ConvConf. conf must have
// come from a successful planner.Plan call; Emit trusts every invariant
// the planner already checked and raises asm.Invariant panics (recovered
// at the convjit.Emit boundary) if one turns out false anyway.
func Emit(conf *jcp.ConvConf) ([]byte, []asm.Relocation) {
	asm.Invariant(conf.Direction == jcp.Forward, "fwd.Emit called with %v config", conf.Direction)
	hw, ok := jcp.FwdRegisterBudget(conf.NBOCBlocking, conf.URW, conf.WithRelu)
	asm.Invariant(ok, "forward register plan overflow: high watermark %d", hw)

	b := asm.NewBuffer(2048)
	b.Prologue(savedGPRegs)
	loadArgs(b, conf)

	col := 0
	for col < conf.OW {
		tileW := conf.URW
		if conf.OW-col < tileW {
			tileW = conf.OW - col
		}
		emitColumnTile(b, conf, col, tileW)
		col += tileW
	}

	b.Epilogue(savedGPRegs)
	return b.Seal()
}

func loadArgs(b *asm.Buffer, conf *jcp.ConvConf) {
	b.MOVRegMem(regInput, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgSrc))})
	b.MOVRegMem(regOutput, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgDst))})
	b.MOVRegMem(regKernel, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgFilt))})
	if conf.WithBias {
		b.MOVRegMem(regBias, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgBias))})
	}
	b.MOVRegMem(regKH, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgKHPadding))})
	b.MOVRegMem(regICFlag, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgICFlag))})
}

// channelStride is the byte distance between consecutive input channels at
// a fixed spatial position: contiguous (FloatSize) for the blocked nChw8c
// and flat nhwc layouts, a full plane apart for the flat nchw first-layer
// path.
func channelStride(conf *jcp.ConvConf) int {
	if conf.SrcFmt == desc.NCHW {
		return conf.IH * conf.IW * asm.FloatSize
	}
	return asm.FloatSize
}

// icCount is how many input channels this tile's inner reduction visits:
// all of IC for the flat path (it's never blocked), one full ic_block
// otherwise.
func icCount(conf *jcp.ConvConf) int {
	if conf.Flat() {
		return conf.IC
	}
	return conf.ICBlock
}

// emitColumnTile emits the accumulate-and-store sequence for tileW
// consecutive output columns starting at colBase: accumulator
// initialisation (branching on ic_flag.First), the K_H-counted reduction
// loop with K_W fully unrolled and per-column padding trimmed statically,
// and the epilogue (branching on ic_flag.Last).
func emitColumnTile(b *asm.Buffer, conf *jcp.ConvConf, colBase, tileW int) {
	scope := b.NewLabelID("fwd.tile")
	initLbl := scope + ".init"
	doneInitLbl := scope + ".init.done"

	b.TESTRegImm32(regICFlag, int32(jcp.ICFlagFirst))
	b.JCC(asm.CondNE, initLbl)
	for ii := 0; ii < conf.NBOCBlocking; ii++ {
		for jj := 0; jj < tileW; jj++ {
			acc := asm.Ymm(jcp.FwdAccReg(ii, jj, conf.URW))
			b.VMOVUPSLoad(acc, outputMem(conf, colBase+jj, ii))
		}
	}
	b.JMP(doneInitLbl)
	b.Label(initLbl)
	for ii := 0; ii < conf.NBOCBlocking; ii++ {
		for jj := 0; jj < tileW; jj++ {
			acc := asm.Ymm(jcp.FwdAccReg(ii, jj, conf.URW))
			if conf.WithBias {
				b.VBROADCASTSS(acc, biasMem(conf, ii))
			} else {
				b.ZeroYmm(acc)
			}
		}
	}
	b.Label(doneInitLbl)

	b.MOVRegReg(auxInput, regInput)
	b.MOVRegReg(auxKernel, regKernel)
	// Every tile runs the full K_H count; the previous tile's loop left regKH at zero.
	b.MOVRegMem(regKH, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgKHPadding))})

	loopTop := b.NewLabelID("fwd.kh")
	b.Label(loopTop)
	for kw := 0; kw < conf.KW; kw++ {
		for jj := 0; jj < tileW; jj++ {
			inCol := (colBase+jj)*conf.StrideW - conf.LPad + kw
			if inCol < 0 || inCol >= conf.IW {
				continue // falls in implicit zero padding: no contribution
			}
			for ic := 0; ic < icCount(conf); ic++ {
				bcast := asm.Ymm(jcp.FwdBcastReg(jj, conf.NBOCBlocking, conf.URW))
				b.VBROADCASTSS(bcast, inputMem(conf, inCol, ic))
				for ii := 0; ii < conf.NBOCBlocking; ii++ {
					scratch := asm.Ymm(jcp.ScratchReg())
					b.VMOVUPSLoad(scratch, kernelMem(conf, kw, ic, ii))
					acc := asm.Ymm(jcp.FwdAccReg(ii, jj, conf.URW))
					b.VFMADD231PSReg(acc, bcast, scratch)
				}
			}
		}
	}
	b.ADDRegImm32(auxInput, int32(conf.IW*conf.InpMult()*asm.FloatSize))
	b.ADDRegImm32(auxKernel, int32(conf.KW*conf.ICBlock*conf.OCBlock*asm.FloatSize))
	b.DECReg(regKH)
	b.TESTRegImm32(regKH, -1) // sets flags off regKH's current value
	b.JCC(asm.CondG, loopTop)

	emitEpilogue(b, conf, colBase, tileW)
}

func emitEpilogue(b *asm.Buffer, conf *jcp.ConvConf, colBase, tileW int) {
	lastLbl := b.NewLabelID("fwd.last")
	doneLbl := lastLbl + ".done"

	b.TESTRegImm32(regICFlag, int32(jcp.ICFlagLast))
	b.JCC(asm.CondNE, lastLbl)
	for ii := 0; ii < conf.NBOCBlocking; ii++ {
		for jj := 0; jj < tileW; jj++ {
			acc := asm.Ymm(jcp.FwdAccReg(ii, jj, conf.URW))
			b.VMOVUPSStore(outputMem(conf, colBase+jj, ii), acc)
		}
	}
	b.JMP(doneLbl)

	b.Label(lastLbl)
	for ii := 0; ii < conf.NBOCBlocking; ii++ {
		for jj := 0; jj < tileW; jj++ {
			acc := asm.Ymm(jcp.FwdAccReg(ii, jj, conf.URW))
			if conf.WithRelu {
				mask := asm.Ymm(jcp.ReluMaskReg())
				zero := asm.Ymm(jcp.ReluMaskReg())
				b.ZeroYmm(zero)
				b.VCMPGTPSReg(mask, acc, zero)
				b.VBLENDVPSReg(acc, zero, acc, mask)
			}
			b.VMOVUPSStore(outputMem(conf, colBase+jj, ii), acc)
		}
	}
	b.Label(doneLbl)
}

func outputMem(conf *jcp.ConvConf, col, ocBlockIdx int) asm.Mem {
	rowStride := conf.OW * conf.OCBlock * asm.FloatSize
	disp := col*conf.OCBlock*asm.FloatSize + ocBlockIdx*rowStride
	return asm.Mem{Base: regOutput, Disp: int32(disp)}
}

func biasMem(conf *jcp.ConvConf, ocBlockIdx int) asm.Mem {
	return asm.Mem{Base: regBias, Disp: int32(ocBlockIdx * conf.OCBlock * asm.FloatSize)}
}

func inputMem(conf *jcp.ConvConf, col, ic int) asm.Mem {
	disp := col*conf.InpMult()*asm.FloatSize + ic*channelStride(conf)
	return asm.Mem{Base: auxInput, Disp: int32(disp)}
}

func kernelMem(conf *jcp.ConvConf, kw, ic, ocBlockIdx int) asm.Mem {
	// Each oc-block owns a full nb_ic*kh*kw*ic_block*oc_block slice of the
	// filter (spec §4.2's ker_off), not just one kh*kw*ic_block*oc_block
	// plane: the oc-block stride must carry the nb_ic factor.
	ocBlockStride := conf.NBIC * conf.KH * conf.KW * conf.ICBlock * conf.OCBlock * asm.FloatSize
	disp := kw*conf.ICBlock*conf.OCBlock*asm.FloatSize + ic*conf.OCBlock*asm.FloatSize + ocBlockIdx*ocBlockStride
	return asm.Mem{Base: auxKernel, Disp: int32(disp)}
}
