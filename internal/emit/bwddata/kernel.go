package bwddata

import (
	"github.com/deepteams/convjit/internal/asm"
	"github.com/deepteams/convjit/internal/jcp"
)

// Emit generates the machine code for one backward-data ConvConf. Reuses
// the forward direction's register-plan functions (jcp.FwdAccReg and
// friends): the roles are the same shape, just with nb_ic_blocking output
// blocks reducing over OC instead of nb_oc_blocking blocks reducing over
// IC (spec §9, "shared register plan across forward and backward-data").
func Emit(conf *jcp.ConvConf) ([]byte, []asm.Relocation) {
	asm.Invariant(conf.Direction == jcp.BackwardData, "bwddata.Emit called with %v config", conf.Direction)
	hw, ok := jcp.FwdRegisterBudget(conf.NBICBlocking, conf.URW, false)
	asm.Invariant(ok, "backward-data register plan overflow: high watermark %d", hw)

	b := asm.NewBuffer(2048)
	b.Prologue(savedGPRegs)
	loadArgs(b, conf)

	col := 0
	for col < conf.IW {
		tileW := conf.URW
		if conf.IW-col < tileW {
			tileW = conf.IW - col
		}
		emitColumnTile(b, conf, col, tileW)
		col += tileW
	}

	b.Epilogue(savedGPRegs)
	return b.Seal()
}

func loadArgs(b *asm.Buffer, conf *jcp.ConvConf) {
	b.MOVRegMem(regDSrc, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgSrc))})
	b.MOVRegMem(regDDst, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgDst))})
	b.MOVRegMem(regKernel, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgFilt))})
	b.MOVRegMem(regKH, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgKHPadding))})
	b.MOVRegMem(regICFlag, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgICFlag))})
}

func emitColumnTile(b *asm.Buffer, conf *jcp.ConvConf, colBase, tileW int) {
	scope := b.NewLabelID("bwdd.tile")
	initLbl := scope + ".init"
	doneInitLbl := scope + ".init.done"

	b.TESTRegImm32(regICFlag, int32(jcp.ICFlagFirst))
	b.JCC(asm.CondNE, initLbl)
	for ii := 0; ii < conf.NBICBlocking; ii++ {
		for jj := 0; jj < tileW; jj++ {
			acc := asm.Ymm(jcp.FwdAccReg(ii, jj, conf.URW))
			b.VMOVUPSLoad(acc, dsrcMem(conf, colBase+jj, ii))
		}
	}
	b.JMP(doneInitLbl)
	b.Label(initLbl)
	for ii := 0; ii < conf.NBICBlocking; ii++ {
		for jj := 0; jj < tileW; jj++ {
			b.ZeroYmm(asm.Ymm(jcp.FwdAccReg(ii, jj, conf.URW)))
		}
	}
	b.Label(doneInitLbl)

	b.MOVRegReg(auxDDst, regDDst)
	b.MOVRegReg(auxKernel, regKernel)
	// Every tile runs the full K_H count; the previous tile's loop left regKH at zero.
	b.MOVRegMem(regKH, asm.Mem{Base: paramReg, Disp: int32(jcp.ArgOffset(jcp.ArgKHPadding))})

	loopTop := b.NewLabelID("bwdd.kh")
	b.Label(loopTop)
	for kw := 0; kw < conf.KW; kw++ {
		for jj := 0; jj < tileW; jj++ {
			// diff_src column (colBase+jj) pulls from diff_dst column
			// ((colBase+jj) + l_pad - kw) / stride_w; stride is 1 here.
			outCol := colBase + jj + conf.LPad - kw
			if outCol < 0 || outCol >= conf.OW {
				continue
			}
			for oc := 0; oc < conf.OC; oc++ {
				bcast := asm.Ymm(jcp.FwdBcastReg(jj, conf.NBICBlocking, conf.URW))
				b.VBROADCASTSS(bcast, ddstMem(conf, outCol, oc))
				for ii := 0; ii < conf.NBICBlocking; ii++ {
					scratch := asm.Ymm(jcp.ScratchReg())
					b.VMOVUPSLoad(scratch, kernelMem(conf, kw, oc, ii))
					acc := asm.Ymm(jcp.FwdAccReg(ii, jj, conf.URW))
					b.VFMADD231PSReg(acc, bcast, scratch)
				}
			}
		}
	}
	// diff_dst walks backward one output row per K_H step (spec §4.3,
	// "hsw_iter_s1": "ddst pointer rewinds by one output row ... each
	// iteration — reflecting the backward traversal"), while the kernel
	// pointer advances forward through K_H.
	b.SUBRegImm32(auxDDst, int32(conf.OW*conf.OCBlock*asm.FloatSize))
	b.ADDRegImm32(auxKernel, int32(conf.KW*conf.ICBlock*conf.OCBlock*asm.FloatSize))
	b.DECReg(regKH)
	b.TESTRegImm32(regKH, -1)
	b.JCC(asm.CondG, loopTop)

	for ii := 0; ii < conf.NBICBlocking; ii++ {
		for jj := 0; jj < tileW; jj++ {
			acc := asm.Ymm(jcp.FwdAccReg(ii, jj, conf.URW))
			b.VMOVUPSStore(dsrcMem(conf, colBase+jj, ii), acc)
		}
	}
}

func dsrcMem(conf *jcp.ConvConf, col, icBlockIdx int) asm.Mem {
	rowStride := conf.IW * conf.ICBlock * asm.FloatSize
	disp := col*conf.ICBlock*asm.FloatSize + icBlockIdx*rowStride
	return asm.Mem{Base: regDSrc, Disp: int32(disp)}
}

func ddstMem(conf *jcp.ConvConf, col, oc int) asm.Mem {
	disp := col*conf.OCBlock*asm.FloatSize + (oc/conf.OCBlock)*conf.OW*conf.OCBlock*asm.FloatSize
	return asm.Mem{Base: auxDDst, Disp: int32(disp)}
}

func kernelMem(conf *jcp.ConvConf, kw, oc, icBlockIdx int) asm.Mem {
	icBlockStride := conf.KH * conf.KW * conf.ICBlock * conf.OCBlock * asm.FloatSize
	ocBlockIdx := oc / conf.OCBlock
	disp := kw*conf.ICBlock*conf.OCBlock*asm.FloatSize + ocBlockIdx*conf.ICBlock*asm.FloatSize + icBlockIdx*icBlockStride
	return asm.Mem{Base: auxKernel, Disp: int32(disp)}
}
