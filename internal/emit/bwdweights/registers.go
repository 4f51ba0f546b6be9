// Package bwdweights emits the weight-gradient microkernel: accumulates
// diff_weights[oc][ic][kh][kw] += src[ih][iw][ic] * diff_dst[oh][ow][oc]
// over every valid (oh, ow, kh, kw) position, covering the whole IC block
// in one call by unrolling icBlockStep-wide chunks internally (spec
// §4.1/§4.4's runtime b_ic loop, collapsed to an emit-time loop since
// ICBlock/ICBlockStep are ConvConf constants). The out-of-scope driver
// only partitions mb×ngroups×nb_oc×oh (spec §5) and chains multiple mb
// calls with ic_flag exactly as the forward direction chains its IC
// splits — it never sees IC sub-chunks.
package bwdweights

import "github.com/deepteams/convjit/internal/asm"

const (
	paramReg  = asm.RDI
	regSrc    = asm.RAX
	regDDst   = asm.RBX
	regFilt   = asm.RCX
	regICFlag = asm.R9
)

var savedGPRegs = []asm.GPReg{asm.RBX}
