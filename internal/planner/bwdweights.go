package planner

import (
	"github.com/deepteams/convjit/internal/desc"
	"github.com/deepteams/convjit/internal/jcp"
)

// icBlockStep picks the input-channel block step backward-weights
// accumulates per register pass: wider kernels need more scratch
// registers per ic step, so the step shrinks as kw grows.
func icBlockStep(kw int) int {
	switch {
	case kw <= 1:
		return 8
	case kw <= 3:
		return 4
	case kw <= 7:
		return 2
	default:
		return 1
	}
}

// planBackwardWeights mirrors jit_avx2_conv_bwd_weights_kernel_f32::init_conf.
func planBackwardWeights(cd desc.Conv, src, diffWeights, diffDst desc.Tensor) (*jcp.ConvConf, error) {
	withGroups := diffWeights.NDims() == src.NDims()+1
	ngroups := 1
	if withGroups {
		ngroups = diffWeights.Dim(0)
	}
	g := withGroupsOffset(withGroups)

	mb := src.Dim(0)
	ic := src.Dim(1) / ngroups
	ih, iw := src.Dim(2), src.Dim(3)
	oc := diffDst.Dim(1) / ngroups
	oh, ow := diffDst.Dim(2), diffDst.Dim(3)
	kh, kw := diffWeights.Dim(g+2), diffWeights.Dim(g+3)
	tPad, lPad := cd.Padding[0][0], cd.Padding[0][1]
	strideH, strideW := cd.Strides[0], cd.Strides[1]

	if src.Format != desc.NChw8c {
		return nil, unimplemented("backward-weights: source format must be nChw8c, got %v", src.Format)
	}
	wantWeightsFmt := desc.OIhw8i8o
	if withGroups {
		wantWeightsFmt = desc.GOIhw8i8o
	}
	if diffWeights.Format != wantWeightsFmt {
		return nil, unimplemented("backward-weights: diff_weights format must be %v, got %v", wantWeightsFmt, diffWeights.Format)
	}
	if cd.BiasFormat != desc.Undef && cd.BiasFormat != desc.X {
		return nil, unimplemented("backward-weights: unsupported diff_bias format %v", cd.BiasFormat)
	}
	if diffDst.Format != desc.NChw8c {
		return nil, unimplemented("backward-weights: diff_dst format must be nChw8c, got %v", diffDst.Format)
	}
	if kw >= 14 {
		return nil, unimplemented("backward-weights: kw %d too wide (must be < 14)", kw)
	}

	icBlock := simdW
	nbIC := ic / icBlock
	ocBlock := simdW
	nbOC := oc / ocBlock

	return &jcp.ConvConf{
		Direction: jcp.BackwardWeights,

		MB:       mb,
		NGroups:  ngroups,
		IC:       ic,
		OC:       oc,
		IH:       ih,
		IW:       iw,
		OH:       oh,
		OW:       ow,
		KH:       kh,
		KW:       kw,
		StrideH:  strideH,
		StrideW:  strideW,
		TPad:     tPad,
		LPad:     lPad,
		WithGrps: withGroups,

		SrcFmt:     src.Format,
		WeightsFmt: diffWeights.Format,
		DstFmt:     diffDst.Format,

		ICBlock:      icBlock,
		OCBlock:      ocBlock,
		NBIC:         nbIC,
		NBOC:         nbOC,
		NBICBlocking: 1,
		NBOCBlocking: 1,
		ICBlockStep:  icBlockStep(kw),

		WithBias: cd.BiasFormat != desc.Undef,
	}, nil
}
