package planner

import (
	"github.com/deepteams/convjit/internal/desc"
	"github.com/deepteams/convjit/internal/jcp"
)

// planBackwardData mirrors jit_avx2_conv_bwd_data_kernel_f32::init_conf.
// The weights-format check below is written with explicit parentheses —
// unlike a stray `a == b ? x : y` reading as `(a == b) ? x : y` against the
// wrong operand, here the with_groups branch is grouped first, then
// compared — so it actually discriminates grouped from ungrouped weights
// rather than silently comparing weights.Format to a bool.
func planBackwardData(cd desc.Conv, diffSrc, weights, diffDst desc.Tensor) (*jcp.ConvConf, error) {
	withGroups := weights.NDims() == diffSrc.NDims()+1
	ngroups := 1
	if withGroups {
		ngroups = weights.Dim(0)
	}
	g := withGroupsOffset(withGroups)

	mb := diffSrc.Dim(0)
	ic := diffSrc.Dim(1) / ngroups
	ih, iw := diffSrc.Dim(2), diffSrc.Dim(3)
	oc := diffDst.Dim(1) / ngroups
	oh, ow := diffDst.Dim(2), diffDst.Dim(3)
	kh, kw := weights.Dim(g+2), weights.Dim(g+3)
	tPad, lPad := cd.Padding[0][0], cd.Padding[0][1]
	strideH, strideW := cd.Strides[0], cd.Strides[1]

	if diffSrc.Format != desc.NChw8c {
		return nil, unimplemented("backward-data: diff_src format must be nChw8c, got %v", diffSrc.Format)
	}
	wantWeightsFmt := desc.OIhw8o8i
	if withGroups {
		wantWeightsFmt = desc.GOIhw8o8i
	}
	if weights.Format != wantWeightsFmt {
		return nil, unimplemented("backward-data: weights format must be %v, got %v", wantWeightsFmt, weights.Format)
	}
	if diffDst.Format != desc.NChw8c {
		return nil, unimplemented("backward-data: diff_dst format must be nChw8c, got %v", diffDst.Format)
	}
	if strideW != strideH {
		return nil, unimplemented("backward-data: stride_w %d != stride_h %d", strideW, strideH)
	}
	if strideW != 1 {
		return nil, unimplemented("backward-data: only unit stride is supported, got %d", strideW)
	}
	if ic%simdW != 0 {
		return nil, unimplemented("backward-data: ic %d not a multiple of %d", ic, simdW)
	}
	if oc%simdW != 0 {
		return nil, unimplemented("backward-data: oc %d not a multiple of %d", oc, simdW)
	}
	if tPad != lPad {
		return nil, unimplemented("backward-data: t_pad %d != l_pad %d", tPad, lPad)
	}
	pointwise := ngroups == 1 && kw == 1 && kh == 1 && lPad == 0 && tPad == 0 && iw == ow && ih == oh
	if !pointwise && tPad != 1 && tPad != 2 {
		return nil, unimplemented("backward-data: padding must be 1 or 2, got %d", tPad)
	}

	ihp := ih + 2*tPad
	iwp := iw + 2*lPad
	if oh != (ihp-kh)/strideH+1 {
		return nil, unimplemented("backward-data: oh %d inconsistent with padded ih", oh)
	}
	if ow != (iwp-kw)/strideW+1 {
		return nil, unimplemented("backward-data: ow %d inconsistent with padded iw", ow)
	}

	icBlock := simdW
	nbIC := ic / icBlock
	ocBlock := simdW
	nbOC := oc / ocBlock

	conf := &jcp.ConvConf{
		Direction: jcp.BackwardData,

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

		IHP: ihp,
		IWP: iwp,
		OHP: oh,
		OWP: ow,

		SrcFmt:     diffSrc.Format,
		WeightsFmt: weights.Format,
		DstFmt:     diffDst.Format,

		ICBlock: icBlock,
		OCBlock: ocBlock,
		NBIC:    nbIC,
		NBOC:    nbOC,

		URH: 1,
		URW: 3,
	}

	// Pointwise 1x1, unpadded, unit-stride, ungrouped, same spatial
	// extent: the special case where three input-channel blocks can be
	// accumulated per register pass instead of unrolling over W.
	if ngroups == 1 && kw == 1 && kh == 1 && lPad == 0 && tPad == 0 &&
		iw == ow && ih == oh && icBlock == simdW {
		conf.NBICBlocking = 3
		conf.NBOCBlocking = 1
		return conf, nil
	}

	conf.NBICBlocking = pickBlocking(nbIC)
	conf.NBOCBlocking = 1

	urWTail := iw % conf.URW
	conf.URWTail = urWTail

	lOverflow := max(0, kw-1-lPad)
	if lOverflow > conf.URW {
		return nil, unimplemented("backward-data: left overflow %d exceeds ur_w %d", lOverflow, conf.URW)
	}
	rPad := iwp - iw - lPad
	rOverflowStep0 := max(0, kw-1-(iw-conf.URW)-rPad)
	if lOverflow > 0 && rOverflowStep0 > 0 {
		return nil, unimplemented("backward-data: left and right overflow both present in one step")
	}
	rOverflowNoTail := max(0, kw-1-urWTail-rPad)
	if rOverflowNoTail > conf.URW {
		return nil, unimplemented("backward-data: trailing right overflow %d exceeds ur_w %d", rOverflowNoTail, conf.URW)
	}

	return conf, nil
}
