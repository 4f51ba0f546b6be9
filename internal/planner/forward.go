package planner

import (
	"github.com/deepteams/convjit/internal/desc"
	"github.com/deepteams/convjit/internal/jcp"
)

const simdW = 8

// planForward mirrors jit_avx2_conv_fwd_kernel_f32::init_conf: it checks
// the shape against the supported template, picks blocking/unrolling
// factors, and either rejects the shape or returns a complete ConvConf.
func planForward(cd desc.Conv, src, weights, dst desc.Tensor, opts Options) (*jcp.ConvConf, error) {
	withGroups := weights.NDims() == src.NDims()+1
	ngroups := 1
	if withGroups {
		ngroups = weights.Dim(0)
	}
	g := withGroupsOffset(withGroups)

	mb := src.Dim(0)
	ic := src.Dim(1) / ngroups
	ih, iw := src.Dim(2), src.Dim(3)
	oc := dst.Dim(1) / ngroups
	oh, ow := dst.Dim(2), dst.Dim(3)
	kh, kw := weights.Dim(g+2), weights.Dim(g+3)
	tPad, lPad := cd.Padding[0][0], cd.Padding[0][1]
	strideH, strideW := cd.Strides[0], cd.Strides[1]

	flat := ic == 3
	withBias := cd.BiasFormat != desc.Undef

	switch {
	case flat && src.Format != desc.NCHW && src.Format != desc.NHWC:
		return nil, unimplemented("forward: flat path requires nchw or nhwc source, got %v", src.Format)
	case !flat && src.Format != desc.NChw8c:
		return nil, unimplemented("forward: blocked path requires nChw8c source, got %v", src.Format)
	}

	wantWeightsFmt := desc.OIhw8i8o
	switch {
	case withGroups:
		wantWeightsFmt = desc.GOIhw8i8o
	case flat:
		wantWeightsFmt = desc.Ohwi8o
	}
	if weights.Format != wantWeightsFmt {
		return nil, unimplemented("forward: weights format must be %v, got %v", wantWeightsFmt, weights.Format)
	}
	if withBias && cd.BiasFormat != desc.Any && cd.BiasFormat != desc.X {
		return nil, unimplemented("forward: unsupported bias format %v", cd.BiasFormat)
	}
	if dst.Format != desc.NChw8c {
		return nil, unimplemented("forward: destination format must be nChw8c, got %v", dst.Format)
	}

	urW := 3
	if ow < urW {
		urW = ow
	}
	urWTail := ow % urW

	if oc%simdW != 0 {
		return nil, unimplemented("forward: oc %d not a multiple of %d", oc, simdW)
	}
	if lPad > urW {
		return nil, unimplemented("forward: l_pad %d exceeds ur_w %d", lPad, urW)
	}
	if kw > 7 {
		okPad := tPad == 0 && lPad == 0
		okStride := strideW == 1 && strideH == 1
		if !okPad && !okStride {
			return nil, unimplemented("forward: kw %d > 7 requires no padding or unit stride", kw)
		}
	}
	if !flat && ic%simdW != 0 {
		return nil, unimplemented("forward: ic %d not a multiple of %d", ic, simdW)
	}

	rPadNoTail := max(0, (ow-urWTail-1)*strideW+(kw-1)-(iw+lPad-1))
	if rPadNoTail > urW {
		return nil, unimplemented("forward: trailing right padding %d exceeds ur_w %d", rPadNoTail, urW)
	}

	icBlock := simdW
	if flat {
		icBlock = ic
	}
	nbIC := ic / icBlock
	ocBlock := simdW
	nbOC := oc / ocBlock
	nbOCBlocking := pickBlocking(nbOC)

	rPad := max(0, (ow-1)*strideW+kw-1-(iw+lPad-1))

	return &jcp.ConvConf{
		Direction: jcp.Forward,

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

		RPad: rPad,

		SrcFmt:     src.Format,
		WeightsFmt: weights.Format,
		DstFmt:     dst.Format,

		ICBlock:      icBlock,
		OCBlock:      ocBlock,
		NBIC:         nbIC,
		NBOC:         nbOC,
		NBICBlocking: 1,
		NBOCBlocking: nbOCBlocking,

		URH:     1,
		URW:     urW,
		URWTail: urWTail,

		WithBias:          withBias,
		WithRelu:          opts.WithRelu,
		ReluNegativeSlope: opts.ReluNegativeSlope,
	}, nil
}
