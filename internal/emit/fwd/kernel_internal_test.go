package fwd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/convjit/internal/desc"
	"github.com/deepteams/convjit/internal/jcp"
)

func blockedMultiICConf() *jcp.ConvConf {
	return &jcp.ConvConf{
		Direction:    jcp.Forward,
		IC:           64,
		OC:           192,
		IH:           28,
		IW:           28,
		OH:           28,
		OW:           28,
		KH:           3,
		KW:           3,
		StrideH:      1,
		StrideW:      1,
		TPad:         1,
		LPad:         1,
		SrcFmt:       desc.NChw8c,
		WeightsFmt:   desc.OIhw8i8o,
		DstFmt:       desc.NChw8c,
		ICBlock:      8,
		OCBlock:      8,
		NBIC:         8,
		NBOC:         24,
		NBICBlocking: 1,
		NBOCBlocking: 3,
		URH:          1,
		URW:          3,
		URWTail:      1,
	}
}

// TestKernelMemOCBlockStrideCarriesNBIC guards the fix for the forward
// filter-offset formula (spec §4.2's ker_off = ii*nb_ic*kh*kw*ic_blk*oc_blk
// + ...): advancing the oc-block index must skip a whole
// nb_ic*kh*kw*ic_block*oc_block slice of the filter, not just one
// kh*kw*ic_block*oc_block plane.
func TestKernelMemOCBlockStrideCarriesNBIC(t *testing.T) {
	conf := blockedMultiICConf()

	base := kernelMem(conf, 0, 0, 0)
	require.Equal(t, int32(0), base.Disp)

	oneBlockOver := kernelMem(conf, 0, 0, 1)
	wantStride := conf.NBIC * conf.KH * conf.KW * conf.ICBlock * conf.OCBlock * 4
	require.Equal(t, int32(wantStride), oneBlockOver.Disp)

	// The bug under review dropped the NBIC factor, so the observed
	// stride would have been 8x too small for this conf (NBIC=8).
	buggyStride := conf.KH * conf.KW * conf.ICBlock * conf.OCBlock * 4
	require.NotEqual(t, int32(buggyStride), oneBlockOver.Disp)
}
