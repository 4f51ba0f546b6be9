package bwddata_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/convjit/internal/desc"
	"github.com/deepteams/convjit/internal/emit/bwddata"
	"github.com/deepteams/convjit/internal/jcp"
)

func generalConf() *jcp.ConvConf {
	return &jcp.ConvConf{
		Direction:    jcp.BackwardData,
		MB:           1,
		NGroups:      1,
		IC:           64,
		OC:           64,
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
		IHP:          30,
		IWP:          30,
		OHP:          28,
		OWP:          28,
		SrcFmt:       desc.NChw8c,
		WeightsFmt:   desc.OIhw8o8i,
		DstFmt:       desc.NChw8c,
		ICBlock:      8,
		OCBlock:      8,
		NBIC:         8,
		NBOC:         8,
		NBICBlocking: 2,
		NBOCBlocking: 1,
		URH:          1,
		URW:          3,
		URWTail:      1,
	}
}

func TestEmitBackwardDataProducesSealedCode(t *testing.T) {
	code, relocs := bwddata.Emit(generalConf())
	require.NotEmpty(t, code)
	for _, r := range relocs {
		require.GreaterOrEqual(t, r.Offset, 0)
		require.LessOrEqual(t, r.Offset+4, len(code))
	}
}

func TestEmitBackwardDataPointwiseSpecialCase(t *testing.T) {
	conf := generalConf()
	conf.KH, conf.KW = 1, 1
	conf.TPad, conf.LPad = 0, 0
	conf.NBICBlocking = 3

	code, _ := bwddata.Emit(conf)
	require.NotEmpty(t, code)
}

func TestEmitBackwardDataRejectsWrongDirection(t *testing.T) {
	conf := generalConf()
	conf.Direction = jcp.Forward
	require.Panics(t, func() { bwddata.Emit(conf) })
}
