package convjit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/convjit"
)

func TestPlanAndEmitForward(t *testing.T) {
	src := convjit.NewActivation(1, 64, 28, 28, convjit.NChw8c)
	weights := convjit.NewWeights(1, 64, 64, 3, 3, convjit.OIhw8i8o)
	dst := convjit.NewActivation(1, 64, 28, 28, convjit.NChw8c)
	cd := convjit.Conv{Padding: [2][2]int{{1, 1}, {1, 1}}, Strides: [2]int{1, 1}}

	conf, err := convjit.Plan(convjit.Forward, cd, src, weights, dst, true, 0)
	require.NoError(t, err)
	require.NotNil(t, conf)

	if !convjit.CPUSupported() {
		t.Skip("host lacks AVX2/FMA")
	}
	code, relocs, err := convjit.Emit(conf)
	require.NoError(t, err)
	require.NotEmpty(t, code)
	for _, r := range relocs {
		require.GreaterOrEqual(t, r.Offset, 0)
		require.Less(t, r.Offset+4, len(code))
	}
}

func TestPlanRejectsUnsupportedShape(t *testing.T) {
	src := convjit.NewActivation(1, 64, 28, 28, convjit.NChw8c)
	weights := convjit.NewWeights(1, 65, 64, 3, 3, convjit.OIhw8i8o)
	dst := convjit.NewActivation(1, 65, 28, 28, convjit.NChw8c)
	cd := convjit.Conv{Padding: [2][2]int{{1, 1}, {1, 1}}, Strides: [2]int{1, 1}}

	conf, err := convjit.Plan(convjit.Forward, cd, src, weights, dst, false, 0)
	require.Nil(t, conf)
	require.ErrorIs(t, err, convjit.ErrUnimplemented)
}

func TestEmitBackwardWeightsProducesCode(t *testing.T) {
	if !convjit.CPUSupported() {
		t.Skip("host lacks AVX2/FMA")
	}
	src := convjit.NewActivation(2, 64, 14, 14, convjit.NChw8c)
	diffWeights := convjit.NewWeights(1, 64, 64, 3, 3, convjit.OIhw8i8o)
	diffDst := convjit.NewActivation(2, 64, 14, 14, convjit.NChw8c)
	cd := convjit.Conv{Padding: [2][2]int{{1, 1}, {1, 1}}, Strides: [2]int{1, 1}}

	conf, err := convjit.Plan(convjit.BackwardWeights, cd, src, diffWeights, diffDst, false, 0)
	require.NoError(t, err)

	code, _, err := convjit.Emit(conf)
	require.NoError(t, err)
	require.NotEmpty(t, code)
}
