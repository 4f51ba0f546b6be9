package planner_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/convjit/internal/desc"
	"github.com/deepteams/convjit/internal/jcp"
	"github.com/deepteams/convjit/internal/planner"
)

func TestPlanForwardBlockedAccepts(t *testing.T) {
	src := desc.NewActivation(2, 64, 56, 56, desc.NChw8c)
	weights := desc.NewWeights(1, 128, 64, 3, 3, desc.OIhw8i8o)
	dst := desc.NewActivation(2, 128, 56, 56, desc.NChw8c)
	cd := desc.Conv{
		Padding: [2][2]int{{1, 1}, {1, 1}},
		Strides: [2]int{1, 1},
	}

	conf, err := planner.Plan(jcp.Forward, cd, src, weights, dst, planner.Options{})
	require.NoError(t, err)
	require.Equal(t, jcp.Forward, conf.Direction)
	require.Equal(t, 64, conf.IC)
	require.Equal(t, 128, conf.OC)
	require.Equal(t, 8, conf.ICBlock)
	require.Equal(t, 8, conf.OCBlock)
	require.Equal(t, 3, conf.URW)
	require.False(t, conf.Flat())
}

func TestPlanForwardFlatFirstLayerAccepts(t *testing.T) {
	src := desc.NewActivation(1, 3, 224, 224, desc.NCHW)
	weights := desc.NewWeights(1, 64, 3, 7, 7, desc.Ohwi8o)
	dst := desc.NewActivation(1, 64, 112, 112, desc.NChw8c)
	cd := desc.Conv{
		Padding: [2][2]int{{3, 3}, {3, 3}},
		Strides: [2]int{2, 2},
	}

	conf, err := planner.Plan(jcp.Forward, cd, src, weights, dst, planner.Options{})
	require.NoError(t, err)
	require.True(t, conf.Flat())
	require.Equal(t, 3, conf.ICBlock)
	require.Equal(t, 1, conf.InpMult())
}

func TestPlanForwardRejectsOddOC(t *testing.T) {
	src := desc.NewActivation(1, 64, 28, 28, desc.NChw8c)
	weights := desc.NewWeights(1, 65, 64, 3, 3, desc.OIhw8i8o)
	dst := desc.NewActivation(1, 65, 28, 28, desc.NChw8c)
	cd := desc.Conv{Padding: [2][2]int{{1, 1}, {1, 1}}, Strides: [2]int{1, 1}}

	_, err := planner.Plan(jcp.Forward, cd, src, weights, dst, planner.Options{})
	require.ErrorIs(t, err, planner.ErrUnimplemented)
}

func TestPlanForwardRejectsWrongWeightsFormat(t *testing.T) {
	src := desc.NewActivation(1, 64, 28, 28, desc.NChw8c)
	weights := desc.NewWeights(1, 128, 64, 3, 3, desc.OIhw8o8i) // backward-data layout, wrong for forward
	dst := desc.NewActivation(1, 128, 28, 28, desc.NChw8c)
	cd := desc.Conv{Padding: [2][2]int{{1, 1}, {1, 1}}, Strides: [2]int{1, 1}}

	_, err := planner.Plan(jcp.Forward, cd, src, weights, dst, planner.Options{})
	require.Error(t, err)
	require.True(t, errors.Is(err, planner.ErrUnimplemented))
}

func TestPlanForwardGroupedWeightsFormat(t *testing.T) {
	src := desc.NewActivation(1, 64, 28, 28, desc.NChw8c)
	weights := desc.NewWeights(2, 128, 32, 3, 3, desc.GOIhw8i8o)
	dst := desc.NewActivation(1, 128, 28, 28, desc.NChw8c)
	cd := desc.Conv{Padding: [2][2]int{{1, 1}, {1, 1}}, Strides: [2]int{1, 1}}

	conf, err := planner.Plan(jcp.Forward, cd, src, weights, dst, planner.Options{})
	require.NoError(t, err)
	require.True(t, conf.WithGrps)
	require.Equal(t, 2, conf.NGroups)
}

func TestPlanBackwardDataPointwiseSpecialCase(t *testing.T) {
	diffSrc := desc.NewActivation(1, 64, 28, 28, desc.NChw8c)
	weights := desc.NewWeights(1, 128, 64, 1, 1, desc.OIhw8o8i)
	diffDst := desc.NewActivation(1, 128, 28, 28, desc.NChw8c)
	cd := desc.Conv{Padding: [2][2]int{{0, 0}, {0, 0}}, Strides: [2]int{1, 1}}

	conf, err := planner.Plan(jcp.BackwardData, cd, diffSrc, weights, diffDst, planner.Options{})
	require.NoError(t, err)
	require.Equal(t, 3, conf.NBICBlocking)
}

func TestPlanBackwardDataGeneralCase(t *testing.T) {
	diffSrc := desc.NewActivation(1, 64, 28, 28, desc.NChw8c)
	weights := desc.NewWeights(1, 128, 64, 3, 3, desc.OIhw8o8i)
	diffDst := desc.NewActivation(1, 128, 28, 28, desc.NChw8c)
	cd := desc.Conv{Padding: [2][2]int{{1, 1}, {1, 1}}, Strides: [2]int{1, 1}}

	conf, err := planner.Plan(jcp.BackwardData, cd, diffSrc, weights, diffDst, planner.Options{})
	require.NoError(t, err)
	require.Equal(t, 28+2, conf.IWP)
	require.Equal(t, 28+2, conf.IHP)
	require.NotEqual(t, 3, conf.NBICBlocking) // not the pointwise special case
}

func TestPlanBackwardDataRejectsNonUnitStride(t *testing.T) {
	diffSrc := desc.NewActivation(1, 64, 28, 28, desc.NChw8c)
	weights := desc.NewWeights(1, 128, 64, 3, 3, desc.OIhw8o8i)
	diffDst := desc.NewActivation(1, 128, 14, 14, desc.NChw8c)
	cd := desc.Conv{Padding: [2][2]int{{1, 1}, {1, 1}}, Strides: [2]int{2, 2}}

	_, err := planner.Plan(jcp.BackwardData, cd, diffSrc, weights, diffDst, planner.Options{})
	require.ErrorIs(t, err, planner.ErrUnimplemented)
}

func TestPlanBackwardWeightsAccepts(t *testing.T) {
	src := desc.NewActivation(2, 64, 28, 28, desc.NChw8c)
	diffWeights := desc.NewWeights(1, 128, 64, 3, 3, desc.OIhw8i8o)
	diffDst := desc.NewActivation(2, 128, 28, 28, desc.NChw8c)
	cd := desc.Conv{Padding: [2][2]int{{1, 1}, {1, 1}}, Strides: [2]int{1, 1}}

	conf, err := planner.Plan(jcp.BackwardWeights, cd, src, diffWeights, diffDst, planner.Options{})
	require.NoError(t, err)
	require.Equal(t, 4, conf.ICBlockStep) // kw=3 -> step 4
}

func TestPlanBackwardWeightsRejectsWideKernel(t *testing.T) {
	src := desc.NewActivation(1, 64, 28, 28, desc.NChw8c)
	diffWeights := desc.NewWeights(1, 128, 64, 14, 14, desc.OIhw8i8o)
	diffDst := desc.NewActivation(1, 128, 28, 28, desc.NChw8c)
	cd := desc.Conv{Padding: [2][2]int{{0, 0}, {0, 0}}, Strides: [2]int{1, 1}}

	_, err := planner.Plan(jcp.BackwardWeights, cd, src, diffWeights, diffDst, planner.Options{})
	require.ErrorIs(t, err, planner.ErrUnimplemented)
}
