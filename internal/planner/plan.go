package planner

import (
	"github.com/deepteams/convjit/internal/desc"
	"github.com/deepteams/convjit/internal/jcp"
)

// Options carries the epilogue modifiers that sit outside the tensor
// descriptors proper (spec's "Options" field group).
type Options struct {
	WithRelu          bool
	ReluNegativeSlope float64
}

// Plan validates one (direction, shape) request against this generator's
// supported template and, on success, returns a fully populated ConvConf.
// It never returns a partially filled config: any rejected shape comes back
// as a nil *jcp.ConvConf and a non-nil error wrapping ErrUnimplemented.
func Plan(dir jcp.Direction, cd desc.Conv, src, weights, dst desc.Tensor, opts Options) (*jcp.ConvConf, error) {
	switch dir {
	case jcp.Forward:
		return planForward(cd, src, weights, dst, opts)
	case jcp.BackwardData:
		return planBackwardData(cd, src, weights, dst)
	case jcp.BackwardWeights:
		return planBackwardWeights(cd, src, weights, dst)
	default:
		return nil, unimplemented("unknown direction %v", dir)
	}
}

func withGroupsOffset(withGroups bool) int {
	if withGroups {
		return 1
	}
	return 0
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// pickBlocking returns the largest divisor of n among {4, 3, 2}, or 1 if
// none divide it — the nb_oc_blocking (forward) / nb_ic_blocking
// (backward-data) selection ladder. Backward-weights does not use it.
func pickBlocking(n int) int {
	for _, b := range []int{4, 3, 2} {
		if n%b == 0 {
			return b
		}
	}
	return 1
}
