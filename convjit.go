package convjit

import (
	"errors"
	"fmt"

	"github.com/deepteams/convjit/internal/asm"
	"github.com/deepteams/convjit/internal/cpu"
	"github.com/deepteams/convjit/internal/desc"
	"github.com/deepteams/convjit/internal/emit/bwddata"
	"github.com/deepteams/convjit/internal/emit/bwdweights"
	"github.com/deepteams/convjit/internal/emit/fwd"
	"github.com/deepteams/convjit/internal/jcp"
	"github.com/deepteams/convjit/internal/planner"
)

// Direction selects which of the three convolution passes to plan/emit.
type Direction = jcp.Direction

const (
	Forward         = jcp.Forward
	BackwardData    = jcp.BackwardData
	BackwardWeights = jcp.BackwardWeights
)

// Format names a supported memory layout.
type Format = desc.Format

const (
	Any       = desc.Any
	X         = desc.X
	NCHW      = desc.NCHW
	NHWC      = desc.NHWC
	NChw8c    = desc.NChw8c
	OIhw8i8o  = desc.OIhw8i8o
	OIhw8o8i  = desc.OIhw8o8i
	GOIhw8i8o = desc.GOIhw8i8o
	GOIhw8o8i = desc.GOIhw8o8i
	Ohwi8o    = desc.Ohwi8o
)

// Tensor and Conv are the descriptor stand-ins Plan validates shapes
// against; NewActivation and NewWeights build them.
type (
	Tensor = desc.Tensor
	Conv   = desc.Conv
)

var (
	NewActivation = desc.NewActivation
	NewWeights    = desc.NewWeights
)

// ConvConf is the planner's output and the emitter's input: an immutable
// record of one supported (direction, shape) combination.
type ConvConf = jcp.ConvConf

// ICFlag and ArgRecord describe the ABI between the emitted kernel and its
// caller (spec's "external driver").
type (
	ICFlag    = jcp.ICFlag
	ArgRecord = jcp.ArgRecord
)

const (
	ICFlagFirst  = jcp.ICFlagFirst
	ICFlagLast   = jcp.ICFlagLast
	ICFlagMiddle = jcp.ICFlagMiddle
	ICFlagBoth   = jcp.ICFlagBoth
)

// Relocation records a label reference patched into the sealed code blob.
type Relocation = asm.Relocation

// ErrUnimplemented wraps every rejected shape: errors.Is(err,
// ErrUnimplemented) distinguishes "not supported" from a genuine bug.
var ErrUnimplemented = planner.ErrUnimplemented

// ErrEmitterInvariant wraps a contract violation detected during
// emission — a ConvConf that passed planning but somehow fails an
// emitter-side assertion. This should never happen for a ConvConf Plan
// actually returned; seeing it means this package has a bug.
var ErrEmitterInvariant = asm.ErrEmitterInvariant

// ErrUnsupportedCPU is returned by Emit when the host CPU lacks AVX2 or
// FMA: the caller must not execute a blob this package would otherwise
// happily generate for it.
var ErrUnsupportedCPU = errors.New("convjit: host CPU lacks required AVX2/FMA support")

// CPUSupported reports whether the running CPU can execute the
// instruction stream Emit produces.
func CPUSupported() bool { return cpu.Supported() }

// Plan validates a convolution shape against this generator's supported
// template and, on success, returns a ConvConf ready for Emit. withRelu
// and reluSlope are ignored for BackwardData and BackwardWeights, which
// have no epilogue activation.
func Plan(dir Direction, cd Conv, src, weights, dst Tensor, withRelu bool, reluSlope float64) (*ConvConf, error) {
	return planner.Plan(dir, cd, src, weights, dst, planner.Options{
		WithRelu:          withRelu,
		ReluNegativeSlope: reluSlope,
	})
}

// Emit generates machine code for conf, which must have come from a
// successful Plan call. It returns the sealed instruction stream and the
// label relocations applied to it. Any emitter-side invariant violation
// is recovered here and reported as a wrapped ErrEmitterInvariant rather
// than propagating as a panic — this is the single place that boundary
// is crossed (spec's error-handling design).
func Emit(conf *ConvConf) (code []byte, relocs []Relocation, err error) {
	defer asm.Recover(&err)

	if !cpu.Supported() {
		return nil, nil, ErrUnsupportedCPU
	}

	switch conf.Direction {
	case jcp.Forward:
		code, relocs = fwd.Emit(conf)
	case jcp.BackwardData:
		code, relocs = bwddata.Emit(conf)
	case jcp.BackwardWeights:
		code, relocs = bwdweights.Emit(conf)
	default:
		return nil, nil, fmt.Errorf("convjit: unknown direction %v: %w", conf.Direction, ErrEmitterInvariant)
	}
	return code, relocs, nil
}
