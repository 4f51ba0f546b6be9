package config

import (
	"fmt"

	"github.com/deepteams/convjit"
)

var formatNames = map[string]convjit.Format{
	"any":       convjit.Any,
	"x":         convjit.X,
	"nchw":      convjit.NCHW,
	"nhwc":      convjit.NHWC,
	"nchw8c":    convjit.NChw8c,
	"oihw8i8o":  convjit.OIhw8i8o,
	"oihw8o8i":  convjit.OIhw8o8i,
	"goihw8i8o": convjit.GOIhw8i8o,
	"goihw8o8i": convjit.GOIhw8o8i,
	"ohwi8o":    convjit.Ohwi8o,
}

// ParseFormat resolves a case-insensitive layout name (as typed on the
// command line or in a config file) to its convjit.Format constant.
func ParseFormat(s string) (convjit.Format, error) {
	f, ok := formatNames[normalizeFormatName(s)]
	if !ok {
		return convjit.Any, fmt.Errorf("config: unknown memory format %q", s)
	}
	return f, nil
}

func normalizeFormatName(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

var directionNames = map[string]convjit.Direction{
	"forward":          convjit.Forward,
	"backward-data":    convjit.BackwardData,
	"backward-weights": convjit.BackwardWeights,
}

// ParseDirection resolves a direction name to its convjit.Direction constant.
func ParseDirection(s string) (convjit.Direction, error) {
	d, ok := directionNames[s]
	if !ok {
		return 0, fmt.Errorf("config: unknown direction %q", s)
	}
	return d, nil
}

// Shape is the trio of descriptors and options convjit.Plan needs,
// resolved from a ProblemConfig's plain-string fields.
type Shape struct {
	Direction convjit.Direction
	Conv      convjit.Conv
	Src       convjit.Tensor
	Weights   convjit.Tensor
	Dst       convjit.Tensor
	WithRelu  bool
	ReluSlope float64
}

// BuildShape validates and converts a ProblemConfig into the descriptor
// types convjit.Plan consumes.
func BuildShape(p ProblemConfig) (Shape, error) {
	dir, err := ParseDirection(p.Direction)
	if err != nil {
		return Shape{}, err
	}
	srcFmt, err := ParseFormat(p.SrcFormat)
	if err != nil {
		return Shape{}, err
	}
	weightsFmt, err := ParseFormat(p.WeightsFormat)
	if err != nil {
		return Shape{}, err
	}
	dstFmt, err := ParseFormat(p.DstFormat)
	if err != nil {
		return Shape{}, err
	}

	biasFmt := convjit.Format(0) // desc.Undef's zero value
	if p.WithBias {
		biasFmt = convjit.X
	}

	return Shape{
		Direction: dir,
		Conv: convjit.Conv{
			Padding: [2][2]int{{p.TPad, p.LPad}, {p.TPad, p.LPad}},
			Strides: [2]int{p.StrideH, p.StrideW},
			BiasFormat: biasFmt,
		},
		Src:       convjit.NewActivation(p.MB, p.IC*p.Groups, p.IH, p.IW, srcFmt),
		Weights:   convjit.NewWeights(p.Groups, p.OC, p.IC, p.KH, p.KW, weightsFmt),
		Dst:       convjit.NewActivation(p.MB, p.OC*p.Groups, p.OH, p.OW, dstFmt),
		WithRelu:  p.WithRelu,
		ReluSlope: p.ReluSlope,
	}, nil
}
