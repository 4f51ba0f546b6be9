package jcp

import "github.com/deepteams/convjit/internal/desc"

// ConvConf ("jcp" in the original kernel — jit conv params) is the
// planner's output: an immutable record describing one (direction, shape)
// combination that the template can handle. It is never mutated after
// planning and is shared read-only by the matching emitter.
type ConvConf struct {
	Direction Direction

	// Problem: tensor geometry.
	MB       int
	NGroups  int
	IC       int
	OC       int
	IH, IW   int
	OH, OW   int
	KH, KW   int
	StrideH  int
	StrideW  int
	TPad     int
	LPad     int
	WithGrps bool

	// Derived padding. IHP/IWP/OHP/OWP are only populated on the
	// backward-data path; see spec §9 — callers must not read them on
	// other directions. RPad is the right-padding amount; only the forward
	// planner sets it.
	IHP, IWP int
	OHP, OWP int
	RPad     int

	// Layouts.
	SrcFmt     desc.Format
	WeightsFmt desc.Format
	DstFmt     desc.Format

	// Blocking: channel tiling.
	ICBlock       int
	OCBlock       int
	NBIC          int
	NBOC          int
	NBICBlocking  int
	NBOCBlocking  int
	ICBlockStep   int // backward-weights only; 0 elsewhere.

	// Unrolling: spatial unroll in W.
	URH     int
	URW     int
	URWTail int

	// Options: epilogue modifiers.
	WithBias          bool
	WithRelu          bool
	ReluNegativeSlope float64
}

// Flat reports whether the channel-tiling is the "flat" 3-channel path
// (IC == 3, unblocked) rather than the blocked nChw8c path.
func (c *ConvConf) Flat() bool { return c.IC == 3 }

// InpMult is the per-spatial-step input pointer stride multiplier: 1
// element for the flat nchw layout, ICBlock elements for blocked layouts.
func (c *ConvConf) InpMult() int {
	if c.SrcFmt == desc.NCHW {
		return 1
	}
	return c.ICBlock
}
