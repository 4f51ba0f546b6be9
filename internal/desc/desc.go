// Package desc defines the minimal read-only tensor and convolution
// descriptor surface the planner consumes. The real descriptor / memory
// format library lives outside this module; these types are the stand-in
// contract against it, modeled on field access such as ndims(), dims()[i],
// format(), padding, strides, and bias_desc.format.
package desc

// Format names a supported memory layout tag. The zero value, Undef,
// means "no format" (used for an absent bias descriptor).
type Format int

const (
	Undef Format = iota
	Any
	X // 1-D vector layout, used for bias.

	// Activation layouts.
	NCHW
	NHWC
	NChw8c

	// Weights layouts.
	OIhw8i8o
	OIhw8o8i
	GOIhw8i8o
	GOIhw8o8i
	Ohwi8o
)

func (f Format) String() string {
	switch f {
	case Undef:
		return "undef"
	case Any:
		return "any"
	case X:
		return "x"
	case NCHW:
		return "nchw"
	case NHWC:
		return "nhwc"
	case NChw8c:
		return "nChw8c"
	case OIhw8i8o:
		return "OIhw8i8o"
	case OIhw8o8i:
		return "OIhw8o8i"
	case GOIhw8i8o:
		return "gOIhw8i8o"
	case GOIhw8o8i:
		return "gOIhw8o8i"
	case Ohwi8o:
		return "Ohwi8o"
	default:
		return "unknown"
	}
}

// Tensor is the read-only view the planner needs of a tensor descriptor:
// its rank, per-axis extents, and memory format tag.
type Tensor struct {
	Dims   []int
	Format Format
}

// NDims returns the tensor's rank.
func (t Tensor) NDims() int { return len(t.Dims) }

// Dim returns the extent of axis i.
func (t Tensor) Dim(i int) int { return t.Dims[i] }

// NewActivation builds a 4-D NCHW-ordered activation tensor descriptor
// (mb, channels, h, w) tagged with the given format.
func NewActivation(mb, c, h, w int, format Format) Tensor {
	return Tensor{Dims: []int{mb, c, h, w}, Format: format}
}

// NewWeights builds a weights descriptor. With groups the leading axis is
// the group count, followed by (oc, ic, kh, kw); without groups it is
// (oc, ic, kh, kw).
func NewWeights(groups, oc, ic, kh, kw int, format Format) Tensor {
	if groups > 1 {
		return Tensor{Dims: []int{groups, oc, ic, kh, kw}, Format: format}
	}
	return Tensor{Dims: []int{oc, ic, kh, kw}, Format: format}
}

// Conv is the read-only view of a convolution descriptor: padding,
// strides (both indexed [h, w]), and the bias descriptor's format.
type Conv struct {
	// Padding[0] is {top, left}; Padding[1] is {bottom, right}.
	Padding    [2][2]int
	Strides    [2]int
	BiasFormat Format
}
