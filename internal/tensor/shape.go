package tensor

import (
	"fmt"
	"strings"
)

// UnknownDim marks a dimension whose size is not known ahead of computation,
// such as the batch size or the spatial size of a variable-size input.
const UnknownDim = -1

// Shape represents the dimensions of a tensor.
//
// Feature maps use the channels-last layout [batch, height, width, channels].
type Shape []int

// NumElements returns the total number of elements in the tensor.
// Shapes with unknown dimensions report -1.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		if dim == UnknownDim {
			return UnknownDim
		}
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid for allocation (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// IsFullyDefined reports whether no dimension is UnknownDim.
func (s Shape) IsFullyDefined() bool {
	for _, dim := range s {
		if dim == UnknownDim {
			return false
		}
	}
	return true
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Channels returns the last dimension of a channels-last shape.
func (s Shape) Channels() int {
	if len(s) == 0 {
		return UnknownDim
	}
	return s[len(s)-1]
}

// Spatial returns the [height, width] dimensions of a 4D NHWC shape.
func (s Shape) Spatial() [2]int {
	if len(s) != 4 {
		panic(&ShapeError{Op: "spatial", Msg: fmt.Sprintf("expected 4D [N,H,W,C] shape, got %v", s)})
	}
	return [2]int{s[1], s[2]}
}

// String formats the shape the way layer summaries print it, with "?" for
// unknown dimensions.
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		if dim == UnknownDim {
			parts[i] = "?"
		} else {
			parts[i] = fmt.Sprint(dim)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
