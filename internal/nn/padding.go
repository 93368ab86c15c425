package nn

import (
	"github.com/born-ml/mobilenet/internal/tensor"
)

// PadFunc computes ((top, bottom), (left, right)) padding from an NHWC
// input shape. Spatial dimensions may be tensor.UnknownDim.
type PadFunc func(input tensor.Shape) [2][2]int

// ZeroPad2D pads the spatial axes with zeros. The amounts are resolved
// per input through a PadFunc, so the same layer adapts to any spatial size.
type ZeroPad2D[B tensor.Backend] struct {
	name    string
	pad     PadFunc
	backend B
}

// NewZeroPad2D creates a padding layer driven by pad.
func NewZeroPad2D[B tensor.Backend](name string, pad PadFunc, backend B) *ZeroPad2D[B] {
	return &ZeroPad2D[B]{name: name, pad: pad, backend: backend}
}

// NewFixedZeroPad2D creates a padding layer with constant amounts.
func NewFixedZeroPad2D[B tensor.Backend](name string, pad [2][2]int, backend B) *ZeroPad2D[B] {
	return NewZeroPad2D(name, func(tensor.Shape) [2][2]int { return pad }, backend)
}

// Forward pads input.
func (z *ZeroPad2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	s := require4D("zero_pad2d", input.Shape())
	return tensor.New[float32, B](z.backend.ZeroPad2D(input.Raw(), z.pad(s)), z.backend)
}

// OutputShape grows the known spatial axes by the padding amounts.
func (z *ZeroPad2D[B]) OutputShape(input tensor.Shape) tensor.Shape {
	s := require4D("zero_pad2d", input)
	p := z.pad(s)
	out := s.Clone()
	for axis := 0; axis < 2; axis++ {
		if out[axis+1] != tensor.UnknownDim {
			out[axis+1] += p[axis][0] + p[axis][1]
		}
	}
	return out
}

// Padding returns the amounts applied to input.
func (z *ZeroPad2D[B]) Padding(input tensor.Shape) [2][2]int {
	return z.pad(input)
}

// Parameters returns nil.
func (z *ZeroPad2D[B]) Parameters() []*Parameter[B] {
	return nil
}

// Name returns the layer name.
func (z *ZeroPad2D[B]) Name() string { return z.name }

// Kind returns "ZeroPadding2D".
func (z *ZeroPad2D[B]) Kind() string { return "ZeroPadding2D" }
