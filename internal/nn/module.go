// Package nn implements the layer modules the MobileNetV2 builder composes.
//
// This package provides:
//   - Module / Layer interfaces
//   - Parameter: named weights, trainable or not
//   - Scope: explicit name and uid allocation for layers
//   - Conv2D, DepthwiseConv2D, BatchNorm, ReLU6, ZeroPad2D, GlobalPool2D
//   - Sequential: container for chaining layers
//
// Feature maps are channels-last [N, H, W, C]. Modules panic with
// *tensor.ShapeError on incompatible inputs; TryForward turns that into an
// error.
package nn

import (
	"github.com/born-ml/mobilenet/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// OutputShape infers the output shape for an input shape without
	// touching data. Unknown dimensions propagate as tensor.UnknownDim.
	OutputShape(input tensor.Shape) tensor.Shape

	// Parameters returns all weights of this module, trainable or not.
	// Returns nil for modules without weights (e.g., activations).
	Parameters() []*Parameter[B]
}

// Layer is a Module registered under a unique name.
type Layer[B tensor.Backend] interface {
	Module[B]

	// Name returns the registered layer name (e.g., "block_3_depthwise").
	Name() string

	// Kind returns the layer type as printed in summaries (e.g., "Conv2D").
	Kind() string
}

// TryForward runs m.Forward and converts a *tensor.ShapeError panic into a
// returned error. Any other panic is re-raised.
func TryForward[B tensor.Backend](m Module[B], x *tensor.Tensor[float32, B]) (out *tensor.Tensor[float32, B], err error) {
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*tensor.ShapeError)
			if !ok {
				panic(r)
			}
			out, err = nil, se
		}
	}()
	return m.Forward(x), nil
}

// require4D validates an NHWC shape for op and returns it.
func require4D(op string, s tensor.Shape) tensor.Shape {
	if len(s) != 4 {
		panic(tensor.ShapeErrorf(op, "expected 4D input [N,H,W,C], got %dD %v", len(s), s))
	}
	return s
}

// requireChannels checks the channel axis when it is known.
func requireChannels(op string, s tensor.Shape, want int) {
	if c := s.Channels(); c != tensor.UnknownDim && c != want {
		panic(tensor.ShapeErrorf(op, "input channels %d != expected %d", c, want))
	}
}
