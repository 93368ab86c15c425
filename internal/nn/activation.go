package nn

import (
	"github.com/born-ml/mobilenet/internal/tensor"
)

// ReLU6 is the bounded rectifier f(x) = min(max(0, x), 6).
//
// Example:
//
//	relu := nn.NewReLU6[Backend]("Conv1_relu", backend)
//	output := relu.Forward(input)
type ReLU6[B tensor.Backend] struct {
	name     string
	maxValue float32
	backend  B
}

// NewReLU6 creates a ReLU6 activation.
func NewReLU6[B tensor.Backend](name string, backend B) *ReLU6[B] {
	return &ReLU6[B]{name: name, maxValue: 6, backend: backend}
}

// Forward applies the activation element-wise.
func (r *ReLU6[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return tensor.New[float32, B](r.backend.ReLU6(input.Raw(), r.maxValue), r.backend)
}

// OutputShape returns input unchanged.
func (r *ReLU6[B]) OutputShape(input tensor.Shape) tensor.Shape {
	return input.Clone()
}

// Parameters returns nil (ReLU6 has no weights).
func (r *ReLU6[B]) Parameters() []*Parameter[B] {
	return nil
}

// Name returns the layer name.
func (r *ReLU6[B]) Name() string { return r.name }

// Kind returns "ReLU".
func (r *ReLU6[B]) Kind() string { return "ReLU" }

// MaxValue returns the upper bound.
func (r *ReLU6[B]) MaxValue() float32 { return r.maxValue }

// Add sums two branches element-wise. Used for residual connections.
type Add[B tensor.Backend] struct {
	name    string
	backend B
}

// NewAdd creates an addition layer.
func NewAdd[B tensor.Backend](name string, backend B) *Add[B] {
	return &Add[B]{name: name, backend: backend}
}

// Apply returns a + b. Shapes must match exactly.
func (a *Add[B]) Apply(x, y *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.Add(y)
}

// OutputShape validates that both shapes agree and returns the result shape.
func (a *Add[B]) OutputShape(x, y tensor.Shape) tensor.Shape {
	if len(x) != len(y) {
		panic(tensor.ShapeErrorf("add", "rank mismatch %v vs %v", x, y))
	}
	out := x.Clone()
	for i := range x {
		switch {
		case x[i] == y[i]:
		case x[i] == tensor.UnknownDim:
			out[i] = y[i]
		case y[i] == tensor.UnknownDim:
		default:
			panic(tensor.ShapeErrorf("add", "shape mismatch %v vs %v", x, y))
		}
	}
	return out
}

// Name returns the layer name.
func (a *Add[B]) Name() string { return a.name }

// Kind returns "Add".
func (a *Add[B]) Kind() string { return "Add" }
