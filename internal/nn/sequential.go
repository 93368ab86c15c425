package nn

import (
	"github.com/born-ml/mobilenet/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input.
//
// Example:
//
//	stem := nn.NewSequential[Backend](
//	    nn.NewZeroPad2D("Conv1_pad", pad, backend),
//	    nn.NewConv2D("Conv1", 3, 32, [2]int{3, 3}, [2]int{2, 2}, tensor.PaddingValid, rng, backend),
//	    nn.NewBatchNorm("bn_Conv1", 32, nn.BatchNormEpsilon, nn.BatchNormMomentum, backend),
//	    nn.NewReLU6("Conv1_relu", backend),
//	)
//	output := stem.Forward(input)
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

// NewSequential creates a new Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// OutputShape chains OutputShape through all modules.
func (s *Sequential[B]) OutputShape(input tensor.Shape) tensor.Shape {
	shape := input
	for _, module := range s.modules {
		shape = module.OutputShape(shape)
	}
	return shape
}

// Parameters returns the parameters of all modules in order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence.
func (s *Sequential[B]) Add(module Module[B]) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential[B]) Len() int {
	return len(s.modules)
}

// Module returns the module at index i.
func (s *Sequential[B]) Module(i int) Module[B] {
	return s.modules[i]
}

// Modules returns all modules in the sequence.
func (s *Sequential[B]) Modules() []Module[B] {
	return s.modules
}
