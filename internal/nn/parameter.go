package nn

import (
	"github.com/born-ml/mobilenet/internal/tensor"
)

// Parameter is a named weight tensor.
//
// Trainable parameters are the ones an optimizer would update (kernels,
// gamma, beta). Non-trainable parameters hold state such as the moving
// statistics of batch normalization.
type Parameter[B tensor.Backend] struct {
	name      string                     // Full name (e.g., "block_1_expand/kernel")
	tensor    *tensor.Tensor[float32, B] // The parameter tensor
	trainable bool
}

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t, trainable: true}
}

// NewNonTrainable creates a parameter that is saved with the model but never
// trained.
func NewNonTrainable[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t, trainable: false}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Trainable reports whether an optimizer would update this parameter.
func (p *Parameter[B]) Trainable() bool {
	return p.trainable
}

// NumElements returns the number of scalars held by the parameter.
func (p *Parameter[B]) NumElements() int {
	return p.tensor.NumElements()
}

// CountParameters returns the trainable and non-trainable scalar counts.
func CountParameters[B tensor.Backend](params []*Parameter[B]) (trainable, nonTrainable int) {
	for _, p := range params {
		if p.trainable {
			trainable += p.NumElements()
		} else {
			nonTrainable += p.NumElements()
		}
	}
	return trainable, nonTrainable
}
