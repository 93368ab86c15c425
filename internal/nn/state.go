package nn

import (
	"fmt"

	"github.com/born-ml/mobilenet/internal/tensor"
)

// StateDict maps every parameter name to its underlying RawTensor.
// The tensors are shared, not copied.
func StateDict[B tensor.Backend](params []*Parameter[B]) map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor, len(params))
	for _, p := range params {
		state[p.Name()] = p.Tensor().Raw()
	}
	return state
}

// LoadStateDict copies values from state into params.
//
// Every parameter must be present with a matching shape and float32 dtype.
// Entries in state that match no parameter are reported as an error too, so
// a checkpoint for a different width multiplier is rejected instead of being
// partially applied. Nothing is modified when an error is returned.
func LoadStateDict[B tensor.Backend](params []*Parameter[B], state map[string]*tensor.RawTensor) error {
	known := make(map[string]struct{}, len(params))
	for _, p := range params {
		known[p.Name()] = struct{}{}
		raw, ok := state[p.Name()]
		if !ok {
			return fmt.Errorf("missing %s in state dict", p.Name())
		}
		if !raw.Shape().Equal(p.Tensor().Shape()) {
			return fmt.Errorf("%s shape mismatch: expected %v, got %v", p.Name(), p.Tensor().Shape(), raw.Shape())
		}
		if raw.DType() != tensor.Float32 {
			return fmt.Errorf("%s dtype mismatch: expected float32, got %v", p.Name(), raw.DType())
		}
	}
	for name := range state {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("unexpected %s in state dict", name)
		}
	}

	for _, p := range params {
		copy(p.Tensor().Data(), state[p.Name()].AsFloat32())
	}
	return nil
}
