// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/mobilenet/internal/nn"
	"github.com/born-ml/mobilenet/tensor"
)

// Module is the base interface for all neural network components.
//
// Every module implements:
//   - Forward: compute output from input
//   - OutputShape: infer the output shape without data
//   - Parameters: return all weights, trainable or not
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] = nn.Module[B]

// Layer is a Module registered under a unique name with a summary kind.
type Layer[B tensor.Backend] = nn.Layer[B]

// Scope allocates unique layer names and per-kind uids.
type Scope = nn.Scope

// ErrNameCollision is wrapped by Scope.Name for duplicate names.
var ErrNameCollision = nn.ErrNameCollision

// NewScope creates an empty root scope.
func NewScope() *Scope {
	return nn.NewScope()
}

// TryForward runs m.Forward and returns a shape panic as an error.
//
// Example:
//
//	out, err := nn.TryForward[*cpu.Backend](model, input)
//	if err != nil {
//	    log.Fatal(err)
//	}
func TryForward[B tensor.Backend](m Module[B], x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	return nn.TryForward[B](m, x)
}

// StateDict maps parameter names to their raw tensors.
func StateDict[B tensor.Backend](params []*Parameter[B]) map[string]*tensor.RawTensor {
	return nn.StateDict(params)
}

// LoadStateDict copies matching tensors into params. It fails without
// modifying anything when a name is missing, unexpected, or has the wrong
// shape.
func LoadStateDict[B tensor.Backend](params []*Parameter[B], state map[string]*tensor.RawTensor) error {
	return nn.LoadStateDict(params, state)
}
