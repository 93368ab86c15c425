// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/mobilenet/internal/nn"
	"github.com/born-ml/mobilenet/tensor"
)

// Parameter represents a named weight of a layer.
//
// Trainable parameters are learned; non-trainable ones (BatchNorm moving
// statistics) are only updated by calibration.
//
// Example:
//
//	p := nn.NewParameter("Conv1/kernel", kernel)
//	fmt.Println(p.Name(), p.NumElements(), p.Trainable())
//
// Note: Parameter is implemented as a type alias because it is used as a return type
// in the Module interface. Go's type system requires exact type matches for interface
// implementations, so we cannot use an interface here.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// NewNonTrainable creates a parameter excluded from training.
func NewNonTrainable[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewNonTrainable(name, t)
}

// CountParameters sums parameter sizes split by trainability.
func CountParameters[B tensor.Backend](params []*Parameter[B]) (trainable, nonTrainable int) {
	return nn.CountParameters(params)
}
