// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package mobilenet

import (
	"github.com/born-ml/mobilenet/internal/mobilenet"
	"github.com/born-ml/mobilenet/tensor"
)

// ErrIncompatibleWeights is returned by LoadWeights for files written for
// another format or width multiplier.
var ErrIncompatibleWeights = mobilenet.ErrIncompatibleWeights

// SaveWeights writes every parameter of m to a SafeTensors file.
//
// Example:
//
//	if err := mobilenet.SaveWeights("mobilenet_v2.safetensors", model); err != nil {
//	    log.Fatal(err)
//	}
func SaveWeights[B tensor.Backend](path string, m *Backbone[B]) error {
	return mobilenet.SaveWeights(path, m)
}

// LoadWeights reads a SafeTensors file written by SaveWeights into m. The
// model is left unchanged on error.
func LoadWeights[B tensor.Backend](path string, m *Backbone[B]) error {
	return mobilenet.LoadWeights(path, m)
}
