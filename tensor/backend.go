// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/mobilenet/internal/tensor"

// Padding selects how a convolution treats the borders of its input.
type Padding = tensor.Padding

// Padding modes.
const (
	PaddingValid Padding = tensor.PaddingValid
	PaddingSame  Padding = tensor.PaddingSame
)

// PoolMode selects the reduction used by global pooling.
type PoolMode = tensor.PoolMode

// Global pooling reductions.
const (
	PoolAvg PoolMode = tensor.PoolAvg
	PoolMax PoolMode = tensor.PoolMax
)

// Backend defines the primitives a compute backend must implement:
// Add, Conv2D, DepthwiseConv2D, BatchNorm, ReLU6, ZeroPad2D and
// GlobalPool2D on channels-last feature maps.
//
// Implementations:
//   - backend/cpu: pure Go, parallel over output rows
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Ones[float32](tensor.Shape{1, 4, 4, 3}, backend)
//	y := x.Add(x) // uses backend.Add under the hood
type Backend = tensor.Backend
