// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/mobilenet/internal/nn"
	"github.com/born-ml/mobilenet/tensor"
)

// BatchNorm defaults.
const (
	BatchNormEpsilon  = nn.BatchNormEpsilon
	BatchNormMomentum = nn.BatchNormMomentum
)

// Conv2D is a 2D convolution without bias. Kernel layout is [KH,KW,Cin,Cout].
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// DepthwiseConv2D convolves each channel with its own [KH,KW] filter.
type DepthwiseConv2D[B tensor.Backend] = nn.DepthwiseConv2D[B]

// BatchNorm normalizes channels with moving statistics.
type BatchNorm[B tensor.Backend] = nn.BatchNorm[B]

// ReLU6 is min(max(x, 0), 6).
type ReLU6[B tensor.Backend] = nn.ReLU6[B]

// Add sums two feature maps of equal shape.
type Add[B tensor.Backend] = nn.Add[B]

// ZeroPad2D pads the spatial axes with zeros.
type ZeroPad2D[B tensor.Backend] = nn.ZeroPad2D[B]

// PadFunc computes ((top, bottom), (left, right)) padding from an input shape.
type PadFunc = nn.PadFunc

// GlobalPool2D reduces [N,H,W,C] to [N,C].
type GlobalPool2D[B tensor.Backend] = nn.GlobalPool2D[B]

// Sequential chains modules.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewConv2D creates a convolution with Glorot uniform initialization.
//
// Example:
//
//	conv := nn.NewConv2D("Conv1", 3, 32, [2]int{3, 3}, [2]int{2, 2}, tensor.PaddingValid, rng, backend)
func NewConv2D[B tensor.Backend](name string, inChannels, outChannels int, kernelSize, stride [2]int, padding tensor.Padding, rng *rand.Rand, backend B) *Conv2D[B] {
	return nn.NewConv2D(name, inChannels, outChannels, kernelSize, stride, padding, rng, backend)
}

// NewDepthwiseConv2D creates a depthwise convolution with Glorot uniform
// initialization.
func NewDepthwiseConv2D[B tensor.Backend](name string, channels int, kernelSize, stride [2]int, padding tensor.Padding, rng *rand.Rand, backend B) *DepthwiseConv2D[B] {
	return nn.NewDepthwiseConv2D(name, channels, kernelSize, stride, padding, rng, backend)
}

// NewBatchNorm creates a batch normalization layer with gamma 1, beta 0,
// moving mean 0 and moving variance 1.
func NewBatchNorm[B tensor.Backend](name string, channels int, epsilon, momentum float32, backend B) *BatchNorm[B] {
	return nn.NewBatchNorm(name, channels, epsilon, momentum, backend)
}

// NewReLU6 creates a ReLU capped at 6.
func NewReLU6[B tensor.Backend](name string, backend B) *ReLU6[B] {
	return nn.NewReLU6(name, backend)
}

// NewAdd creates an element-wise sum layer.
func NewAdd[B tensor.Backend](name string, backend B) *Add[B] {
	return nn.NewAdd(name, backend)
}

// NewZeroPad2D creates a padding layer whose amounts depend on the input shape.
func NewZeroPad2D[B tensor.Backend](name string, pad PadFunc, backend B) *ZeroPad2D[B] {
	return nn.NewZeroPad2D(name, pad, backend)
}

// NewFixedZeroPad2D creates a padding layer with constant amounts.
func NewFixedZeroPad2D[B tensor.Backend](name string, pad [2][2]int, backend B) *ZeroPad2D[B] {
	return nn.NewFixedZeroPad2D(name, pad, backend)
}

// NewGlobalPool2D creates a global average or max pooling layer.
func NewGlobalPool2D[B tensor.Backend](name string, mode tensor.PoolMode, backend B) *GlobalPool2D[B] {
	return nn.NewGlobalPool2D(name, mode, backend)
}

// NewSequential chains modules in order.
//
// Example:
//
//	model := nn.NewSequential[*cpu.Backend](conv, bn, relu)
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}
