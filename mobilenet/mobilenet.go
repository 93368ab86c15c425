// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package mobilenet

import (
	"io"
	"math/rand"

	"github.com/born-ml/mobilenet/internal/mobilenet"
	"github.com/born-ml/mobilenet/nn"
	"github.com/born-ml/mobilenet/tensor"
)

// Pooling modes for the backbone output.
const (
	PoolingNone = mobilenet.PoolingNone
	PoolingAvg  = mobilenet.PoolingAvg
	PoolingMax  = mobilenet.PoolingMax
)

// Feature pyramid levels returned by Backbone.FeatureMaps.
const (
	LevelP1 = mobilenet.LevelP1
	LevelP2 = mobilenet.LevelP2
	LevelP3 = mobilenet.LevelP3
	LevelP4 = mobilenet.LevelP4
	LevelP5 = mobilenet.LevelP5
)

// DefaultDivisor is the channel rounding granularity.
const DefaultDivisor = mobilenet.DefaultDivisor

// ErrConfiguration is matched by every *ConfigurationError.
var ErrConfiguration = mobilenet.ErrConfiguration

// ConfigurationError describes an invalid build parameter.
//
// Example:
//
//	_, err := mobilenet.BuildBlock(scope, cfg, 16, backend)
//	var cerr *mobilenet.ConfigurationError
//	if errors.As(err, &cerr) {
//	    fmt.Println(cerr.Field, cerr.Reason)
//	}
type ConfigurationError = mobilenet.ConfigurationError

// BlockConfig parameterizes one inverted residual block.
type BlockConfig = mobilenet.BlockConfig

// BackboneConfig parameterizes a full backbone.
type BackboneConfig = mobilenet.BackboneConfig

// InvertedResidual is a built expand / depthwise / project block.
type InvertedResidual[B tensor.Backend] = mobilenet.InvertedResidual[B]

// Backbone is a built MobileNetV2 feature extractor.
type Backbone[B tensor.Backend] = mobilenet.Backbone[B]

// NamedLayer is a layer as listed in summaries.
type NamedLayer = mobilenet.NamedLayer

// BuildOption customizes BuildBlock and BuildBackbone.
type BuildOption = mobilenet.BuildOption

// LayerSummary is one row of a model summary.
type LayerSummary = mobilenet.LayerSummary

// Summary lists layers with output shapes and parameter totals.
type Summary = mobilenet.Summary

// WithRand sets the random source for weight initialization.
func WithRand(rng *rand.Rand) BuildOption {
	return mobilenet.WithRand(rng)
}

// DefaultBackboneConfig returns alpha 1.0 on 224×224 RGB input with the
// head convolution and no pooling.
func DefaultBackboneConfig() BackboneConfig {
	return mobilenet.DefaultBackboneConfig()
}

// RoundChannels rounds target to the nearest multiple of divisor, at least
// minValue (divisor when 0), and never below 90% of target.
//
// Example:
//
//	mobilenet.RoundChannels(50, 8, 0) // 48
//	mobilenet.RoundChannels(10, 8, 8) // 16
func RoundChannels(target float64, divisor, minValue int) int {
	return mobilenet.RoundChannels(target, divisor, minValue)
}

// MakeDivisible is RoundChannels with divisor 8 and no explicit minimum.
func MakeDivisible(target float64) int {
	return mobilenet.MakeDivisible(target)
}

// CorrectPad returns ((top, bottom), (left, right)) zero padding that lets
// a stride-2 valid convolution with the given kernel halve the spatial
// dimensions. Unknown dimensions are treated as even.
func CorrectPad(kernel, spatial [2]int) [2][2]int {
	return mobilenet.CorrectPad(kernel, spatial)
}

// CorrectPadSquare is CorrectPad for a k×k kernel.
func CorrectPadSquare(k int, spatial [2]int) [2][2]int {
	return mobilenet.CorrectPadSquare(k, spatial)
}

// BuildBlock creates an inverted residual block reading inChannels
// channels. Layer names are registered in scope; a repeated BlockID in the
// same scope fails with ErrConfiguration.
func BuildBlock[B tensor.Backend](scope *nn.Scope, cfg BlockConfig, inChannels int, backend B, opts ...BuildOption) (*InvertedResidual[B], error) {
	return mobilenet.BuildBlock(scope, cfg, inChannels, backend, opts...)
}

// BuildBackbone creates a full MobileNetV2 backbone.
func BuildBackbone[B tensor.Backend](scope *nn.Scope, cfg BackboneConfig, backend B, opts ...BuildOption) (*Backbone[B], error) {
	return mobilenet.BuildBackbone(scope, cfg, backend, opts...)
}

// Summarize infers per-layer output shapes and parameter counts for input.
func Summarize[B tensor.Backend](m *Backbone[B], input tensor.Shape) Summary {
	return mobilenet.Summarize(m, input)
}

// WriteSummary prints s as an aligned table.
func WriteSummary(w io.Writer, s Summary) error {
	return mobilenet.WriteSummary(w, s)
}
