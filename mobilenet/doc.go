// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mobilenet builds MobileNetV2 feature-extraction backbones.
//
// # Overview
//
// A backbone is a stem convolution, 17 inverted residual blocks and an
// optional 1×1 head convolution. The width multiplier alpha scales every
// channel count, rounded to a multiple of 8 without losing more than 10%.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/mobilenet/backend/cpu"
//	    "github.com/born-ml/mobilenet/mobilenet"
//	    "github.com/born-ml/mobilenet/nn"
//	    "github.com/born-ml/mobilenet/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    cfg := mobilenet.DefaultBackboneConfig() // alpha 1.0, 224×224×3
//
//	    model, err := mobilenet.BuildBackbone(nn.NewScope(), cfg, backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    x := tensor.Zeros[float32](tensor.Shape{1, 224, 224, 3}, backend)
//	    features := model.Forward(x) // [1, 7, 7, 1280]
//	}
//
// # Single Blocks
//
// BuildBlock creates one inverted residual block. The block adds its input
// to the projection when the stride is 1 and the channel counts match:
//
//	block, err := mobilenet.BuildBlock(scope, mobilenet.BlockConfig{
//	    Expansion: 6, Stride: 1, Alpha: 1, Filters: 24, BlockID: 2,
//	}, 24, backend)
//
// # Feature Pyramid
//
// FeatureMaps returns the outputs at strides 2 to 32 keyed P1 to P5, for
// detection and segmentation heads.
//
// # Weights
//
// SaveWeights and LoadWeights store the state dict as SafeTensors with the
// configuration recorded in the file metadata.
package mobilenet
