// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Im2col algorithm for regular convolutions
//   - Direct depthwise convolution, one filter per channel
//   - Inference-mode batch normalization
//   - Output rows split across worker goroutines
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/mobilenet/backend/cpu"
//	    "github.com/born-ml/mobilenet/mobilenet"
//	    "github.com/born-ml/mobilenet/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    model, err := mobilenet.BuildBackbone(nn.NewScope(), mobilenet.DefaultBackboneConfig(), backend)
//	}
//
// # Thread Safety
//
// The CPU backend holds no mutable state and is safe for concurrent use.
// Each call joins its worker goroutines before returning.
package cpu
