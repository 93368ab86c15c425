// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the tensor types of the MobileNetV2 backbone.
//
// # Overview
//
// Feature maps are channels-last [N, H, W, C] float32 tensors. This package
// re-exports:
//   - Tensor[T, B]: generic typed tensor bound to a compute backend
//   - RawTensor: untyped byte buffer with shape and dtype
//   - Backend: the numeric primitives a compute backend must provide
//   - Shape, DataType, Device, Padding, PoolMode
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/mobilenet/backend/cpu"
//	    "github.com/born-ml/mobilenet/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{1, 224, 224, 3}, backend)
//	    y := x.Add(x)
//	}
//
// # Dynamic Shapes
//
// Shape inference accepts UnknownDim (-1) for dimensions that are only
// known at run time, such as the batch size:
//
//	s := tensor.Shape{tensor.UnknownDim, 224, 224, 3}
//	s.IsFullyDefined() // false
//
// # Errors
//
// Backends panic with *ShapeError on incompatible shapes. Use
// nn.TryForward to turn those panics into returned errors.
package tensor
