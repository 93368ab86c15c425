// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers MobileNetV2 is assembled from.
//
// # Overview
//
// This package contains:
//   - Layers: Conv2D, DepthwiseConv2D, BatchNorm, ZeroPad2D, GlobalPool2D
//   - Activations: ReLU6
//   - Merge: Add
//   - Utilities: Sequential, Module / Layer interfaces, Parameter, Scope
//   - State: StateDict, LoadStateDict
//
// Feature maps are channels-last [N, H, W, C].
//
// # Naming
//
// Every layer carries a unique name. A Scope hands out names and rejects
// duplicates, so two models built in one Scope never share weights by
// accident:
//
//	scope := nn.NewScope()
//	name, err := scope.Name("Conv1")  // "Conv1"
//	_, err = scope.Name("Conv1")      // wraps nn.ErrNameCollision
//	ema := scope.In("ema")            // names become "ema/..."
//
// # Basic Usage
//
//	backend := cpu.New()
//	rng := rand.New(rand.NewSource(0))
//
//	model := nn.NewSequential[*cpu.Backend](
//	    nn.NewConv2D("conv", 3, 16, [2]int{3, 3}, [2]int{1, 1}, tensor.PaddingSame, rng, backend),
//	    nn.NewBatchNorm("bn", 16, nn.BatchNormEpsilon, nn.BatchNormMomentum, backend),
//	    nn.NewReLU6("relu", backend),
//	)
//	out := model.Forward(input)
//
// # Parameter Management
//
// Access model parameters for export:
//
//	for _, p := range model.Parameters() {
//	    fmt.Println(p.Name(), p.Tensor().Shape(), p.Trainable())
//	}
package nn
