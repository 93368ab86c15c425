// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/born-ml/mobilenet/backend/cpu"
	"github.com/born-ml/mobilenet/nn"
	"github.com/born-ml/mobilenet/tensor"
)

func newRNG() *rand.Rand { return rand.New(rand.NewSource(1)) }

// TestModuleInterface verifies that concrete types implement Module interface.
func TestModuleInterface(t *testing.T) {
	backend := cpu.New()
	rng := newRNG()

	tests := []struct {
		name   string
		module nn.Module[*cpu.Backend]
		params int
		want   tensor.Shape
	}{
		{
			name:   "Conv2D",
			module: nn.NewConv2D("conv", 3, 8, [2]int{3, 3}, [2]int{2, 2}, tensor.PaddingSame, rng, backend),
			params: 1,
			want:   tensor.Shape{2, 4, 4, 8},
		},
		{
			name:   "DepthwiseConv2D",
			module: nn.NewDepthwiseConv2D("dw", 3, [2]int{3, 3}, [2]int{1, 1}, tensor.PaddingValid, rng, backend),
			params: 1,
			want:   tensor.Shape{2, 6, 6, 3},
		},
		{
			name:   "BatchNorm",
			module: nn.NewBatchNorm("bn", 3, nn.BatchNormEpsilon, nn.BatchNormMomentum, backend),
			params: 4,
			want:   tensor.Shape{2, 8, 8, 3},
		},
		{
			name:   "ReLU6",
			module: nn.NewReLU6("relu", backend),
			want:   tensor.Shape{2, 8, 8, 3},
		},
		{
			name:   "ZeroPad2D",
			module: nn.NewFixedZeroPad2D("pad", [2][2]int{{0, 1}, {0, 1}}, backend),
			want:   tensor.Shape{2, 9, 9, 3},
		},
		{
			name:   "GlobalPool2D",
			module: nn.NewGlobalPool2D("pool", tensor.PoolAvg, backend),
			want:   tensor.Shape{2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tensor.Ones[float32](tensor.Shape{2, 8, 8, 3}, backend)
			output := tt.module.Forward(input)
			if !output.Shape().Equal(tt.want) {
				t.Errorf("Forward shape = %v, want %v", output.Shape(), tt.want)
			}
			if got := tt.module.OutputShape(input.Shape()); !got.Equal(tt.want) {
				t.Errorf("OutputShape = %v, want %v", got, tt.want)
			}
			if got := len(tt.module.Parameters()); got != tt.params {
				t.Errorf("Parameters() returned %d params, want %d", got, tt.params)
			}
		})
	}
}

// TestModuleComposition verifies modules can be composed.
func TestModuleComposition(t *testing.T) {
	backend := cpu.NewWithWorkers(2)
	rng := newRNG()

	model := nn.NewSequential[*cpu.Backend](
		nn.NewConv2D("conv", 3, 16, [2]int{3, 3}, [2]int{1, 1}, tensor.PaddingSame, rng, backend),
		nn.NewBatchNorm("bn", 16, nn.BatchNormEpsilon, nn.BatchNormMomentum, backend),
		nn.NewReLU6("relu", backend),
	)

	var _ nn.Module[*cpu.Backend] = model

	input := tensor.RandUniform[float32](tensor.Shape{2, 5, 5, 3}, -1, 1, rng, backend)
	output := model.Forward(input)
	if !output.Shape().Equal(tensor.Shape{2, 5, 5, 16}) {
		t.Errorf("Output shape = %v, want [2 5 5 16]", output.Shape())
	}
	for _, v := range output.Data() {
		if v < 0 || v > 6 {
			t.Fatalf("activation %v outside [0, 6]", v)
		}
	}

	trainable, nonTrainable := nn.CountParameters(model.Parameters())
	if trainable != 3*3*3*16+2*16 || nonTrainable != 2*16 {
		t.Errorf("CountParameters() = (%d, %d), want (464, 32)", trainable, nonTrainable)
	}
}

func TestTryForward(t *testing.T) {
	backend := cpu.New()
	conv := nn.NewConv2D("conv", 3, 4, [2]int{1, 1}, [2]int{1, 1}, tensor.PaddingValid, newRNG(), backend)

	_, err := nn.TryForward[*cpu.Backend](conv, tensor.Ones[float32](tensor.Shape{1, 2, 2, 5}, backend))
	var se *tensor.ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("TryForward error = %v, want *tensor.ShapeError", err)
	}
}

func TestScope(t *testing.T) {
	scope := nn.NewScope()
	if _, err := scope.Name("Conv1"); err != nil {
		t.Fatalf("Name failed: %v", err)
	}
	if _, err := scope.Name("Conv1"); !errors.Is(err, nn.ErrNameCollision) {
		t.Errorf("duplicate Name error = %v, want ErrNameCollision", err)
	}
	name, err := scope.In("ema").Name("Conv1")
	if err != nil || name != "ema/Conv1" {
		t.Errorf("child Name = %q, %v; want ema/Conv1", name, err)
	}
}

// TestNewParameter verifies parameter creation.
func TestNewParameter(t *testing.T) {
	backend := cpu.New()
	data := tensor.Zeros[float32](tensor.Shape{3, 3, 8, 1}, backend)

	p := nn.NewParameter("dw/depthwise_kernel", data)
	if p.Name() != "dw/depthwise_kernel" || p.Tensor() != data || !p.Trainable() {
		t.Errorf("unexpected parameter %q trainable=%v", p.Name(), p.Trainable())
	}
	if p.NumElements() != 72 {
		t.Errorf("NumElements() = %d, want 72", p.NumElements())
	}

	frozen := nn.NewNonTrainable("bn/moving_mean", tensor.Zeros[float32](tensor.Shape{8}, backend))
	if frozen.Trainable() {
		t.Error("NewNonTrainable parameter reports trainable")
	}

	state := nn.StateDict([]*nn.Parameter[*cpu.Backend]{p, frozen})
	if len(state) != 2 {
		t.Fatalf("StateDict() has %d entries, want 2", len(state))
	}
	delete(state, "bn/moving_mean")
	if err := nn.LoadStateDict([]*nn.Parameter[*cpu.Backend]{p, frozen}, state); err == nil {
		t.Error("LoadStateDict accepted a state dict missing bn/moving_mean")
	}
}
