// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/born-ml/mobilenet/backend/cpu"
	"github.com/born-ml/mobilenet/tensor"
)

// TestBackendInterface verifies that the CPU backend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = cpu.New()
}

// TestRawTensorAPI verifies RawTensor type alias exposes expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		t.Errorf("DType() = %v, want Float32", raw.DType())
	}
	if raw.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", raw.Device())
	}
	if n := raw.NumElements(); n != 6 {
		t.Errorf("NumElements() = %d, want 6", n)
	}
	if got, want := raw.ByteSize(), 6*4; got != want {
		t.Errorf("ByteSize() = %d, want %d", got, want)
	}

	raw.AsFloat32()[0] = 1
	clone := raw.Clone()
	clone.AsFloat32()[0] = 2
	if raw.AsFloat32()[0] != 1 {
		t.Error("Clone() shares data with the original")
	}
}

func TestNewRawFromBytes(t *testing.T) {
	if _, err := tensor.NewRawFromBytes(tensor.Shape{2}, tensor.Float32, tensor.CPU, make([]byte, 8)); err != nil {
		t.Fatalf("NewRawFromBytes failed: %v", err)
	}
	if _, err := tensor.NewRawFromBytes(tensor.Shape{2}, tensor.Float32, tensor.CPU, make([]byte, 7)); err == nil {
		t.Error("expected error for short buffer")
	}
}

func TestCreation(t *testing.T) {
	backend := cpu.New()

	x := tensor.Full[float32](tensor.Shape{1, 2, 2, 3}, 1.5, backend)
	y := x.Add(tensor.Ones[float32](tensor.Shape{1, 2, 2, 3}, backend))
	for i, v := range y.Data() {
		if v != 2.5 {
			t.Fatalf("Data()[%d] = %v, want 2.5", i, v)
		}
	}

	z, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if got := z.At(0, 0, 1, 0); got != 3 {
		t.Errorf("At(0,0,1,0) = %v, want 3", got)
	}

	if _, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}, backend); err == nil {
		t.Error("expected error for mismatched length")
	}
}

func TestShapeHelpers(t *testing.T) {
	s := tensor.Shape{tensor.UnknownDim, 224, 160, 3}
	if s.IsFullyDefined() {
		t.Error("IsFullyDefined() = true for a shape with an unknown batch")
	}
	if s.Channels() != 3 {
		t.Errorf("Channels() = %d, want 3", s.Channels())
	}
	if s.Spatial() != [2]int{224, 160} {
		t.Errorf("Spatial() = %v, want [224 160]", s.Spatial())
	}
	if tensor.PaddingSame.String() != "same" || tensor.PaddingValid.String() != "valid" {
		t.Error("unexpected padding names")
	}
}
