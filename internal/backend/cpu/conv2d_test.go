package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/mobilenet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConv2D_BasicForward tests a single-channel valid convolution.
func TestConv2D_BasicForward(t *testing.T) {
	backend := New()

	// 1 2 3
	// 4 5 6
	// 7 8 9
	input := rawFrom(t, tensor.Shape{1, 3, 3, 1}, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	// 1 0
	// 0 1
	kernel := rawFrom(t, tensor.Shape{2, 2, 1, 1}, 1, 0, 0, 1)

	output := backend.Conv2D(input, kernel, [2]int{1, 1}, tensor.PaddingValid)

	expectedShape := tensor.Shape{1, 2, 2, 1}
	if !output.Shape().Equal(expectedShape) {
		t.Fatalf("Expected shape %v, got %v", expectedShape, output.Shape())
	}

	// Diagonal sums: 1+5, 2+6, 4+8, 5+9
	expected := []float32{6, 8, 12, 14}
	outputData := output.AsFloat32()
	for i, exp := range expected {
		if outputData[i] != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, outputData[i])
		}
	}
}

// TestConv2D_SamePadding checks that "same" keeps the spatial size at stride 1.
func TestConv2D_SamePadding(t *testing.T) {
	backend := New()

	input := rawFrom(t, tensor.Shape{1, 3, 3, 1}, 1, 1, 1, 1, 1, 1, 1, 1, 1)
	kernel := rawFrom(t, tensor.Shape{3, 3, 1, 1}, 1, 1, 1, 1, 1, 1, 1, 1, 1)

	output := backend.Conv2D(input, kernel, [2]int{1, 1}, tensor.PaddingSame)

	require.Equal(t, tensor.Shape{1, 3, 3, 1}, output.Shape())
	// Each output counts the in-bounds neighbours.
	assert.Equal(t, []float32{
		4, 6, 4,
		6, 9, 6,
		4, 6, 4,
	}, output.AsFloat32())
}

// TestConv2D_SameStride2 checks TensorFlow's trailing-edge padding at stride 2.
func TestConv2D_SameStride2(t *testing.T) {
	backend := New()

	ones := make([]float32, 16)
	for i := range ones {
		ones[i] = 1
	}
	input := rawFrom(t, tensor.Shape{1, 4, 4, 1}, ones...)
	kernel := rawFrom(t, tensor.Shape{3, 3, 1, 1}, ones[:9]...)

	output := backend.Conv2D(input, kernel, [2]int{2, 2}, tensor.PaddingSame)

	require.Equal(t, tensor.Shape{1, 2, 2, 1}, output.Shape())
	// Padding is (0, 1) on both axes, so only the last window hangs off the edge.
	assert.Equal(t, []float32{9, 6, 6, 4}, output.AsFloat32())
}

// TestConv2D_Pointwise checks that a 1x1 convolution mixes channels per pixel.
func TestConv2D_Pointwise(t *testing.T) {
	backend := New()

	// Two pixels with channels (1, 2) and (3, 4).
	input := rawFrom(t, tensor.Shape{1, 1, 2, 2}, 1, 2, 3, 4)
	// Kernel [1,1,2,3]: row per input channel.
	kernel := rawFrom(t, tensor.Shape{1, 1, 2, 3},
		1, 0, 1,
		0, 1, 1,
	)

	output := backend.Conv2D(input, kernel, [2]int{1, 1}, tensor.PaddingSame)

	require.Equal(t, tensor.Shape{1, 1, 2, 3}, output.Shape())
	assert.Equal(t, []float32{1, 2, 3, 3, 4, 7}, output.AsFloat32())
}

// TestConv2D_MultiChannel checks accumulation over input channels.
func TestConv2D_MultiChannel(t *testing.T) {
	backend := New()

	// 2x2 input with 2 channels: ch0 = 1,2,3,4 and ch1 = 10,20,30,40.
	input := rawFrom(t, tensor.Shape{1, 2, 2, 2}, 1, 10, 2, 20, 3, 30, 4, 40)
	// 2x2 kernel summing ch0 and taking a tenth of ch1.
	kernel := rawFrom(t, tensor.Shape{2, 2, 2, 1}, 1, 0.1, 1, 0.1, 1, 0.1, 1, 0.1)

	output := backend.Conv2D(input, kernel, [2]int{1, 1}, tensor.PaddingValid)

	require.Equal(t, tensor.Shape{1, 1, 1, 1}, output.Shape())
	assert.InDelta(t, 20.0, output.AsFloat32()[0], 1e-5)
}

func TestConv2D_ChannelMismatch(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 2, 2, 2}, make([]float32, 8)...)
	kernel := rawFrom(t, tensor.Shape{1, 1, 3, 1}, 1, 1, 1)

	assertShapePanic(t, "conv2d", func() {
		backend.Conv2D(input, kernel, [2]int{1, 1}, tensor.PaddingValid)
	})
}

func TestConv2D_KernelLargerThanInput(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 2, 2, 1}, 1, 2, 3, 4)
	kernel := rawFrom(t, tensor.Shape{3, 3, 1, 1}, make([]float32, 9)...)

	assertShapePanic(t, "conv2d", func() {
		backend.Conv2D(input, kernel, [2]int{1, 1}, tensor.PaddingValid)
	})
}

func TestDepthwiseConv2D_PerChannel(t *testing.T) {
	backend := New()

	// ch0 = 1,2,3,4 and ch1 = 10 everywhere.
	input := rawFrom(t, tensor.Shape{1, 2, 2, 2}, 1, 10, 2, 10, 3, 10, 4, 10)
	// ch0 filter all ones, ch1 filter all halves.
	kernel := rawFrom(t, tensor.Shape{2, 2, 2, 1}, 1, 0.5, 1, 0.5, 1, 0.5, 1, 0.5)

	output := backend.DepthwiseConv2D(input, kernel, [2]int{1, 1}, tensor.PaddingValid)

	require.Equal(t, tensor.Shape{1, 1, 1, 2}, output.Shape())
	assert.Equal(t, []float32{10, 20}, output.AsFloat32())
}

func TestDepthwiseConv2D_SameAndValidShapes(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{2, 7, 6, 3}, make([]float32, 2*7*6*3)...)
	kernel := rawFrom(t, tensor.Shape{3, 3, 3, 1}, make([]float32, 27)...)

	tests := []struct {
		name    string
		stride  int
		padding tensor.Padding
		want    tensor.Shape
	}{
		{"same stride 1", 1, tensor.PaddingSame, tensor.Shape{2, 7, 6, 3}},
		{"same stride 2", 2, tensor.PaddingSame, tensor.Shape{2, 4, 3, 3}},
		{"valid stride 1", 1, tensor.PaddingValid, tensor.Shape{2, 5, 4, 3}},
		{"valid stride 2", 2, tensor.PaddingValid, tensor.Shape{2, 3, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := backend.DepthwiseConv2D(input, kernel, [2]int{tt.stride, tt.stride}, tt.padding)
			assert.Equal(t, tt.want, out.Shape())
		})
	}
}

func TestDepthwiseConv2D_BadKernel(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 3, 3, 2}, make([]float32, 18)...)
	kernel := rawFrom(t, tensor.Shape{3, 3, 2, 2}, make([]float32, 36)...)

	assertShapePanic(t, "depthwise_conv2d", func() {
		backend.DepthwiseConv2D(input, kernel, [2]int{1, 1}, tensor.PaddingSame)
	})
}

// TestConv2D_NonFiniteKernel checks that zero inputs still propagate NaN
// and Inf weights, including at implicit padding.
func TestConv2D_NonFiniteKernel(t *testing.T) {
	backend := New()
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	input := rawFrom(t, tensor.Shape{1, 1, 2, 1}, 0, 0)
	kernel := rawFrom(t, tensor.Shape{1, 1, 1, 2}, nan, inf)
	out := backend.Conv2D(input, kernel, [2]int{1, 1}, tensor.PaddingValid)
	for i, v := range out.AsFloat32() {
		assert.True(t, math.IsNaN(float64(v)), "output[%d] = %v, want NaN", i, v)
	}

	// Ones input, Inf in the corner tap that only ever sees padding at (0, 0).
	ones := rawFrom(t, tensor.Shape{1, 2, 2, 1}, 1, 1, 1, 1)
	k3 := rawFrom(t, tensor.Shape{3, 3, 1, 1}, inf, 0, 0, 0, 0, 0, 0, 0, 0)
	padded := backend.Conv2D(ones, k3, [2]int{1, 1}, tensor.PaddingSame)
	assert.True(t, math.IsNaN(float64(padded.AsFloat32()[0])))
}
