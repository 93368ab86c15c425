package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/mobilenet/internal/backend/cpu"
	"github.com/born-ml/mobilenet/internal/tensor"
)

// TestConv2D_Creation tests Conv2D layer creation.
func TestConv2D_Creation(t *testing.T) {
	backend := cpu.New()
	conv := NewConv2D("Conv1", 3, 32, [2]int{3, 3}, [2]int{2, 2}, tensor.PaddingValid, rand.New(rand.NewSource(1)), backend)

	assert.Equal(t, "Conv1", conv.Name())
	assert.Equal(t, "Conv2D", conv.Kind())
	assert.Equal(t, 3, conv.InChannels())
	assert.Equal(t, 32, conv.OutChannels())
	assert.Equal(t, [2]int{2, 2}, conv.Stride())
	assert.Equal(t, tensor.PaddingValid, conv.Padding())

	params := conv.Parameters()
	require.Len(t, params, 1)
	assert.Equal(t, "Conv1/kernel", params[0].Name())
	assert.True(t, params[0].Trainable())
	assert.Equal(t, tensor.Shape{3, 3, 3, 32}, params[0].Tensor().Shape())

	// Glorot bound for fan_in=27, fan_out=288.
	bound := float32(0.1381)
	for _, v := range params[0].Tensor().Data() {
		if v < -bound || v > bound {
			t.Fatalf("kernel value %v outside Glorot bound", v)
		}
	}

	assert.Contains(t, conv.String(), "padding=valid")
}

func TestConv2D_InvalidConfig(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))

	assert.Panics(t, func() {
		NewConv2D("c", 0, 4, [2]int{1, 1}, [2]int{1, 1}, tensor.PaddingValid, rng, backend)
	})
	assert.Panics(t, func() {
		NewConv2D("c", 4, 4, [2]int{0, 1}, [2]int{1, 1}, tensor.PaddingValid, rng, backend)
	})
	assert.Panics(t, func() {
		NewConv2D("c", 4, 4, [2]int{1, 1}, [2]int{0, 1}, tensor.PaddingValid, rng, backend)
	})
}

func TestConv2D_Forward(t *testing.T) {
	backend := cpu.New()
	conv := NewConv2D("c", 1, 1, [2]int{2, 2}, [2]int{1, 1}, tensor.PaddingValid, rand.New(rand.NewSource(1)), backend)
	copy(conv.Kernel().Tensor().Data(), []float32{1, 0, 0, 1})

	x, err := tensor.FromSlice([]float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, tensor.Shape{1, 3, 3, 1}, backend)
	require.NoError(t, err)

	out := conv.Forward(x)
	require.Equal(t, tensor.Shape{1, 2, 2, 1}, out.Shape())
	assert.Equal(t, []float32{6, 8, 12, 14}, out.Data())
}

func TestConv2D_OutputShape(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name    string
		stride  int
		padding tensor.Padding
		input   tensor.Shape
		want    tensor.Shape
	}{
		{"valid stride 2", 2, tensor.PaddingValid, tensor.Shape{1, 225, 225, 3}, tensor.Shape{1, 112, 112, 8}},
		{"same stride 1", 1, tensor.PaddingSame, tensor.Shape{1, 7, 7, 3}, tensor.Shape{1, 7, 7, 8}},
		{"same stride 2 odd", 2, tensor.PaddingSame, tensor.Shape{1, 7, 7, 3}, tensor.Shape{1, 4, 4, 8}},
		{"unknown spatial", 2, tensor.PaddingValid, tensor.Shape{tensor.UnknownDim, tensor.UnknownDim, 9, 3}, tensor.Shape{tensor.UnknownDim, tensor.UnknownDim, 4, 8}},
		{"unknown channels", 1, tensor.PaddingSame, tensor.Shape{2, 5, 5, tensor.UnknownDim}, tensor.Shape{2, 5, 5, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := NewConv2D("c", 3, 8, [2]int{3, 3}, [2]int{tt.stride, tt.stride}, tt.padding, rng, backend)
			assert.Equal(t, tt.want, conv.OutputShape(tt.input))
		})
	}
}

func TestConv2D_OutputShapeErrors(t *testing.T) {
	backend := cpu.New()
	conv := NewConv2D("c", 3, 8, [2]int{1, 1}, [2]int{1, 1}, tensor.PaddingValid, rand.New(rand.NewSource(1)), backend)

	assert.PanicsWithValue(t,
		tensor.ShapeErrorf("conv2d", "input channels %d != expected %d", 4, 3),
		func() { conv.OutputShape(tensor.Shape{1, 8, 8, 4}) })

	assert.Panics(t, func() { conv.OutputShape(tensor.Shape{8, 8, 3}) })
}

func TestDepthwiseConv2D(t *testing.T) {
	backend := cpu.New()
	dw := NewDepthwiseConv2D("block_1_depthwise", 2, [2]int{3, 3}, [2]int{1, 1}, tensor.PaddingSame, rand.New(rand.NewSource(1)), backend)

	assert.Equal(t, "DepthwiseConv2D", dw.Kind())
	params := dw.Parameters()
	require.Len(t, params, 1)
	assert.Equal(t, "block_1_depthwise/depthwise_kernel", params[0].Name())
	assert.Equal(t, tensor.Shape{3, 3, 2, 1}, params[0].Tensor().Shape())

	// Identity kernel on channel 0, doubling kernel on channel 1.
	kernel := dw.Kernel().Tensor()
	for i := range kernel.Data() {
		kernel.Data()[i] = 0
	}
	kernel.Set(1, 1, 1, 0, 0)
	kernel.Set(2, 1, 1, 1, 0)

	x := tensor.Zeros[float32](tensor.Shape{1, 2, 2, 2}, backend)
	for i := range x.Data() {
		x.Data()[i] = float32(i)
	}

	out := dw.Forward(x)
	require.Equal(t, tensor.Shape{1, 2, 2, 2}, out.Shape())
	assert.Equal(t, []float32{0, 2, 2, 6, 4, 10, 6, 14}, out.Data())

	assert.Equal(t, tensor.Shape{1, tensor.UnknownDim, 3, 2},
		dw.OutputShape(tensor.Shape{1, tensor.UnknownDim, 3, 2}))
	assert.Panics(t, func() { dw.OutputShape(tensor.Shape{1, 3, 3, 4}) })
}
