package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/mobilenet/internal/backend/cpu"
	"github.com/born-ml/mobilenet/internal/tensor"
)

func TestReLU6(t *testing.T) {
	backend := cpu.New()
	relu := NewReLU6("out_relu", backend)

	x, err := tensor.FromSlice([]float32{-1, 0, 3, 6, 7}, tensor.Shape{1, 1, 1, 5}, backend)
	require.NoError(t, err)

	out := relu.Forward(x)
	assert.Equal(t, []float32{0, 0, 3, 6, 6}, out.Data())
	assert.Equal(t, "ReLU", relu.Kind())
	assert.Equal(t, float32(6), relu.MaxValue())
	assert.Nil(t, relu.Parameters())

	shape := tensor.Shape{tensor.UnknownDim, 7, 7, 1280}
	assert.Equal(t, shape, relu.OutputShape(shape))
}

func TestAdd(t *testing.T) {
	backend := cpu.New()
	add := NewAdd("block_2_add", backend)

	a := tensor.Full[float32](tensor.Shape{1, 2, 2, 1}, 1, backend)
	b := tensor.Full[float32](tensor.Shape{1, 2, 2, 1}, 2, backend)
	assert.Equal(t, []float32{3, 3, 3, 3}, add.Apply(a, b).Data())

	u := tensor.UnknownDim
	assert.Equal(t, tensor.Shape{1, 4, 4, 8}, add.OutputShape(tensor.Shape{u, 4, 4, 8}, tensor.Shape{1, 4, 4, 8}))
	assert.Equal(t, tensor.Shape{u, 4, 4, 8}, add.OutputShape(tensor.Shape{u, 4, 4, 8}, tensor.Shape{u, 4, 4, 8}))
	assert.Panics(t, func() { add.OutputShape(tensor.Shape{1, 4, 4, 8}, tensor.Shape{1, 4, 4, 16}) })
	assert.Panics(t, func() { add.OutputShape(tensor.Shape{1, 4, 4, 8}, tensor.Shape{4, 4, 8}) })
}

func TestZeroPad2D(t *testing.T) {
	backend := cpu.New()

	// Pads only the trailing edge of even axes.
	pad := NewZeroPad2D("pad", func(s tensor.Shape) [2][2]int {
		var p [2][2]int
		for axis := 0; axis < 2; axis++ {
			if d := s[axis+1]; d != tensor.UnknownDim && d%2 == 0 {
				p[axis] = [2]int{0, 1}
			}
		}
		return p
	}, backend)

	assert.Equal(t, tensor.Shape{1, 5, 5, 3}, pad.OutputShape(tensor.Shape{1, 4, 5, 3}))
	assert.Equal(t, [2][2]int{{0, 1}, {0, 0}}, pad.Padding(tensor.Shape{1, 4, 5, 3}))
	assert.Equal(t, tensor.Shape{1, tensor.UnknownDim, 7, 3},
		pad.OutputShape(tensor.Shape{1, tensor.UnknownDim, 6, 3}))

	x := tensor.Ones[float32](tensor.Shape{1, 2, 1, 1}, backend)
	out := pad.Forward(x)
	require.Equal(t, tensor.Shape{1, 3, 1, 1}, out.Shape())
	assert.Equal(t, []float32{1, 1, 0}, out.Data())

	fixed := NewFixedZeroPad2D("fixed", [2][2]int{{1, 1}, {2, 2}}, backend)
	assert.Equal(t, tensor.Shape{2, 5, 7, 1}, fixed.OutputShape(tensor.Shape{2, 3, 3, 1}))
	assert.Equal(t, "ZeroPadding2D", fixed.Kind())
}

func TestGlobalPool2D(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 10, 3, 20}, tensor.Shape{1, 1, 2, 2}, backend)
	require.NoError(t, err)

	avg := NewGlobalPool2D("avg_pool", tensor.PoolAvg, backend)
	assert.Equal(t, []float32{2, 15}, avg.Forward(x).Data())
	assert.Equal(t, "GlobalAveragePooling2D", avg.Kind())

	maxPool := NewGlobalPool2D("max_pool", tensor.PoolMax, backend)
	assert.Equal(t, []float32{3, 20}, maxPool.Forward(x).Data())
	assert.Equal(t, "GlobalMaxPooling2D", maxPool.Kind())

	assert.Equal(t, tensor.Shape{tensor.UnknownDim, 1280},
		avg.OutputShape(tensor.Shape{tensor.UnknownDim, tensor.UnknownDim, tensor.UnknownDim, 1280}))
}
