package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/mobilenet/internal/backend/cpu"
	"github.com/born-ml/mobilenet/internal/tensor"
)

func TestBatchNorm_Creation(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm("bn_Conv1", 4, BatchNormEpsilon, BatchNormMomentum, backend)

	assert.Equal(t, "BatchNormalization", bn.Kind())
	assert.InDelta(t, 1e-3, bn.Epsilon(), 1e-9)
	assert.InDelta(t, 0.999, bn.Momentum(), 1e-7)

	names := make([]string, 0, 4)
	for _, p := range bn.Parameters() {
		names = append(names, p.Name())
		assert.Equal(t, tensor.Shape{4}, p.Tensor().Shape())
	}
	assert.Equal(t, []string{
		"bn_Conv1/gamma", "bn_Conv1/beta", "bn_Conv1/moving_mean", "bn_Conv1/moving_variance",
	}, names)

	assert.True(t, bn.Gamma().Trainable())
	assert.True(t, bn.Beta().Trainable())
	assert.False(t, bn.MovingMean().Trainable())
	assert.False(t, bn.MovingVariance().Trainable())

	assert.Equal(t, []float32{1, 1, 1, 1}, bn.Gamma().Tensor().Data())
	assert.Equal(t, []float32{0, 0, 0, 0}, bn.MovingMean().Tensor().Data())
}

func TestBatchNorm_Forward(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm("bn", 2, 0, BatchNormMomentum, backend)
	copy(bn.MovingMean().Tensor().Data(), []float32{1, -1})
	copy(bn.MovingVariance().Tensor().Data(), []float32{4, 1})
	copy(bn.Gamma().Tensor().Data(), []float32{2, 1})
	copy(bn.Beta().Tensor().Data(), []float32{0, 0.5})

	x, err := tensor.FromSlice([]float32{3, 1, 5, -1}, tensor.Shape{1, 1, 2, 2}, backend)
	require.NoError(t, err)

	out := bn.Forward(x)
	got := out.Data()
	// ch0: 2*(3-1)/2 = 2, 2*(5-1)/2 = 4; ch1: (1+1)+0.5 = 2.5, (-1+1)+0.5 = 0.5
	assert.InDeltaSlice(t, []float32{2, 2.5, 4, 0.5}, got, 1e-6)

	assert.Panics(t, func() { bn.Forward(tensor.Zeros[float32](tensor.Shape{1, 1, 1, 3}, backend)) })
}

func TestBatchNorm_Calibrate(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm("bn", 2, BatchNormEpsilon, 0.5, backend)

	// ch0 values 1,2,3,4 (mean 2.5, unbiased variance 5/3); ch1 constant 7.
	x, err := tensor.FromSlice([]float32{1, 7, 2, 7, 3, 7, 4, 7}, tensor.Shape{1, 2, 2, 2}, backend)
	require.NoError(t, err)

	bn.Calibrate(x)

	mean := bn.MovingMean().Tensor().Data()
	variance := bn.MovingVariance().Tensor().Data()
	assert.InDelta(t, 0.5*0+0.5*2.5, mean[0], 1e-6)
	assert.InDelta(t, 0.5*0+0.5*7, mean[1], 1e-6)
	assert.InDelta(t, 0.5*1+0.5*(5.0/3.0), variance[0], 1e-6)
	assert.InDelta(t, 0.5*1+0.5*0, variance[1], 1e-6)

	// Trainable parameters are untouched.
	assert.Equal(t, []float32{1, 1}, bn.Gamma().Tensor().Data())
	assert.Equal(t, []float32{0, 0}, bn.Beta().Tensor().Data())
}

func TestBatchNorm_CalibrateMovesTowardBatch(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm("bn", 3, BatchNormEpsilon, BatchNormMomentum, backend)
	rng := rand.New(rand.NewSource(7))
	x := tensor.RandNormal[float32](tensor.Shape{4, 8, 8, 3}, 5, 2, rng, backend)

	for i := 0; i < 5000; i++ {
		bn.Calibrate(x)
	}
	for _, m := range bn.MovingMean().Tensor().Data() {
		assert.InDelta(t, 5, m, 0.5)
	}
	for _, v := range bn.MovingVariance().Tensor().Data() {
		assert.InDelta(t, 4, v, 1)
	}
}

func TestBatchNorm_CalibrateTooSmall(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm("bn", 1, BatchNormEpsilon, BatchNormMomentum, backend)
	assert.Panics(t, func() { bn.Calibrate(tensor.Zeros[float32](tensor.Shape{1, 1, 1, 1}, backend)) })
}
