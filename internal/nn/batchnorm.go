package nn

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/mobilenet/internal/tensor"
)

// Batch normalization defaults used by every MobileNetV2 layer.
const (
	BatchNormEpsilon  = 1e-3
	BatchNormMomentum = 0.999
)

// BatchNorm normalizes the channel axis of an NHWC tensor using moving
// statistics (inference mode).
//
// Formula: y = gamma * (x - moving_mean) / sqrt(moving_variance + epsilon) + beta
//
// gamma and beta are trainable. moving_mean and moving_variance are
// non-trainable state, updated only by Calibrate.
//
// Example:
//
//	bn := nn.NewBatchNorm("bn_Conv1", 32, nn.BatchNormEpsilon, nn.BatchNormMomentum, backend)
//	output := bn.Forward(input)
type BatchNorm[B tensor.Backend] struct {
	name     string
	channels int
	epsilon  float32
	momentum float32

	gamma          *Parameter[B]
	beta           *Parameter[B]
	movingMean     *Parameter[B]
	movingVariance *Parameter[B]

	backend B
}

// NewBatchNorm creates a batch normalization layer over channels.
// gamma and moving_variance start at one, beta and moving_mean at zero.
func NewBatchNorm[B tensor.Backend](name string, channels int, epsilon, momentum float32, backend B) *BatchNorm[B] {
	if channels <= 0 {
		panic(fmt.Sprintf("batch_norm: invalid channels %d", channels))
	}
	shape := tensor.Shape{channels}
	return &BatchNorm[B]{
		name:           name,
		channels:       channels,
		epsilon:        epsilon,
		momentum:       momentum,
		gamma:          NewParameter(name+"/gamma", Ones(shape, backend)),
		beta:           NewParameter(name+"/beta", Zeros(shape, backend)),
		movingMean:     NewNonTrainable(name+"/moving_mean", Zeros(shape, backend)),
		movingVariance: NewNonTrainable(name+"/moving_variance", Ones(shape, backend)),
		backend:        backend,
	}
}

// Forward normalizes input with the moving statistics.
func (bn *BatchNorm[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	requireChannels("batch_norm", require4D("batch_norm", input.Shape()), bn.channels)
	out := bn.backend.BatchNorm(input.Raw(),
		bn.gamma.Tensor().Raw(), bn.beta.Tensor().Raw(),
		bn.movingMean.Tensor().Raw(), bn.movingVariance.Tensor().Raw(),
		bn.epsilon)
	return tensor.New[float32, B](out, bn.backend)
}

// OutputShape returns input unchanged after validation.
func (bn *BatchNorm[B]) OutputShape(input tensor.Shape) tensor.Shape {
	s := require4D("batch_norm", input)
	requireChannels("batch_norm", s, bn.channels)
	return s.Clone()
}

// Calibrate folds the per-channel statistics of x into the moving averages:
//
//	moving = momentum * moving + (1 - momentum) * batch
//
// The batch variance is the unbiased sample variance over N*H*W values.
func (bn *BatchNorm[B]) Calibrate(x *tensor.Tensor[float32, B]) {
	s := requireChannels4D("batch_norm", x.Shape(), bn.channels)
	pixels := s[0] * s[1] * s[2]
	if pixels < 2 {
		panic(tensor.ShapeErrorf("batch_norm", "calibration needs at least 2 values per channel, got %d", pixels))
	}

	data := x.Data()
	column := make([]float64, pixels)
	mean := bn.movingMean.Tensor().Data()
	variance := bn.movingVariance.Tensor().Data()
	m := float64(bn.momentum)

	for c := 0; c < bn.channels; c++ {
		for p := range column {
			column[p] = float64(data[p*bn.channels+c])
		}
		mu, v := stat.MeanVariance(column, nil)
		mean[c] = float32(m*float64(mean[c]) + (1-m)*mu)
		variance[c] = float32(m*float64(variance[c]) + (1-m)*v)
	}
}

// Parameters returns gamma, beta, moving_mean and moving_variance.
func (bn *BatchNorm[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{bn.gamma, bn.beta, bn.movingMean, bn.movingVariance}
}

// Gamma returns the scale parameter.
func (bn *BatchNorm[B]) Gamma() *Parameter[B] { return bn.gamma }

// Beta returns the shift parameter.
func (bn *BatchNorm[B]) Beta() *Parameter[B] { return bn.beta }

// MovingMean returns the running mean.
func (bn *BatchNorm[B]) MovingMean() *Parameter[B] { return bn.movingMean }

// MovingVariance returns the running variance.
func (bn *BatchNorm[B]) MovingVariance() *Parameter[B] { return bn.movingVariance }

// Epsilon returns the variance epsilon.
func (bn *BatchNorm[B]) Epsilon() float32 { return bn.epsilon }

// Momentum returns the moving average momentum.
func (bn *BatchNorm[B]) Momentum() float32 { return bn.momentum }

// Name returns the layer name.
func (bn *BatchNorm[B]) Name() string { return bn.name }

// Kind returns "BatchNormalization".
func (bn *BatchNorm[B]) Kind() string { return "BatchNormalization" }

func requireChannels4D(op string, s tensor.Shape, want int) tensor.Shape {
	requireChannels(op, require4D(op, s), want)
	return s
}
