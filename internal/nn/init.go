package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/mobilenet/internal/tensor"
)

// Fans computes fan-in and fan-out for a kernel shape the way Keras does:
// for convolution kernels [K_h, K_w, in, out] both fans are multiplied by
// the receptive field size K_h*K_w.
func Fans(shape tensor.Shape) (fanIn, fanOut int) {
	switch len(shape) {
	case 0:
		return 1, 1
	case 1:
		return shape[0], shape[0]
	case 2:
		return shape[0], shape[1]
	default:
		receptive := 1
		for _, d := range shape[:len(shape)-2] {
			receptive *= d
		}
		return shape[len(shape)-2] * receptive, shape[len(shape)-1] * receptive
	}
}

// GlorotUniform (Xavier) initialization for kernels.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// rng makes initialization reproducible for a fixed seed.
func GlorotUniform[B tensor.Backend](shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	fanIn, fanOut := Fans(shape)
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return tensor.RandUniform[float32](shape, -bound, bound, rng, backend)
}

// Zeros creates a tensor filled with zeros.
//
// Used for beta and moving-mean initialization.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a tensor filled with ones.
//
// Used for gamma and moving-variance initialization.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}
