package cpu

import (
	"math"

	"github.com/born-ml/mobilenet/internal/tensor"
)

// BatchNorm applies inference-mode batch normalization over the channel axis.
//
// Formula: y = gamma * (x - mean) / sqrt(variance + epsilon) + beta
//
// The per-channel affine transform is folded into a single scale and shift
// before the pass over x. Parameters must all have shape [C] where C is the
// last dimension of x.
func (cpu *CPUBackend) BatchNorm(x, gamma, beta, mean, variance *tensor.RawTensor, epsilon float32) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) == 0 {
		panic(tensor.ShapeErrorf("batch_norm", "input must have a channel axis"))
	}
	C := shape.Channels()
	names := [...]string{"gamma", "beta", "mean", "variance"}
	for i, p := range []*tensor.RawTensor{gamma, beta, mean, variance} {
		if !p.Shape().Equal(tensor.Shape{C}) {
			panic(tensor.ShapeErrorf("batch_norm", "%s must have shape [%d], got %v", names[i], C, p.Shape()))
		}
	}
	requireFloat32("batch_norm", x, gamma, beta, mean, variance)

	g, b, m, v := gamma.AsFloat32(), beta.AsFloat32(), mean.AsFloat32(), variance.AsFloat32()
	scale := make([]float32, C)
	shift := make([]float32, C)
	for c := 0; c < C; c++ {
		scale[c] = g[c] / float32(math.Sqrt(float64(v[c]+epsilon)))
		shift[c] = b[c] - m[c]*scale[c]
	}

	output := cpu.newOutput("batch_norm", shape)
	in := x.AsFloat32()
	out := output.AsFloat32()
	pixels := len(in) / C

	cpu.forRows(1, pixels, func(_, p int) {
		src := in[p*C:][:C]
		dst := out[p*C:][:C]
		for c := range dst {
			dst[c] = src[c]*scale[c] + shift[c]
		}
	})

	return output
}
