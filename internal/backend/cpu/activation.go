package cpu

import (
	"github.com/born-ml/mobilenet/internal/tensor"
)

// ReLU6 applies the bounded rectifier f(x) = min(max(0, x), maxValue).
func (cpu *CPUBackend) ReLU6(x *tensor.RawTensor, maxValue float32) *tensor.RawTensor {
	requireFloat32("relu6", x)

	result := cpu.newOutput("relu6", x.Shape())
	in := x.AsFloat32()
	out := result.AsFloat32()
	for i, v := range in {
		switch {
		case v < 0:
			out[i] = 0
		case v > maxValue:
			out[i] = maxValue
		default:
			out[i] = v
		}
	}
	return result
}
