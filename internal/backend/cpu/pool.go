package cpu

import (
	"github.com/born-ml/mobilenet/internal/tensor"
)

// GlobalPool2D reduces the spatial axes of an NHWC tensor.
//
// Input shape:  [N, H, W, C]
// Output shape: [N, C]
func (cpu *CPUBackend) GlobalPool2D(x *tensor.RawTensor, mode tensor.PoolMode) *tensor.RawTensor {
	N, H, W, C := require4D("global_pool2d", x)
	if H*W == 0 {
		panic(tensor.ShapeErrorf("global_pool2d", "empty spatial extent %dx%d", H, W))
	}
	requireFloat32("global_pool2d", x)

	output := cpu.newOutput("global_pool2d", tensor.Shape{N, C})
	in := x.AsFloat32()
	out := output.AsFloat32()
	pixels := H * W

	for n := 0; n < N; n++ {
		dst := out[n*C:][:C]
		base := n * pixels * C
		copy(dst, in[base:base+C])
		for p := 1; p < pixels; p++ {
			src := in[base+p*C:][:C]
			for c := range dst {
				if mode == tensor.PoolMax {
					dst[c] = max(dst[c], src[c])
				} else {
					dst[c] += src[c]
				}
			}
		}
		if mode == tensor.PoolAvg {
			inv := 1 / float32(pixels)
			for c := range dst {
				dst[c] *= inv
			}
		}
	}

	return output
}
