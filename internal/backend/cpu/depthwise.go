package cpu

import (
	"github.com/born-ml/mobilenet/internal/tensor"
)

// DepthwiseConv2D convolves every input channel with its own K_h x K_w
// filter. Channels are never mixed.
//
// Input shape:  [N, H, W, C]
// Kernel shape: [K_h, K_w, C, 1]
// Output shape: [N, H_out, W_out, C]
func (cpu *CPUBackend) DepthwiseConv2D(input, kernel *tensor.RawTensor, stride [2]int, padding tensor.Padding) *tensor.RawTensor {
	N, H, W, C := require4D("depthwise_conv2d", input)
	kernelShape := kernel.Shape()
	if len(kernelShape) != 4 || kernelShape[3] != 1 {
		panic(tensor.ShapeErrorf("depthwise_conv2d", "kernel must be [K_h,K_w,C,1], got %v", kernelShape))
	}
	KH, KW := kernelShape[0], kernelShape[1]
	if kernelShape[2] != C {
		panic(tensor.ShapeErrorf("depthwise_conv2d", "input channels %d != kernel channels %d", C, kernelShape[2]))
	}
	requireFloat32("depthwise_conv2d", input, kernel)

	HOut, WOut, padTop, padLeft := convGeometry("depthwise_conv2d", H, W, KH, KW, stride, padding)
	output := cpu.newOutput("depthwise_conv2d", tensor.Shape{N, HOut, WOut, C})

	in := input.AsFloat32()
	k := kernel.AsFloat32()
	out := output.AsFloat32()

	cpu.forRows(N, HOut, func(n, oh int) {
		hStart := oh*stride[0] - padTop
		for ow := 0; ow < WOut; ow++ {
			wStart := ow*stride[1] - padLeft
			dst := out[((n*HOut+oh)*WOut+ow)*C:][:C]
			for kh := 0; kh < KH; kh++ {
				h := hStart + kh
				if h < 0 || h >= H {
					continue
				}
				for kw := 0; kw < KW; kw++ {
					w := wStart + kw
					if w < 0 || w >= W {
						continue
					}
					src := in[((n*H+h)*W+w)*C:][:C]
					filt := k[(kh*KW+kw)*C:][:C]
					for c := range dst {
						dst[c] += src[c] * filt[c]
					}
				}
			}
		}
	})

	return output
}
