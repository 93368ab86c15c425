package cpu

import (
	"github.com/born-ml/mobilenet/internal/tensor"
)

// Conv2D performs 2D convolution using a row-wise im2col algorithm.
//
// Input shape:  [N, H, W, C_in]
// Kernel shape: [K_h, K_w, C_in, C_out]
// Output shape: [N, H_out, W_out, C_out]
//
// Algorithm: Im2col
//  1. For each output position gather the input patch into a column of
//     length K_h*K_w*C_in (zeros outside the input)
//  2. The kernel is already a [K_h*K_w*C_in, C_out] matrix in row-major order
//  3. Multiply column by kernel matrix into the output channels
//
// Output rows are independent, so they are distributed across workers with
// one column buffer per row.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride [2]int, padding tensor.Padding) *tensor.RawTensor {
	N, H, W, CIn := require4D("conv2d", input)
	kernelShape := kernel.Shape()
	if len(kernelShape) != 4 {
		panic(tensor.ShapeErrorf("conv2d", "kernel must be 4D [K_h,K_w,C_in,C_out], got %dD", len(kernelShape)))
	}
	KH, KW, CInK, COut := kernelShape[0], kernelShape[1], kernelShape[2], kernelShape[3]
	if CIn != CInK {
		panic(tensor.ShapeErrorf("conv2d", "input channels %d != kernel channels %d", CIn, CInK))
	}
	requireFloat32("conv2d", input, kernel)

	HOut, WOut, padTop, padLeft := convGeometry("conv2d", H, W, KH, KW, stride, padding)
	output := cpu.newOutput("conv2d", tensor.Shape{N, HOut, WOut, COut})

	in := input.AsFloat32()
	k := kernel.AsFloat32()
	out := output.AsFloat32()
	colLen := KH * KW * CIn

	// 1x1 stride-1 convolutions are a plain matmul over pixels.
	pointwise := KH == 1 && KW == 1 && stride == [2]int{1, 1}

	cpu.forRows(N, HOut, func(n, oh int) {
		col := make([]float32, colLen)
		for ow := 0; ow < WOut; ow++ {
			dst := out[((n*HOut+oh)*WOut+ow)*COut:][:COut]
			if pointwise {
				copy(col, in[((n*H+oh)*W+ow)*CIn:][:CIn])
			} else {
				im2colRow(col, in, n, H, W, CIn, KH, KW, oh*stride[0]-padTop, ow*stride[1]-padLeft)
			}
			for i, v := range col {
				row := k[i*COut:][:COut]
				for oc, kv := range row {
					dst[oc] += v * kv
				}
			}
		}
	})

	return output
}

// im2colRow gathers the K_h x K_w x C patch whose top-left input corner is
// (hStart, wStart) into col. Positions outside the input read as zero.
func im2colRow(col, in []float32, n, H, W, C, KH, KW, hStart, wStart int) {
	idx := 0
	for kh := 0; kh < KH; kh++ {
		h := hStart + kh
		for kw := 0; kw < KW; kw++ {
			w := wStart + kw
			if h >= 0 && h < H && w >= 0 && w < W {
				copy(col[idx:idx+C], in[((n*H+h)*W+w)*C:])
			} else {
				clear(col[idx : idx+C])
			}
			idx += C
		}
	}
}
