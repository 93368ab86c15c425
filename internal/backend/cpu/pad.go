package cpu

import (
	"github.com/born-ml/mobilenet/internal/tensor"
)

// ZeroPad2D surrounds the spatial axes of an NHWC tensor with zeros.
//
// pad[0] holds (top, bottom) rows and pad[1] holds (left, right) columns.
// Output shape: [N, H+top+bottom, W+left+right, C].
func (cpu *CPUBackend) ZeroPad2D(x *tensor.RawTensor, pad [2][2]int) *tensor.RawTensor {
	N, H, W, C := require4D("zero_pad2d", x)
	for _, p := range pad {
		if p[0] < 0 || p[1] < 0 {
			panic(tensor.ShapeErrorf("zero_pad2d", "negative padding %v", pad))
		}
	}
	requireFloat32("zero_pad2d", x)

	top, left := pad[0][0], pad[1][0]
	HOut := H + pad[0][0] + pad[0][1]
	WOut := W + pad[1][0] + pad[1][1]
	output := cpu.newOutput("zero_pad2d", tensor.Shape{N, HOut, WOut, C})

	in := x.AsFloat32()
	out := output.AsFloat32()
	rowLen := W * C

	cpu.forRows(N, H, func(n, h int) {
		src := in[(n*H+h)*rowLen:][:rowLen]
		dst := out[((n*HOut+h+top)*WOut+left)*C:]
		copy(dst, src)
	})

	return output
}
