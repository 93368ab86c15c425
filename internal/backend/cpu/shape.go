package cpu

import "github.com/born-ml/mobilenet/internal/tensor"

// convGeometry resolves output size and leading padding for both axes.
func convGeometry(op string, h, w, kh, kw int, stride [2]int, padding tensor.Padding) (hOut, wOut, padTop, padLeft int) {
	if stride[0] <= 0 || stride[1] <= 0 {
		panic(tensor.ShapeErrorf(op, "invalid stride %v", stride))
	}
	hOut, padTop = tensor.ConvOutputSize(h, kh, stride[0], padding)
	wOut, padLeft = tensor.ConvOutputSize(w, kw, stride[1], padding)
	if hOut <= 0 || wOut <= 0 {
		panic(tensor.ShapeErrorf(op, "invalid output dimensions: out_h=%d, out_w=%d (input %dx%d, kernel %dx%d, %s)",
			hOut, wOut, h, w, kh, kw, padding))
	}
	return hOut, wOut, padTop, padLeft
}
