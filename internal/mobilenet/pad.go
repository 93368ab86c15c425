package mobilenet

import "github.com/born-ml/mobilenet/internal/tensor"

// CorrectPad returns the ((top, bottom), (left, right)) zero padding that
// lets a "valid" stride-2 convolution with the given kernel reproduce the
// output alignment of TensorFlow "same" padding.
//
// Even or unknown spatial sizes drop one row and column from the leading
// edge; odd sizes are padded symmetrically.
func CorrectPad(kernel [2]int, spatial [2]int) [2][2]int {
	adjust := [2]int{1, 1}
	if spatial[0] != tensor.UnknownDim && spatial[1] != tensor.UnknownDim {
		adjust = [2]int{1 - spatial[0]%2, 1 - spatial[1]%2}
	}
	correct := [2]int{kernel[0] / 2, kernel[1] / 2}
	return [2][2]int{
		{correct[0] - adjust[0], correct[0]},
		{correct[1] - adjust[1], correct[1]},
	}
}

// CorrectPadSquare is CorrectPad for a k×k kernel.
func CorrectPadSquare(k int, spatial [2]int) [2][2]int {
	return CorrectPad([2]int{k, k}, spatial)
}

// correctPadFunc adapts CorrectPad to nn.ZeroPad2D.
func correctPadFunc(k int) func(tensor.Shape) [2][2]int {
	return func(s tensor.Shape) [2][2]int {
		return CorrectPadSquare(k, s.Spatial())
	}
}
