package tensor

// SamePadding returns the (before, after) padding TensorFlow applies for
// "same" convolutions: the output size is ceil(in / stride) and any odd
// remainder goes to the trailing edge.
func SamePadding(in, kernel, stride int) (before, after int) {
	out := (in + stride - 1) / stride
	total := max((out-1)*stride+kernel-in, 0)
	return total / 2, total - total/2
}

// ConvOutputSize returns the output length of one spatial axis together with
// the implicit leading padding. Unknown inputs stay unknown.
func ConvOutputSize(in, kernel, stride int, padding Padding) (out, padBefore int) {
	if in == UnknownDim {
		return UnknownDim, 0
	}
	if padding == PaddingSame {
		before, _ := SamePadding(in, kernel, stride)
		return (in + stride - 1) / stride, before
	}
	return (in-kernel)/stride + 1, 0
}
