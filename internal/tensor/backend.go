package tensor

// Padding selects how a convolution treats the borders of its input.
type Padding int

// Padding modes, named after their Keras counterparts.
const (
	// PaddingValid applies no implicit padding; the output shrinks by kernel-1.
	PaddingValid Padding = iota
	// PaddingSame pads so that output = ceil(input / stride).
	PaddingSame
)

// String returns the Keras name of the padding mode.
func (p Padding) String() string {
	if p == PaddingSame {
		return "same"
	}
	return "valid"
}

// PoolMode selects the reduction used by global pooling.
type PoolMode int

// Global pooling reductions.
const (
	PoolAvg PoolMode = iota
	PoolMax
)

// String returns a human-readable name for the pooling mode.
func (m PoolMode) String() string {
	if m == PoolMax {
		return "max"
	}
	return "avg"
}

// Backend defines the numeric primitives the layer modules are built from.
// All feature maps are channels-last [N, H, W, C].
//
// Implementations panic with *ShapeError when handed incompatible shapes.
//
// Implementations:
//   - CPU: pure Go, parallel over output rows (internal/backend/cpu)
type Backend interface {
	// Add is element-wise addition of two tensors with identical shapes.
	Add(a, b *RawTensor) *RawTensor

	// Conv2D convolves input [N,H,W,Cin] with kernel [KH,KW,Cin,Cout].
	Conv2D(input, kernel *RawTensor, stride [2]int, padding Padding) *RawTensor

	// DepthwiseConv2D convolves each input channel with its own filter.
	// Kernel layout is [KH,KW,C,1]; the output keeps C channels.
	DepthwiseConv2D(input, kernel *RawTensor, stride [2]int, padding Padding) *RawTensor

	// BatchNorm normalizes over the channel axis with fixed statistics:
	// y = gamma * (x - mean) / sqrt(variance + epsilon) + beta.
	BatchNorm(x, gamma, beta, mean, variance *RawTensor, epsilon float32) *RawTensor

	// ReLU6 is the bounded activation min(max(x, 0), maxValue).
	ReLU6(x *RawTensor, maxValue float32) *RawTensor

	// ZeroPad2D pads the spatial axes with zeros: pad[0] = (top, bottom),
	// pad[1] = (left, right).
	ZeroPad2D(x *RawTensor, pad [2][2]int) *RawTensor

	// GlobalPool2D reduces the spatial axes, [N,H,W,C] -> [N,C].
	GlobalPool2D(x *RawTensor, mode PoolMode) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
