package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/mobilenet/internal/tensor"
)

// Conv2D is a 2D convolutional layer without bias.
//
// Batch normalization always follows, so no bias is allocated.
//
// Input shape:  [batch, height, width, in_channels]
// Kernel shape: [kernel_h, kernel_w, in_channels, out_channels]
// Output shape: [batch, out_h, out_w, out_channels]
//
// Example:
//
//	conv := nn.NewConv2D("Conv1", 3, 32, [2]int{3, 3}, [2]int{2, 2}, tensor.PaddingValid, rng, backend)
//	output := conv.Forward(input) // [N, 111, 111, 32] for a padded 225x225 input
type Conv2D[B tensor.Backend] struct {
	name        string
	inChannels  int
	outChannels int
	kernelSize  [2]int
	stride      [2]int
	padding     tensor.Padding

	kernel *Parameter[B]

	backend B
}

// NewConv2D creates a new 2D convolutional layer with Glorot uniform
// initialization.
func NewConv2D[B tensor.Backend](
	name string,
	inChannels, outChannels int,
	kernelSize, stride [2]int,
	padding tensor.Padding,
	rng *rand.Rand,
	backend B,
) *Conv2D[B] {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelSize[0] <= 0 || kernelSize[1] <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size %v", kernelSize))
	}
	if stride[0] <= 0 || stride[1] <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %v", stride))
	}

	shape := tensor.Shape{kernelSize[0], kernelSize[1], inChannels, outChannels}
	return &Conv2D[B]{
		name:        name,
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  kernelSize,
		stride:      stride,
		padding:     padding,
		kernel:      NewParameter(name+"/kernel", GlorotUniform(shape, rng, backend)),
		backend:     backend,
	}
}

// Forward performs the convolution.
func (c *Conv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	requireChannels("conv2d", require4D("conv2d", input.Shape()), c.inChannels)
	out := c.backend.Conv2D(input.Raw(), c.kernel.Tensor().Raw(), c.stride, c.padding)
	return tensor.New[float32, B](out, c.backend)
}

// OutputShape infers [N, out_h, out_w, out_channels].
func (c *Conv2D[B]) OutputShape(input tensor.Shape) tensor.Shape {
	s := require4D("conv2d", input)
	requireChannels("conv2d", s, c.inChannels)
	h, _ := tensor.ConvOutputSize(s[1], c.kernelSize[0], c.stride[0], c.padding)
	w, _ := tensor.ConvOutputSize(s[2], c.kernelSize[1], c.stride[1], c.padding)
	return tensor.Shape{s[0], h, w, c.outChannels}
}

// Parameters returns the kernel.
func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{c.kernel}
}

// Kernel returns the kernel parameter.
func (c *Conv2D[B]) Kernel() *Parameter[B] {
	return c.kernel
}

// Name returns the layer name.
func (c *Conv2D[B]) Name() string { return c.name }

// Kind returns "Conv2D".
func (c *Conv2D[B]) Kind() string { return "Conv2D" }

// InChannels returns the number of input channels.
func (c *Conv2D[B]) InChannels() int { return c.inChannels }

// OutChannels returns the number of output channels.
func (c *Conv2D[B]) OutChannels() int { return c.outChannels }

// Stride returns the stride.
func (c *Conv2D[B]) Stride() [2]int { return c.stride }

// Padding returns the padding mode.
func (c *Conv2D[B]) Padding() tensor.Padding { return c.padding }

// String returns a string representation of the layer.
func (c *Conv2D[B]) String() string {
	return fmt.Sprintf("Conv2D(%s, in_channels=%d, out_channels=%d, kernel_size=(%d, %d), stride=(%d, %d), padding=%s)",
		c.name, c.inChannels, c.outChannels,
		c.kernelSize[0], c.kernelSize[1],
		c.stride[0], c.stride[1], c.padding)
}

// DepthwiseConv2D convolves each input channel with its own filter
// (depth multiplier 1). It never mixes channels, so in and out channel
// counts are equal.
//
// Kernel shape: [kernel_h, kernel_w, channels, 1]
type DepthwiseConv2D[B tensor.Backend] struct {
	name       string
	channels   int
	kernelSize [2]int
	stride     [2]int
	padding    tensor.Padding

	kernel *Parameter[B]

	backend B
}

// NewDepthwiseConv2D creates a depthwise convolution with Glorot uniform
// initialization and no bias.
func NewDepthwiseConv2D[B tensor.Backend](
	name string,
	channels int,
	kernelSize, stride [2]int,
	padding tensor.Padding,
	rng *rand.Rand,
	backend B,
) *DepthwiseConv2D[B] {
	if channels <= 0 {
		panic(fmt.Sprintf("depthwise_conv2d: invalid channels %d", channels))
	}
	if stride[0] <= 0 || stride[1] <= 0 {
		panic(fmt.Sprintf("depthwise_conv2d: invalid stride %v", stride))
	}

	shape := tensor.Shape{kernelSize[0], kernelSize[1], channels, 1}
	return &DepthwiseConv2D[B]{
		name:       name,
		channels:   channels,
		kernelSize: kernelSize,
		stride:     stride,
		padding:    padding,
		kernel:     NewParameter(name+"/depthwise_kernel", GlorotUniform(shape, rng, backend)),
		backend:    backend,
	}
}

// Forward performs the depthwise convolution.
func (d *DepthwiseConv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	requireChannels("depthwise_conv2d", require4D("depthwise_conv2d", input.Shape()), d.channels)
	out := d.backend.DepthwiseConv2D(input.Raw(), d.kernel.Tensor().Raw(), d.stride, d.padding)
	return tensor.New[float32, B](out, d.backend)
}

// OutputShape infers [N, out_h, out_w, channels].
func (d *DepthwiseConv2D[B]) OutputShape(input tensor.Shape) tensor.Shape {
	s := require4D("depthwise_conv2d", input)
	requireChannels("depthwise_conv2d", s, d.channels)
	h, _ := tensor.ConvOutputSize(s[1], d.kernelSize[0], d.stride[0], d.padding)
	w, _ := tensor.ConvOutputSize(s[2], d.kernelSize[1], d.stride[1], d.padding)
	return tensor.Shape{s[0], h, w, d.channels}
}

// Parameters returns the depthwise kernel.
func (d *DepthwiseConv2D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{d.kernel}
}

// Kernel returns the kernel parameter.
func (d *DepthwiseConv2D[B]) Kernel() *Parameter[B] {
	return d.kernel
}

// Name returns the layer name.
func (d *DepthwiseConv2D[B]) Name() string { return d.name }

// Kind returns "DepthwiseConv2D".
func (d *DepthwiseConv2D[B]) Kind() string { return "DepthwiseConv2D" }

// Stride returns the stride.
func (d *DepthwiseConv2D[B]) Stride() [2]int { return d.stride }

// Padding returns the padding mode.
func (d *DepthwiseConv2D[B]) Padding() tensor.Padding { return d.padding }
