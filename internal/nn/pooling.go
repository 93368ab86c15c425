package nn

import (
	"github.com/born-ml/mobilenet/internal/tensor"
)

// GlobalPool2D reduces [N, H, W, C] to [N, C] by averaging or taking the
// maximum over the spatial axes.
type GlobalPool2D[B tensor.Backend] struct {
	name    string
	mode    tensor.PoolMode
	backend B
}

// NewGlobalPool2D creates a global pooling layer.
func NewGlobalPool2D[B tensor.Backend](name string, mode tensor.PoolMode, backend B) *GlobalPool2D[B] {
	return &GlobalPool2D[B]{name: name, mode: mode, backend: backend}
}

// Forward pools input.
func (g *GlobalPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	require4D("global_pool2d", input.Shape())
	return tensor.New[float32, B](g.backend.GlobalPool2D(input.Raw(), g.mode), g.backend)
}

// OutputShape returns [N, C].
func (g *GlobalPool2D[B]) OutputShape(input tensor.Shape) tensor.Shape {
	s := require4D("global_pool2d", input)
	return tensor.Shape{s[0], s[3]}
}

// Parameters returns nil.
func (g *GlobalPool2D[B]) Parameters() []*Parameter[B] {
	return nil
}

// Mode returns the pooling mode.
func (g *GlobalPool2D[B]) Mode() tensor.PoolMode { return g.mode }

// Name returns the layer name.
func (g *GlobalPool2D[B]) Name() string { return g.name }

// Kind returns "GlobalAveragePooling2D" or "GlobalMaxPooling2D".
func (g *GlobalPool2D[B]) Kind() string {
	if g.mode == tensor.PoolMax {
		return "GlobalMaxPooling2D"
	}
	return "GlobalAveragePooling2D"
}
