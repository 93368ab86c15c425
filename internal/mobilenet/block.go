package mobilenet

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/mobilenet/internal/nn"
	"github.com/born-ml/mobilenet/internal/tensor"
)

// BlockConfig describes one inverted residual block.
type BlockConfig struct {
	Expansion float64 // Expansion factor t applied to the input width
	Stride    int     // 1 or 2
	Alpha     float64 // Width multiplier
	Filters   int     // Output width before the multiplier
	BlockID   int     // Position in the backbone; 0 skips the expansion
}

// Validate checks the block configuration.
func (c BlockConfig) Validate() error {
	switch {
	case c.Stride != 1 && c.Stride != 2:
		return configErr("Stride", c.Stride, "must be 1 or 2")
	case !(c.Alpha > 0):
		return configErr("Alpha", c.Alpha, "must be positive")
	case c.Filters <= 0:
		return configErr("Filters", c.Filters, "must be positive")
	case !(c.Expansion > 0):
		return configErr("Expansion", c.Expansion, "must be positive")
	case c.BlockID < 0:
		return configErr("BlockID", c.BlockID, "must not be negative")
	}
	return nil
}

// Prefix returns the layer-name prefix of the block: "expanded_conv_" for
// block 0 and "block_<id>_" otherwise.
func (c BlockConfig) Prefix() string {
	if c.BlockID == 0 {
		return "expanded_conv_"
	}
	return fmt.Sprintf("block_%d_", c.BlockID)
}

// ProjectedChannels returns the output width of the block.
func (c BlockConfig) ProjectedChannels() int {
	return MakeDivisible(float64(int(float64(c.Filters) * c.Alpha)))
}

// BuildOption customizes block and backbone construction.
type BuildOption func(*buildOptions)

type buildOptions struct {
	rng *rand.Rand
}

// WithRand sets the random source used for kernel initialization.
func WithRand(rng *rand.Rand) BuildOption {
	return func(o *buildOptions) { o.rng = rng }
}

func resolveOptions(opts []BuildOption) buildOptions {
	o := buildOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(0))
	}
	return o
}

// InvertedResidual is a built MobileNetV2 bottleneck block:
//
//	[1x1 expand, BN, ReLU6] -> [pad] -> 3x3 depthwise, BN, ReLU6 -> 1x1 project, BN [-> add]
//
// All sublayers and their weights are allocated once by BuildBlock.
type InvertedResidual[B tensor.Backend] struct {
	name        string
	cfg         BlockConfig
	inChannels  int
	outChannels int

	expand     *nn.Conv2D[B] // nil for block 0
	expandBN   *nn.BatchNorm[B]
	expandReLU *nn.ReLU6[B]

	pad           *nn.ZeroPad2D[B] // nil for stride 1
	depthwise     *nn.DepthwiseConv2D[B]
	depthwiseBN   *nn.BatchNorm[B]
	depthwiseReLU *nn.ReLU6[B]

	project   *nn.Conv2D[B]
	projectBN *nn.BatchNorm[B]

	add *nn.Add[B] // nil without residual
}

// BuildBlock validates cfg, registers every sublayer name in scope and
// allocates the block's weights for inChannels input channels. The block
// itself is named "inverted_res_block_<uid>" from the scope's uid counter.
//
// A name that is already registered (for example a repeated BlockID) yields
// a ConfigurationError wrapping nn.ErrNameCollision, and nothing is
// registered.
func BuildBlock[B tensor.Backend](scope *nn.Scope, cfg BlockConfig, inChannels int, backend B, opts ...BuildOption) (*InvertedResidual[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	channels, err := expandedChannels(cfg, inChannels)
	if err != nil {
		return nil, err
	}
	o := resolveOptions(opts)

	names, err := registerNames(scope, blockLayerNames(cfg, inChannels))
	if err != nil {
		return nil, err
	}
	return newBlock(scope, cfg, inChannels, channels, names, backend, o.rng), nil
}

// expandedChannels returns the width of the depthwise stage.
func expandedChannels(cfg BlockConfig, inChannels int) (int, error) {
	if inChannels <= 0 {
		return 0, configErr("inChannels", inChannels, "must be positive")
	}
	if cfg.BlockID == 0 {
		return inChannels, nil
	}
	channels := int(cfg.Expansion * float64(inChannels))
	if channels <= 0 {
		return 0, configErr("Expansion", cfg.Expansion,
			fmt.Sprintf("expands %d input channels to %d", inChannels, channels))
	}
	return channels, nil
}

// hasResidual reports whether a block keeps both width and resolution.
func hasResidual(cfg BlockConfig, inChannels int) bool {
	return cfg.Stride == 1 && inChannels == cfg.ProjectedChannels()
}

// blockLayerNames lists the prefixed sublayer names of a block in build
// order.
func blockLayerNames(cfg BlockConfig, inChannels int) []string {
	var local []string
	if cfg.BlockID != 0 {
		local = append(local, "expand", "expand_BN", "expand_relu")
	}
	if cfg.Stride == 2 {
		local = append(local, "pad")
	}
	local = append(local, "depthwise", "depthwise_BN", "depthwise_relu", "project", "project_BN")
	if hasResidual(cfg, inChannels) {
		local = append(local, "add")
	}
	prefix := cfg.Prefix()
	for i, name := range local {
		local[i] = prefix + name
	}
	return local
}

// newBlock allocates the sublayers of a block whose names are already
// registered, consuming names in blockLayerNames order.
func newBlock[B tensor.Backend](scope *nn.Scope, cfg BlockConfig, inChannels, channels int, names []string, backend B, rng *rand.Rand) *InvertedResidual[B] {
	b := &InvertedResidual[B]{
		name:        scope.UniqueName("inverted_res_block"),
		cfg:         cfg,
		inChannels:  inChannels,
		outChannels: cfg.ProjectedChannels(),
	}
	next := func() string {
		n := names[0]
		names = names[1:]
		return n
	}

	one := [2]int{1, 1}
	three := [2]int{3, 3}
	stride := [2]int{cfg.Stride, cfg.Stride}

	if cfg.BlockID != 0 {
		b.expand = nn.NewConv2D(next(), inChannels, channels, one, one, tensor.PaddingSame, rng, backend)
		b.expandBN = nn.NewBatchNorm(next(), channels, nn.BatchNormEpsilon, nn.BatchNormMomentum, backend)
		b.expandReLU = nn.NewReLU6(next(), backend)
	}

	depthwisePadding := tensor.PaddingSame
	if cfg.Stride == 2 {
		b.pad = nn.NewZeroPad2D(next(), correctPadFunc(3), backend)
		depthwisePadding = tensor.PaddingValid
	}
	b.depthwise = nn.NewDepthwiseConv2D(next(), channels, three, stride, depthwisePadding, rng, backend)
	b.depthwiseBN = nn.NewBatchNorm(next(), channels, nn.BatchNormEpsilon, nn.BatchNormMomentum, backend)
	b.depthwiseReLU = nn.NewReLU6(next(), backend)

	b.project = nn.NewConv2D(next(), channels, b.outChannels, one, one, tensor.PaddingSame, rng, backend)
	b.projectBN = nn.NewBatchNorm(next(), b.outChannels, nn.BatchNormEpsilon, nn.BatchNormMomentum, backend)

	if hasResidual(cfg, inChannels) {
		b.add = nn.NewAdd(next(), backend)
	}
	return b
}

// registerNames reserves every name in scope. Either all names are
// registered or, on a collision, none is.
func registerNames(scope *nn.Scope, local []string) ([]string, error) {
	seen := make(map[string]struct{}, len(local))
	for _, name := range local {
		full := scope.Prefix() + name
		if _, dup := seen[full]; dup || scope.Has(full) {
			return nil, &ConfigurationError{
				Field:  "name",
				Value:  full,
				Reason: "layer name already registered",
				Err:    fmt.Errorf("%w: %q", nn.ErrNameCollision, full),
			}
		}
		seen[full] = struct{}{}
	}

	names := make([]string, len(local))
	for i, name := range local {
		full, err := scope.Name(name)
		if err != nil {
			return nil, &ConfigurationError{Field: "name", Value: name, Reason: err.Error(), Err: err}
		}
		names[i] = full
	}
	return names, nil
}

// Name returns the uid-allocated name of the block.
func (b *InvertedResidual[B]) Name() string { return b.name }

// Config returns the block configuration.
func (b *InvertedResidual[B]) Config() BlockConfig { return b.cfg }

// InChannels returns the input width the block was built for.
func (b *InvertedResidual[B]) InChannels() int { return b.inChannels }

// OutChannels returns the projected width.
func (b *InvertedResidual[B]) OutChannels() int { return b.outChannels }

// HasResidual reports whether the block adds its input to its output. That
// holds only when the block keeps both width and resolution.
func (b *InvertedResidual[B]) HasResidual() bool {
	return hasResidual(b.cfg, b.inChannels)
}

// Forward runs the block on an NHWC feature map.
func (b *InvertedResidual[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return b.run(input, false)
}

// Calibrate runs the block, updating the moving statistics of each
// BatchNorm from the batch it sees before that layer normalizes.
func (b *InvertedResidual[B]) Calibrate(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return b.run(input, true)
}

func (b *InvertedResidual[B]) run(input *tensor.Tensor[float32, B], calibrate bool) *tensor.Tensor[float32, B] {
	b.checkInput(input.Shape())

	x := input
	if b.expand != nil {
		x = b.expandReLU.Forward(normalize(b.expandBN, b.expand.Forward(x), calibrate))
	}
	if b.pad != nil {
		x = b.pad.Forward(x)
	}
	x = b.depthwiseReLU.Forward(normalize(b.depthwiseBN, b.depthwise.Forward(x), calibrate))
	x = normalize(b.projectBN, b.project.Forward(x), calibrate)

	if b.add != nil {
		return b.add.Apply(input, x)
	}
	return x
}

func (b *InvertedResidual[B]) checkInput(s tensor.Shape) {
	op := "inverted_residual"
	if len(s) != 4 {
		panic(tensor.ShapeErrorf(op, "expected 4D input [N,H,W,C], got %v", s))
	}
	if c := s.Channels(); c != tensor.UnknownDim && c != b.inChannels {
		panic(tensor.ShapeErrorf(op, "input channels %d != expected %d", c, b.inChannels))
	}
}

// OutputShape infers the block output shape without running it.
func (b *InvertedResidual[B]) OutputShape(input tensor.Shape) tensor.Shape {
	return b.trace(input, nil)
}

// Parameters returns the weights of all sublayers in build order.
func (b *InvertedResidual[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, l := range b.Layers() {
		params = append(params, layerParameters[B](l)...)
	}
	return params
}

// Layers returns the sublayers in execution order.
func (b *InvertedResidual[B]) Layers() []NamedLayer {
	var layers []NamedLayer
	if b.expand != nil {
		layers = append(layers, b.expand, b.expandBN, b.expandReLU)
	}
	if b.pad != nil {
		layers = append(layers, b.pad)
	}
	layers = append(layers, b.depthwise, b.depthwiseBN, b.depthwiseReLU, b.project, b.projectBN)
	if b.add != nil {
		layers = append(layers, b.add)
	}
	return layers
}

// BatchNorms returns the normalization layers in execution order.
func (b *InvertedResidual[B]) BatchNorms() []*nn.BatchNorm[B] {
	var bns []*nn.BatchNorm[B]
	if b.expandBN != nil {
		bns = append(bns, b.expandBN)
	}
	return append(bns, b.depthwiseBN, b.projectBN)
}

// NamedLayer is anything registered under a name in a model.
type NamedLayer interface {
	Name() string
	Kind() string
}

// visitFunc receives each layer with its inferred output shape.
type visitFunc func(layer NamedLayer, out tensor.Shape)

// trace propagates input through every sublayer, reporting each one to visit
// when it is non-nil.
func (b *InvertedResidual[B]) trace(input tensor.Shape, visit visitFunc) tensor.Shape {
	b.checkInput(input)
	s := input

	step := func(m interface {
		NamedLayer
		OutputShape(tensor.Shape) tensor.Shape
	}) {
		s = m.OutputShape(s)
		if visit != nil {
			visit(m, s)
		}
	}

	if b.expand != nil {
		step(b.expand)
		step(b.expandBN)
		step(b.expandReLU)
	}
	if b.pad != nil {
		step(b.pad)
	}
	step(b.depthwise)
	step(b.depthwiseBN)
	step(b.depthwiseReLU)
	step(b.project)
	step(b.projectBN)

	if b.add != nil {
		s = b.add.OutputShape(input, s)
		if visit != nil {
			visit(b.add, s)
		}
	}
	return s
}
