package mobilenet

import (
	"fmt"

	"github.com/born-ml/mobilenet/internal/nn"
	"github.com/born-ml/mobilenet/internal/tensor"
)

// Pooling modes applied after the last layer.
const (
	PoolingNone = ""
	PoolingAvg  = "avg"
	PoolingMax  = "max"
)

// Feature-map level names returned by FeatureMaps, keyed by output stride.
const (
	LevelP1 = "P1" // stride 2
	LevelP2 = "P2" // stride 4
	LevelP3 = "P3" // stride 8
	LevelP4 = "P4" // stride 16
	LevelP5 = "P5" // stride 32
)

// stage is one row of the MobileNetV2 body table.
type stage struct {
	expansion float64
	filters   int
	repeats   int
	stride    int
}

// stages lists (t, c, n, s) for the 17 inverted residual blocks.
var stages = []stage{
	{1, 16, 1, 1},
	{6, 24, 2, 2},
	{6, 32, 3, 2},
	{6, 64, 4, 2},
	{6, 96, 3, 1},
	{6, 160, 3, 2},
	{6, 320, 1, 1},
}

// levelBlocks maps the block whose output ends each stride level.
var levelBlocks = map[int]string{
	0:  LevelP1,
	2:  LevelP2,
	5:  LevelP3,
	12: LevelP4,
}

// BackboneConfig describes a whole MobileNetV2 backbone.
type BackboneConfig struct {
	// Alpha is the width multiplier. The published variants use 0.35, 0.5,
	// 0.75, 1.0, 1.3 and 1.4.
	Alpha float64

	// InputShape is (height, width, channels). Height and width may be
	// tensor.UnknownDim; channels must be known.
	InputShape [3]int

	// Pooling is PoolingNone, PoolingAvg or PoolingMax.
	Pooling string

	// IncludeLastConv keeps the 1x1 head convolution to 1280 channels.
	IncludeLastConv bool
}

// DefaultBackboneConfig returns the 1.0 / 224 configuration.
func DefaultBackboneConfig() BackboneConfig {
	return BackboneConfig{
		Alpha:           1.0,
		InputShape:      [3]int{224, 224, 3},
		Pooling:         PoolingNone,
		IncludeLastConv: true,
	}
}

// Validate checks the backbone configuration.
func (c BackboneConfig) Validate() error {
	if !(c.Alpha > 0) {
		return configErr("Alpha", c.Alpha, "must be positive")
	}
	for i, d := range c.InputShape[:2] {
		if d != tensor.UnknownDim && d <= 0 {
			return configErr("InputShape", c.InputShape, fmt.Sprintf("dimension %d must be positive or unknown", i))
		}
	}
	if c.InputShape[2] <= 0 {
		return configErr("InputShape", c.InputShape, "channels must be known and positive")
	}
	switch c.Pooling {
	case PoolingNone, PoolingAvg, PoolingMax:
	default:
		return configErr("Pooling", c.Pooling, `must be "", "avg" or "max"`)
	}
	return nil
}

// StemChannels returns the width of the first convolution.
func (c BackboneConfig) StemChannels() int {
	return MakeDivisible(32 * c.Alpha)
}

// LastChannels returns the width of the head convolution. Narrow models keep
// 1280 channels.
func (c BackboneConfig) LastChannels() int {
	if c.Alpha > 1.0 {
		return MakeDivisible(1280 * c.Alpha)
	}
	return 1280
}

// BlockConfigs expands the body table into the 17 block configurations.
func (c BackboneConfig) BlockConfigs() []BlockConfig {
	var cfgs []BlockConfig
	for _, st := range stages {
		for i := 0; i < st.repeats; i++ {
			stride := 1
			if i == 0 {
				stride = st.stride
			}
			cfgs = append(cfgs, BlockConfig{
				Expansion: st.expansion,
				Stride:    stride,
				Alpha:     c.Alpha,
				Filters:   st.filters,
				BlockID:   len(cfgs),
			})
		}
	}
	return cfgs
}

// Backbone is a built MobileNetV2 feature extractor.
type Backbone[B tensor.Backend] struct {
	cfg BackboneConfig

	stemPad  *nn.ZeroPad2D[B]
	stemConv *nn.Conv2D[B]
	stemBN   *nn.BatchNorm[B]
	stemReLU *nn.ReLU6[B]

	blocks []*InvertedResidual[B]

	headConv *nn.Conv2D[B] // nil without IncludeLastConv
	headBN   *nn.BatchNorm[B]
	headReLU *nn.ReLU6[B]

	pool *nn.GlobalPool2D[B] // nil without pooling
}

// BuildBackbone validates cfg and builds the stem, the 17 inverted residual
// blocks and the head, registering every layer name in scope. On a name
// collision nothing is registered.
//
// Example:
//
//	scope := nn.NewScope()
//	model, err := mobilenet.BuildBackbone(scope, mobilenet.DefaultBackboneConfig(), cpu.New())
//	features := model.Forward(images) // [N, 7, 7, 1280]
func BuildBackbone[B tensor.Backend](scope *nn.Scope, cfg BackboneConfig, backend B, opts ...BuildOption) (*Backbone[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := resolveOptions(opts)

	// Plan every block and reserve all names at once, so a collision
	// anywhere leaves scope untouched.
	type blockPlan struct {
		cfg        BlockConfig
		inChannels int
		channels   int
		names      int
	}
	local := []string{"Conv1_pad", "Conv1", "bn_Conv1", "Conv1_relu"}
	stemChannels := cfg.StemChannels()
	channels := stemChannels
	var plans []blockPlan
	for _, bc := range cfg.BlockConfigs() {
		expanded, err := expandedChannels(bc, channels)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", bc.BlockID, err)
		}
		blockNames := blockLayerNames(bc, channels)
		local = append(local, blockNames...)
		plans = append(plans, blockPlan{cfg: bc, inChannels: channels, channels: expanded, names: len(blockNames)})
		channels = bc.ProjectedChannels()
	}
	if cfg.IncludeLastConv {
		local = append(local, "Conv_1", "Conv_1_bn", "out_relu")
	}
	switch cfg.Pooling {
	case PoolingAvg:
		local = append(local, "global_average_pooling2d")
	case PoolingMax:
		local = append(local, "global_max_pooling2d")
	}

	names, err := registerNames(scope, local)
	if err != nil {
		return nil, err
	}
	take := func(n int) []string {
		taken := names[:n]
		names = names[n:]
		return taken
	}

	m := &Backbone[B]{cfg: cfg}
	stem := take(4)
	m.stemPad = nn.NewZeroPad2D(stem[0], correctPadFunc(3), backend)
	m.stemConv = nn.NewConv2D(stem[1], cfg.InputShape[2], stemChannels,
		[2]int{3, 3}, [2]int{2, 2}, tensor.PaddingValid, o.rng, backend)
	m.stemBN = nn.NewBatchNorm(stem[2], stemChannels, nn.BatchNormEpsilon, nn.BatchNormMomentum, backend)
	m.stemReLU = nn.NewReLU6(stem[3], backend)

	for _, p := range plans {
		m.blocks = append(m.blocks, newBlock(scope, p.cfg, p.inChannels, p.channels, take(p.names), backend, o.rng))
	}

	if cfg.IncludeLastConv {
		head := take(3)
		last := cfg.LastChannels()
		m.headConv = nn.NewConv2D(head[0], channels, last, [2]int{1, 1}, [2]int{1, 1}, tensor.PaddingValid, o.rng, backend)
		m.headBN = nn.NewBatchNorm(head[1], last, nn.BatchNormEpsilon, nn.BatchNormMomentum, backend)
		m.headReLU = nn.NewReLU6(head[2], backend)
	}

	switch cfg.Pooling {
	case PoolingAvg:
		m.pool = nn.NewGlobalPool2D(take(1)[0], tensor.PoolAvg, backend)
	case PoolingMax:
		m.pool = nn.NewGlobalPool2D(take(1)[0], tensor.PoolMax, backend)
	}

	return m, nil
}

// Config returns the backbone configuration.
func (m *Backbone[B]) Config() BackboneConfig { return m.cfg }

// Blocks returns the inverted residual blocks in order.
func (m *Backbone[B]) Blocks() []*InvertedResidual[B] { return m.blocks }

// InputShape returns [?, H, W, C] for the configured input.
func (m *Backbone[B]) InputShape() tensor.Shape {
	return tensor.Shape{tensor.UnknownDim, m.cfg.InputShape[0], m.cfg.InputShape[1], m.cfg.InputShape[2]}
}

// Forward runs the backbone. The output is [N, H/32, W/32, C], or [N, C]
// when pooling is configured.
func (m *Backbone[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return m.run(input, false, nil)
}

// FeatureMaps runs the backbone and returns the feature maps at strides
// 2, 4, 8, 16 and 32 keyed by LevelP1..LevelP5. P5 is taken before pooling.
func (m *Backbone[B]) FeatureMaps(input *tensor.Tensor[float32, B]) map[string]*tensor.Tensor[float32, B] {
	maps := make(map[string]*tensor.Tensor[float32, B], 5)
	m.run(input, false, func(level string, x *tensor.Tensor[float32, B]) {
		maps[level] = x
	})
	return maps
}

// Calibrate runs input through the backbone, folding the batch statistics
// seen by every BatchNorm into its moving averages before that layer
// normalizes. Returns the output computed with the updated statistics.
func (m *Backbone[B]) Calibrate(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return m.run(input, true, nil)
}

func (m *Backbone[B]) run(input *tensor.Tensor[float32, B], calibrate bool, tap func(string, *tensor.Tensor[float32, B])) *tensor.Tensor[float32, B] {
	s := input.Shape()
	if len(s) != 4 {
		panic(tensor.ShapeErrorf("mobilenet", "expected 4D input [N,H,W,C], got %v", s))
	}
	for i, want := range m.cfg.InputShape {
		if want != tensor.UnknownDim && s[i+1] != want {
			panic(tensor.ShapeErrorf("mobilenet", "input shape %v does not match configured %v", s, m.cfg.InputShape))
		}
	}

	x := m.stemConv.Forward(m.stemPad.Forward(input))
	x = m.stemReLU.Forward(normalize(m.stemBN, x, calibrate))

	for i, block := range m.blocks {
		x = block.run(x, calibrate)
		if level, ok := levelBlocks[i]; ok && tap != nil {
			tap(level, x)
		}
	}

	if m.headConv != nil {
		x = m.headConv.Forward(x)
		x = m.headReLU.Forward(normalize(m.headBN, x, calibrate))
	}
	if tap != nil {
		tap(LevelP5, x)
	}

	if m.pool != nil {
		x = m.pool.Forward(x)
	}
	return x
}

// normalize applies bn, calibrating it on x first when requested.
func normalize[B tensor.Backend](bn *nn.BatchNorm[B], x *tensor.Tensor[float32, B], calibrate bool) *tensor.Tensor[float32, B] {
	if calibrate {
		bn.Calibrate(x)
	}
	return bn.Forward(x)
}

// OutputShape infers the output shape for input without running the model.
func (m *Backbone[B]) OutputShape(input tensor.Shape) tensor.Shape {
	return m.trace(input, nil)
}

func (m *Backbone[B]) trace(input tensor.Shape, visit visitFunc) tensor.Shape {
	s := input
	step := func(l interface {
		NamedLayer
		OutputShape(tensor.Shape) tensor.Shape
	}) {
		s = l.OutputShape(s)
		if visit != nil {
			visit(l, s)
		}
	}

	step(m.stemPad)
	step(m.stemConv)
	step(m.stemBN)
	step(m.stemReLU)
	for _, block := range m.blocks {
		s = block.trace(s, visit)
	}
	if m.headConv != nil {
		step(m.headConv)
		step(m.headBN)
		step(m.headReLU)
	}
	if m.pool != nil {
		step(m.pool)
	}
	return s
}

// Layers returns every named layer in execution order.
func (m *Backbone[B]) Layers() []NamedLayer {
	layers := []NamedLayer{m.stemPad, m.stemConv, m.stemBN, m.stemReLU}
	for _, block := range m.blocks {
		layers = append(layers, block.Layers()...)
	}
	if m.headConv != nil {
		layers = append(layers, m.headConv, m.headBN, m.headReLU)
	}
	if m.pool != nil {
		layers = append(layers, m.pool)
	}
	return layers
}

// Parameters returns all weights in execution order.
func (m *Backbone[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, l := range m.Layers() {
		params = append(params, layerParameters[B](l)...)
	}
	return params
}

// StateDict returns every parameter keyed by its name.
func (m *Backbone[B]) StateDict() map[string]*tensor.RawTensor {
	return nn.StateDict(m.Parameters())
}

// LoadStateDict copies weights from state. It fails without modifying the
// model when a parameter is missing, extra or mis-shaped.
func (m *Backbone[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	if err := nn.LoadStateDict(m.Parameters(), state); err != nil {
		return fmt.Errorf("mobilenet: load state dict: %w", err)
	}
	return nil
}

// layerParameters returns the weights of l, or nil for weightless layers.
func layerParameters[B tensor.Backend](l NamedLayer) []*nn.Parameter[B] {
	if m, ok := l.(interface{ Parameters() []*nn.Parameter[B] }); ok {
		return m.Parameters()
	}
	return nil
}
