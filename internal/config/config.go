// Package config loads the command-line tool's settings from YAML or JSON.
//
// Fields omitted from the file keep the values of Default, so partial
// configs are safe. Command-line flags are applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/mobilenet/internal/mobilenet"
	"github.com/born-ml/mobilenet/internal/parallel"
	"github.com/born-ml/mobilenet/internal/tensor"
)

// maxFileSize caps config files at 1MB.
const maxFileSize = 1 * 1024 * 1024

// Config is the root configuration.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Demo    DemoConfig    `yaml:"demo"`
	Runtime RuntimeConfig `yaml:"runtime"`
}

// ModelConfig selects the backbone variant.
type ModelConfig struct {
	Alpha float64 `yaml:"alpha"`
	// InputSize is (height, width). 0 means dynamic.
	InputSize       [2]int `yaml:"input_size,flow"`
	Pooling         string `yaml:"pooling"`
	IncludeLastConv bool   `yaml:"include_last_conv"`
	Seed            int64  `yaml:"seed"`
}

// DemoConfig drives the image-folder demo.
type DemoConfig struct {
	DataDir   string `yaml:"data_dir"`
	Output    string `yaml:"output"`
	BatchSize int    `yaml:"batch_size"`
	ImageSize int    `yaml:"image_size"`
	Limit     int    `yaml:"limit"`
	GridRows  int    `yaml:"grid_rows"`
	GridCols  int    `yaml:"grid_cols"`
}

// RuntimeConfig controls the CPU backend.
type RuntimeConfig struct {
	// Workers bounds kernel goroutines; 0 uses every CPU, 1 runs sequentially.
	Workers int `yaml:"workers"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Alpha:           1.0,
			InputSize:       [2]int{224, 224},
			Pooling:         mobilenet.PoolingNone,
			IncludeLastConv: true,
			Seed:            0,
		},
		Demo: DemoConfig{
			Output:    "grid.png",
			BatchSize: 9,
			ImageSize: 224,
			GridRows:  3,
			GridCols:  3,
		},
	}
}

// Load reads a .yaml, .yml or .json file on top of Default and validates
// the result.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	switch ext := filepath.Ext(cleanPath); ext {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("config file must have .yaml, .yml or .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML (JSON is accepted as a subset) on top of Default.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	for i, d := range c.Model.InputSize {
		if d < 0 {
			return fmt.Errorf("model.input_size[%d] must be non-negative, got %d", i, d)
		}
	}
	if err := c.Backbone().Validate(); err != nil {
		return err
	}
	if c.Demo.BatchSize <= 0 {
		return fmt.Errorf("demo.batch_size must be positive, got %d", c.Demo.BatchSize)
	}
	if c.Demo.ImageSize <= 0 {
		return fmt.Errorf("demo.image_size must be positive, got %d", c.Demo.ImageSize)
	}
	if c.Demo.Limit < 0 {
		return fmt.Errorf("demo.limit must be non-negative, got %d", c.Demo.Limit)
	}
	if c.Demo.GridRows <= 0 || c.Demo.GridCols <= 0 {
		return fmt.Errorf("demo grid must be at least 1x1, got %dx%d", c.Demo.GridRows, c.Demo.GridCols)
	}
	if c.Runtime.Workers < 0 {
		return fmt.Errorf("runtime.workers must be non-negative, got %d", c.Runtime.Workers)
	}
	return nil
}

// Backbone converts the model section into a backbone configuration for
// RGB input.
func (c *Config) Backbone() mobilenet.BackboneConfig {
	dim := func(d int) int {
		if d == 0 {
			return tensor.UnknownDim
		}
		return d
	}
	return mobilenet.BackboneConfig{
		Alpha:           c.Model.Alpha,
		InputShape:      [3]int{dim(c.Model.InputSize[0]), dim(c.Model.InputSize[1]), 3},
		Pooling:         c.Model.Pooling,
		IncludeLastConv: c.Model.IncludeLastConv,
	}
}

// Parallel converts the runtime section into a backend parallelism config.
func (c *Config) Parallel() parallel.Config {
	switch c.Runtime.Workers {
	case 0:
		return parallel.DefaultConfig()
	case 1:
		return parallel.Sequential()
	default:
		cfg := parallel.DefaultConfig()
		cfg.Enabled = true
		cfg.NumWorkers = min(c.Runtime.Workers, 4*runtime.NumCPU())
		return cfg
	}
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
