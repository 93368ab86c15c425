package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/born-ml/mobilenet/internal/backend/cpu"
	"github.com/born-ml/mobilenet/internal/config"
	"github.com/born-ml/mobilenet/internal/dataset"
	"github.com/born-ml/mobilenet/internal/mobilenet"
	"github.com/born-ml/mobilenet/internal/nn"
	"github.com/born-ml/mobilenet/internal/tensor"
)

// commonFlags are shared by every model command. Flags left unset keep the
// value from the config file.
type commonFlags struct {
	fs         *flag.FlagSet
	configPath *string
	alpha      *float64
	size       *int
}

func newCommonFlags(name string) *commonFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &commonFlags{
		fs:         fs,
		configPath: fs.String("config", "", "YAML or JSON config file"),
		alpha:      fs.Float64("alpha", 1.0, "Width multiplier"),
		size:       fs.Int("size", 224, "Input height and width (0 = dynamic)"),
	}
}

// load parses args and returns the config with explicit flags applied.
func (c *commonFlags) load(args []string) (*config.Config, error) {
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	cfg := config.Default()
	if *c.configPath != "" {
		var err error
		if cfg, err = config.Load(*c.configPath); err != nil {
			return nil, err
		}
	}

	c.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "alpha":
			cfg.Model.Alpha = *c.alpha
		case "size":
			cfg.Model.InputSize = [2]int{*c.size, *c.size}
			if *c.size > 0 {
				cfg.Demo.ImageSize = *c.size
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func build(cfg *config.Config) (*mobilenet.Backbone[*cpu.CPUBackend], *cpu.CPUBackend, error) {
	backend := cpu.NewWithConfig(cfg.Parallel())
	rng := rand.New(rand.NewSource(cfg.Model.Seed))
	model, err := mobilenet.BuildBackbone(nn.NewScope(), cfg.Backbone(), backend, mobilenet.WithRand(rng))
	if err != nil {
		return nil, nil, err
	}
	return model, backend, nil
}

func runSummary(args []string) error {
	flags := newCommonFlags("summary")
	cfg, err := flags.load(args)
	if err != nil {
		return err
	}
	model, _, err := build(cfg)
	if err != nil {
		return err
	}
	return mobilenet.WriteSummary(os.Stdout, mobilenet.Summarize(model, model.InputShape()))
}

func runExport(args []string) error {
	flags := newCommonFlags("export")
	out := flags.fs.String("out", "", "Output .safetensors file (required)")
	seed := flags.fs.Int64("seed", 0, "Weight initialization seed")
	cfg, err := flags.load(args)
	if err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("export: -out is required")
	}
	flags.fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			cfg.Model.Seed = *seed
		}
	})

	model, _, err := build(cfg)
	if err != nil {
		return err
	}
	if err := mobilenet.SaveWeights(*out, model); err != nil {
		return err
	}

	info, err := os.Stat(*out)
	if err != nil {
		return err
	}
	trainable, nonTrainable := nn.CountParameters(model.Parameters())
	log.Printf("wrote %s: %s parameters (%s non-trainable), %s",
		*out, humanize.Comma(int64(trainable+nonTrainable)), humanize.Comma(int64(nonTrainable)),
		humanize.Bytes(uint64(info.Size())))
	return nil
}

func runDemo(args []string) error {
	flags := newCommonFlags("demo")
	dataDir := flags.fs.String("data", "", "Image folder with one subdirectory per class (required)")
	out := flags.fs.String("out", "grid.png", "Preview grid PNG")
	batchSize := flags.fs.Int("batch", 9, "Batch size")
	calibrate := flags.fs.Bool("calibrate", false, "Update BatchNorm statistics from the batch before the forward pass")
	cfg, err := flags.load(args)
	if err != nil {
		return err
	}
	flags.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Demo.DataDir = *dataDir
		case "out":
			cfg.Demo.Output = *out
		case "batch":
			cfg.Demo.BatchSize = *batchSize
		}
	})
	if cfg.Demo.DataDir == "" {
		return fmt.Errorf("demo: -data is required")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	size := cfg.Demo.ImageSize
	start := time.Now()
	ds, err := dataset.LoadImageFolder(cfg.Demo.DataDir, dataset.Options{
		ImageSize: [2]int{size, size},
		Limit:     cfg.Demo.Limit,
	})
	if err != nil {
		return err
	}
	mean, std := ds.ChannelStats()
	log.Printf("loaded %d images in %d classes %v in %s", ds.Len(), ds.NumClasses(), ds.Classes(), time.Since(start).Round(time.Millisecond))
	log.Printf("images per class: %v", ds.ClassCounts())
	log.Printf("channel mean %.1f, std %.1f", mean, std)

	// The model reads the images at their loaded size.
	cfg.Model.InputSize = [2]int{size, size}
	model, backend, err := build(cfg)
	if err != nil {
		return err
	}

	batch := ds.Batch(0, cfg.Demo.BatchSize)
	x := tensor.New[float32](batch.Images, backend)

	var m nn.Module[*cpu.CPUBackend] = model
	if *calibrate {
		m = calibrating{model}
	}
	start = time.Now()
	features, err := nn.TryForward(m, x)
	if err != nil {
		return err
	}
	log.Printf("forward pass on %d images: %v -> %v in %s", batch.Len(), x.Shape(), features.Shape(), time.Since(start).Round(time.Millisecond))

	if err := dataset.SaveGrid(cfg.Demo.Output, batch.Images, cfg.Demo.GridRows, cfg.Demo.GridCols); err != nil {
		return err
	}
	log.Printf("wrote %s", cfg.Demo.Output)
	return nil
}

// calibrating runs the backbone in calibration mode.
type calibrating struct {
	*mobilenet.Backbone[*cpu.CPUBackend]
}

func (c calibrating) Forward(x *tensor.Tensor[float32, *cpu.CPUBackend]) *tensor.Tensor[float32, *cpu.CPUBackend] {
	return c.Calibrate(x)
}
