// Package cpu implements the numeric backend on the CPU in pure Go.
//
// Feature maps are channels-last [N, H, W, C] float32 tensors. Kernels split
// their work by output row and run it through internal/parallel.
package cpu

import (
	"fmt"

	"github.com/born-ml/mobilenet/internal/parallel"
	"github.com/born-ml/mobilenet/internal/tensor"
)

// CPUBackend implements tensor.Backend on the CPU.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend using every available core.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallelism config.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// newOutput allocates a float32 result tensor, panicking on invalid shapes.
func (cpu *CPUBackend) newOutput(op string, shape tensor.Shape) *tensor.RawTensor {
	out, err := tensor.NewRaw(shape, tensor.Float32, cpu.device)
	if err != nil {
		panic(tensor.ShapeErrorf(op, "failed to create result tensor: %v", err))
	}
	return out
}

// forRows runs f for each (batch, output row) pair.
func (cpu *CPUBackend) forRows(batch, rows int, f func(n, h int)) {
	parallel.ForRows(batch, rows, f, cpu.parallel)
}

// requireFloat32 rejects tensors the kernels cannot process.
func requireFloat32(op string, ts ...*tensor.RawTensor) {
	for _, t := range ts {
		if t.DType() != tensor.Float32 {
			panic(fmt.Sprintf("%s: unsupported dtype %s", op, t.DType()))
		}
	}
}

// require4D checks that x is an NHWC feature map.
func require4D(op string, x *tensor.RawTensor) (n, h, w, c int) {
	s := x.Shape()
	if len(s) != 4 {
		panic(tensor.ShapeErrorf(op, "input must be 4D [N,H,W,C], got %dD %v", len(s), s))
	}
	return s[0], s[1], s[2], s[3]
}

// Add performs element-wise addition of two tensors with equal shapes.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(tensor.ShapeErrorf("add", "shapes differ: %v vs %v", a.Shape(), b.Shape()))
	}
	requireFloat32("add", a, b)

	result := cpu.newOutput("add", a.Shape())
	av, bv, out := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
	for i := range out {
		out[i] = av[i] + bv[i]
	}
	return result
}
