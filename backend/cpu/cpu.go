// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"runtime"

	internalcpu "github.com/born-ml/mobilenet/internal/backend/cpu"
	"github.com/born-ml/mobilenet/internal/parallel"
	"github.com/born-ml/mobilenet/tensor"
)

// Backend represents the CPU backend implementation.
//
// CPU backend provides pure Go implementations of the convolution,
// normalization, activation, padding and pooling primitives.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend that uses every available core.
//
// Example:
//
//	import (
//	    "github.com/born-ml/mobilenet/backend/cpu"
//	    "github.com/born-ml/mobilenet/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{1, 224, 224, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithWorkers creates a CPU backend bounded to n worker goroutines.
// n <= 1 runs every kernel on the calling goroutine.
func NewWithWorkers(n int) *Backend {
	if n <= 1 {
		return internalcpu.NewWithConfig(parallel.Sequential())
	}
	cfg := parallel.DefaultConfig()
	cfg.Enabled = true
	cfg.NumWorkers = min(n, 4*runtime.NumCPU())
	return internalcpu.NewWithConfig(cfg)
}
