package cpu

import (
	"testing"

	"github.com/born-ml/mobilenet/internal/parallel"
	"github.com/born-ml/mobilenet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawFrom builds a float32 RawTensor with the given contents.
func rawFrom(t *testing.T, shape tensor.Shape, data ...float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	require.Len(t, data, shape.NumElements())
	copy(raw.AsFloat32(), data)
	return raw
}

// assertShapePanic checks that f panics with a *tensor.ShapeError for op.
func assertShapePanic(t *testing.T, op string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		se, ok := r.(*tensor.ShapeError)
		require.True(t, ok, "expected *tensor.ShapeError, got %T: %v", r, r)
		assert.Equal(t, op, se.Op)
	}()
	f()
}

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	if backend == nil {
		t.Fatal("New() returned nil")
	}
	if backend.Name() != "CPU" {
		t.Errorf("Expected name 'CPU', got '%s'", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Expected device CPU, got %v", backend.Device())
	}
}

func TestCPUBackend_Add(t *testing.T) {
	backend := New()

	a := rawFrom(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	b := rawFrom(t, tensor.Shape{2, 3}, 10, 11, 12, 13, 14, 15)

	result := backend.Add(a, b)

	assert.Equal(t, []float32{11, 13, 15, 17, 19, 21}, result.AsFloat32())
	// Inputs are left untouched.
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, a.AsFloat32())
}

func TestCPUBackend_AddShapeMismatch(t *testing.T) {
	backend := New()
	a := rawFrom(t, tensor.Shape{1, 2, 2, 2}, make([]float32, 8)...)
	b := rawFrom(t, tensor.Shape{1, 2, 2, 1}, make([]float32, 4)...)

	assertShapePanic(t, "add", func() { backend.Add(a, b) })
}

func TestCPUBackend_ReLU6(t *testing.T) {
	backend := New()
	x := rawFrom(t, tensor.Shape{6}, -3, 0, 2.5, 6, 6.5, 100)

	out := backend.ReLU6(x, 6)

	assert.Equal(t, []float32{0, 0, 2.5, 6, 6, 6}, out.AsFloat32())
}

func TestCPUBackend_BatchNorm(t *testing.T) {
	backend := New()

	x := rawFrom(t, tensor.Shape{1, 1, 1, 2}, 2, 4)
	gamma := rawFrom(t, tensor.Shape{2}, 1, 2)
	beta := rawFrom(t, tensor.Shape{2}, 0, 1)
	mean := rawFrom(t, tensor.Shape{2}, 1, 2)
	variance := rawFrom(t, tensor.Shape{2}, 3, 0)

	out := backend.BatchNorm(x, gamma, beta, mean, variance, 1)

	// ch0: 1 * (2-1)/sqrt(3+1) + 0 = 0.5
	// ch1: 2 * (4-2)/sqrt(0+1) + 1 = 5
	got := out.AsFloat32()
	assert.InDelta(t, 0.5, got[0], 1e-6)
	assert.InDelta(t, 5.0, got[1], 1e-6)
}

func TestCPUBackend_BatchNormParamShape(t *testing.T) {
	backend := New()
	x := rawFrom(t, tensor.Shape{1, 1, 1, 2}, 2, 4)
	ok := rawFrom(t, tensor.Shape{2}, 1, 1)
	bad := rawFrom(t, tensor.Shape{3}, 1, 1, 1)

	assertShapePanic(t, "batch_norm", func() { backend.BatchNorm(x, ok, ok, bad, ok, 1e-3) })
}

func TestCPUBackend_ZeroPad2D(t *testing.T) {
	backend := New()
	x := rawFrom(t, tensor.Shape{1, 2, 2, 1}, 1, 2, 3, 4)

	t.Run("Asymmetric", func(t *testing.T) {
		out := backend.ZeroPad2D(x, [2][2]int{{0, 1}, {0, 1}})
		require.Equal(t, tensor.Shape{1, 3, 3, 1}, out.Shape())
		assert.Equal(t, []float32{
			1, 2, 0,
			3, 4, 0,
			0, 0, 0,
		}, out.AsFloat32())
	})

	t.Run("Symmetric", func(t *testing.T) {
		out := backend.ZeroPad2D(x, [2][2]int{{1, 1}, {1, 1}})
		require.Equal(t, tensor.Shape{1, 4, 4, 1}, out.Shape())
		assert.Equal(t, []float32{
			0, 0, 0, 0,
			0, 1, 2, 0,
			0, 3, 4, 0,
			0, 0, 0, 0,
		}, out.AsFloat32())
	})

	t.Run("MultiChannel", func(t *testing.T) {
		x2 := rawFrom(t, tensor.Shape{1, 1, 1, 2}, 7, 8)
		out := backend.ZeroPad2D(x2, [2][2]int{{1, 0}, {0, 1}})
		require.Equal(t, tensor.Shape{1, 2, 2, 2}, out.Shape())
		assert.Equal(t, []float32{0, 0, 0, 0, 7, 8, 0, 0}, out.AsFloat32())
	})
}

func TestCPUBackend_GlobalPool2D(t *testing.T) {
	backend := New()
	// Two channels over a 2x2 grid: ch0 = 1,2,3,4; ch1 = -1,5,0,2.
	x := rawFrom(t, tensor.Shape{1, 2, 2, 2}, 1, -1, 2, 5, 3, 0, 4, 2)

	avg := backend.GlobalPool2D(x, tensor.PoolAvg)
	require.Equal(t, tensor.Shape{1, 2}, avg.Shape())
	assert.InDeltaSlice(t, []float32{2.5, 1.5}, avg.AsFloat32(), 1e-6)

	mx := backend.GlobalPool2D(x, tensor.PoolMax)
	assert.Equal(t, []float32{4, 5}, mx.AsFloat32())
}

func TestCPUBackend_SequentialMatchesParallel(t *testing.T) {
	seq := NewWithConfig(parallel.Sequential())
	par := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})

	data := make([]float32, 2*9*9*3)
	for i := range data {
		data[i] = float32(i%17) - 8
	}
	x := rawFrom(t, tensor.Shape{2, 9, 9, 3}, data...)
	kdata := make([]float32, 3*3*3*4)
	for i := range kdata {
		kdata[i] = float32(i%5) * 0.25
	}
	k := rawFrom(t, tensor.Shape{3, 3, 3, 4}, kdata...)

	want := seq.Conv2D(x, k, [2]int{2, 2}, tensor.PaddingSame)
	got := par.Conv2D(x, k, [2]int{2, 2}, tensor.PaddingSame)
	assert.Equal(t, want.AsFloat32(), got.AsFloat32())
}
