package serialization

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func info(start, end int64) TensorInfo {
	return TensorInfo{DType: DTypeF32, Shape: []int64{(end - start) / 4}, DataOffsets: [2]int64{start, end}}
}

// TestValidateTensorOffsets_NoOverlap verifies that valid tensors pass validation.
func TestValidateTensorOffsets_NoOverlap(t *testing.T) {
	tensors := map[string]TensorInfo{
		"tensor1": info(0, 100),
		"tensor2": info(100, 300),
		"tensor3": info(300, 452),
	}
	if err := ValidateTensorOffsets(tensors, 500); err != nil {
		t.Errorf("Expected no error for valid tensors, got: %v", err)
	}
}

// TestValidateTensorOffsets_Errors detects overlapping and out-of-range regions.
func TestValidateTensorOffsets_Errors(t *testing.T) {
	tests := []struct {
		name     string
		tensors  map[string]TensorInfo
		dataSize int64
		want     error
	}{
		{
			name:     "complete overlap",
			tensors:  map[string]TensorInfo{"a": info(0, 100), "b": info(48, 148)},
			dataSize: 200,
			want:     ErrOffsetOverlap,
		},
		{
			name:     "overlap by one byte",
			tensors:  map[string]TensorInfo{"a": info(0, 100), "b": info(99, 199)},
			dataSize: 200,
			want:     ErrOffsetOverlap,
		},
		{
			name:     "exact boundary",
			tensors:  map[string]TensorInfo{"a": info(0, 100), "b": info(100, 200)},
			dataSize: 200,
		},
		{
			name:     "beyond data section",
			tensors:  map[string]TensorInfo{"a": info(0, 100), "b": info(100, 204)},
			dataSize: 200,
			want:     ErrOutOfBounds,
		},
		{
			name:     "negative start",
			tensors:  map[string]TensorInfo{"a": {DType: DTypeF32, DataOffsets: [2]int64{-4, 4}}},
			dataSize: 200,
			want:     ErrNegativeOffset,
		},
		{
			name:     "end before start",
			tensors:  map[string]TensorInfo{"a": {DType: DTypeF32, DataOffsets: [2]int64{8, 4}}},
			dataSize: 200,
			want:     ErrNegativeOffset,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.dataSize)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Tensor)
		})
	}
}

func TestValidateTensorName(t *testing.T) {
	valid := []string{
		"Conv1/kernel",
		"block_1_expand_BN/moving_mean",
		"online/block_3_expand/kernel",
		"weight",
	}
	for _, name := range valid {
		assert.NoError(t, ValidateTensorName(name), name)
	}

	invalid := []string{
		"",
		"/etc/passwd",
		"../weights",
		"a/../b",
		"a//b",
		"a/./b",
		"trailing/",
		"back\\slash",
		"nul\x00byte",
		"__metadata__",
		strings.Repeat("x", MaxTensorNameLen+1),
	}
	for _, name := range invalid {
		err := ValidateTensorName(name)
		assert.True(t, errors.Is(err, ErrInvalidTensorName), "expected %q to be rejected, got %v", name, err)
	}
}

func TestValidateHeader(t *testing.T) {
	h := &Header{Tensors: map[string]TensorInfo{
		"a/kernel": info(0, 100),
		"b/kernel": info(50, 150),
	}}

	assert.ErrorIs(t, ValidateHeader(h, 200, ValidationStrict), ErrOffsetOverlap)
	assert.NoError(t, ValidateHeader(h, 200, ValidationNormal))
	assert.NoError(t, ValidateHeader(h, 200, ValidationNone))

	h.Tensors["../evil"] = info(150, 200)
	assert.ErrorIs(t, ValidateHeader(h, 200, ValidationNormal), ErrInvalidTensorName)
	assert.NoError(t, ValidateHeader(h, 200, ValidationNone))
}
