package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/born-ml/mobilenet/internal/tensor"
)

// ReaderOptions configures reader behavior.
type ReaderOptions struct {
	// Validation controls header validation strictness.
	Validation ValidationLevel

	// SkipChecksum disables verification of the MetadataChecksum entry.
	SkipChecksum bool
}

// DefaultReaderOptions returns strict validation with checksum verification.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{Validation: ValidationStrict}
}

// SafeTensorsReader gives random access to the tensors of a SafeTensors
// source.
type SafeTensorsReader struct {
	src        io.ReaderAt
	closer     io.Closer
	header     Header
	dataOffset int64 // Offset where tensor data starts
	dataSize   int64
	opts       ReaderOptions
}

// NewSafeTensorsReader opens path with DefaultReaderOptions.
func NewSafeTensorsReader(path string) (*SafeTensorsReader, error) {
	return NewSafeTensorsReaderWithOptions(path, DefaultReaderOptions())
}

// NewSafeTensorsReaderWithOptions opens path and parses its header.
func NewSafeTensorsReaderWithOptions(path string, opts ReaderOptions) (*SafeTensorsReader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	r, err := newReader(file, stat.Size(), opts)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closer = file
	return r, nil
}

// NewSafeTensorsReaderAt parses a SafeTensors source of size bytes.
func NewSafeTensorsReaderAt(src io.ReaderAt, size int64, opts ReaderOptions) (*SafeTensorsReader, error) {
	return newReader(src, size, opts)
}

func newReader(src io.ReaderAt, size int64, opts ReaderOptions) (*SafeTensorsReader, error) {
	var prefix [8]byte
	if _, err := src.ReadAt(prefix[:], 0); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	headerSize := binary.LittleEndian.Uint64(prefix[:])
	if headerSize > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}
	if int64(headerSize) > size-8 { //nolint:gosec // G115: bounded by MaxHeaderSize
		return nil, fmt.Errorf("header size %d exceeds file size %d", headerSize, size)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := src.ReadAt(headerBytes, 8); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	dataOffset := int64(8 + headerSize) //nolint:gosec // G115: bounded by MaxHeaderSize
	dataSize := size - dataOffset
	if err := ValidateHeader(&header, dataSize, opts.Validation); err != nil {
		return nil, fmt.Errorf("header validation failed: %w", err)
	}

	return &SafeTensorsReader{
		src:        src,
		header:     header,
		dataOffset: dataOffset,
		dataSize:   dataSize,
		opts:       opts,
	}, nil
}

// Close closes the underlying file, if any.
func (r *SafeTensorsReader) Close() error {
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

// Header returns the parsed header.
func (r *SafeTensorsReader) Header() Header {
	return r.header
}

// Metadata returns the metadata map from the header.
func (r *SafeTensorsReader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns all tensor names in sorted order.
func (r *SafeTensorsReader) TensorNames() []string {
	names := make([]string, 0, len(r.header.Tensors))
	for name := range r.header.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TensorInfo returns information about a specific tensor.
func (r *SafeTensorsReader) TensorInfo(name string) (*TensorInfo, error) {
	info, ok := r.header.Tensors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTensorNotFound, name)
	}
	return &info, nil
}

// ReadTensorData reads the raw bytes of a tensor.
func (r *SafeTensorsReader) ReadTensorData(name string) ([]byte, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if info.DataOffsets[0] < 0 || size < 0 || info.DataOffsets[1] > r.dataSize {
		return nil, fmt.Errorf("%w: tensor %s [%d, %d]", ErrOutOfBounds, name, info.DataOffsets[0], info.DataOffsets[1])
	}

	data := make([]byte, size)
	if _, err := r.src.ReadAt(data, r.dataOffset+info.DataOffsets[0]); err != nil {
		return nil, fmt.Errorf("failed to read tensor %s: %w", name, err)
	}
	return data, nil
}

// LoadTensor loads a tensor by name.
func (r *SafeTensorsReader) LoadTensor(name string) (*tensor.RawTensor, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	dtype, err := safeTensorsToDType(info.DType)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", name, err)
	}

	shape := make(tensor.Shape, len(info.Shape))
	for i, dim := range info.Shape {
		shape[i] = int(dim)
	}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape for tensor %s: %w", name, err)
	}
	if want := int64(shape.NumElements() * dtype.Size()); want != info.Size() {
		return nil, fmt.Errorf("%w: tensor %s needs %d bytes, header records %d", ErrSizeMismatch, name, want, info.Size())
	}

	data, err := r.ReadTensorData(name)
	if err != nil {
		return nil, err
	}
	return tensor.NewRawFromBytes(shape, dtype, tensor.CPU, data)
}

// VerifyChecksum recomputes the data-section checksum and compares it with
// the MetadataChecksum entry. Files without the entry pass.
func (r *SafeTensorsReader) VerifyChecksum() error {
	stored, ok := r.header.Metadata[MetadataChecksum]
	if !ok {
		return nil
	}
	computed, err := ComputeChecksumReader(io.NewSectionReader(r.src, r.dataOffset, r.dataSize))
	if err != nil {
		return fmt.Errorf("failed to compute checksum: %w", err)
	}
	return ValidateChecksum(computed, stored)
}

// ReadStateDict loads every tensor, verifying the checksum first unless
// disabled in the options.
func (r *SafeTensorsReader) ReadStateDict() (map[string]*tensor.RawTensor, error) {
	if !r.opts.SkipChecksum {
		if err := r.VerifyChecksum(); err != nil {
			return nil, err
		}
	}

	state := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, name := range r.TensorNames() {
		raw, err := r.LoadTensor(name)
		if err != nil {
			return nil, err
		}
		state[name] = raw
	}
	return state, nil
}

// ReadSafeTensors loads every tensor and the metadata of the file at path.
func ReadSafeTensors(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	r, err := NewSafeTensorsReader(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = r.Close() // Best effort close
	}()

	state, err := r.ReadStateDict()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return state, r.Metadata(), nil
}

// ReadFrom decodes a SafeTensors stream held entirely in memory.
func ReadFrom(reader io.Reader) (map[string]*tensor.RawTensor, map[string]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read data: %w", err)
	}
	r, err := NewSafeTensorsReaderAt(bytes.NewReader(data), int64(len(data)), DefaultReaderOptions())
	if err != nil {
		return nil, nil, err
	}
	state, err := r.ReadStateDict()
	if err != nil {
		return nil, nil, err
	}
	return state, r.Metadata(), nil
}
