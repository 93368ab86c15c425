package dataset

import (
	"iter"

	"github.com/born-ml/mobilenet/internal/tensor"
)

// Batch is a contiguous slice of the dataset.
type Batch struct {
	// Images is [N, H, W, 3] float32 in [0, 255].
	Images *tensor.RawTensor
	// Labels is one-hot [N, numClasses] float32.
	Labels *tensor.RawTensor
	// Indices are the dataset positions of the batch rows.
	Indices []int
}

// Len returns the number of images in the batch.
func (b Batch) Len() int { return len(b.Indices) }

// NumBatches returns how many batches of batchSize cover the dataset.
func (d *Dataset) NumBatches(batchSize int) int {
	if batchSize <= 0 {
		panic("dataset: batch size must be positive")
	}
	return (len(d.samples) + batchSize - 1) / batchSize
}

// Batch assembles the i-th batch. The last batch may be short.
func (d *Dataset) Batch(i, batchSize int) Batch {
	n := d.NumBatches(batchSize)
	if i < 0 || i >= n {
		panic("dataset: batch index out of range")
	}
	start := i * batchSize
	end := min(start+batchSize, len(d.samples))
	count := end - start

	h, w := d.size[0], d.size[1]
	pixels := h * w * 3

	images, err := tensor.NewRaw(tensor.Shape{count, h, w, 3}, tensor.Float32, tensor.CPU)
	if err != nil {
		panic(err)
	}
	labels, err := tensor.NewRaw(tensor.Shape{count, len(d.classes)}, tensor.Float32, tensor.CPU)
	if err != nil {
		panic(err)
	}

	imgData := images.AsFloat32()
	lblData := labels.AsFloat32()
	indices := make([]int, count)
	for j := range count {
		s := d.samples[start+j]
		copy(imgData[j*pixels:(j+1)*pixels], s.Pixels)
		lblData[j*len(d.classes)+s.Label] = 1
		indices[j] = start + j
	}
	return Batch{Images: images, Labels: labels, Indices: indices}
}

// Batches yields the dataset in order, batchSize images at a time.
func (d *Dataset) Batches(batchSize int) iter.Seq[Batch] {
	n := d.NumBatches(batchSize)
	return func(yield func(Batch) bool) {
		for i := range n {
			if !yield(d.Batch(i, batchSize)) {
				return
			}
		}
	}
}
