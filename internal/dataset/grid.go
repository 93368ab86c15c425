package dataset

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/born-ml/mobilenet/internal/tensor"
)

// gridPad is the gap between tiles, in pixels.
const gridPad = 4

// SaveGrid renders the first rows*cols images of an [N, H, W, 3] batch as
// a PNG grid without axes. Missing cells stay blank.
func SaveGrid(path string, images *tensor.RawTensor, rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("dataset: invalid grid %dx%d", rows, cols)
	}
	shape := images.Shape()
	if len(shape) != 4 || shape[3] != 3 {
		return fmt.Errorf("dataset: grid needs [N,H,W,3] images, got %v", shape)
	}
	if images.DType() != tensor.Float32 {
		return fmt.Errorf("dataset: grid needs float32 images, got %s", images.DType())
	}
	n, h, w := shape[0], shape[1], shape[2]

	plots := make([][]*plot.Plot, rows)
	for r := range rows {
		plots[r] = make([]*plot.Plot, cols)
		for c := range cols {
			p := plot.New()
			p.HideAxes()
			if i := r*cols + c; i < n {
				img := ToImage(images, i)
				p.Add(plotter.NewImage(img, 0, 0, float64(w), float64(h)))
			}
			plots[r][c] = p
		}
	}

	width := vg.Length(cols*w + (cols-1)*gridPad)
	height := vg.Length(rows*h + (rows-1)*gridPad)
	canvas := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(72))
	tiles := draw.Tiles{Rows: rows, Cols: cols, PadX: gridPad, PadY: gridPad}

	cells := plot.Align(plots, tiles, draw.New(canvas))
	for r := range rows {
		for c := range cols {
			plots[r][c].Draw(cells[r][c])
		}
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("dataset: create grid: %w", err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("dataset: write grid: %w", err)
	}
	return f.Close()
}

// ToImage converts the i-th image of an [N, H, W, 3] float32 batch to RGBA.
// Values are clamped to [0, 255].
func ToImage(images *tensor.RawTensor, i int) *image.RGBA {
	shape := images.Shape()
	h, w := shape[1], shape[2]
	data := images.AsFloat32()[i*h*w*3 : (i+1)*h*w*3]

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			o := (y*w + x) * 3
			img.SetRGBA(x, y, color.RGBA{
				R: clampByte(data[o]),
				G: clampByte(data[o+1]),
				B: clampByte(data[o+2]),
				A: 255,
			})
		}
	}
	return img
}

func clampByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
