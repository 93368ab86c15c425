// Package dataset loads labelled image folders into channels-last batches
// and renders preview grids.
//
// A folder dataset has one subdirectory per class:
//
//	root/
//	  cats/  a.png b.jpg
//	  dogs/  c.webp
//
// Classes are sorted by name and labelled by position. Every image is
// decoded, converted to RGB and resized once at load time.
package dataset

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
	"golang.org/x/sync/errgroup"
)

// DefaultImageSize is the (height, width) images are resized to when
// Options.ImageSize is zero.
var DefaultImageSize = [2]int{224, 224}

// ErrNoImages is returned when a folder holds no decodable images.
var ErrNoImages = errors.New("dataset: no images found")

var extensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// Options configures LoadImageFolder.
type Options struct {
	// ImageSize is the (height, width) of every loaded image.
	ImageSize [2]int
	// Limit caps the number of images. 0 loads everything.
	Limit int
}

// Sample is one decoded image.
type Sample struct {
	Path  string
	Label int
	// Pixels is HWC RGB in [0, 255].
	Pixels []float32
}

// Dataset is an in-memory labelled image set.
type Dataset struct {
	classes []string
	samples []Sample
	size    [2]int
}

// LoadImageFolder reads every image under root's class subdirectories.
// Files with unknown extensions are skipped; files that fail to decode are
// an error.
func LoadImageFolder(root string, opts Options) (*Dataset, error) {
	if opts.ImageSize == [2]int{} {
		opts.ImageSize = DefaultImageSize
	}
	if opts.ImageSize[0] <= 0 || opts.ImageSize[1] <= 0 {
		return nil, fmt.Errorf("dataset: invalid image size %v", opts.ImageSize)
	}
	if opts.Limit < 0 {
		return nil, fmt.Errorf("dataset: negative limit %d", opts.Limit)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", root, err)
	}

	var classes []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			classes = append(classes, e.Name())
		}
	}
	sort.Strings(classes)

	var samples []Sample
collect:
	for label, class := range classes {
		files, err := os.ReadDir(filepath.Join(root, class))
		if err != nil {
			return nil, fmt.Errorf("dataset: read class %s: %w", class, err)
		}
		for _, f := range files {
			if f.IsDir() || !extensions[strings.ToLower(filepath.Ext(f.Name()))] {
				continue
			}
			samples = append(samples, Sample{
				Path:  filepath.Join(root, class, f.Name()),
				Label: label,
			})
			if opts.Limit > 0 && len(samples) == opts.Limit {
				break collect
			}
		}
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, root)
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := range samples {
		g.Go(func() error {
			px, err := loadImage(samples[i].Path, opts.ImageSize)
			if err != nil {
				return err
			}
			samples[i].Pixels = px
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dataset{classes: classes, samples: samples, size: opts.ImageSize}, nil
}

func loadImage(path string, size [2]int) ([]float32, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("dataset: decode %s: %w", path, err)
	}
	return toPixels(resize(src, size)), nil
}

// resize scales src to (height, width) with bilinear interpolation. The
// result is not alpha-premultiplied, so dropping alpha keeps the colors of
// translucent pixels.
func resize(src image.Image, size [2]int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size[1], size[0]))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// toPixels drops alpha and returns HWC float32 values in [0, 255].
func toPixels(img *image.NRGBA) []float32 {
	b := img.Bounds()
	out := make([]float32, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			out = append(out, float32(row[4*x]), float32(row[4*x+1]), float32(row[4*x+2]))
		}
	}
	return out
}

// Classes returns the class names in label order.
func (d *Dataset) Classes() []string { return d.classes }

// NumClasses returns the number of classes.
func (d *Dataset) NumClasses() int { return len(d.classes) }

// Len returns the number of images.
func (d *Dataset) Len() int { return len(d.samples) }

// ImageSize returns the (height, width) of every image.
func (d *Dataset) ImageSize() [2]int { return d.size }

// Sample returns the i-th image.
func (d *Dataset) Sample(i int) Sample { return d.samples[i] }

// ClassCounts returns the number of images per class.
func (d *Dataset) ClassCounts() []int {
	counts := make([]int, len(d.classes))
	for _, s := range d.samples {
		counts[s.Label]++
	}
	return counts
}
