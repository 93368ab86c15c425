package mobilenet

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/born-ml/mobilenet/internal/nn"
	"github.com/born-ml/mobilenet/internal/tensor"
)

// LayerSummary is one row of a model summary.
type LayerSummary struct {
	Name        string
	Kind        string
	OutputShape tensor.Shape
	Params      int
}

// Summary describes a backbone layer by layer.
type Summary struct {
	Layers       []LayerSummary
	Trainable    int
	NonTrainable int
}

// Total returns the number of scalars held by the model.
func (s Summary) Total() int {
	return s.Trainable + s.NonTrainable
}

// Summarize infers every layer's output shape for input and counts weights.
// Nothing is computed on tensor data.
func Summarize[B tensor.Backend](m *Backbone[B], input tensor.Shape) Summary {
	var sum Summary
	m.trace(input, func(l NamedLayer, out tensor.Shape) {
		params := layerParameters[B](l)
		trainable, nonTrainable := nn.CountParameters(params)
		sum.Layers = append(sum.Layers, LayerSummary{
			Name:        l.Name(),
			Kind:        l.Kind(),
			OutputShape: out,
			Params:      trainable + nonTrainable,
		})
		sum.Trainable += trainable
		sum.NonTrainable += nonTrainable
	})
	return sum
}

// WriteSummary prints s as an aligned table followed by parameter totals.
func WriteSummary(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Layer (type)\tOutput Shape\tParam #")
	for _, l := range s.Layers {
		fmt.Fprintf(tw, "%s (%s)\t%s\t%s\n", l.Name, l.Kind, l.OutputShape, humanize.Comma(int64(l.Params)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Total params: %s\nTrainable params: %s\nNon-trainable params: %s\n",
		humanize.Comma(int64(s.Total())),
		humanize.Comma(int64(s.Trainable)),
		humanize.Comma(int64(s.NonTrainable)))
	return err
}
