package dataset

import "gonum.org/v1/gonum/stat"

// ChannelStats returns the per-channel mean and standard deviation of every
// pixel in the dataset, in RGB order.
func (d *Dataset) ChannelStats() (mean, std [3]float64) {
	n := 0
	for _, s := range d.samples {
		n += len(s.Pixels) / 3
	}
	channel := make([]float64, n)
	for c := range 3 {
		k := 0
		for _, s := range d.samples {
			for i := c; i < len(s.Pixels); i += 3 {
				channel[k] = float64(s.Pixels[i])
				k++
			}
		}
		mean[c], std[c] = stat.MeanStdDev(channel, nil)
	}
	return mean, std
}
