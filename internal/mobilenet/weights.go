package mobilenet

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/born-ml/mobilenet/internal/serialization"
	"github.com/born-ml/mobilenet/internal/tensor"
)

// Metadata keys written by SaveWeights.
const (
	MetadataFormat          = "format"
	MetadataAlpha           = "alpha"
	MetadataInputShape      = "input_shape"
	MetadataIncludeLastConv = "include_last_conv"
	MetadataPooling         = "pooling"

	weightsFormat = "mobilenet_v2"
)

// ErrIncompatibleWeights is returned when a weights file was written for a
// different architecture.
var ErrIncompatibleWeights = errors.New("mobilenet: incompatible weights")

// Metadata describes c as SafeTensors metadata.
func (c BackboneConfig) Metadata() map[string]string {
	return map[string]string{
		MetadataFormat:          weightsFormat,
		MetadataAlpha:           strconv.FormatFloat(c.Alpha, 'g', -1, 64),
		MetadataInputShape:      tensor.Shape(c.InputShape[:]).String(),
		MetadataIncludeLastConv: strconv.FormatBool(c.IncludeLastConv),
		MetadataPooling:         c.Pooling,
	}
}

// SaveWeights writes every parameter of m to a SafeTensors file with the
// configuration as metadata.
func SaveWeights[B tensor.Backend](path string, m *Backbone[B]) error {
	if err := serialization.WriteSafeTensors(path, m.StateDict(), m.cfg.Metadata()); err != nil {
		return fmt.Errorf("mobilenet: save weights: %w", err)
	}
	return nil
}

// LoadWeights reads a SafeTensors file into m. Files carrying a different
// format or alpha are rejected before any tensor is compared.
func LoadWeights[B tensor.Backend](path string, m *Backbone[B]) error {
	state, meta, err := serialization.ReadSafeTensors(path)
	if err != nil {
		return fmt.Errorf("mobilenet: load weights: %w", err)
	}
	if err := checkMetadata(meta, m.cfg); err != nil {
		return err
	}
	return m.LoadStateDict(state)
}

// checkMetadata compares the recorded format and alpha with cfg. Missing
// keys are accepted so files from other writers still load.
func checkMetadata(meta map[string]string, cfg BackboneConfig) error {
	if f, ok := meta[MetadataFormat]; ok && f != weightsFormat {
		return fmt.Errorf("%w: format %q", ErrIncompatibleWeights, f)
	}
	if s, ok := meta[MetadataAlpha]; ok {
		alpha, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%w: alpha %q: %w", ErrIncompatibleWeights, s, err)
		}
		if alpha != cfg.Alpha {
			return fmt.Errorf("%w: file has alpha %g, model has %g", ErrIncompatibleWeights, alpha, cfg.Alpha)
		}
	}
	return nil
}
