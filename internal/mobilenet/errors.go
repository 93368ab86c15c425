package mobilenet

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the sentinel matched by every ConfigurationError.
var ErrConfiguration = errors.New("invalid configuration")

// ConfigurationError reports a block or backbone parameter that cannot be
// built. It is returned at build time, before any weight is allocated.
type ConfigurationError struct {
	Field  string // Offending field (e.g., "Stride")
	Value  any    // Offending value
	Reason string // Human-readable constraint
	Err    error  // Underlying cause, if any (e.g., nn.ErrNameCollision)
}

// Error implements error.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("mobilenet: %v: %s=%v: %s", ErrConfiguration, e.Field, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) hold.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErr(field string, value any, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}
