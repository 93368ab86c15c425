package tensor

import "fmt"

// ShapeError is the panic value raised by backends and layers when the
// shapes handed to an operation are incompatible.
type ShapeError struct {
	Op  string // Operation that rejected its inputs (e.g., "conv2d")
	Msg string // Details
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// ShapeErrorf builds a ShapeError for op with a formatted message.
func ShapeErrorf(op, format string, args ...any) *ShapeError {
	return &ShapeError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
