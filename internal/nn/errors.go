package nn

import "errors"

// Common errors.
var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrShapeMismatch        = errors.New("shape mismatch")
	ErrNoForward            = errors.New("backward called before forward")
	ErrInvalidTopology      = errors.New("invalid network topology")
)
