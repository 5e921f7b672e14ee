package nn

import (
	"fmt"
	"strings"
)

// Dynamic marks a dimension whose size is only known at call time,
// typically the batch dimension.
const Dynamic = -1

// Shape describes the layout a layer produces: (batch, features...).
type Shape []int

// Features returns the size of the last dimension.
func (s Shape) Features() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// Validate checks that every non-batch dimension is positive.
func (s Shape) Validate() error {
	if len(s) < 2 {
		return fmt.Errorf("%w: shape %v needs a batch and a feature dimension", ErrInvalidArgument, s)
	}
	if s[0] != Dynamic && s[0] <= 0 {
		return fmt.Errorf("%w: invalid batch dimension %d", ErrInvalidArgument, s[0])
	}
	for i, dim := range s[1:] {
		if dim <= 0 {
			return fmt.Errorf("%w: invalid dimension at index %d: %d (must be > 0)", ErrInvalidArgument, i+1, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String renders the shape with "?" for dynamic dimensions.
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		if dim == Dynamic {
			parts[i] = "?"
		} else {
			parts[i] = fmt.Sprint(dim)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
