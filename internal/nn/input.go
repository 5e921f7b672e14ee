package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// InputLayer holds the network's input shape and passes batches through.
type InputLayer struct {
	shape Shape
}

// NewInputLayer creates an input layer for batches of the given features.
//
// Pass Dynamic as the batch dimension to accept any batch size:
//
//	in, err := nn.NewInputLayer(nn.Shape{nn.Dynamic, 784})
func NewInputLayer(shape Shape) (*InputLayer, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("input layer: %w", err)
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: input layer expects (batch, features), got %v", ErrInvalidArgument, shape)
	}
	return &InputLayer{shape: shape.Clone()}, nil
}

// Forward returns x unchanged after checking its feature count.
func (l *InputLayer) Forward(x *mat.Dense) (*mat.Dense, error) {
	if err := checkBatch("input layer", x, l.shape); err != nil {
		return nil, err
	}
	return x, nil
}

// Backward returns grad unchanged.
func (l *InputLayer) Backward(grad *mat.Dense) (*mat.Dense, error) {
	return grad, nil
}

// OutputShape returns the configured input shape.
func (l *InputLayer) OutputShape() Shape {
	return l.shape.Clone()
}

// checkBatch validates a [n, features] batch against shape.
func checkBatch(who string, x *mat.Dense, shape Shape) error {
	if x == nil {
		return fmt.Errorf("%w: %s: nil batch", ErrInvalidArgument, who)
	}
	n, c := x.Dims()
	if c != shape.Features() {
		return fmt.Errorf("%w: %s expects %d features, got %d", ErrShapeMismatch, who, shape.Features(), c)
	}
	if shape[0] != Dynamic && n != shape[0] {
		return fmt.Errorf("%w: %s expects batch of %d, got %d", ErrShapeMismatch, who, shape[0], n)
	}
	return nil
}
