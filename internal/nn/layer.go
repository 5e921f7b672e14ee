// Package nn implements a feed-forward network engine with hand-derived
// gradients.
//
// This package provides:
//   - Layer capability interfaces: Layer, Differentiable, Parameterized, OutputLayer
//   - InputLayer: shape holder and identity passthrough
//   - FullyConnected: affine transform with an optional Activation
//   - LinearOutput / SoftmaxOutput: output layers carrying a loss
//   - Network: ordered layer stack with forward/backward passes and the
//     flat parameter vector shared by every optimizer
//
// All batches are gonum dense matrices with one sample per row.
package nn

import "gonum.org/v1/gonum/mat"

// Layer is the capability every layer in a Network has.
type Layer interface {
	// Forward computes the layer output for a batch [n, in].
	Forward(x *mat.Dense) (*mat.Dense, error)

	// OutputShape reports the shape of Forward's result, with Dynamic as
	// the batch dimension.
	OutputShape() Shape
}

// Differentiable is a layer that can pass a gradient back to its input.
//
// Backward must follow a Forward call on the same batch: it consumes the
// caches Forward wrote.
type Differentiable interface {
	Layer

	// Backward takes dLoss/dOutput and returns dLoss/dInput. Parameterized
	// layers also fill their gradient buffers.
	Backward(grad *mat.Dense) (*mat.Dense, error)
}

// Parameterized is a layer owning trainable tensors.
type Parameterized interface {
	Layer

	// Params returns the weight matrix and bias vector by reference.
	Params() (*mat.Dense, *mat.VecDense)

	// GradParams returns the gradients computed by the last Backward call.
	GradParams() (*mat.Dense, *mat.VecDense)

	// Parameters returns the trainable tensors in flattening order:
	// weight first, then bias.
	Parameters() []*Parameter
}

// OutputLayer terminates a Network and owns its loss.
//
// Backpropagation is seeded with InputGrad. The Backward methods of the
// output layers in this package always fail with ErrUnsupportedOperation.
type OutputLayer interface {
	Layer

	// InputGrad returns dLoss/dInput given targets y and predictions yPred.
	InputGrad(y, yPred *mat.Dense) (*mat.Dense, error)

	// Loss returns the batch-mean loss of yPred against y.
	Loss(y, yPred *mat.Dense) (float64, error)
}
