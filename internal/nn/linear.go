package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// FullyConnected implements a fully connected (dense) layer.
//
// Performs the transformation: y = f(x @ W + b)
// where:
//   - x is the input batch with shape [batch_size, in_features]
//   - W is the weight matrix with shape [in_features, out_features]
//   - b is the bias vector with shape [out_features]
//   - f is the optional activation (identity when nil)
//
// Example:
//
//	relu, _ := nn.NewActivation("relu")
//	hidden, err := nn.NewFullyConnected(input, 100, 0.01, relu, rng)
type FullyConnected struct {
	inFeatures  int
	outFeatures int
	activation  *Activation

	weight *Parameter // [in_features, out_features]
	bias   *Parameter // [out_features]

	// Views over the parameter buffers.
	w  *mat.Dense
	b  *mat.VecDense
	dw *mat.Dense
	db *mat.VecDense

	lastInput *mat.Dense
}

// NewFullyConnected creates a dense layer fed by prev.
//
// The number of input features is taken from prev.OutputShape(). Weights
// and biases are drawn from N(0, stddev²) using rng. activation may be nil
// for a purely affine layer.
func NewFullyConnected(prev Layer, units int, stddev float64, activation *Activation, rng *rand.Rand) (*FullyConnected, error) {
	if prev == nil {
		return nil, fmt.Errorf("%w: fully connected layer needs an input layer", ErrInvalidArgument)
	}
	if units <= 0 {
		return nil, fmt.Errorf("%w: fully connected layer needs units > 0, got %d", ErrInvalidArgument, units)
	}
	if stddev < 0 {
		return nil, fmt.Errorf("%w: negative init stddev %g", ErrInvalidArgument, stddev)
	}
	inShape := prev.OutputShape()
	if len(inShape) != 2 || inShape.Features() <= 0 {
		return nil, fmt.Errorf("%w: fully connected layer needs (batch, features) input, got %v", ErrShapeMismatch, inShape)
	}

	l := newFullyConnected(inShape.Features(), units, activation)
	Normal(l.weight.value, stddev, rng)
	Normal(l.bias.value, stddev, rng)
	return l, nil
}

func newFullyConnected(in, out int, activation *Activation) *FullyConnected {
	weight := newParameter("weight", in, out)
	bias := newParameter("bias", out)
	return &FullyConnected{
		inFeatures:  in,
		outFeatures: out,
		activation:  activation,
		weight:      weight,
		bias:        bias,
		w:           weight.matrix(),
		b:           bias.vector(),
		dw:          weight.gradMatrix(),
		db:          bias.gradVector(),
	}
}

// Forward computes the output of the layer.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *FullyConnected) Forward(x *mat.Dense) (*mat.Dense, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: fully connected forward: nil batch", ErrInvalidArgument)
	}
	n, c := x.Dims()
	if c != l.inFeatures {
		return nil, fmt.Errorf("%w: fully connected layer expects %d input features, got %d",
			ErrShapeMismatch, l.inFeatures, c)
	}
	l.lastInput = x

	z := mat.NewDense(n, l.outFeatures, nil)
	z.Mul(x, l.w)
	bias := l.b.RawVector().Data
	for i := 0; i < n; i++ {
		row := z.RawRowView(i)
		for j := range row {
			row[j] += bias[j]
		}
	}

	if l.activation == nil {
		return z, nil
	}
	return l.activation.Forward(z), nil
}

// Backward propagates grad through the layer.
//
// Fills the gradient buffers with batch means:
//
//	dW = x^T @ g / n
//	db = mean(g, axis=0)
//
// and returns g @ W^T, where g is grad after the activation derivative.
func (l *FullyConnected) Backward(grad *mat.Dense) (*mat.Dense, error) {
	if l.lastInput == nil {
		return nil, fmt.Errorf("fully connected layer: %w", ErrNoForward)
	}
	if l.activation != nil {
		var err error
		grad, err = l.activation.Backward(grad)
		if err != nil {
			return nil, err
		}
	}

	n, c := grad.Dims()
	inRows, _ := l.lastInput.Dims()
	if c != l.outFeatures || n != inRows {
		return nil, fmt.Errorf("%w: fully connected gradient is %dx%d, want %dx%d",
			ErrShapeMismatch, n, c, inRows, l.outFeatures)
	}

	l.dw.Mul(l.lastInput.T(), grad)
	l.dw.Scale(1/float64(n), l.dw)

	db := l.db.RawVector().Data
	for j := range db {
		db[j] = 0
	}
	for i := 0; i < n; i++ {
		for j, v := range grad.RawRowView(i) {
			db[j] += v
		}
	}
	for j := range db {
		db[j] /= float64(n)
	}

	inputGrad := mat.NewDense(n, l.inFeatures, nil)
	inputGrad.Mul(grad, l.w.T())
	return inputGrad, nil
}

// OutputShape returns (Dynamic, out_features).
func (l *FullyConnected) OutputShape() Shape {
	return Shape{Dynamic, l.outFeatures}
}

// Params returns the weight matrix and bias vector. Both alias live
// storage, so in-place edits change the layer.
func (l *FullyConnected) Params() (*mat.Dense, *mat.VecDense) {
	return l.w, l.b
}

// GradParams returns the gradients from the last Backward call.
func (l *FullyConnected) GradParams() (*mat.Dense, *mat.VecDense) {
	return l.dw, l.db
}

// Parameters returns [weight, bias].
func (l *FullyConnected) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Activation returns the attached activation, or nil.
func (l *FullyConnected) Activation() *Activation {
	return l.activation
}

// InFeatures returns the number of input features.
func (l *FullyConnected) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *FullyConnected) OutFeatures() int {
	return l.outFeatures
}
