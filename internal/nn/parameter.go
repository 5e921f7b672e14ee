package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Parameter is a trainable tensor together with its gradient buffer.
//
// Both buffers are allocated once and never replaced: layers hold gonum
// views over them, and the flat parameter vector is read from and written
// back into them. Values are stored row-major.
type Parameter struct {
	name  string
	shape []int
	value []float64
	grad  []float64
}

func newParameter(name string, shape ...int) *Parameter {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return &Parameter{
		name:  name,
		shape: append([]int(nil), shape...),
		value: make([]float64, n),
		grad:  make([]float64, n),
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Shape returns the tensor dimensions ([rows, cols] or [len]).
func (p *Parameter) Shape() []int {
	return p.shape
}

// Len returns the number of scalars in the parameter.
func (p *Parameter) Len() int {
	return len(p.value)
}

// Value returns the live value buffer. Writes are visible to the layer.
func (p *Parameter) Value() []float64 {
	return p.value
}

// Grad returns the gradient buffer filled by the last backward pass.
func (p *Parameter) Grad() []float64 {
	return p.grad
}

// Set copies src into the live value buffer.
func (p *Parameter) Set(src []float64) error {
	if len(src) != len(p.value) {
		return fmt.Errorf("%w: parameter %s has %d values, got %d", ErrShapeMismatch, p.name, len(p.value), len(src))
	}
	copy(p.value, src)
	return nil
}

func (p *Parameter) matrix() *mat.Dense {
	return mat.NewDense(p.shape[0], p.shape[1], p.value)
}

func (p *Parameter) gradMatrix() *mat.Dense {
	return mat.NewDense(p.shape[0], p.shape[1], p.grad)
}

func (p *Parameter) vector() *mat.VecDense {
	return mat.NewVecDense(len(p.value), p.value)
}

func (p *Parameter) gradVector() *mat.VecDense {
	return mat.NewVecDense(len(p.grad), p.grad)
}
