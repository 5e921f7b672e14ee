package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/parallel"
)

// ActivationKind selects one of the supported element-wise nonlinearities.
type ActivationKind int

// Supported activations.
const (
	Sigmoid ActivationKind = iota
	Tanh
	ReLU
)

var activationNames = map[string]ActivationKind{
	"sigmoid": Sigmoid,
	"tanh":    Tanh,
	"relu":    ReLU,
}

// String returns the name accepted by NewActivation.
func (k ActivationKind) String() string {
	switch k {
	case Sigmoid:
		return "sigmoid"
	case Tanh:
		return "tanh"
	case ReLU:
		return "relu"
	default:
		return fmt.Sprintf("ActivationKind(%d)", int(k))
	}
}

// Activation applies a nonlinearity and remembers its last input so the
// derivative can be evaluated during the following backward pass.
//
// An Activation belongs to exactly one layer; sharing an instance between
// layers would let one layer's forward pass clobber the other's cache.
type Activation struct {
	kind ActivationKind
	f    func(float64) float64
	df   func(float64) float64
	z    *mat.Dense
	par  parallel.Config
}

// NewActivation binds name to its function/derivative pair.
//
// Recognized names are "sigmoid", "tanh" and "relu".
func NewActivation(name string) (*Activation, error) {
	kind, ok := activationNames[name]
	if !ok {
		return nil, fmt.Errorf("%w: invalid activation function %q", ErrInvalidArgument, name)
	}
	return newActivation(kind), nil
}

func newActivation(kind ActivationKind) *Activation {
	a := &Activation{kind: kind, par: parallel.DefaultConfig()}
	switch kind {
	case Sigmoid:
		a.f, a.df = sigmoid, sigmoidDeriv
	case Tanh:
		a.f, a.df = math.Tanh, tanhDeriv
	case ReLU:
		a.f, a.df = relu, reluDeriv
	}
	return a
}

// Kind returns the activation kind.
func (a *Activation) Kind() ActivationKind {
	return a.kind
}

// Forward caches x and returns f(x) element-wise.
func (a *Activation) Forward(x *mat.Dense) *mat.Dense {
	a.z = x
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	apply(out, x, a.f, a.par)
	return out
}

// Backward returns grad * f'(z) element-wise, using the input cached by the
// last Forward call.
func (a *Activation) Backward(grad *mat.Dense) (*mat.Dense, error) {
	if a.z == nil {
		return nil, fmt.Errorf("%s activation: %w", a.kind, ErrNoForward)
	}
	r, c := grad.Dims()
	zr, zc := a.z.Dims()
	if r != zr || c != zc {
		return nil, fmt.Errorf("%w: %s activation gradient is %dx%d, cached input is %dx%d",
			ErrShapeMismatch, a.kind, r, c, zr, zc)
	}
	out := mat.NewDense(r, c, nil)
	apply(out, a.z, a.df, a.par)
	out.MulElem(out, grad)
	return out, nil
}

// apply writes f(src) into dst; both must be freshly allocated or compact.
func apply(dst, src *mat.Dense, f func(float64) float64, cfg parallel.Config) {
	r, c := src.Dims()
	raw := dst.RawMatrix()
	parallel.ForRows(r, c, func(i int) {
		row := raw.Data[i*raw.Stride : i*raw.Stride+c]
		for j := range row {
			row[j] = f(src.At(i, j))
		}
	}, cfg)
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func sigmoidDeriv(x float64) float64 {
	s := sigmoid(x)
	return s * (1 - s)
}

func tanhDeriv(x float64) float64 {
	t := math.Tanh(x)
	return 1 - t*t
}

func relu(x float64) float64 {
	return math.Max(0, x)
}

// reluDeriv is 0 at x == 0.
func reluDeriv(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}
