package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/parallel"
)

// logEps keeps log() finite when a predicted probability underflows to 0.
const logEps = 1e-10

// LinearOutput is an identity output layer with squared-error loss.
// Use it for regression targets.
type LinearOutput struct {
	inShape Shape
}

// NewLinearOutput creates a linear output layer fed by prev.
func NewLinearOutput(prev Layer) (*LinearOutput, error) {
	if prev == nil {
		return nil, fmt.Errorf("%w: linear output needs an input layer", ErrInvalidArgument)
	}
	return &LinearOutput{inShape: prev.OutputShape()}, nil
}

// Forward returns x unchanged.
func (l *LinearOutput) Forward(x *mat.Dense) (*mat.Dense, error) {
	if err := checkBatch("linear output", x, l.inShape); err != nil {
		return nil, err
	}
	return x, nil
}

// OutputShape returns the shape of the layer input.
func (l *LinearOutput) OutputShape() Shape {
	return l.inShape.Clone()
}

// Backward always fails: start backpropagation from InputGrad.
func (l *LinearOutput) Backward(*mat.Dense) (*mat.Dense, error) {
	return nil, fmt.Errorf("%w: backward on linear output, use InputGrad", ErrUnsupportedOperation)
}

// InputGrad returns yPred - y, the derivative of the squared error.
func (l *LinearOutput) InputGrad(y, yPred *mat.Dense) (*mat.Dense, error) {
	return residual("linear output", y, yPred)
}

// Loss returns mean over the batch of 0.5 * sum((y - yPred)²).
func (l *LinearOutput) Loss(y, yPred *mat.Dense) (float64, error) {
	if err := sameDims("linear output loss", y, yPred); err != nil {
		return 0, err
	}
	n, c := y.Dims()
	var total float64
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			d := y.At(i, j) - yPred.At(i, j)
			total += 0.5 * d * d
		}
	}
	return total / float64(n), nil
}

// SoftmaxOutput turns scores into class probabilities and scores them with
// categorical cross-entropy. Use it for classification with one-hot targets.
type SoftmaxOutput struct {
	inShape Shape
	par     parallel.Config
}

// NewSoftmaxOutput creates a softmax output layer fed by prev.
func NewSoftmaxOutput(prev Layer) (*SoftmaxOutput, error) {
	if prev == nil {
		return nil, fmt.Errorf("%w: softmax output needs an input layer", ErrInvalidArgument)
	}
	return &SoftmaxOutput{inShape: prev.OutputShape(), par: parallel.DefaultConfig()}, nil
}

// Forward returns the row-wise softmax of x.
func (l *SoftmaxOutput) Forward(x *mat.Dense) (*mat.Dense, error) {
	if err := checkBatch("softmax output", x, l.inShape); err != nil {
		return nil, err
	}
	return softmax(x, l.par), nil
}

// OutputShape returns the shape of the layer input.
func (l *SoftmaxOutput) OutputShape() Shape {
	return l.inShape.Clone()
}

// Backward always fails: start backpropagation from InputGrad.
func (l *SoftmaxOutput) Backward(*mat.Dense) (*mat.Dense, error) {
	return nil, fmt.Errorf("%w: backward on softmax output, use InputGrad", ErrUnsupportedOperation)
}

// InputGrad returns yPred - y.
//
// This is the gradient of cross-entropy with respect to the softmax input,
// and is only correct because yPred already went through Forward.
func (l *SoftmaxOutput) InputGrad(y, yPred *mat.Dense) (*mat.Dense, error) {
	return residual("softmax output", y, yPred)
}

// Loss returns mean over the batch of -sum(y * log(yPred + 1e-10)).
//
// y is expected to be one-hot and yPred to hold probabilities produced by
// Forward; no second softmax is applied here.
func (l *SoftmaxOutput) Loss(y, yPred *mat.Dense) (float64, error) {
	if err := sameDims("softmax output loss", y, yPred); err != nil {
		return 0, err
	}
	n, c := y.Dims()
	var total float64
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			if t := y.At(i, j); t != 0 {
				total -= t * math.Log(yPred.At(i, j)+logEps)
			}
		}
	}
	return total / float64(n), nil
}

// Softmax computes the row-wise softmax of x.
//
// The row maximum is subtracted before exponentiating, so the result is
// finite for any finite input and unchanged by adding a constant to a row.
// A row holding +Inf splits the mass evenly over its +Inf entries. NaN
// inputs yield a NaN row.
func Softmax(x *mat.Dense) *mat.Dense {
	return softmax(x, parallel.DefaultConfig())
}

func softmax(x *mat.Dense, cfg parallel.Config) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	parallel.ForRows(r, c, func(i int) {
		src := x.RawRowView(i)
		dst := out.RawRowView(i)
		maxV := math.Inf(-1)
		for _, v := range src {
			maxV = math.Max(maxV, v)
		}
		if math.IsInf(maxV, 1) {
			softmaxInf(src, dst)
			return
		}
		var sum float64
		for j, v := range src {
			e := math.Exp(v - maxV)
			dst[j] = e
			sum += e
		}
		for j := range dst {
			dst[j] /= sum
		}
	}, cfg)
	return out
}

// softmaxInf is the limit of softmax for a row whose maximum is +Inf.
func softmaxInf(src, dst []float64) {
	var n float64
	for _, v := range src {
		if math.IsInf(v, 1) {
			n++
		}
	}
	for j, v := range src {
		dst[j] = 0
		if math.IsInf(v, 1) {
			dst[j] = 1 / n
		}
	}
}

func residual(who string, y, yPred *mat.Dense) (*mat.Dense, error) {
	if err := sameDims(who, y, yPred); err != nil {
		return nil, err
	}
	var g mat.Dense
	g.Sub(yPred, y)
	return &g, nil
}

func sameDims(who string, y, yPred *mat.Dense) error {
	if y == nil || yPred == nil {
		return fmt.Errorf("%w: %s: nil batch", ErrInvalidArgument, who)
	}
	yr, yc := y.Dims()
	pr, pc := yPred.Dims()
	if yr != pr || yc != pc {
		return fmt.Errorf("%w: %s: targets are %dx%d, predictions are %dx%d", ErrShapeMismatch, who, yr, yc, pr, pc)
	}
	if yr == 0 {
		return fmt.Errorf("%w: %s: empty batch", ErrInvalidArgument, who)
	}
	return nil
}
