// Package gradcheck compares backpropagated gradients against central
// finite differences of the network loss.
package gradcheck

import (
	"errors"
	"fmt"
	"log"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/nn"
)

// ErrGradientMismatch is returned when a parameter's analytic gradient
// disagrees with the numeric one by at least Options.Epsilon.
var ErrGradientMismatch = errors.New("gradient check failed")

// DefaultEpsilon is both the finite-difference step and the tolerance.
const DefaultEpsilon = 1e-4

// Options configures Check.
type Options struct {
	Epsilon float64     // Step and tolerance (default: 1e-4)
	Logger  *log.Logger // One line per checked tensor; nil is silent
}

// Result is the outcome for one parameter tensor.
type Result struct {
	Layer     int    // Index into Network.Parameterized()
	Parameter string // "weight" or "bias"
	Size      int
	MeanError float64 // Mean |analytic - numeric|
}

// Report lists every tensor checked, in flatten order.
type Report struct {
	Results []Result
}

// MaxError returns the largest MeanError in the report.
func (r Report) MaxError() float64 {
	var m float64
	for _, res := range r.Results {
		if res.MeanError > m {
			m = res.MeanError
		}
	}
	return m
}

// Check runs one forward/backward pass over (x, y) and verifies every
// parameter tensor of net against central differences of Network.Loss.
//
// Parameter values are restored before returning, including on failure.
// The gradient buffers are left holding the analytic gradients.
func Check(net *nn.Network, x, y *mat.Dense, opts Options) (Report, error) {
	eps := opts.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	var report Report

	if err := net.Step(x, y); err != nil {
		return report, err
	}

	settings := &fd.Settings{Formula: fd.Central, Step: eps}
	for li, layer := range net.Parameterized() {
		for _, p := range layer.Parameters() {
			res, err := checkParameter(net, x, y, p, settings)
			if err != nil {
				return report, fmt.Errorf("layer %d %s: %w", li, p.Name(), err)
			}
			res.Layer = li
			report.Results = append(report.Results, res)

			if opts.Logger != nil {
				opts.Logger.Printf("layer %d %-6s %6d values  mean error %.3e", li, p.Name(), res.Size, res.MeanError)
			}
			if res.MeanError >= eps {
				return report, fmt.Errorf("%w: layer %d %s: mean error %g >= %g",
					ErrGradientMismatch, li, p.Name(), res.MeanError, eps)
			}
		}
	}
	return report, nil
}

func checkParameter(net *nn.Network, x, y *mat.Dense, p *nn.Parameter, settings *fd.Settings) (Result, error) {
	analytic := append([]float64(nil), p.Grad()...)
	original := append([]float64(nil), p.Value()...)
	defer func() {
		// Same length as p, Set cannot fail.
		_ = p.Set(original)
	}()

	var lossErr error
	loss := func(theta []float64) float64 {
		if err := p.Set(theta); err != nil {
			lossErr = err
			return 0
		}
		l, err := net.Loss(x, y)
		if err != nil {
			lossErr = err
		}
		return l
	}
	numeric := fd.Gradient(nil, loss, original, settings)
	if lossErr != nil {
		return Result{}, lossErr
	}

	diff := make([]float64, len(analytic))
	floats.SubTo(diff, analytic, numeric)
	var sum float64
	for _, d := range diff {
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return Result{
		Parameter: p.Name(),
		Size:      p.Len(),
		MeanError: sum / float64(len(diff)),
	}, nil
}
