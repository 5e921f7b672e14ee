package optim

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/nn"
)

// Rprop implements resilient propagation.
//
// Every parameter has its own step size. Each epoch, after a full
// forward/backward pass:
//
//	if grad * prevGrad > 0: step *= Increase
//	if grad * prevGrad < 0: step *= Decrease
//	param -= sign(grad) * step
//	prevGrad = grad
//
// Parameters whose gradient is exactly zero are left unchanged. Steps are
// not clamped unless StepMin or StepMax is set.
type Rprop struct {
	cfg      RpropConfig
	step     []float64
	prevGrad []float64
}

// RpropConfig holds configuration for Rprop.
type RpropConfig struct {
	InitialStep float64 `yaml:"initial_step"` // Starting step size (default: 0.1)
	Increase    float64 `yaml:"increase"`     // Factor on sign agreement, >= 1 (default: 1.2)
	Decrease    float64 `yaml:"decrease"`     // Factor on sign flip, <= 1 (default: 0.5)
	StepMin     float64 `yaml:"step_min"`     // Lower clamp, 0 disables
	StepMax     float64 `yaml:"step_max"`     // Upper clamp, 0 disables
}

// NewRprop creates an Rprop optimizer.
func NewRprop(config RpropConfig) *Rprop {
	if config.InitialStep == 0 {
		config.InitialStep = 0.1
	}
	if config.Increase == 0 {
		config.Increase = 1.2
	}
	if config.Decrease == 0 {
		config.Decrease = 0.5
	}
	return &Rprop{cfg: config}
}

// Epoch runs one forward/backward pass over all of x and applies the update.
func (r *Rprop) Epoch(net *nn.Network, x, y *mat.Dense) error {
	if err := checkBatch(x, y); err != nil {
		return err
	}
	step, err := ensureState(r.step, net, r.cfg.InitialStep, "rprop step")
	if err != nil {
		return err
	}
	prev, err := ensureState(r.prevGrad, net, 0, "rprop previous gradient")
	if err != nil {
		return err
	}
	r.step, r.prevGrad = step, prev

	if err := net.Step(x, y); err != nil {
		return err
	}
	grad := net.FlattenGrads()
	params := net.FlattenParams()

	for i, g := range grad {
		switch agreement := g * r.prevGrad[i]; {
		case agreement > 0:
			r.step[i] *= r.cfg.Increase
		case agreement < 0:
			r.step[i] *= r.cfg.Decrease
		}
		r.step[i] = r.clamp(r.step[i])

		switch {
		case g > 0:
			params[i] -= r.step[i]
		case g < 0:
			params[i] += r.step[i]
		}
	}
	r.prevGrad = grad
	return net.UnflattenParams(params)
}

func (r *Rprop) clamp(s float64) float64 {
	if r.cfg.StepMax > 0 {
		s = math.Min(s, r.cfg.StepMax)
	}
	if r.cfg.StepMin > 0 {
		s = math.Max(s, r.cfg.StepMin)
	}
	return s
}

// Name returns "rprop".
func (r *Rprop) Name() string { return KindRprop }

// Steps returns the per-parameter step sizes, aligned with FlattenParams.
func (r *Rprop) Steps() []float64 { return r.step }

// PrevGrad returns the gradient seen in the previous epoch.
func (r *Rprop) PrevGrad() []float64 { return r.prevGrad }
