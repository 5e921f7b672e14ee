// Package optim implements the training-update strategies of the engine.
//
// This package provides:
//   - Optimizer interface: one call per training epoch
//   - GD: full-batch gradient descent
//   - SGD: mini-batch stochastic gradient descent
//   - Momentum: gradient descent with a velocity term
//   - Rprop: resilient propagation (sign-based per-parameter step sizes)
//
// Every strategy reads gradients and writes parameters through the
// network's flat parameter order (nn.Network.Parameters), so their state
// vectors line up with nn.Network.FlattenParams.
//
// Example usage:
//
//	opt, err := optim.New(optim.Config{Kind: optim.KindSGD, LR: 0.35, BatchSize: 100})
//	if err != nil {
//	    return err
//	}
//	for epoch := 0; epoch < epochs; epoch++ {
//	    if err := opt.Epoch(net, x, y); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/nn"
)

// ErrUnknownOptimizer is returned by New for an unrecognized Kind.
var ErrUnknownOptimizer = errors.New("unknown gradient descent type")

// Optimizer is the base interface for all update strategies.
//
// Epoch runs the strategy's forward/backward passes over (x, y) and updates
// the network parameters in place. Strategies with state (Momentum, Rprop)
// keep it across calls; an Optimizer must only be used with one network.
type Optimizer interface {
	Epoch(net *nn.Network, x, y *mat.Dense) error
	Name() string
}

// Kinds accepted by New.
const (
	KindGD       = "gd"
	KindSGD      = "sgd"
	KindMomentum = "gdm"
	KindRprop    = "rprop"
)

// Config selects and parameterizes an optimizer.
type Config struct {
	Kind      string      `yaml:"kind"`          // gd, sgd, gdm (or momentum), rprop
	LR        float64     `yaml:"learning_rate"` // GD, SGD, Momentum (default: 0.1)
	BatchSize int         `yaml:"batch_size"`    // SGD (default: 64)
	Momentum  float64     `yaml:"momentum"`      // Momentum (default: 0.7)
	Rprop     RpropConfig `yaml:"rprop"`
}

// New creates the optimizer described by cfg.
func New(cfg Config) (Optimizer, error) {
	switch strings.ToLower(cfg.Kind) {
	case KindGD:
		return NewGD(GDConfig{LR: cfg.LR}), nil
	case KindSGD, "":
		return NewSGD(SGDConfig{LR: cfg.LR, BatchSize: cfg.BatchSize}), nil
	case KindMomentum, "momentum":
		return NewMomentum(MomentumConfig{LR: cfg.LR, Mu: cfg.Momentum}), nil
	case KindRprop:
		return NewRprop(cfg.Rprop), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownOptimizer, cfg.Kind)
	}
}

// descend applies param -= lr * grad to every parameter in place.
func descend(net *nn.Network, lr float64) {
	for _, p := range net.Parameters() {
		floats.AddScaled(p.Value(), -lr, p.Grad())
	}
}

func checkBatch(x, y *mat.Dense) error {
	if x == nil || y == nil {
		return fmt.Errorf("%w: nil training batch", nn.ErrInvalidArgument)
	}
	xr, _ := x.Dims()
	yr, _ := y.Dims()
	if xr != yr {
		return fmt.Errorf("%w: %d inputs for %d targets", nn.ErrShapeMismatch, xr, yr)
	}
	return nil
}

// ensureState allocates a per-parameter state vector on first use.
func ensureState(state []float64, net *nn.Network, fill float64, what string) ([]float64, error) {
	n := net.NumParams()
	if state == nil {
		state = make([]float64, n)
		if fill != 0 {
			floats.AddConst(fill, state)
		}
		return state, nil
	}
	if len(state) != n {
		return nil, fmt.Errorf("%w: %s has %d entries, network has %d parameters", nn.ErrShapeMismatch, what, len(state), n)
	}
	return state, nil
}
