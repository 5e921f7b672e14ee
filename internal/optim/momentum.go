package optim

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/nn"
)

// Momentum implements full-batch gradient descent with momentum.
//
// Update rule, once per epoch:
//
//	velocity = -lr * gradient + mu * velocity
//	param    = param + velocity
//
// The velocity is kept across epochs and starts at zero.
type Momentum struct {
	lr       float64
	mu       float64
	velocity []float64
}

// MomentumConfig holds configuration for Momentum.
type MomentumConfig struct {
	LR float64 // Learning rate (default: 0.1)
	Mu float64 // Momentum factor, range [0, 1) (default: 0.7)
}

// NewMomentum creates a momentum optimizer.
func NewMomentum(config MomentumConfig) *Momentum {
	if config.LR == 0 {
		config.LR = 0.1
	}
	if config.Mu == 0 {
		config.Mu = 0.7
	}
	return &Momentum{lr: config.LR, mu: config.Mu}
}

// Epoch runs one forward/backward pass over all of x and applies the update.
func (m *Momentum) Epoch(net *nn.Network, x, y *mat.Dense) error {
	if err := checkBatch(x, y); err != nil {
		return err
	}
	v, err := ensureState(m.velocity, net, 0, "velocity")
	if err != nil {
		return err
	}
	m.velocity = v

	if err := net.Step(x, y); err != nil {
		return err
	}

	floats.Scale(m.mu, m.velocity)
	floats.AddScaled(m.velocity, -m.lr, net.FlattenGrads())

	params := net.FlattenParams()
	floats.Add(params, m.velocity)
	return net.UnflattenParams(params)
}

// Name returns "gdm".
func (m *Momentum) Name() string { return KindMomentum }

// Velocity returns the current velocity, aligned with FlattenParams.
func (m *Momentum) Velocity() []float64 { return m.velocity }

// GetLR returns the learning rate.
func (m *Momentum) GetLR() float64 { return m.lr }

// SetLR updates the learning rate.
func (m *Momentum) SetLR(lr float64) { m.lr = lr }
