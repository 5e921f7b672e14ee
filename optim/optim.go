// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/mlp/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config selects and parameterizes an optimizer for New.
type Config = optim.Config

// ErrUnknownOptimizer is returned by New for an unrecognized kind.
var ErrUnknownOptimizer = optim.ErrUnknownOptimizer

// Optimizer kinds accepted by New.
const (
	KindGD       = optim.KindGD
	KindSGD      = optim.KindSGD
	KindMomentum = optim.KindMomentum
	KindRprop    = optim.KindRprop
)

// New creates the optimizer described by cfg.
func New(cfg Config) (Optimizer, error) {
	return optim.New(cfg)
}

// GD (full-batch gradient descent)

// GD represents full-batch gradient descent.
type GD = optim.GD

// GDConfig contains configuration for GD.
type GDConfig = optim.GDConfig

// NewGD creates a new GD optimizer.
func NewGD(config GDConfig) *GD {
	return optim.NewGD(config)
}

// SGD (mini-batch stochastic gradient descent)

// SGD represents mini-batch gradient descent.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// Momentum

// Momentum represents gradient descent with momentum.
type Momentum = optim.Momentum

// MomentumConfig contains configuration for Momentum.
type MomentumConfig = optim.MomentumConfig

// NewMomentum creates a new Momentum optimizer.
func NewMomentum(config MomentumConfig) *Momentum {
	return optim.NewMomentum(config)
}

// Rprop (resilient propagation)

// Rprop represents resilient propagation.
type Rprop = optim.Rprop

// RpropConfig contains configuration for Rprop.
type RpropConfig = optim.RpropConfig

// NewRprop creates a new Rprop optimizer.
func NewRprop(config RpropConfig) *Rprop {
	return optim.NewRprop(config)
}
