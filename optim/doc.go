// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the update strategies used to train an nn.Network.
//
// # Overview
//
// This package contains:
//   - GD: full-batch gradient descent
//   - SGD: mini-batch stochastic gradient descent
//   - Momentum: gradient descent with a velocity term
//   - Rprop: resilient propagation with per-parameter step sizes
//   - Optimizer interface: one Epoch call per training epoch
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/mlp/nn"
//	    "github.com/born-ml/mlp/optim"
//	)
//
//	func train(net *nn.Network, x, y *mat.Dense) error {
//	    optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.35, BatchSize: 100})
//	    for epoch := range 30 {
//	        if err := optimizer.Epoch(net, x, y); err != nil {
//	            return fmt.Errorf("epoch %d: %w", epoch, err)
//	        }
//	    }
//	    return nil
//	}
//
// # Optimizers
//
// GD and SGD apply param -= lr * grad. SGD walks the rows in fixed
// contiguous batches and skips a trailing partial batch.
//
// Momentum:
//
//	velocity = -lr * grad + mu * velocity
//	param   += velocity
//
// Rprop grows a parameter's step by Increase while its gradient keeps its
// sign, shrinks it by Decrease on a sign flip, and moves the parameter by
// the step against the gradient sign.
//
// All strategies read and write parameters through the network's flat
// parameter order, so their state vectors line up with
// nn.Network.FlattenParams.
package optim
