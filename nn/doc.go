// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the feed-forward network engine: layers, activations,
// output losses and the Network container.
//
// # Overview
//
// This package contains:
//   - Layers: InputLayer, FullyConnected
//   - Activations: sigmoid, tanh, relu
//   - Output layers: LinearOutput (squared error), SoftmaxOutput (cross-entropy)
//   - Network: forward/backward passes and the flat parameter vector
//   - Topology: declarative network description, usable from YAML
//   - Utilities: OneHot, Unhot, Softmax
//
// # Basic Usage
//
//	import (
//	    "math/rand"
//
//	    "github.com/born-ml/mlp/nn"
//	)
//
//	func main() {
//	    rng := rand.New(rand.NewSource(1))
//	    in, _ := nn.NewInputLayer(nn.Shape{nn.Dynamic, 784})
//	    relu, _ := nn.NewActivation("relu")
//	    hidden, _ := nn.NewFullyConnected(in, 100, 0.01, relu, rng)
//	    logits, _ := nn.NewFullyConnected(hidden, 10, 0.01, nil, rng)
//	    out, _ := nn.NewSoftmaxOutput(logits)
//
//	    net, err := nn.NewNetwork(in, hidden, logits, out)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    probs, _ := net.Predict(x)
//	}
//
// The same network from a Topology:
//
//	net, err := nn.Topology{
//	    Inputs: 784,
//	    Layers: []nn.LayerSpec{
//	        {Units: 100, Stddev: 0.01, Activation: "relu"},
//	        {Units: 10, Stddev: 0.01},
//	    },
//	    Output: nn.OutputSoftmax,
//	}.Build(rng)
//
// # Parameters
//
// Every FullyConnected layer owns a weight [in, out] and a bias [out].
// Network.FlattenParams concatenates them in layer order, weight row-major
// first, and Network.UnflattenParams writes such a vector back. Optimizers
// and the gradient checker rely on this order.
//
// # Batches
//
// All inputs are gonum *mat.Dense matrices with one sample per row.
package nn
