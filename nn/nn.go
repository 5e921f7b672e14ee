// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/nn"
)

// Errors

var (
	// ErrInvalidArgument reports a bad constructor or function argument.
	ErrInvalidArgument = nn.ErrInvalidArgument
	// ErrUnsupportedOperation reports Backward called on an output layer.
	ErrUnsupportedOperation = nn.ErrUnsupportedOperation
	// ErrShapeMismatch reports incompatible batch or parameter dimensions.
	ErrShapeMismatch = nn.ErrShapeMismatch
	// ErrNoForward reports a backward pass without a preceding forward pass.
	ErrNoForward = nn.ErrNoForward
	// ErrInvalidTopology reports a layer stack NewNetwork cannot accept.
	ErrInvalidTopology = nn.ErrInvalidTopology
)

// Interfaces

// Layer is implemented by every layer.
type Layer = nn.Layer

// Differentiable is a Layer that can backpropagate.
type Differentiable = nn.Differentiable

// Parameterized is a Layer owning trainable tensors.
type Parameterized = nn.Parameterized

// OutputLayer terminates a Network and defines its loss.
type OutputLayer = nn.OutputLayer

// Shapes and parameters

// Shape is a layer shape; the batch dimension may be Dynamic.
type Shape = nn.Shape

// Dynamic marks a batch dimension of any size.
const Dynamic = nn.Dynamic

// Parameter is a named trainable tensor with its gradient buffer.
type Parameter = nn.Parameter

// Activations

// Activation is an element-wise nonlinearity with its derivative.
type Activation = nn.Activation

// ActivationKind identifies an activation function.
type ActivationKind = nn.ActivationKind

// Activation kinds.
const (
	Sigmoid = nn.Sigmoid
	Tanh    = nn.Tanh
	ReLU    = nn.ReLU
)

// NewActivation creates an activation by name: "sigmoid", "tanh" or "relu".
func NewActivation(name string) (*Activation, error) {
	return nn.NewActivation(name)
}

// Layers

// InputLayer declares the input shape of a network.
type InputLayer = nn.InputLayer

// NewInputLayer creates an input layer. shape must be (batch, features).
func NewInputLayer(shape Shape) (*InputLayer, error) {
	return nn.NewInputLayer(shape)
}

// FullyConnected is a dense layer y = act(x·W + b).
type FullyConnected = nn.FullyConnected

// NewFullyConnected creates a dense layer fed by prev with weights drawn
// from N(0, stddev²). activation may be nil.
func NewFullyConnected(prev Layer, units int, stddev float64, activation *Activation, rng *rand.Rand) (*FullyConnected, error) {
	return nn.NewFullyConnected(prev, units, stddev, activation, rng)
}

// Output layers

// LinearOutput is an identity output with squared-error loss.
type LinearOutput = nn.LinearOutput

// NewLinearOutput creates a linear output layer fed by prev.
func NewLinearOutput(prev Layer) (*LinearOutput, error) {
	return nn.NewLinearOutput(prev)
}

// SoftmaxOutput is a softmax output with cross-entropy loss.
type SoftmaxOutput = nn.SoftmaxOutput

// NewSoftmaxOutput creates a softmax output layer fed by prev.
func NewSoftmaxOutput(prev Layer) (*SoftmaxOutput, error) {
	return nn.NewSoftmaxOutput(prev)
}

// Network

// Network is an ordered stack of layers ending in an OutputLayer.
type Network = nn.Network

// NewNetwork validates and assembles layers into a Network.
func NewNetwork(layers ...Layer) (*Network, error) {
	return nn.NewNetwork(layers...)
}

// Topology is a declarative network description.
type Topology = nn.Topology

// LayerSpec describes one dense layer of a Topology.
type LayerSpec = nn.LayerSpec

// Output layer names for Topology.Output.
const (
	OutputSoftmax = nn.OutputSoftmax
	OutputLinear  = nn.OutputLinear
)

// Utilities

// OneHot encodes labels as rows of a [len(labels), numClasses] matrix.
func OneHot(labels []int, numClasses int) (*mat.Dense, error) {
	return nn.OneHot(labels, numClasses)
}

// Unhot returns the argmax column of every row.
func Unhot(m mat.Matrix) []int {
	return nn.Unhot(m)
}

// Softmax returns the row-wise softmax of x.
func Softmax(x *mat.Dense) *mat.Dense {
	return nn.Softmax(x)
}
