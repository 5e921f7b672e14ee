package nn

import (
	"fmt"
	"math/rand"
	"strings"
)

// Output layer names accepted by Topology.
const (
	OutputSoftmax = "softmax"
	OutputLinear  = "linear"
)

// LayerSpec describes one fully connected layer.
type LayerSpec struct {
	Units      int     `yaml:"units"`
	Stddev     float64 `yaml:"stddev"`
	Activation string  `yaml:"activation"` // "sigmoid", "tanh", "relu", or "" / "none"
}

// Topology is the construction-time description of a Network.
type Topology struct {
	Inputs int         `yaml:"inputs"`
	Layers []LayerSpec `yaml:"layers"`
	Output string      `yaml:"output"` // "softmax" (default) or "linear"
}

// Validate checks the topology without building it.
func (t Topology) Validate() error {
	if t.Inputs <= 0 {
		return fmt.Errorf("%w: inputs must be > 0, got %d", ErrInvalidArgument, t.Inputs)
	}
	if len(t.Layers) == 0 {
		return fmt.Errorf("%w: topology has no layers", ErrInvalidArgument)
	}
	for i, spec := range t.Layers {
		if spec.Units <= 0 {
			return fmt.Errorf("%w: layer %d: units must be > 0, got %d", ErrInvalidArgument, i, spec.Units)
		}
		if spec.Stddev < 0 {
			return fmt.Errorf("%w: layer %d: negative stddev %g", ErrInvalidArgument, i, spec.Stddev)
		}
		if _, err := activationFor(spec.Activation); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	switch strings.ToLower(t.Output) {
	case "", OutputSoftmax, OutputLinear:
	default:
		return fmt.Errorf("%w: unknown output layer %q", ErrInvalidArgument, t.Output)
	}
	return nil
}

// Classes returns the width of the last layer.
func (t Topology) Classes() int {
	if len(t.Layers) == 0 {
		return 0
	}
	return t.Layers[len(t.Layers)-1].Units
}

// Build constructs the Network described by t, drawing initial weights from rng.
func (t Topology) Build(rng *rand.Rand) (*Network, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	in, err := NewInputLayer(Shape{Dynamic, t.Inputs})
	if err != nil {
		return nil, err
	}
	layers := []Layer{in}
	for i, spec := range t.Layers {
		act, err := activationFor(spec.Activation)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		fc, err := NewFullyConnected(layers[len(layers)-1], spec.Units, spec.Stddev, act, rng)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		layers = append(layers, fc)
	}

	var out OutputLayer
	if strings.ToLower(t.Output) == OutputLinear {
		out, err = NewLinearOutput(layers[len(layers)-1])
	} else {
		out, err = NewSoftmaxOutput(layers[len(layers)-1])
	}
	if err != nil {
		return nil, err
	}
	return NewNetwork(append(layers, out)...)
}

// activationFor maps "" and "none" to no activation.
func activationFor(name string) (*Activation, error) {
	switch strings.ToLower(name) {
	case "", "none", "identity":
		return nil, nil
	}
	return NewActivation(strings.ToLower(name))
}
