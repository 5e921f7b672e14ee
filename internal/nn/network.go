package nn

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Network is an ordered stack of layers.
//
// Element 0 is an *InputLayer, the last element is an OutputLayer and every
// layer in between is Differentiable. The sequence is fixed at construction.
//
// Example:
//
//	in, _ := nn.NewInputLayer(nn.Shape{nn.Dynamic, 784})
//	relu, _ := nn.NewActivation("relu")
//	h, _ := nn.NewFullyConnected(in, 100, 0.01, relu, rng)
//	logits, _ := nn.NewFullyConnected(h, 10, 0.01, nil, rng)
//	out, _ := nn.NewSoftmaxOutput(logits)
//	net, err := nn.NewNetwork(in, h, logits, out)
type Network struct {
	layers []Layer
	hidden []Differentiable
	output OutputLayer
	params []*Parameter
}

// NewNetwork validates the layer order and wiring and builds a Network.
func NewNetwork(layers ...Layer) (*Network, error) {
	if len(layers) < 2 {
		return nil, fmt.Errorf("%w: need at least an input and an output layer, got %d layers",
			ErrInvalidTopology, len(layers))
	}
	if _, ok := layers[0].(*InputLayer); !ok {
		return nil, fmt.Errorf("%w: layer 0 is %T, want *nn.InputLayer", ErrInvalidTopology, layers[0])
	}
	output, ok := layers[len(layers)-1].(OutputLayer)
	if !ok {
		return nil, fmt.Errorf("%w: last layer %T is not an output layer", ErrInvalidTopology, layers[len(layers)-1])
	}

	net := &Network{
		layers: append([]Layer(nil), layers...),
		output: output,
	}
	for i, layer := range layers[:len(layers)-1] {
		if _, ok := layer.(OutputLayer); ok {
			return nil, fmt.Errorf("%w: output layer %d (%T) must be last", ErrInvalidTopology, i, layer)
		}
		d, ok := layer.(Differentiable)
		if !ok {
			return nil, fmt.Errorf("%w: layer %d (%T) cannot backpropagate", ErrInvalidTopology, i, layer)
		}
		net.hidden = append(net.hidden, d)
		if p, ok := layer.(Parameterized); ok {
			net.params = append(net.params, p.Parameters()...)
		}
	}
	for i := 1; i < len(layers); i++ {
		if err := checkWiring(layers[i-1], layers[i]); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return net, nil
}

func checkWiring(prev, next Layer) error {
	out := prev.OutputShape().Features()
	var in int
	switch l := next.(type) {
	case *FullyConnected:
		in = l.InFeatures()
	case *LinearOutput:
		in = l.inShape.Features()
	case *SoftmaxOutput:
		in = l.inShape.Features()
	default:
		return nil
	}
	if in != out {
		return fmt.Errorf("%w: expects %d input features, previous layer produces %d", ErrShapeMismatch, in, out)
	}
	return nil
}

// Predict pushes x through every layer in order.
func (n *Network) Predict(x *mat.Dense) (*mat.Dense, error) {
	out := x
	for i, layer := range n.layers {
		var err error
		out, err = layer.Forward(out)
		if err != nil {
			return nil, fmt.Errorf("forward layer %d: %w", i, err)
		}
	}
	return out, nil
}

// Loss predicts x and scores the result against y with the output layer's loss.
func (n *Network) Loss(x, y *mat.Dense) (float64, error) {
	yPred, err := n.Predict(x)
	if err != nil {
		return 0, err
	}
	return n.output.Loss(y, yPred)
}

// Backpropagate seeds the backward pass with the output layer's InputGrad
// and folds it back through every other layer in reverse order.
//
// yPred must be the result of the Predict call whose caches are still in
// the layers. Returns the gradient with respect to the network input.
func (n *Network) Backpropagate(y, yPred *mat.Dense) (*mat.Dense, error) {
	grad, err := n.output.InputGrad(y, yPred)
	if err != nil {
		return nil, fmt.Errorf("output layer: %w", err)
	}
	for i := len(n.hidden) - 1; i >= 0; i-- {
		grad, err = n.hidden[i].Backward(grad)
		if err != nil {
			return nil, fmt.Errorf("backward layer %d: %w", i, err)
		}
	}
	return grad, nil
}

// Step runs one forward and one backward pass over (x, y), leaving fresh
// gradients in every parameterized layer.
func (n *Network) Step(x, y *mat.Dense) error {
	yPred, err := n.Predict(x)
	if err != nil {
		return err
	}
	_, err = n.Backpropagate(y, yPred)
	return err
}

// ClassificationError returns the fraction of rows whose predicted argmax
// differs from labels.
func (n *Network) ClassificationError(x *mat.Dense, labels []int) (float64, error) {
	yPred, err := n.Predict(x)
	if err != nil {
		return 0, err
	}
	rows, _ := yPred.Dims()
	if rows != len(labels) {
		return 0, fmt.Errorf("%w: %d predictions for %d labels", ErrShapeMismatch, rows, len(labels))
	}
	wrong := 0
	for i, p := range Unhot(yPred) {
		if p != labels[i] {
			wrong++
		}
	}
	return float64(wrong) / float64(rows), nil
}

// Parameters returns every trainable tensor in flattening order: layers in
// order, weight before bias within a layer. FlattenParams, FlattenGrads,
// UnflattenParams and the optimizers all rely on this order.
func (n *Network) Parameters() []*Parameter {
	return n.params
}

// NumParams returns the length of the flat parameter vector.
func (n *Network) NumParams() int {
	total := 0
	for _, p := range n.params {
		total += p.Len()
	}
	return total
}

// FlattenParams returns a copy of all parameters as one vector.
func (n *Network) FlattenParams() []float64 {
	flat := make([]float64, 0, n.NumParams())
	for _, p := range n.params {
		flat = append(flat, p.value...)
	}
	return flat
}

// FlattenGrads returns a copy of all gradients as one vector, aligned with
// FlattenParams.
func (n *Network) FlattenGrads() []float64 {
	flat := make([]float64, 0, n.NumParams())
	for _, p := range n.params {
		flat = append(flat, p.grad...)
	}
	return flat
}

// UnflattenParams writes flat back into the live parameter storage.
func (n *Network) UnflattenParams(flat []float64) error {
	if want := n.NumParams(); len(flat) != want {
		return fmt.Errorf("%w: parameter vector has %d values, network has %d", ErrShapeMismatch, len(flat), want)
	}
	offset := 0
	for _, p := range n.params {
		offset += copy(p.value, flat[offset:offset+p.Len()])
	}
	return nil
}

// Layers returns the layer sequence.
func (n *Network) Layers() []Layer {
	return append([]Layer(nil), n.layers...)
}

// Parameterized returns the layers that own parameters, in order.
func (n *Network) Parameterized() []Parameterized {
	var out []Parameterized
	for _, layer := range n.layers {
		if p, ok := layer.(Parameterized); ok {
			out = append(out, p)
		}
	}
	return out
}

// OutputLayer returns the final layer.
func (n *Network) OutputLayer() OutputLayer {
	return n.output
}

// InputShape returns the shape accepted by Predict.
func (n *Network) InputShape() Shape {
	return n.layers[0].OutputShape()
}

// Summary renders one line per layer.
func (n *Network) Summary() string {
	var b strings.Builder
	for i, layer := range n.layers {
		fmt.Fprintf(&b, "%d: ", i)
		switch l := layer.(type) {
		case *InputLayer:
			fmt.Fprintf(&b, "Input %v", l.OutputShape())
		case *FullyConnected:
			act := "none"
			if l.activation != nil {
				act = l.activation.Kind().String()
			}
			fmt.Fprintf(&b, "FullyConnected %d->%d (%s)", l.inFeatures, l.outFeatures, act)
		case *LinearOutput:
			fmt.Fprintf(&b, "LinearOutput %v", l.OutputShape())
		case *SoftmaxOutput:
			fmt.Fprintf(&b, "SoftmaxOutput %v", l.OutputShape())
		default:
			fmt.Fprintf(&b, "%T %v", layer, layer.OutputShape())
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "parameters: %d", n.NumParams())
	return b.String()
}
