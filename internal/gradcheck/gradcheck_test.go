package gradcheck_test

import (
	"bytes"
	"log"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/gradcheck"
	"github.com/born-ml/mlp/internal/nn"
)

func randomBatch(rng *rand.Rand, rows, cols int) *mat.Dense {
	x := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x.Set(i, j, rng.NormFloat64())
		}
	}
	return x
}

func TestCheck_DeepSoftmaxNetwork(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	net, err := nn.Topology{
		Inputs: 10,
		Layers: []nn.LayerSpec{
			{Units: 15, Stddev: 0.5, Activation: "relu"},
			{Units: 6, Stddev: 0.5, Activation: "tanh"},
			{Units: 6, Stddev: 0.5, Activation: "relu"},
		},
		Output: nn.OutputSoftmax,
	}.Build(rng)
	require.NoError(t, err)

	x := randomBatch(rng, 5, 10)
	y, err := nn.OneHot([]int{0, 3, 5, 1, 3}, 6)
	require.NoError(t, err)

	var buf bytes.Buffer
	report, err := gradcheck.Check(net, x, y, gradcheck.Options{Logger: log.New(&buf, "", 0)})
	require.NoError(t, err)

	// Three layers, weight and bias each.
	require.Len(t, report.Results, 6)
	assert.Less(t, report.MaxError(), gradcheck.DefaultEpsilon)
	assert.Equal(t, "weight", report.Results[0].Parameter)
	assert.Equal(t, 150, report.Results[0].Size)
	assert.Equal(t, "bias", report.Results[5].Parameter)
	assert.Equal(t, 2, report.Results[5].Layer)
	assert.Equal(t, 6, strings.Count(buf.String(), "\n"))
}

func TestCheck_LinearOutputSigmoid(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	net, err := nn.Topology{
		Inputs: 3,
		Layers: []nn.LayerSpec{
			{Units: 4, Stddev: 1, Activation: "sigmoid"},
			{Units: 2, Stddev: 1},
		},
		Output: nn.OutputLinear,
	}.Build(rng)
	require.NoError(t, err)

	x := randomBatch(rng, 4, 3)
	y := randomBatch(rng, 4, 2)
	report, err := gradcheck.Check(net, x, y, gradcheck.Options{})
	require.NoError(t, err)
	assert.Less(t, report.MaxError(), gradcheck.DefaultEpsilon)
}

// doubledGrad reports twice the true input gradient of the squared loss.
type doubledGrad struct {
	*nn.LinearOutput
}

func (d doubledGrad) InputGrad(y, yPred *mat.Dense) (*mat.Dense, error) {
	g, err := d.LinearOutput.InputGrad(y, yPred)
	if err != nil {
		return nil, err
	}
	g.Scale(2, g)
	return g, nil
}

func TestCheck_DetectsWrongGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	in, err := nn.NewInputLayer(nn.Shape{nn.Dynamic, 3})
	require.NoError(t, err)
	fc, err := nn.NewFullyConnected(in, 2, 1, nil, rng)
	require.NoError(t, err)
	lin, err := nn.NewLinearOutput(fc)
	require.NoError(t, err)
	net, err := nn.NewNetwork(in, fc, doubledGrad{lin})
	require.NoError(t, err)

	x := randomBatch(rng, 4, 3)
	y := mat.NewDense(4, 2, []float64{5, 5, 5, 5, 5, 5, 5, 5})
	before := net.FlattenParams()

	report, err := gradcheck.Check(net, x, y, gradcheck.Options{})
	require.ErrorIs(t, err, gradcheck.ErrGradientMismatch)
	assert.Contains(t, err.Error(), "layer 0")
	assert.Len(t, report.Results, 1)
	assert.Equal(t, before, net.FlattenParams())
}

func TestCheck_RestoresParameters(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	net, err := nn.Topology{
		Inputs: 2,
		Layers: []nn.LayerSpec{{Units: 3, Stddev: 1, Activation: "tanh"}},
	}.Build(rng)
	require.NoError(t, err)
	x := randomBatch(rng, 3, 2)
	y, err := nn.OneHot([]int{0, 1, 2}, 3)
	require.NoError(t, err)

	before := net.FlattenParams()
	_, err = gradcheck.Check(net, x, y, gradcheck.Options{Epsilon: 1e-3})
	require.NoError(t, err)
	assert.Equal(t, before, net.FlattenParams())
}

func TestCheck_ShapeError(t *testing.T) {
	net, err := nn.Topology{
		Inputs: 2,
		Layers: []nn.LayerSpec{{Units: 3, Stddev: 1}},
	}.Build(rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	_, err = gradcheck.Check(net, mat.NewDense(2, 5, nil), mat.NewDense(2, 3, nil), gradcheck.Options{})
	assert.ErrorIs(t, err, nn.ErrShapeMismatch)
}
