package optim_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/nn"
	"github.com/born-ml/mlp/internal/optim"
)

// scalarNet builds y = w*x + b with w = b = 0 and a linear output, so one
// sample (x=1, y=t) yields dW = db = w + b - t.
func scalarNet(t *testing.T) *nn.Network {
	t.Helper()
	net, err := nn.Topology{
		Inputs: 1,
		Layers: []nn.LayerSpec{{Units: 1}},
		Output: nn.OutputLinear,
	}.Build(rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return net
}

func column(vals ...float64) *mat.Dense {
	return mat.NewDense(len(vals), 1, vals)
}

func TestGD_SimpleUpdate(t *testing.T) {
	net := scalarNet(t)
	opt := optim.NewGD(optim.GDConfig{LR: 0.1})

	require.NoError(t, opt.Epoch(net, column(1), column(1)))

	// grad = 0 - 1 = -1, param = 0 - 0.1 * -1
	assert.InDeltaSlice(t, []float64{0.1, 0.1}, net.FlattenParams(), 1e-12)
	assert.Equal(t, "gd", opt.Name())
}

func TestGD_Defaults(t *testing.T) {
	opt := optim.NewGD(optim.GDConfig{})
	assert.InDelta(t, 0.1, opt.GetLR(), 1e-12)
	opt.SetLR(0.5)
	assert.InDelta(t, 0.5, opt.GetLR(), 1e-12)
}

func TestMomentum_Arithmetic(t *testing.T) {
	net := scalarNet(t)
	opt := optim.NewMomentum(optim.MomentumConfig{LR: 0.1, Mu: 0.7})

	// Epoch 1: v = -0.1 * -1 = 0.1, params = 0.1
	require.NoError(t, opt.Epoch(net, column(1), column(1)))
	assert.InDeltaSlice(t, []float64{0.1, 0.1}, opt.Velocity(), 1e-12)
	assert.InDeltaSlice(t, []float64{0.1, 0.1}, net.FlattenParams(), 1e-12)

	// Epoch 2: prediction 0.2, grad -0.8
	// v = 0.08 + 0.7 * 0.1 = 0.15, params = 0.25
	require.NoError(t, opt.Epoch(net, column(1), column(1)))
	assert.InDeltaSlice(t, []float64{0.15, 0.15}, opt.Velocity(), 1e-12)
	assert.InDeltaSlice(t, []float64{0.25, 0.25}, net.FlattenParams(), 1e-12)
}

func TestMomentum_Defaults(t *testing.T) {
	opt := optim.NewMomentum(optim.MomentumConfig{})
	assert.InDelta(t, 0.1, opt.GetLR(), 1e-12)
	assert.Nil(t, opt.Velocity())
	assert.Equal(t, "gdm", opt.Name())
}

func TestMomentum_StateBoundToNetworkSize(t *testing.T) {
	opt := optim.NewMomentum(optim.MomentumConfig{})
	require.NoError(t, opt.Epoch(scalarNet(t), column(1), column(1)))

	other := separableNet(t)
	x, y := separableData(t)
	err := opt.Epoch(other, x, y)
	assert.ErrorIs(t, err, nn.ErrShapeMismatch)
}

func TestSGD_DropsRemainder(t *testing.T) {
	net := scalarNet(t)
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1, BatchSize: 2})
	assert.Equal(t, 2, opt.Batches(5))

	// The fifth row would dominate the update if it were visited.
	require.NoError(t, opt.Epoch(net, column(1, 1, 1, 1, 1), column(1, 1, 1, 1, 100)))

	// Batch 1: grad -1 -> 0.1. Batch 2: prediction 0.2, grad -0.8 -> 0.18.
	assert.InDeltaSlice(t, []float64{0.18, 0.18}, net.FlattenParams(), 1e-12)
}

func TestSGD_BatchLargerThanDataset(t *testing.T) {
	net := scalarNet(t)
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1, BatchSize: 10})
	assert.Equal(t, 0, opt.Batches(3))

	require.NoError(t, opt.Epoch(net, column(1, 1, 1), column(1, 1, 1)))
	assert.Equal(t, []float64{0, 0}, net.FlattenParams())
}

func TestSGD_Defaults(t *testing.T) {
	opt := optim.NewSGD(optim.SGDConfig{})
	assert.Equal(t, 64, opt.BatchSize())
	assert.InDelta(t, 0.1, opt.GetLR(), 1e-12)
}

func TestRprop_StepAdaptation(t *testing.T) {
	net := scalarNet(t)
	opt := optim.NewRprop(optim.RpropConfig{})

	// The prediction climbs 0.2, 0.44, 0.728, 1.0736: the gradient stays
	// negative for four epochs, then overshoots and flips sign.
	wantSteps := []float64{0.1, 0.12, 0.144, 0.1728, 0.0864}
	wantParams := []float64{0.1, 0.22, 0.364, 0.5368, 0.4504}
	for epoch := range wantSteps {
		require.NoError(t, opt.Epoch(net, column(1), column(1)))
		for i := range opt.Steps() {
			assert.InDelta(t, wantSteps[epoch], opt.Steps()[i], 1e-12, "epoch %d step %d", epoch, i)
		}
		assert.InDeltaSlice(t, []float64{wantParams[epoch], wantParams[epoch]}, net.FlattenParams(), 1e-12, "epoch %d", epoch)
	}
	assert.Greater(t, opt.PrevGrad()[0], 0.0)
}

func TestRprop_StepMonotoneWhileSignHolds(t *testing.T) {
	net := scalarNet(t)
	opt := optim.NewRprop(optim.RpropConfig{InitialStep: 0.01})

	// Target far away: the gradient keeps its sign, so steps grow every epoch
	// after the first.
	prev := 0.0
	for epoch := 0; epoch < 5; epoch++ {
		require.NoError(t, opt.Epoch(net, column(1), column(100)))
		step := opt.Steps()[0]
		if epoch > 0 {
			assert.InDelta(t, prev*1.2, step, 1e-12)
		}
		prev = step
	}
}

func TestRprop_Clamp(t *testing.T) {
	net := scalarNet(t)
	opt := optim.NewRprop(optim.RpropConfig{StepMax: 0.13})

	for i := 0; i < 3; i++ {
		require.NoError(t, opt.Epoch(net, column(1), column(100)))
	}
	assert.InDelta(t, 0.13, opt.Steps()[0], 1e-12)
}

func TestRprop_ZeroGradientLeavesParameter(t *testing.T) {
	net := scalarNet(t)
	opt := optim.NewRprop(optim.RpropConfig{})

	require.NoError(t, opt.Epoch(net, column(1), column(0)))
	assert.Equal(t, []float64{0, 0}, net.FlattenParams())
	assert.InDelta(t, 0.1, opt.Steps()[0], 1e-12)
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind string
		name string
	}{
		{"gd", "gd"},
		{"sgd", "sgd"},
		{"", "sgd"},
		{"gdm", "gdm"},
		{"momentum", "gdm"},
		{"RPROP", "rprop"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			opt, err := optim.New(optim.Config{Kind: tt.kind})
			require.NoError(t, err)
			assert.Equal(t, tt.name, opt.Name())
		})
	}

	_, err := optim.New(optim.Config{Kind: "adagrad"})
	assert.ErrorIs(t, err, optim.ErrUnknownOptimizer)
}

func TestNew_PassesSettings(t *testing.T) {
	opt, err := optim.New(optim.Config{Kind: "sgd", LR: 0.35, BatchSize: 100})
	require.NoError(t, err)
	sgd, ok := opt.(*optim.SGD)
	require.True(t, ok)
	assert.Equal(t, 100, sgd.BatchSize())
	assert.InDelta(t, 0.35, sgd.GetLR(), 1e-12)
}

func TestEpoch_RowMismatch(t *testing.T) {
	opts := []optim.Optimizer{
		optim.NewGD(optim.GDConfig{}),
		optim.NewSGD(optim.SGDConfig{BatchSize: 1}),
		optim.NewMomentum(optim.MomentumConfig{}),
		optim.NewRprop(optim.RpropConfig{}),
	}
	for _, opt := range opts {
		t.Run(opt.Name(), func(t *testing.T) {
			err := opt.Epoch(scalarNet(t), column(1, 2), column(1))
			assert.ErrorIs(t, err, nn.ErrShapeMismatch)
		})
	}
}

// separableData returns two well separated clusters in 2D.
func separableData(t *testing.T) (*mat.Dense, *mat.Dense) {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	const n = 40
	x := mat.NewDense(n, 2, nil)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		center := -1.0
		if i%2 == 1 {
			center = 1.0
			labels[i] = 1
		}
		x.Set(i, 0, center+0.2*rng.NormFloat64())
		x.Set(i, 1, center+0.2*rng.NormFloat64())
	}
	y, err := nn.OneHot(labels, 2)
	require.NoError(t, err)
	return x, y
}

func separableNet(t *testing.T) *nn.Network {
	t.Helper()
	net, err := nn.Topology{
		Inputs: 2,
		Layers: []nn.LayerSpec{{Units: 2, Stddev: 0.1}},
		Output: nn.OutputSoftmax,
	}.Build(rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	return net
}

func TestGD_LossDecreases(t *testing.T) {
	net := separableNet(t)
	x, y := separableData(t)
	opt := optim.NewGD(optim.GDConfig{LR: 0.5})

	prev, err := net.Loss(x, y)
	require.NoError(t, err)
	first := prev

	nonIncreasing := 0
	const epochs = 50
	for i := 0; i < epochs; i++ {
		require.NoError(t, opt.Epoch(net, x, y))
		loss, err := net.Loss(x, y)
		require.NoError(t, err)
		if loss <= prev {
			nonIncreasing++
		}
		prev = loss
	}
	assert.GreaterOrEqual(t, float64(nonIncreasing)/epochs, 0.9)
	assert.Less(t, prev, first)
}

func TestAllOptimizers_Learn(t *testing.T) {
	configs := []optim.Config{
		{Kind: optim.KindGD, LR: 0.5},
		{Kind: optim.KindSGD, LR: 0.2, BatchSize: 8},
		{Kind: optim.KindMomentum, LR: 0.2},
		{Kind: optim.KindRprop},
	}
	for _, cfg := range configs {
		t.Run(cfg.Kind, func(t *testing.T) {
			net := separableNet(t)
			x, y := separableData(t)
			opt, err := optim.New(cfg)
			require.NoError(t, err)

			before, err := net.Loss(x, y)
			require.NoError(t, err)
			for i := 0; i < 50; i++ {
				require.NoError(t, opt.Epoch(net, x, y))
			}
			after, err := net.Loss(x, y)
			require.NoError(t, err)
			assert.Less(t, after, before)

			labels := nn.Unhot(y)
			errRate, err := net.ClassificationError(x, labels)
			require.NoError(t, err)
			assert.Less(t, errRate, 0.1)
		})
	}
}
