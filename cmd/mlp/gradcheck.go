package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/gradcheck"
	"github.com/born-ml/mlp/internal/nn"
)

// gradcheckTopology is a small net mixing every activation kind.
var gradcheckTopology = nn.Topology{
	Inputs: 10,
	Layers: []nn.LayerSpec{
		{Units: 15, Stddev: 0.1, Activation: "relu"},
		{Units: 6, Stddev: 0.1, Activation: "tanh"},
		{Units: 6, Stddev: 0.1, Activation: "relu"},
	},
	Output: nn.OutputSoftmax,
}

func runGradcheck(args []string, stdout io.Writer, logger *log.Logger) error {
	flags := flag.NewFlagSet("gradcheck", flag.ContinueOnError)
	flags.SetOutput(stdout)
	seed := flags.Int64("seed", 1, "Random seed")
	batch := flags.Int("batch", 5, "Number of random samples")
	eps := flags.Float64("eps", gradcheck.DefaultEpsilon, "Finite-difference step and tolerance")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *batch <= 0 {
		return fmt.Errorf("batch must be > 0 (got %d)", *batch)
	}

	rng := rand.New(rand.NewSource(*seed))
	net, err := gradcheckTopology.Build(rng)
	if err != nil {
		return err
	}

	x := mat.NewDense(*batch, gradcheckTopology.Inputs, nil)
	raw := x.RawMatrix().Data
	for i := range raw {
		raw[i] = rng.NormFloat64()
	}
	labels := make([]int, *batch)
	for i := range labels {
		labels[i] = rng.Intn(gradcheckTopology.Classes())
	}
	y, err := nn.OneHot(labels, gradcheckTopology.Classes())
	if err != nil {
		return err
	}

	report, err := gradcheck.Check(net, x, y, gradcheck.Options{Epsilon: *eps, Logger: logger})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "gradients ok: %d tensors, max mean error %.3e\n", len(report.Results), report.MaxError())
	return nil
}
