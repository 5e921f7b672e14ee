// Package train drives epochs of an optimizer over a network and records
// per-epoch loss and classification error.
package train

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/dataset"
	"github.com/born-ml/mlp/internal/nn"
	"github.com/born-ml/mlp/internal/optim"
)

// Trainer runs a fixed number of optimizer epochs.
type Trainer struct {
	Epochs    int
	Optimizer optim.Optimizer
	Reporter  Reporter    // optional, receives every EpochStats
	Logger    *log.Logger // optional, run start/end messages
}

// Metrics is the score of a network on one dataset.
type Metrics struct {
	Loss  float64
	Error float64 // fraction of misclassified samples
}

// EpochStats is recorded after every epoch. Val fields are zero when no
// validation set was given.
type EpochStats struct {
	Epoch    int
	Train    Metrics
	Val      Metrics
	HasVal   bool
	Duration time.Duration
}

// Run trains net on train for Epochs epochs, scoring train and val after
// each. Labels are one-hot encoded with the width of the output layer.
// A canceled ctx stops the run between epochs and returns the history so
// far with ctx.Err().
func (t *Trainer) Run(ctx context.Context, net *nn.Network, train, val dataset.Dataset) (History, error) {
	var history History
	if t.Epochs <= 0 {
		return history, errors.New("trainer: epochs must be > 0")
	}
	if t.Optimizer == nil {
		return history, errors.New("trainer: no optimizer")
	}
	if train.Len() == 0 {
		return history, errors.New("trainer: empty training set")
	}

	classes := net.OutputLayer().OutputShape().Features()
	y, err := nn.OneHot(train.Labels, classes)
	if err != nil {
		return history, fmt.Errorf("trainer: training labels: %w", err)
	}
	var yVal *mat.Dense
	if val.Len() > 0 {
		if yVal, err = nn.OneHot(val.Labels, classes); err != nil {
			return history, fmt.Errorf("trainer: validation labels: %w", err)
		}
	}

	t.logf("training %d epochs with %s on %d samples", t.Epochs, t.Optimizer.Name(), train.Len())
	for epoch := 1; epoch <= t.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}

		start := time.Now()
		if err := t.Optimizer.Epoch(net, train.X, y); err != nil {
			return history, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		stats := EpochStats{Epoch: epoch, Duration: time.Since(start)}

		if stats.Train, err = evaluate(net, train, y); err != nil {
			return history, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		if yVal != nil {
			if stats.Val, err = evaluate(net, val, yVal); err != nil {
				return history, fmt.Errorf("epoch %d: validation: %w", epoch, err)
			}
			stats.HasVal = true
		}

		history.Epochs = append(history.Epochs, stats)
		if t.Reporter != nil {
			if err := t.Reporter.Report(stats); err != nil {
				return history, fmt.Errorf("epoch %d: report: %w", epoch, err)
			}
		}
	}

	s := history.Summary()
	t.logf("done: final train loss %.4f, mean epoch %v", s.FinalLoss, s.MeanDuration)
	return history, nil
}

func (t *Trainer) logf(format string, args ...any) {
	if t.Logger != nil {
		t.Logger.Printf(format, args...)
	}
}

// Evaluate computes loss and classification error of net on ds.
func Evaluate(net *nn.Network, ds dataset.Dataset) (Metrics, error) {
	if ds.Len() == 0 {
		return Metrics{}, errors.New("evaluate: empty dataset")
	}
	y, err := nn.OneHot(ds.Labels, net.OutputLayer().OutputShape().Features())
	if err != nil {
		return Metrics{}, err
	}
	return evaluate(net, ds, y)
}

func evaluate(net *nn.Network, ds dataset.Dataset, y *mat.Dense) (Metrics, error) {
	yPred, err := net.Predict(ds.X)
	if err != nil {
		return Metrics{}, err
	}
	loss, err := net.OutputLayer().Loss(y, yPred)
	if err != nil {
		return Metrics{}, err
	}

	wrong := 0
	for i, p := range nn.Unhot(yPred) {
		if p != ds.Labels[i] {
			wrong++
		}
	}
	return Metrics{Loss: loss, Error: float64(wrong) / float64(ds.Len())}, nil
}
