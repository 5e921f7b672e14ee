package optim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/nn"
)

// GD implements full-batch gradient descent.
//
// Update rule, once per epoch over the whole dataset:
//
//	param = param - lr * gradient
type GD struct {
	lr float64
}

// GDConfig holds configuration for GD.
type GDConfig struct {
	LR float64 // Learning rate (default: 0.1)
}

// NewGD creates a full-batch gradient descent optimizer.
func NewGD(config GDConfig) *GD {
	if config.LR == 0 {
		config.LR = 0.1
	}
	return &GD{lr: config.LR}
}

// Epoch runs one forward/backward pass over all of x and applies the update.
func (g *GD) Epoch(net *nn.Network, x, y *mat.Dense) error {
	if err := checkBatch(x, y); err != nil {
		return err
	}
	if err := net.Step(x, y); err != nil {
		return err
	}
	descend(net, g.lr)
	return nil
}

// Name returns "gd".
func (g *GD) Name() string { return KindGD }

// GetLR returns the learning rate.
func (g *GD) GetLR() float64 { return g.lr }

// SetLR updates the learning rate.
func (g *GD) SetLR(lr float64) { g.lr = lr }

// SGD implements mini-batch stochastic gradient descent.
//
// The dataset is cut into contiguous batches of BatchSize rows, visited in
// the same order every epoch. A trailing remainder smaller than BatchSize
// is skipped. Each batch gets its own forward/backward pass and update:
//
//	param = param - lr * gradient(batch)
type SGD struct {
	lr        float64
	batchSize int
}

// SGDConfig holds configuration for SGD.
type SGDConfig struct {
	LR        float64 // Learning rate (default: 0.1)
	BatchSize int     // Rows per batch (default: 64)
}

// NewSGD creates a mini-batch SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.1
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 64
	}
	return &SGD{lr: config.LR, batchSize: config.BatchSize}
}

// Epoch performs one pass over all full batches of (x, y).
func (s *SGD) Epoch(net *nn.Network, x, y *mat.Dense) error {
	if err := checkBatch(x, y); err != nil {
		return err
	}
	n, xc := x.Dims()
	_, yc := y.Dims()
	for b := 0; b < s.Batches(n); b++ {
		lo, hi := b*s.batchSize, (b+1)*s.batchSize
		xb := x.Slice(lo, hi, 0, xc).(*mat.Dense)
		yb := y.Slice(lo, hi, 0, yc).(*mat.Dense)
		if err := net.Step(xb, yb); err != nil {
			return fmt.Errorf("batch %d: %w", b, err)
		}
		descend(net, s.lr)
	}
	return nil
}

// Batches returns the number of updates an epoch over n rows performs.
func (s *SGD) Batches(n int) int {
	return n / s.batchSize
}

// Name returns "sgd".
func (s *SGD) Name() string { return KindSGD }

// BatchSize returns the configured batch size.
func (s *SGD) BatchSize() int { return s.batchSize }

// GetLR returns the learning rate.
func (s *SGD) GetLR() float64 { return s.lr }

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) { s.lr = lr }
