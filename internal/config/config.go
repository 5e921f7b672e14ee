// Package config loads run configuration from YAML, a .env file and
// MLP_* environment variables, with CLI overrides applied last.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/mlp/internal/dataset"
	"github.com/born-ml/mlp/internal/nn"
	"github.com/born-ml/mlp/internal/optim"
)

// ErrInvalidConfig is returned when a configuration cannot be run.
var ErrInvalidConfig = errors.New("invalid config")

// Data sources.
const (
	SourceMNIST     = "mnist"
	SourceCSV       = "csv"
	SourceSynthetic = "synthetic"
)

// Config captures the knobs of a training run.
type Config struct {
	Network   nn.Topology  `yaml:"network"`
	Optimizer optim.Config `yaml:"optimizer"`
	Epochs    int          `yaml:"epochs"`
	Seed      int64        `yaml:"seed"`
	Data      DataConfig   `yaml:"data"`
	// HistoryCSV, if set, receives one row per epoch.
	HistoryCSV string `yaml:"history_csv"`
}

// DataConfig selects where samples come from.
type DataConfig struct {
	Source     string  `yaml:"source"` // mnist, csv or synthetic
	Dir        string  `yaml:"dir"`    // MNIST IDX directory
	TrainCSV   string  `yaml:"train_csv"`
	TestCSV    string  `yaml:"test_csv"`
	Scale      float64 `yaml:"scale"` // CSV feature multiplier, 0 = as-is
	MaxSamples int     `yaml:"max_samples"`
	Validation float64 `yaml:"validation"` // held-out fraction of the training file
	Samples    int     `yaml:"samples"`    // synthetic only
}

// Overrides captures CLI supplied values. Seed is a pointer because zero is
// a valid seed; nil leaves the configured seed in place.
type Overrides struct {
	Epochs       int
	Seed         *int64
	Optimizer    string
	LearningRate float64
	BatchSize    int
	DataSource   string
	DataDir      string
	MaxSamples   int
	HistoryCSV   string
}

// Default reproduces the reference MNIST run: 784-100-100-10 with ReLU
// hidden layers, N(0, 0.01) init, SGD at 0.35 with batches of 100 for
// 30 epochs.
func Default() *Config {
	return &Config{
		Network: nn.Topology{
			Inputs: 28 * 28,
			Layers: []nn.LayerSpec{
				{Units: 100, Stddev: 0.01, Activation: "relu"},
				{Units: 100, Stddev: 0.01, Activation: "relu"},
				{Units: 10, Stddev: 0.01},
			},
			Output: nn.OutputSoftmax,
		},
		Optimizer: optim.Config{Kind: optim.KindSGD, LR: 0.35, BatchSize: 100, Momentum: 0.7},
		Epochs:    30,
		Seed:      1,
		Data: DataConfig{
			Source:     SourceMNIST,
			Dir:        "data",
			Validation: dataset.MNISTValidation,
			Samples:    1000,
		},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override and a non-nil seed.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.Seed != nil {
		c.Seed = *o.Seed
	}
	if o.Optimizer != "" {
		c.Optimizer.Kind = o.Optimizer
	}
	if o.LearningRate > 0 {
		c.Optimizer.LR = o.LearningRate
	}
	if o.BatchSize > 0 {
		c.Optimizer.BatchSize = o.BatchSize
	}
	if o.DataSource != "" {
		c.Data.Source = o.DataSource
	}
	if o.DataDir != "" {
		c.Data.Dir = o.DataDir
	}
	if o.MaxSamples > 0 {
		c.Data.MaxSamples = o.MaxSamples
	}
	if o.HistoryCSV != "" {
		c.HistoryCSV = o.HistoryCSV
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be > 0 (got %d)", ErrInvalidConfig, c.Epochs)
	}
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("%w: network: %v", ErrInvalidConfig, err)
	}
	if _, err := optim.New(c.Optimizer); err != nil {
		return fmt.Errorf("%w: optimizer: %v", ErrInvalidConfig, err)
	}
	// The optimizers treat zero as unset.
	kind := strings.ToLower(c.Optimizer.Kind)
	if kind != optim.KindRprop && c.Optimizer.LR <= 0 {
		return fmt.Errorf("%w: learning_rate must be > 0 (got %g)", ErrInvalidConfig, c.Optimizer.LR)
	}
	if (kind == "" || kind == optim.KindSGD) && c.Optimizer.BatchSize <= 0 {
		return fmt.Errorf("%w: batch_size must be > 0 (got %d)", ErrInvalidConfig, c.Optimizer.BatchSize)
	}
	if (kind == optim.KindMomentum || kind == "momentum") && (c.Optimizer.Momentum <= 0 || c.Optimizer.Momentum >= 1) {
		return fmt.Errorf("%w: momentum must be in (0, 1) (got %g)", ErrInvalidConfig, c.Optimizer.Momentum)
	}
	if c.Data.Validation < 0 || c.Data.Validation >= 1 {
		return fmt.Errorf("%w: validation fraction must be in [0, 1) (got %g)", ErrInvalidConfig, c.Data.Validation)
	}
	switch strings.ToLower(c.Data.Source) {
	case SourceMNIST:
		if c.Data.Dir == "" {
			return fmt.Errorf("%w: mnist source needs data.dir", ErrInvalidConfig)
		}
	case SourceCSV:
		if c.Data.TrainCSV == "" {
			return fmt.Errorf("%w: csv source needs data.train_csv", ErrInvalidConfig)
		}
	case SourceSynthetic:
		if c.Data.Samples <= 0 {
			return fmt.Errorf("%w: synthetic source needs data.samples > 0", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown data source %q", ErrInvalidConfig, c.Data.Source)
	}
	return nil
}
