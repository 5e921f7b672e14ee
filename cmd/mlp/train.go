package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/born-ml/mlp/internal/config"
	"github.com/born-ml/mlp/internal/dataset"
	"github.com/born-ml/mlp/internal/optim"
	"github.com/born-ml/mlp/internal/train"
)

func runTrain(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) error {
	flags := flag.NewFlagSet("train", flag.ContinueOnError)
	flags.SetOutput(stdout)
	configPath := flags.String("config", "", "YAML run configuration (default: built-in MNIST setup)")
	var o config.Overrides
	flags.IntVar(&o.Epochs, "epochs", 0, "Number of training epochs")
	seed := flags.Int64("seed", 0, "Random seed for weight init and synthetic data")
	flags.StringVar(&o.Optimizer, "optimizer", "", "Optimizer: gd, sgd, gdm, rprop")
	flags.Float64Var(&o.LearningRate, "lr", 0, "Learning rate")
	flags.IntVar(&o.BatchSize, "batch", 0, "Batch size for sgd")
	flags.StringVar(&o.DataSource, "source", "", "Data source: mnist, csv, synthetic")
	flags.StringVar(&o.DataDir, "data", "", "Directory containing MNIST IDX files")
	flags.IntVar(&o.MaxSamples, "samples", 0, "Max samples to load per file (0 = all)")
	flags.StringVar(&o.HistoryCSV, "history", "", "Write per-epoch loss and error to this CSV file")
	synthetic := flags.Bool("synthetic", false, "Use synthetic data (for testing without MNIST files)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			o.Seed = seed
		}
	})

	cfg, err := resolveConfig(*configPath, o, *synthetic)
	if err != nil {
		return err
	}

	net, err := cfg.Network.Build(rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Network:\n%s\n", indent(net.Summary()))

	splits, err := loadSplits(cfg, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Data: train %d, val %d, test %d samples\n",
		splits.Train.Len(), splits.Val.Len(), splits.Test.Len())

	opt, err := optim.New(cfg.Optimizer)
	if err != nil {
		return err
	}

	reporters := train.Multi{train.LogReporter{Logger: logger}}
	if cfg.HistoryCSV != "" {
		f, err := os.Create(cfg.HistoryCSV)
		if err != nil {
			return fmt.Errorf("history file: %w", err)
		}
		defer f.Close()
		reporters = append(reporters, train.NewCSVReporter(f))
	}

	trainer := train.Trainer{
		Epochs:    cfg.Epochs,
		Optimizer: opt,
		Reporter:  reporters,
		Logger:    logger,
	}
	history, err := trainer.Run(ctx, net, splits.Train, splits.Val)
	if err != nil {
		return err
	}

	s := history.Summary()
	fmt.Fprintf(stdout, "Trained %d epochs, final train loss %.4f, best epoch %d\n", s.Epochs, s.FinalLoss, s.BestEpoch)
	if splits.Test.Len() > 0 {
		m, err := train.Evaluate(net, splits.Test)
		if err != nil {
			return fmt.Errorf("test: %w", err)
		}
		fmt.Fprintf(stdout, "Test loss %.4f, test error %.4f\n", m.Loss, m.Error)
	}
	return nil
}

// resolveConfig layers defaults or the YAML file, the environment and the
// command line flags, in that order.
func resolveConfig(path string, o config.Overrides, synthetic bool) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if synthetic {
		o.DataSource = config.SourceSynthetic
	}
	cfg.ApplyOverrides(o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSplits produces train/val/test data for cfg.Data.
func loadSplits(cfg *config.Config, rng *rand.Rand) (dataset.Splits, error) {
	d := cfg.Data
	switch strings.ToLower(d.Source) {
	case config.SourceMNIST:
		splits, err := dataset.LoadMNIST(d.Dir, d.MaxSamples)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return dataset.Splits{}, fmt.Errorf("%w\n\nDownload the four MNIST IDX files into %s and gunzip them,\nor run with -synthetic", err, d.Dir)
			}
			return dataset.Splits{}, err
		}
		return splits, nil

	case config.SourceCSV:
		all, err := dataset.LoadCSV(d.TrainCSV, d.MaxSamples)
		if err != nil {
			return dataset.Splits{}, err
		}
		var splits dataset.Splits
		splits.Train, splits.Val = all.Split(d.Validation)
		if d.TestCSV != "" {
			if splits.Test, err = dataset.LoadCSV(d.TestCSV, d.MaxSamples); err != nil {
				return dataset.Splits{}, err
			}
		}
		if d.Scale > 0 {
			all.Scale(d.Scale)
			splits.Test.Scale(d.Scale)
		}
		return splits, nil

	case config.SourceSynthetic:
		n := d.Samples
		if d.MaxSamples > 0 && d.MaxSamples < n {
			n = d.MaxSamples
		}
		all, err := dataset.Blobs(n, cfg.Network.Inputs, cfg.Network.Classes(), rng)
		if err != nil {
			return dataset.Splits{}, err
		}
		// 70% train, 15% val, 15% test.
		var splits dataset.Splits
		var rest dataset.Dataset
		splits.Train, rest = all.Split(0.3)
		splits.Val, splits.Test = rest.Split(0.5)
		return splits, nil
	}
	return dataset.Splits{}, fmt.Errorf("%w: unknown data source %q", config.ErrInvalidConfig, d.Source)
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n  ")
}
