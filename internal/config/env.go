package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvEpochs       = "MLP_EPOCHS"
	EnvSeed         = "MLP_SEED"
	EnvOptimizer    = "MLP_OPTIMIZER"
	EnvLearningRate = "MLP_LEARNING_RATE"
	EnvBatchSize    = "MLP_BATCH_SIZE"
	EnvMomentum     = "MLP_MOMENTUM"
	EnvDataSource   = "MLP_DATA_SOURCE"
	EnvDataDir      = "MLP_DATA_DIR"
	EnvMaxSamples   = "MLP_MAX_SAMPLES"
	EnvHistoryCSV   = "MLP_HISTORY_CSV"
)

// ApplyEnv loads a .env file from the working directory or one of its
// parents, then overrides c with any MLP_* variable that is set. Variables
// already in the environment win over the .env file.
func (c *Config) ApplyEnv() error {
	if err := loadEnvFile(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	setString(&c.Optimizer.Kind, EnvOptimizer)
	setString(&c.Data.Source, EnvDataSource)
	setString(&c.Data.Dir, EnvDataDir)
	setString(&c.HistoryCSV, EnvHistoryCSV)

	for _, v := range []struct {
		name string
		dst  *int
	}{
		{EnvEpochs, &c.Epochs},
		{EnvBatchSize, &c.Optimizer.BatchSize},
		{EnvMaxSamples, &c.Data.MaxSamples},
	} {
		if err := setInt(v.dst, v.name); err != nil {
			return err
		}
	}
	for _, v := range []struct {
		name string
		dst  *float64
	}{
		{EnvLearningRate, &c.Optimizer.LR},
		{EnvMomentum, &c.Optimizer.Momentum},
	} {
		if err := setFloat(v.dst, v.name); err != nil {
			return err
		}
	}

	if s, ok := os.LookupEnv(EnvSeed); ok && s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvSeed, err)
		}
		c.Seed = seed
	}
	return nil
}

func setString(dst *string, name string) {
	if s := os.Getenv(name); s != "" {
		*dst = s
	}
}

func setInt(dst *int, name string) error {
	s := os.Getenv(name)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
	}
	*dst = v
	return nil
}

func setFloat(dst *float64, name string) error {
	s := os.Getenv(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
	}
	*dst = v
	return nil
}

// loadEnvFile looks for .env up to 5 levels above the working directory.
func loadEnvFile() error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return godotenv.Load(envPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil
}
