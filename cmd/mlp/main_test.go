package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"version"}, &out, log.New(io.Discard, "", 0)))
	assert.Equal(t, "mlp "+version+"\n", out.String())
}

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), nil, &out, log.New(io.Discard, "", 0)))
	assert.Contains(t, out.String(), "gradcheck")

	err := run(context.Background(), []string{"serve"}, &out, log.New(io.Discard, "", 0))
	assert.ErrorContains(t, err, `unknown command "serve"`)
}

func TestRun_Gradcheck(t *testing.T) {
	var out, logs bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"gradcheck", "-seed", "3"}, &out, log.New(&logs, "", 0)))
	assert.Contains(t, out.String(), "gradients ok: 6 tensors")
	assert.Equal(t, 6, strings.Count(logs.String(), "\n"))
}

func TestRun_TrainSynthetic(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
epochs: 3
network:
  inputs: 4
  layers:
    - {units: 8, stddev: 0.3, activation: tanh}
    - {units: 3, stddev: 0.3}
optimizer:
  kind: gd
  learning_rate: 0.05
data:
  source: synthetic
  samples: 60
`), 0o600))
	history := filepath.Join(dir, "history.csv")

	var out, logs bytes.Buffer
	err := run(context.Background(), []string{"train", "-config", cfgPath, "-history", history}, &out, log.New(&logs, "", 0))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "FullyConnected 4->8 (tanh)")
	assert.Contains(t, out.String(), "Data: train 42, val 9, test 9 samples")
	assert.Contains(t, out.String(), "Trained 3 epochs")
	assert.Contains(t, out.String(), "Test loss")
	assert.Equal(t, 3, strings.Count(logs.String(), "train error"))
	assert.Equal(t, 1, strings.Count(logs.String(), "done: final train loss"))

	raw, err := os.ReadFile(history)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(raw), "\n"))
}

func TestRun_TrainInvalidConfig(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"train", "-synthetic", "-optimizer", "adagrad"}, &out, log.New(io.Discard, "", 0))
	assert.Error(t, err)
}

func TestRun_TrainMissingMNIST(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"train", "-data", t.TempDir()}, &out, log.New(io.Discard, "", 0))
	assert.ErrorContains(t, err, "-synthetic")
}
