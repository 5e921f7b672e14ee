// Package parallel fans numeric kernels out over goroutines.
//
// It is only used inside whole-batch element-wise and per-row kernels; each
// index is handed to exactly one goroutine, so callers may write to disjoint
// slots of a shared buffer without locking.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// Sequential returns a config that never spawns goroutines.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	Range(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			f(i)
		}
	}, cfg)
}

// Range splits [0, n) into contiguous chunks and calls f(lo, hi) once per chunk.
func Range(n int, f func(lo, hi int), cfg Config) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize {
		f(0, n)
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ForRows runs f(r) for every row of a rows x cols matrix.
//
// The chunk threshold is measured in elements, so a few very wide rows
// still fan out while many narrow rows stay on one goroutine.
func ForRows(rows, cols int, f func(r int), cfg Config) {
	if cols < 1 {
		cols = 1
	}
	rowCfg := cfg
	rowCfg.MinChunkSize = max(1, (cfg.MinChunkSize+cols-1)/cols)
	For(rows, f, rowCfg)
}
