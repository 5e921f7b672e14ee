package train

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// History is the ordered list of epoch records of one run.
type History struct {
	Epochs []EpochStats
}

// Summary aggregates a History.
type Summary struct {
	Epochs       int
	FinalLoss    float64
	LossStdDev   float64 // spread of training loss over the run
	MeanDuration time.Duration
	BestEpoch    int // lowest validation error, or lowest train loss without validation
}

// TrainLosses returns the training loss of every epoch.
func (h History) TrainLosses() []float64 {
	out := make([]float64, len(h.Epochs))
	for i, e := range h.Epochs {
		out[i] = e.Train.Loss
	}
	return out
}

// TrainErrors returns the training classification error of every epoch.
func (h History) TrainErrors() []float64 {
	out := make([]float64, len(h.Epochs))
	for i, e := range h.Epochs {
		out[i] = e.Train.Error
	}
	return out
}

// ValErrors returns the validation error of every epoch that has one.
func (h History) ValErrors() []float64 {
	var out []float64
	for _, e := range h.Epochs {
		if e.HasVal {
			out = append(out, e.Val.Error)
		}
	}
	return out
}

// NonIncreasingFraction returns the share of epoch transitions where the
// training loss did not go up. A history with fewer than two epochs
// returns 1.
func (h History) NonIncreasingFraction() float64 {
	losses := h.TrainLosses()
	if len(losses) < 2 {
		return 1
	}
	ok := 0
	for i := 1; i < len(losses); i++ {
		if losses[i] <= losses[i-1] {
			ok++
		}
	}
	return float64(ok) / float64(len(losses)-1)
}

// Summary computes aggregate statistics over the run.
func (h History) Summary() Summary {
	s := Summary{Epochs: len(h.Epochs)}
	if s.Epochs == 0 {
		return s
	}
	losses := h.TrainLosses()
	s.FinalLoss = losses[len(losses)-1]
	if len(losses) > 1 {
		s.LossStdDev = stat.StdDev(losses, nil)
	}

	durations := make([]float64, len(h.Epochs))
	for i, e := range h.Epochs {
		durations[i] = float64(e.Duration)
	}
	s.MeanDuration = time.Duration(stat.Mean(durations, nil))

	best := math.Inf(1)
	for _, e := range h.Epochs {
		score := e.Train.Loss
		if e.HasVal {
			score = e.Val.Error
		}
		if score < best {
			best = score
			s.BestEpoch = e.Epoch
		}
	}
	return s
}
