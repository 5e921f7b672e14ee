package train

import (
	"encoding/csv"
	"io"
	"log"
	"strconv"
)

// Reporter receives the stats of every finished epoch.
type Reporter interface {
	Report(EpochStats) error
}

// LogReporter prints one line per epoch.
type LogReporter struct {
	Logger *log.Logger
}

// Report implements Reporter.
func (r LogReporter) Report(s EpochStats) error {
	if s.HasVal {
		r.Logger.Printf("epoch %3d  train loss %.4f  train error %.4f  val loss %.4f  val error %.4f  (%v)",
			s.Epoch, s.Train.Loss, s.Train.Error, s.Val.Loss, s.Val.Error, s.Duration)
		return nil
	}
	r.Logger.Printf("epoch %3d  train loss %.4f  train error %.4f  (%v)",
		s.Epoch, s.Train.Loss, s.Train.Error, s.Duration)
	return nil
}

// csvHeader is written before the first row.
var csvHeader = []string{"epoch", "train_loss", "train_error", "val_loss", "val_error", "seconds"}

// CSVReporter writes epoch rows for plotting error curves. Validation
// columns are empty for runs without a validation set.
type CSVReporter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewCSVReporter creates a CSVReporter writing to w.
func NewCSVReporter(w io.Writer) *CSVReporter {
	return &CSVReporter{w: csv.NewWriter(w)}
}

// Report implements Reporter. Every row is flushed immediately.
func (r *CSVReporter) Report(s EpochStats) error {
	if !r.wroteHeader {
		if err := r.w.Write(csvHeader); err != nil {
			return err
		}
		r.wroteHeader = true
	}

	valLoss, valErr := "", ""
	if s.HasVal {
		valLoss, valErr = formatFloat(s.Val.Loss), formatFloat(s.Val.Error)
	}
	row := []string{
		strconv.Itoa(s.Epoch),
		formatFloat(s.Train.Loss),
		formatFloat(s.Train.Error),
		valLoss,
		valErr,
		formatFloat(s.Duration.Seconds()),
	}
	if err := r.w.Write(row); err != nil {
		return err
	}
	r.w.Flush()
	return r.w.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

// Multi fans a report out to several reporters, stopping at the first error.
type Multi []Reporter

// Report implements Reporter.
func (m Multi) Report(s EpochStats) error {
	for _, r := range m {
		if err := r.Report(s); err != nil {
			return err
		}
	}
	return nil
}
