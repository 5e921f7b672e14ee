package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// LoadCSV loads labeled samples from a CSV file.
//
// Format (Kaggle MNIST style), header row skipped:
//
//	label,f0,f1,...,fN
//	5,0,0,12,...,0
//
// Every row must have the width of the first data row. maxSamples limits
// the number of rows read (0 = all). Values are taken as-is; use Scale to
// normalize pixel intensities.
func LoadCSV(filename string, maxSamples int) (Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return Dataset{}, fmt.Errorf("%w: CSV file is empty or missing header", ErrInvalidData)
	}

	records = records[1:]
	if maxSamples > 0 && len(records) > maxSamples {
		records = records[:maxSamples]
	}

	width := len(records[0])
	if width < 2 {
		return Dataset{}, fmt.Errorf("%w: rows need a label and at least one feature", ErrInvalidData)
	}
	x := mat.NewDense(len(records), width-1, nil)
	labels := make([]int, len(records))

	for i, record := range records {
		if len(record) != width {
			return Dataset{}, fmt.Errorf("%w: invalid record length at row %d: got %d, want %d",
				ErrInvalidData, i+1, len(record), width)
		}
		label, err := strconv.Atoi(record[0])
		if err != nil {
			return Dataset{}, fmt.Errorf("%w: invalid label at row %d: %v", ErrInvalidData, i+1, err)
		}
		if label < 0 {
			return Dataset{}, fmt.Errorf("%w: negative label at row %d: %d", ErrInvalidData, i+1, label)
		}
		labels[i] = label

		row := x.RawRowView(i)
		for j := range row {
			v, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return Dataset{}, fmt.Errorf("%w: invalid value at row %d, column %d: %v", ErrInvalidData, i+1, j+1, err)
			}
			row[j] = v
		}
	}
	return Dataset{X: x, Labels: labels}, nil
}
