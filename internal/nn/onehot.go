package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// OneHot encodes integer labels as an [n, numClasses] indicator matrix.
//
// Given labels [0, 2, 1] and 3 classes:
//
//	[[1 0 0]
//	 [0 0 1]
//	 [0 1 0]]
func OneHot(labels []int, numClasses int) (*mat.Dense, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: one-hot of empty labels", ErrInvalidArgument)
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("%w: one-hot needs numClasses > 0, got %d", ErrInvalidArgument, numClasses)
	}
	out := mat.NewDense(len(labels), numClasses, nil)
	for i, label := range labels {
		if label < 0 || label >= numClasses {
			return nil, fmt.Errorf("%w: label %d at row %d outside [0, %d)", ErrInvalidArgument, label, i, numClasses)
		}
		out.Set(i, label, 1)
	}
	return out, nil
}

// Unhot returns the argmax of every row. Ties resolve to the lowest column.
func Unhot(m mat.Matrix) []int {
	r, c := m.Dims()
	labels := make([]int, r)
	row := make([]float64, c)
	for i := range labels {
		mat.Row(row, i, m)
		labels[i] = floats.MaxIdx(row)
	}
	return labels
}
