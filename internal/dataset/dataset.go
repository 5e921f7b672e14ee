// Package dataset holds labeled sample matrices and the loaders that
// produce them: CSV, MNIST IDX files and synthetic clusters.
package dataset

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidData is returned for malformed or inconsistent input data.
var ErrInvalidData = errors.New("invalid dataset")

// Dataset is a batch of samples X [n, features] with one integer class
// label per row.
type Dataset struct {
	X      *mat.Dense
	Labels []int
}

// Splits groups the three partitions used by a training run.
type Splits struct {
	Train Dataset
	Val   Dataset
	Test  Dataset
}

// New checks that x and labels agree and wraps them.
func New(x *mat.Dense, labels []int) (Dataset, error) {
	if x == nil {
		return Dataset{}, fmt.Errorf("%w: nil samples", ErrInvalidData)
	}
	if r, _ := x.Dims(); r != len(labels) {
		return Dataset{}, fmt.Errorf("%w: %d samples, %d labels", ErrInvalidData, r, len(labels))
	}
	for i, l := range labels {
		if l < 0 {
			return Dataset{}, fmt.Errorf("%w: negative label %d at row %d", ErrInvalidData, l, i)
		}
	}
	return Dataset{X: x, Labels: labels}, nil
}

// Len returns the number of samples.
func (d Dataset) Len() int {
	return len(d.Labels)
}

// Features returns the number of columns of X.
func (d Dataset) Features() int {
	if d.X == nil {
		return 0
	}
	_, c := d.X.Dims()
	return c
}

// NumClasses returns max(label)+1, or 0 for an empty dataset.
func (d Dataset) NumClasses() int {
	n := 0
	for _, l := range d.Labels {
		if l+1 > n {
			n = l + 1
		}
	}
	return n
}

// Slice returns rows [i, j) as a view sharing storage with d.
func (d Dataset) Slice(i, j int) Dataset {
	if i == j {
		return Dataset{Labels: []int{}}
	}
	return Dataset{
		X:      d.X.Slice(i, j, 0, d.Features()).(*mat.Dense),
		Labels: d.Labels[i:j],
	}
}

// Split cuts d into leading training rows and a trailing validation part
// holding validationRatio of the samples.
func (d Dataset) Split(validationRatio float64) (Dataset, Dataset) {
	n := d.Len()
	splitIdx := int(float64(n) * (1.0 - validationRatio))
	if splitIdx < 0 {
		splitIdx = 0
	}
	if splitIdx > n {
		splitIdx = n
	}
	return d.Slice(0, splitIdx), d.Slice(splitIdx, n)
}

// Scale multiplies every feature by f in place.
func (d Dataset) Scale(f float64) {
	if d.X == nil {
		return
	}
	r, _ := d.X.Dims()
	for i := 0; i < r; i++ {
		floats.Scale(f, d.X.RawRowView(i))
	}
}

// Blobs generates n samples around one random center per class. Centers
// are spread over [-5, 5] per feature with unit-scale noise of 0.3, so the
// classes are linearly separable for all practical seeds.
func Blobs(n, features, classes int, rng *rand.Rand) (Dataset, error) {
	if n <= 0 || features <= 0 || classes <= 0 {
		return Dataset{}, fmt.Errorf("%w: blobs need n, features and classes > 0", ErrInvalidData)
	}
	centers := make([][]float64, classes)
	for k := range centers {
		centers[k] = make([]float64, features)
		for j := range centers[k] {
			centers[k][j] = rng.Float64()*10 - 5
		}
	}

	x := mat.NewDense(n, features, nil)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		k := i % classes
		labels[i] = k
		row := x.RawRowView(i)
		for j := range row {
			row[j] = centers[k][j] + 0.3*rng.NormFloat64()
		}
	}
	return Dataset{X: x, Labels: labels}, nil
}
