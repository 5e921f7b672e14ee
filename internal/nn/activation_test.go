package nn

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestActivationForward tests the three nonlinearities on known values.
func TestActivationForward(t *testing.T) {
	input := mat.NewDense(1, 5, []float64{-2, -1, 0, 1, 2})

	tests := []struct {
		name     string
		expected []float64
	}{
		{"sigmoid", []float64{0.1192, 0.2689, 0.5, 0.7311, 0.8808}},
		{"tanh", []float64{-0.9640, -0.7616, 0, 0.7616, 0.9640}},
		{"relu", []float64{0, 0, 0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act, err := NewActivation(tt.name)
			if err != nil {
				t.Fatalf("NewActivation(%q): %v", tt.name, err)
			}
			out := act.Forward(input)
			for j, want := range tt.expected {
				if got := out.At(0, j); math.Abs(got-want) > 1e-3 {
					t.Errorf("%s(%v) = %v, want %v", tt.name, input.At(0, j), got, want)
				}
			}
		})
	}
}

// TestActivationDerivatives compares Backward with central differences.
func TestActivationDerivatives(t *testing.T) {
	// Avoid 0 so ReLU's kink is not straddled.
	points := []float64{-2.5, -1.1, -0.3, 0.4, 1.7, 3.2}
	input := mat.NewDense(2, 3, points)
	ones := mat.NewDense(2, 3, []float64{1, 1, 1, 1, 1, 1})
	const h = 1e-5

	for _, name := range []string{"sigmoid", "tanh", "relu"} {
		t.Run(name, func(t *testing.T) {
			act, err := NewActivation(name)
			if err != nil {
				t.Fatal(err)
			}
			act.Forward(input)
			grad, err := act.Backward(ones)
			if err != nil {
				t.Fatalf("Backward: %v", err)
			}
			for i, x := range points {
				numerical := (act.f(x+h) - act.f(x-h)) / (2 * h)
				got := grad.At(i/3, i%3)
				if math.Abs(got-numerical) > 1e-6 {
					t.Errorf("%s'(%v) = %v, numerical %v", name, x, got, numerical)
				}
			}
		})
	}
}

// TestActivationBackwardScalesUpstream checks the chain-rule product.
func TestActivationBackwardScalesUpstream(t *testing.T) {
	act, _ := NewActivation("relu")
	act.Forward(mat.NewDense(1, 3, []float64{-1, 0, 2}))

	grad, err := act.Backward(mat.NewDense(1, 3, []float64{5, 5, 5}))
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0, 5}
	for j, w := range want {
		if grad.At(0, j) != w {
			t.Errorf("grad[%d] = %v, want %v", j, grad.At(0, j), w)
		}
	}
}

// TestActivationInvalidName tests rejection of unknown names.
func TestActivationInvalidName(t *testing.T) {
	for _, name := range []string{"softplus", "", "ReLu"} {
		if _, err := NewActivation(name); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("NewActivation(%q) error = %v, want ErrInvalidArgument", name, err)
		}
	}
}

// TestActivationBackwardBeforeForward tests the cache invariant.
func TestActivationBackwardBeforeForward(t *testing.T) {
	act, _ := NewActivation("tanh")
	_, err := act.Backward(mat.NewDense(1, 1, []float64{1}))
	if !errors.Is(err, ErrNoForward) {
		t.Errorf("Backward before Forward error = %v, want ErrNoForward", err)
	}
}

// TestActivationBackwardShapeMismatch tests gradient/cached shape checking.
func TestActivationBackwardShapeMismatch(t *testing.T) {
	act, _ := NewActivation("sigmoid")
	act.Forward(mat.NewDense(2, 2, nil))
	_, err := act.Backward(mat.NewDense(1, 2, nil))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("error = %v, want ErrShapeMismatch", err)
	}
}

// TestActivationKindString tests that names round trip.
func TestActivationKindString(t *testing.T) {
	for name, kind := range activationNames {
		if kind.String() != name {
			t.Errorf("%v.String() = %q, want %q", kind, kind.String(), name)
		}
	}
}
