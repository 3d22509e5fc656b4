package forecast

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MinMaxScaler maps each column to [0,1] using bounds fit over all rows.
// A constant column maps to 0 and inverts back to its constant.
type MinMaxScaler struct {
	min []float64
	max []float64
}

// FitMinMax computes per-column bounds over every row of m.
func FitMinMax(m mat.Matrix) (*MinMaxScaler, error) {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("fit scaler: empty matrix")
	}
	s := &MinMaxScaler{min: make([]float64, c), max: make([]float64, c)}
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		s.min[j] = floats.Min(col)
		s.max[j] = floats.Max(col)
	}
	return s, nil
}

// Cols is the number of fitted columns.
func (s *MinMaxScaler) Cols() int { return len(s.min) }

// Bounds returns the fitted (min, max) of column j.
func (s *MinMaxScaler) Bounds(j int) (float64, float64) {
	return s.min[j], s.max[j]
}

// Transform scales m column-wise into a new matrix.
func (s *MinMaxScaler) Transform(m mat.Matrix) (*mat.Dense, error) {
	if err := s.checkCols(m); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Apply(func(_, j int, v float64) float64 {
		span := s.max[j] - s.min[j]
		if span == 0 {
			return 0
		}
		return (v - s.min[j]) / span
	}, m)
	return &out, nil
}

// InverseTransform maps scaled values back to original units. Any number of
// rows may be inverted at once.
func (s *MinMaxScaler) InverseTransform(m mat.Matrix) (*mat.Dense, error) {
	if err := s.checkCols(m); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Apply(func(_, j int, v float64) float64 {
		span := s.max[j] - s.min[j]
		if span == 0 {
			return s.min[j]
		}
		return v*span + s.min[j]
	}, m)
	return &out, nil
}

func (s *MinMaxScaler) checkCols(m mat.Matrix) error {
	if _, c := m.Dims(); c != len(s.min) {
		return fmt.Errorf("scaler fit on %d columns, got %d", len(s.min), c)
	}
	return nil
}
