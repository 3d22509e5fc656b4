package forecast

import "gonum.org/v1/gonum/mat"

// rollingWindow holds the most recent size scaled rows.
type rollingWindow struct {
	rows [][]float64
}

// newRollingWindow copies the last size rows of m. The caller guarantees
// m has at least size rows.
func newRollingWindow(m *mat.Dense, size int) *rollingWindow {
	r, _ := m.Dims()
	w := &rollingWindow{rows: make([][]float64, size)}
	for i := 0; i < size; i++ {
		w.rows[i] = mat.Row(nil, r-size+i, m)
	}
	return w
}

func (w *rollingWindow) Len() int { return len(w.rows) }

// batch returns a [1][size][N] copy suitable for the model.
func (w *rollingWindow) batch() [][][]float64 {
	steps := make([][]float64, len(w.rows))
	for i, r := range w.rows {
		steps[i] = append([]float64(nil), r...)
	}
	return [][][]float64{steps}
}

// slide evicts the oldest row and appends next.
func (w *rollingWindow) slide(next []float64) {
	copy(w.rows, w.rows[1:])
	w.rows[len(w.rows)-1] = append([]float64(nil), next...)
}
