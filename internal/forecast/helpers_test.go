package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errModelDown = errors.New("model server down")

// stubModel predicts the next scaled row from the window. By default it
// extrapolates the last step linearly.
type stubModel struct {
	calls      int
	windowLens []int
	failAt     int
	next       func(window [][]float64) []float64
}

func (m *stubModel) Predict(_ context.Context, batch [][][]float64) ([][]float64, error) {
	m.calls++
	m.windowLens = append(m.windowLens, len(batch[0]))
	if m.failAt == m.calls {
		return nil, errModelDown
	}
	fn := m.next
	if fn == nil {
		fn = extrapolate
	}
	return [][]float64{fn(batch[0])}, nil
}

func extrapolate(window [][]float64) []float64 {
	last := window[len(window)-1]
	prev := window[len(window)-2]
	out := make([]float64, len(last))
	for j := range last {
		out[j] = last[j] + (last[j] - prev[j])
	}
	return out
}

func plusOne(window [][]float64) []float64 {
	last := window[len(window)-1]
	out := make([]float64, len(last))
	for j := range last {
		out[j] = last[j] + 1
	}
	return out
}

func testUniverse(t *testing.T, tickers ...string) *Universe {
	t.Helper()
	u, err := NewUniverse(Manifest{Version: "test-1", WindowSize: 60, Horizon: 5, Tickers: tickers})
	require.NoError(t, err)
	return u
}

// seriesPanel builds rows trading days of closes, column j given by cols[j](i).
func seriesPanel(t *testing.T, u *Universe, rows int, cols ...func(i int) float64) *Panel {
	t.Helper()
	require.Len(t, cols, u.Len())
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, rows)
	data := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		dates[i] = start.AddDate(0, 0, i)
		data[i] = make([]float64, len(cols))
		for j, fn := range cols {
			data[i][j] = fn(i)
		}
	}
	p, err := NewPanel(dates, u.Tickers(), data)
	require.NoError(t, err)
	return p
}

func linear(start, step float64) func(int) float64 {
	return func(i int) float64 { return start + step*float64(i) }
}

func constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}
