package features

import (
	"math"
	"testing"
	"time"

	"StockSense/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closesFor(ticker string, start time.Time, values ...float64) []models.ClosePrice {
	out := make([]models.ClosePrice, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		out = append(out, models.ClosePrice{Date: start.AddDate(0, 0, i), Ticker: ticker, Close: v})
	}
	return out
}

var d0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestPctChange(t *testing.T) {
	closes := append(closesFor("A", d0, 100, 110, 99), closesFor("B", d0, 50, math.NaN(), 60)...)
	closes = append(closes, models.ClosePrice{Date: d0, Ticker: "IGNORED", Close: 1})

	ret := PctChange([]string{"A", "B"}, closes)

	require.Len(t, ret.Dates, 2)
	assert.Equal(t, d0.AddDate(0, 0, 1), ret.Dates[0])
	assert.InDeltaSlice(t, []float64{0.1, -0.1}, ret.Series["A"], 1e-12)
	assert.True(t, math.IsNaN(ret.Series["B"][0]))
	assert.True(t, math.IsNaN(ret.Series["B"][1]))
	assert.NotContains(t, ret.Series, "IGNORED")
}

func TestPearson(t *testing.T) {
	a := []float64{1, 2, 3, 4, math.NaN()}
	b := []float64{2, 4, 6, 8, 10}

	r, ok := Pearson(a, b, 3)
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)

	_, ok = Pearson(a, b, 5)
	assert.False(t, ok, "only four complete pairs")

	_, ok = Pearson([]float64{1, 1, 1}, []float64{1, 2, 3}, 2)
	assert.False(t, ok, "zero variance")
}

func TestRelatedOrdersByCorrelation(t *testing.T) {
	base := []float64{0.01, -0.02, 0.03, -0.01, 0.02, 0.00, -0.03, 0.015}
	noisy := make([]float64, len(base))
	inverse := make([]float64, len(base))
	for i, v := range base {
		noisy[i] = v + 0.004*float64(i%2*2-1)
		inverse[i] = -v
	}
	ret := Returns{
		Tickers: []string{"A", "B", "C", "D"},
		Series: map[string][]float64{
			"A": base,
			"B": noisy,
			"C": base,
			"D": inverse,
		},
	}

	rel := Related(ret, 0.4, 5)

	assert.Equal(t, []string{"C", "B"}, rel["A"], "identical series ranks first")
	assert.NotContains(t, rel["A"], "A")
	assert.NotContains(t, rel["A"], "D")
	assert.Empty(t, rel["D"])
}

func TestRelatedThresholdIsStrict(t *testing.T) {
	ret := Returns{
		Tickers: []string{"A", "B"},
		Series: map[string][]float64{
			"A": {1, 2, 3, 5},
			"B": {1, 3, 2, 4},
		},
	}
	r, ok := Pearson(ret.Series["A"], ret.Series["B"], 2)
	require.True(t, ok)

	assert.Empty(t, Related(ret, r, 2)["A"])
	assert.Equal(t, []string{"B"}, Related(ret, r-1e-9, 2)["A"])
}
