package features

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Pearson correlates a and b over indices where both are finite. ok is false
// when fewer than minObs pairs remain or either side has zero variance.
func Pearson(a, b []float64, minObs int) (r float64, ok bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	x := make([]float64, 0, n)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if isFinite(a[i]) && isFinite(b[i]) {
			x = append(x, a[i])
			y = append(y, b[i])
		}
	}
	if len(x) < minObs || len(x) < 2 {
		return 0, false
	}
	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, false
	}
	return r, true
}

// Related lists, per ticker, the other tickers whose pairwise correlation is
// strictly above threshold, strongest first. Ties keep ticker order.
func Related(ret Returns, threshold float64, minObs int) map[string][]string {
	n := len(ret.Tickers)
	corr := make([][]float64, n)
	valid := make([][]bool, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		valid[i] = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r, ok := Pearson(ret.Series[ret.Tickers[i]], ret.Series[ret.Tickers[j]], minObs)
			corr[i][j], corr[j][i] = r, r
			valid[i][j], valid[j][i] = ok, ok
		}
	}

	out := make(map[string][]string, n)
	for i, t := range ret.Tickers {
		idx := make([]int, 0)
		for j := 0; j < n; j++ {
			if j != i && valid[i][j] && corr[i][j] > threshold {
				idx = append(idx, j)
			}
		}
		sort.SliceStable(idx, func(a, b int) bool { return corr[i][idx[a]] > corr[i][idx[b]] })
		related := make([]string, len(idx))
		for k, j := range idx {
			related[k] = ret.Tickers[j]
		}
		out[t] = related
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
