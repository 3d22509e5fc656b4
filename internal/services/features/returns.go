package features

import (
	"math"
	"sort"
	"time"

	"StockSense/internal/domain/models"
	"StockSense/pkg/util"
)

// Returns holds daily percentage returns on a shared date axis. A missing
// return is NaN.
type Returns struct {
	Dates   []time.Time
	Tickers []string
	Series  map[string][]float64
}

// PctChange lays closes out on the sorted union of dates and computes
// r_t = C_t / C_{t-1} - 1 per ticker. The first date is dropped. A return is
// NaN when either close is missing or the previous close is not positive.
func PctChange(tickers []string, closes []models.ClosePrice) Returns {
	want := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		want[t] = true
	}

	byDay := make(map[time.Time]map[string]float64)
	for _, c := range closes {
		if !want[c.Ticker] || math.IsNaN(c.Close) || math.IsInf(c.Close, 0) {
			continue
		}
		d := util.Day(c.Date)
		row, ok := byDay[d]
		if !ok {
			row = make(map[string]float64)
			byDay[d] = row
		}
		row[c.Ticker] = c.Close
	}

	dates := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := Returns{Tickers: tickers, Series: make(map[string][]float64, len(tickers))}
	if len(dates) < 2 {
		return out
	}
	out.Dates = dates[1:]
	for _, t := range tickers {
		series := make([]float64, len(dates)-1)
		for i := 1; i < len(dates); i++ {
			prev, okPrev := byDay[dates[i-1]][t]
			cur, okCur := byDay[dates[i]][t]
			if !okPrev || !okCur || prev <= 0 {
				series[i-1] = math.NaN()
				continue
			}
			series[i-1] = cur/prev - 1
		}
		out.Series[t] = series
	}
	return out
}
