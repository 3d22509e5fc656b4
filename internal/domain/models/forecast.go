package models

import "time"

// Forecast holds horizon-length predicted closes per ticker, day 1 first.
type Forecast struct {
	UniverseVersion string               `json:"universe_version"`
	AsOf            time.Time            `json:"as_of"`
	Horizon         int                  `json:"horizon"`
	Prices          map[string][]float64 `json:"prices"`
}

// Slice returns a copy restricted to tickers. Unknown tickers are reported
// via the second return value.
func (f *Forecast) Slice(tickers []string) (*Forecast, []string) {
	out := &Forecast{
		UniverseVersion: f.UniverseVersion,
		AsOf:            f.AsOf,
		Horizon:         f.Horizon,
		Prices:          make(map[string][]float64, len(tickers)),
	}
	var missing []string
	for _, t := range tickers {
		p, ok := f.Prices[t]
		if !ok {
			missing = append(missing, t)
			continue
		}
		out.Prices[t] = append([]float64(nil), p...)
	}
	return out, missing
}
