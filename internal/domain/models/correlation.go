package models

import "time"

// Correlation lists tickers whose daily returns correlate with Ticker above Threshold,
// strongest first.
type Correlation struct {
	Ticker       string    `bson:"ticker" json:"ticker"`
	Correlations []string  `bson:"correlations" json:"correlations"`
	Threshold    float64   `bson:"threshold,omitempty" json:"threshold,omitempty"`
	ComputedAt   time.Time `bson:"computed_at,omitempty" json:"computed_at,omitempty"`
}
