package models

import "time"

const (
	ActionBuy  = "buy"
	ActionSell = "sell"
	ActionHold = "hold"
)

// TickerIntent is what the resolver extracted from free text.
type TickerIntent struct {
	Ticker string `json:"ticker"`
	Action string `json:"action"`
}

// Recommendation is the caller-facing result for one ticker.
type Recommendation struct {
	StockName   string `json:"stock_name" validate:"required"`
	Action      string `json:"action" validate:"required,oneof=buy sell hold"`
	Description string `json:"description"`
}

// RecommendationIssued is published after a request completes.
type RecommendationIssued struct {
	RequestID       string           `json:"request_id"`
	UserInput       string           `json:"user_input"`
	PrimaryTicker   string           `json:"primary_ticker"`
	UniverseVersion string           `json:"universe_version"`
	Recommendations []Recommendation `json:"recommendations"`
	IssuedAt        time.Time        `json:"issued_at"`
}
