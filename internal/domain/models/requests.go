package models

// Requests for HTTP endpoints.

type RecommendationRequest struct {
	UserInput string `query:"user_input" json:"user_input" validate:"required,max=500"`
}

type ForecastRequest struct {
	Tickers string `query:"tickers" json:"tickers" validate:"max=2000"`
}
