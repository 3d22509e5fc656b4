package service

import (
	"context"

	"StockSense/internal/domain/models"
)

// SequenceModel predicts the next scaled row from a [1][window][N] batch and
// returns a [1][N] result.
type SequenceModel interface {
	Predict(ctx context.Context, batch [][][]float64) ([][]float64, error)
}

// TextGenerator sends a prompt to a language model and returns its text reply.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TickerResolver extracts a ticker and intended action from free text.
type TickerResolver interface {
	Resolve(ctx context.Context, userInput string) (models.TickerIntent, error)
}

// Synthesizer turns one ticker's forecast and sentiment into a recommendation.
type Synthesizer interface {
	Recommend(ctx context.Context, ticker string, forecast []float64, sentiment []models.Sentiment) (models.Recommendation, error)
}

// NewsSource lists per-article sentiment insights for a ticker on one day.
type NewsSource interface {
	Insights(ctx context.Context, ticker string, day string) ([]models.Sentiment, error)
}
