package advisor

import (
	"context"
	"fmt"
	"strings"

	"StockSense/internal/domain/models"
	domsvc "StockSense/internal/domain/service"
	"StockSense/internal/services/llm"

	"github.com/go-playground/validator/v10"
)

// Synthesizer asks a language model for a buy/sell/hold call on one ticker.
type Synthesizer struct {
	gen      domsvc.TextGenerator
	validate *validator.Validate
}

func NewSynthesizer(gen domsvc.TextGenerator) *Synthesizer {
	return &Synthesizer{gen: gen, validate: validator.New()}
}

// Recommend always reports the requested ticker as stock_name, whatever the
// model echoed back.
func (s *Synthesizer) Recommend(ctx context.Context, ticker string, forecast []float64, sentiment []models.Sentiment) (models.Recommendation, error) {
	reply, err := s.gen.Generate(ctx, BuildRecommendationPrompt(ticker, forecast, sentiment))
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("%w: recommend %s: %w", models.ErrUpstreamService, ticker, err)
	}

	var rec models.Recommendation
	if err := llm.DecodeJSON(reply, &rec); err != nil {
		return models.Recommendation{}, fmt.Errorf("%w: recommend %s: %w", models.ErrUpstreamService, ticker, err)
	}

	rec.StockName = ticker
	rec.Action = strings.ToLower(strings.TrimSpace(rec.Action))
	rec.Description = strings.TrimSpace(rec.Description)
	if err := s.validate.Struct(rec); err != nil {
		return models.Recommendation{}, fmt.Errorf("%w: recommend %s: invalid reply: %w", models.ErrUpstreamService, ticker, err)
	}
	return rec, nil
}

var _ domsvc.Synthesizer = (*Synthesizer)(nil)
