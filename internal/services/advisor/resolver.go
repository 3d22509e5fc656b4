package advisor

import (
	"context"
	"fmt"
	"strings"

	"StockSense/internal/domain/models"
	domsvc "StockSense/internal/domain/service"
	"StockSense/internal/services/llm"
)

// Resolver maps free text to a ticker using a language model.
type Resolver struct {
	gen domsvc.TextGenerator
}

func NewResolver(gen domsvc.TextGenerator) *Resolver {
	return &Resolver{gen: gen}
}

func (r *Resolver) Resolve(ctx context.Context, userInput string) (models.TickerIntent, error) {
	reply, err := r.gen.Generate(ctx, BuildResolvePrompt(userInput))
	if err != nil {
		return models.TickerIntent{}, fmt.Errorf("%w: resolve ticker: %w", models.ErrUpstreamService, err)
	}

	var intent models.TickerIntent
	if err := llm.DecodeJSON(reply, &intent); err != nil {
		return models.TickerIntent{}, fmt.Errorf("%w: resolve ticker: %w", models.ErrUpstreamService, err)
	}

	intent.Ticker = strings.ToUpper(strings.TrimSpace(intent.Ticker))
	intent.Action = strings.ToLower(strings.TrimSpace(intent.Action))
	if intent.Ticker == "" {
		return models.TickerIntent{}, fmt.Errorf("%w: %q", models.ErrTickerNotResolved, userInput)
	}
	return intent, nil
}

var _ domsvc.TickerResolver = (*Resolver)(nil)
