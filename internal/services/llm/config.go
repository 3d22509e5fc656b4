package llm

import (
	"context"
	"fmt"
	"time"

	domsvc "StockSense/internal/domain/service"
)

type Config struct {
	Provider          string
	APIKey            string
	Model             string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	Temperature       float32
}

// New returns the configured provider wrapped in a request throttle.
func New(ctx context.Context, cfg Config) (domsvc.TextGenerator, error) {
	var (
		gen domsvc.TextGenerator
		err error
	)
	switch cfg.Provider {
	case "", "gemini":
		gen, err = NewGemini(ctx, cfg)
	case "openai":
		gen, err = NewOpenAI(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewThrottled(gen, cfg.RequestsPerMinute, cfg.Timeout), nil
}
