package advisor

import (
	"context"
	"errors"
	"testing"

	"StockSense/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func TestResolveNormalizes(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n{\"ticker\": \" tsla \", \"action\": \"BUY\"}\n```"}

	intent, err := NewResolver(gen).Resolve(context.Background(), "I want to invest in Tesla")
	require.NoError(t, err)
	assert.Equal(t, models.TickerIntent{Ticker: "TSLA", Action: "buy"}, intent)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "'I want to invest in Tesla'")
}

func TestResolveEmptyTicker(t *testing.T) {
	gen := &stubGenerator{reply: `{"ticker": "", "action": ""}`}

	_, err := NewResolver(gen).Resolve(context.Background(), "hello there")
	assert.ErrorIs(t, err, models.ErrTickerNotResolved)
}

func TestResolveUpstreamFailures(t *testing.T) {
	for name, gen := range map[string]*stubGenerator{
		"transport": {err: errors.New("quota exceeded")},
		"malformed": {reply: "I think it's Apple"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewResolver(gen).Resolve(context.Background(), "apple")
			assert.ErrorIs(t, err, models.ErrUpstreamService)
		})
	}
}

func TestRecommendNormalizesAction(t *testing.T) {
	gen := &stubGenerator{reply: `{"stock_name": "Apple Inc", "action": "Buy", "description": " Strong outlook. "}`}
	sentiment := []models.Sentiment{{Date: "2024-03-01", Sentiment: "positive", SentimentReasoning: "record sales"}}

	rec, err := NewSynthesizer(gen).Recommend(context.Background(), "AAPL", []float64{170.123, 171.5, 172, 171.25, 173.999}, sentiment)
	require.NoError(t, err)
	assert.Equal(t, models.Recommendation{StockName: "AAPL", Action: "buy", Description: "Strong outlook."}, rec)

	prompt := gen.prompts[0]
	assert.Contains(t, prompt, `["170.12","171.5","172","171.25","174"]`)
	assert.Contains(t, prompt, "next 5 trading days")
	assert.Contains(t, prompt, `"sentiment_reasoning":"record sales"`)
}

func TestRecommendRejectsUnknownAction(t *testing.T) {
	gen := &stubGenerator{reply: `{"stock_name": "AAPL", "action": "short", "description": "x"}`}

	_, err := NewSynthesizer(gen).Recommend(context.Background(), "AAPL", []float64{1}, nil)
	assert.ErrorIs(t, err, models.ErrUpstreamService)
}

func TestRecommendMalformedReply(t *testing.T) {
	gen := &stubGenerator{reply: "not json"}

	_, err := NewSynthesizer(gen).Recommend(context.Background(), "AAPL", []float64{1}, nil)
	assert.ErrorIs(t, err, models.ErrUpstreamService)
}

func TestRecommendationPromptWithoutSentiment(t *testing.T) {
	p := BuildRecommendationPrompt("MSFT", []float64{400}, nil)
	assert.Contains(t, p, "'[]'")
}
