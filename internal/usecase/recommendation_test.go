package usecase

import (
	"context"
	"testing"

	"StockSense/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recFixture struct {
	synth     *stubSynth
	publisher *stubPublisher
	metrics   *countingMetrics
	svc       *RecommendationService
}

func newRecFixture(t *testing.T, resolver stubResolver, corr stubCorrelations, sent stubSentiment) *recFixture {
	t.Helper()
	u := newUniverse(t, 60, 5, "AAPL", "MSFT", "NVDA", "TSLA", "AMZN")
	fc := &models.Forecast{UniverseVersion: "test-1", Horizon: 5, Prices: map[string][]float64{}}
	for i, tk := range u.Tickers() {
		base := float64(100 * (i + 1))
		fc.Prices[tk] = []float64{base, base + 1, base + 2, base + 3, base + 4}
	}
	f := &recFixture{
		synth:     &stubSynth{actions: map[string]string{"AAPL": "buy", "MSFT": "sell"}},
		publisher: &stubPublisher{},
		metrics:   newCountingMetrics(),
	}
	f.svc = NewRecommendationService(resolver, f.synth, stubForecasts{u: u, fc: fc}, corr, sent, f.publisher, nil, f.metrics, nil,
		RecommendationConfig{MaxTickers: 3, SentimentLimit: 20, Concurrency: 2})
	return f
}

func aaplResolver() stubResolver {
	return stubResolver{intent: models.TickerIntent{Ticker: "aapl", Action: "buy"}}
}

func TestRecommendPrimaryFirstWithRelated(t *testing.T) {
	corr := stubCorrelations{docs: map[string]*models.Correlation{
		"AAPL": {Ticker: "AAPL", Correlations: []string{"MSFT", "ZZZZ", "AAPL", "NVDA", "TSLA"}},
	}}
	sent := stubSentiment{records: map[string][]models.Sentiment{
		"AAPL": {{Date: "2024-03-01", Sentiment: "positive", SentimentReasoning: "beat", Ticker: "AAPL"}},
	}}
	f := newRecFixture(t, aaplResolver(), corr, sent)

	recs, err := f.svc.Recommend(context.Background(), "Should I buy Apple?")
	require.NoError(t, err)

	require.Len(t, recs, 3)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, []string{recs[0].StockName, recs[1].StockName, recs[2].StockName})
	assert.Equal(t, "buy", recs[0].Action)
	assert.Equal(t, "sell", recs[1].Action)
	assert.Equal(t, "hold", recs[2].Action)

	call, ok := f.synth.call("AAPL")
	require.True(t, ok)
	assert.Equal(t, []float64{100, 101, 102, 103, 104}, call.forecast)
	assert.Len(t, call.sentiment, 1)

	call, _ = f.synth.call("NVDA")
	assert.NotNil(t, call.sentiment)
	assert.Empty(t, call.sentiment)

	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0]
	assert.Equal(t, "AAPL", ev.PrimaryTicker)
	assert.Equal(t, "test-1", ev.UniverseVersion)
	assert.Equal(t, recs, ev.Recommendations)
	assert.NotEmpty(t, ev.RequestID)
	assert.Equal(t, 1, f.metrics.actions["buy"])
}

func TestRecommendWithoutCorrelationDoc(t *testing.T) {
	f := newRecFixture(t, aaplResolver(), stubCorrelations{}, stubSentiment{})

	recs, err := f.svc.Recommend(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "AAPL", recs[0].StockName)
}

func TestRecommendDegradesFailedLookups(t *testing.T) {
	corr := stubCorrelations{err: models.ErrUpstreamService}
	f := newRecFixture(t, aaplResolver(), corr, stubSentiment{failFor: "AAPL"})

	recs, err := f.svc.Recommend(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	call, _ := f.synth.call("AAPL")
	assert.NotNil(t, call.sentiment)
	assert.Empty(t, call.sentiment)
	assert.Equal(t, 1, f.metrics.errors["sentiment"])
	assert.Equal(t, 1, f.metrics.errors["correlation"])
}

func TestRecommendPrimaryOutsideUniverse(t *testing.T) {
	f := newRecFixture(t, stubResolver{intent: models.TickerIntent{Ticker: "IBM"}}, stubCorrelations{}, stubSentiment{})

	_, err := f.svc.Recommend(context.Background(), "ibm")
	assert.ErrorIs(t, err, models.ErrMissingAssetData)
	assert.Empty(t, f.synth.calls)
}

func TestRecommendSynthesisFailureFailsRequest(t *testing.T) {
	corr := stubCorrelations{docs: map[string]*models.Correlation{"AAPL": {Correlations: []string{"MSFT"}}}}
	f := newRecFixture(t, aaplResolver(), corr, stubSentiment{})
	f.synth.failFor = "MSFT"

	recs, err := f.svc.Recommend(context.Background(), "apple")
	assert.ErrorIs(t, err, models.ErrUpstreamService)
	assert.Nil(t, recs)
	assert.Empty(t, f.publisher.events)
}

func TestRecommendPropagatesResolverAndForecastErrors(t *testing.T) {
	f := newRecFixture(t, stubResolver{err: models.ErrTickerNotResolved}, stubCorrelations{}, stubSentiment{})
	_, err := f.svc.Recommend(context.Background(), "hello")
	assert.ErrorIs(t, err, models.ErrTickerNotResolved)

	_, err = f.svc.Recommend(context.Background(), "   ")
	assert.ErrorIs(t, err, models.ErrTickerNotResolved)

	f = newRecFixture(t, aaplResolver(), stubCorrelations{}, stubSentiment{})
	f.svc.forecasts = stubForecasts{u: f.svc.forecasts.Universe(), err: models.ErrForecastUnavailable}
	_, err = f.svc.Recommend(context.Background(), "apple")
	assert.ErrorIs(t, err, models.ErrForecastUnavailable)
}

func TestRecommendPublishFailureIsNotFatal(t *testing.T) {
	f := newRecFixture(t, aaplResolver(), stubCorrelations{}, stubSentiment{})
	f.publisher.err = errBoom

	_, err := f.svc.Recommend(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, 1, f.metrics.errors["publish"])
}

func TestSelectTickers(t *testing.T) {
	u := newUniverse(t, 60, 5, "AAPL", "MSFT", "NVDA", "TSLA", "AMZN", "GOOG")

	assert.Equal(t, []string{"AAPL"}, SelectTickers("AAPL", nil, u, 5))
	assert.Equal(t,
		[]string{"AAPL", "MSFT", "NVDA", "TSLA", "AMZN"},
		SelectTickers("AAPL", []string{"msft", "MSFT", "IBM", "NVDA", "TSLA", "AMZN", "GOOG"}, u, 5))
	assert.Equal(t, []string{"AAPL"}, SelectTickers("AAPL", []string{"MSFT"}, u, 1))
}
