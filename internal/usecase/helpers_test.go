package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StockSense/internal/domain/models"
	"StockSense/internal/forecast"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newUniverse(t *testing.T, window, horizon int, tickers ...string) *forecast.Universe {
	t.Helper()
	u, err := forecast.NewUniverse(forecast.Manifest{Version: "test-1", WindowSize: window, Horizon: horizon, Tickers: tickers})
	require.NoError(t, err)
	return u
}

// linearCloses returns days of closes per ticker, ticker i starting at
// 100*(i+1) and rising by i+1 per day.
func linearCloses(tickers []string, start time.Time, days int) []models.ClosePrice {
	var out []models.ClosePrice
	for i, tk := range tickers {
		for d := 0; d < days; d++ {
			out = append(out, models.ClosePrice{
				Date:   start.AddDate(0, 0, d),
				Ticker: tk,
				Close:  float64(100*(i+1) + (i+1)*d),
			})
		}
	}
	return out
}

type stubFeed struct {
	mu       sync.Mutex
	calls    int
	lookback []int
	closes   []models.ClosePrice
	err      error
	delay    time.Duration
}

func (f *stubFeed) Fetch(ctx context.Context, _ []string, lookbackDays int) ([]models.ClosePrice, error) {
	f.mu.Lock()
	f.calls++
	f.lookback = append(f.lookback, lookbackDays)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.closes, f.err
}

func (f *stubFeed) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// lastRowModel predicts that tomorrow equals today.
type lastRowModel struct{}

func (lastRowModel) Predict(_ context.Context, batch [][][]float64) ([][]float64, error) {
	w := batch[0]
	return [][]float64{append([]float64(nil), w[len(w)-1]...)}, nil
}

type stubResolver struct {
	intent models.TickerIntent
	err    error
}

func (r stubResolver) Resolve(context.Context, string) (models.TickerIntent, error) {
	return r.intent, r.err
}

type synthCall struct {
	ticker    string
	forecast  []float64
	sentiment []models.Sentiment
}

type stubSynth struct {
	mu      sync.Mutex
	calls   []synthCall
	actions map[string]string
	failFor string
}

func (s *stubSynth) Recommend(_ context.Context, ticker string, fc []float64, sent []models.Sentiment) (models.Recommendation, error) {
	s.mu.Lock()
	s.calls = append(s.calls, synthCall{ticker: ticker, forecast: fc, sentiment: sent})
	s.mu.Unlock()
	if ticker == s.failFor {
		return models.Recommendation{}, errors.Join(models.ErrUpstreamService, errBoom)
	}
	action := s.actions[ticker]
	if action == "" {
		action = models.ActionHold
	}
	return models.Recommendation{StockName: ticker, Action: action, Description: "because " + ticker}, nil
}

func (s *stubSynth) call(ticker string) (synthCall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calls {
		if c.ticker == ticker {
			return c, true
		}
	}
	return synthCall{}, false
}

type stubCorrelations struct {
	docs map[string]*models.Correlation
	err  error
}

func (s stubCorrelations) Find(_ context.Context, ticker string) (*models.Correlation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.docs[ticker], nil
}

type stubSentiment struct {
	records map[string][]models.Sentiment
	failFor string
}

func (s stubSentiment) FindByTicker(_ context.Context, ticker string, _ int) ([]models.Sentiment, error) {
	if ticker == s.failFor {
		return nil, errBoom
	}
	return s.records[ticker], nil
}

type stubPublisher struct {
	mu     sync.Mutex
	events []*models.RecommendationIssued
	err    error
}

func (p *stubPublisher) PublishRecommendation(_ context.Context, ev *models.RecommendationIssued) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *stubPublisher) Close() error { return nil }

type stubForecasts struct {
	u   *forecast.Universe
	fc  *models.Forecast
	err error
}

func (s stubForecasts) Universe() *forecast.Universe { return s.u }

func (s stubForecasts) Current(context.Context) (*models.Forecast, error) {
	return s.fc, s.err
}

type countingMetrics struct {
	mu      sync.Mutex
	errors  map[string]int
	actions map[string]int
	cache   map[string][2]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{errors: map[string]int{}, actions: map[string]int{}, cache: map[string][2]int{}}
}

func (m *countingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *countingMetrics) RecordLatency(string, float64) {}

func (m *countingMetrics) RecordForecast(string, int, float64) {}

func (m *countingMetrics) RecordRecommendation(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions[action]++
}

func (m *countingMetrics) RecordCacheResult(name string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.cache[name]
	if hit {
		c[0]++
	} else {
		c[1]++
	}
	m.cache[name] = c
}

type memArchive struct {
	latest time.Time
	stored []models.ClosePrice
}

func (a *memArchive) StoreBatch(_ context.Context, prices []models.ClosePrice) error {
	a.stored = append(a.stored, prices...)
	return nil
}

func (a *memArchive) Latest(context.Context) (time.Time, error) { return a.latest, nil }

type memCorrelationWriter struct {
	docs    []models.Correlation
	dropped bool
}

func (w *memCorrelationWriter) Replace(_ context.Context, docs []models.Correlation, drop bool) error {
	w.docs, w.dropped = docs, drop
	return nil
}

type memSentimentWriter struct {
	records []models.Sentiment
	keys    map[string]struct{}
	indexed bool
}

func (w *memSentimentWriter) EnsureIndexes(context.Context) error {
	w.indexed = true
	return nil
}

func (w *memSentimentWriter) Upsert(_ context.Context, records []models.Sentiment) (int, error) {
	if w.keys == nil {
		w.keys = map[string]struct{}{}
	}
	n := 0
	for _, r := range records {
		key := r.Ticker + "|" + r.Date + "|" + r.SentimentReasoning
		if _, ok := w.keys[key]; ok {
			continue
		}
		w.keys[key] = struct{}{}
		w.records = append(w.records, r)
		n++
	}
	return n, nil
}
