package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockSense/internal/domain/models"
	domrepo "StockSense/internal/domain/repository"
	domsvc "StockSense/internal/domain/service"
	"StockSense/internal/forecast"
	"StockSense/pkg/cache"
	applogger "StockSense/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ForecastProvider serves the current universe-wide forecast.
type ForecastProvider interface {
	Universe() *forecast.Universe
	Current(ctx context.Context) (*models.Forecast, error)
}

type RecommendationConfig struct {
	MaxTickers     int
	SentimentLimit int
	Concurrency    int
	CorrelationTTL time.Duration
}

// RecommendationService answers "what should I do with X?" for X and the
// tickers most correlated with it.
type RecommendationService struct {
	resolver     domsvc.TickerResolver
	synth        domsvc.Synthesizer
	forecasts    ForecastProvider
	correlations domrepo.CorrelationStore
	sentiment    domrepo.SentimentStore
	events       domrepo.EventPublisher
	cache        cache.Service
	metrics      domrepo.Metrics
	l            *applogger.Logger
	cfg          RecommendationConfig
	now          func() time.Time
}

func NewRecommendationService(
	resolver domsvc.TickerResolver,
	synth domsvc.Synthesizer,
	forecasts ForecastProvider,
	correlations domrepo.CorrelationStore,
	sentiment domrepo.SentimentStore,
	events domrepo.EventPublisher,
	c cache.Service,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	cfg RecommendationConfig,
) *RecommendationService {
	if cfg.MaxTickers <= 0 {
		cfg.MaxTickers = 5
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = cfg.MaxTickers
	}
	if cfg.CorrelationTTL <= 0 {
		cfg.CorrelationTTL = time.Hour
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &RecommendationService{
		resolver:     resolver,
		synth:        synth,
		forecasts:    forecasts,
		correlations: correlations,
		sentiment:    sentiment,
		events:       events,
		cache:        c,
		metrics:      metrics,
		l:            l,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Recommend returns one recommendation per considered ticker, primary first.
func (s *RecommendationService) Recommend(ctx context.Context, userInput string) ([]models.Recommendation, error) {
	start := time.Now()
	defer s.recordLatency("recommend", start)

	userInput = strings.TrimSpace(userInput)
	if userInput == "" {
		return nil, fmt.Errorf("%w: empty input", models.ErrTickerNotResolved)
	}

	intent, err := s.resolver.Resolve(ctx, userInput)
	if err != nil {
		s.recordError("resolve")
		return nil, err
	}

	u := s.forecasts.Universe()
	primary := forecast.NormalizeTicker(intent.Ticker)
	if !u.Contains(primary) {
		return nil, fmt.Errorf("%w: %s is not in universe %s", models.ErrMissingAssetData, primary, u.Version())
	}

	tickers := SelectTickers(primary, s.related(ctx, primary), u, s.cfg.MaxTickers)
	log := s.l.With(applogger.String("primary", primary))
	log.Debug("tickers selected", applogger.Strings("tickers", tickers), applogger.String("intent", intent.Action))

	fc, err := s.forecasts.Current(ctx)
	if err != nil {
		return nil, err
	}
	slice, missing := fc.Slice(tickers)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: no forecast for %s", models.ErrMissingAssetData, strings.Join(missing, ", "))
	}

	recs := make([]models.Recommendation, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, ticker := range tickers {
		g.Go(func() error {
			rec, err := s.synth.Recommend(gctx, ticker, slice.Prices[ticker], s.sentimentFor(gctx, log, ticker))
			if err != nil {
				return err
			}
			recs[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.recordError("synthesize")
		return nil, err
	}

	for _, r := range recs {
		if s.metrics != nil {
			s.metrics.RecordRecommendation(r.Action)
		}
	}
	s.publish(ctx, log, &models.RecommendationIssued{
		RequestID:       uuid.NewString(),
		UserInput:       userInput,
		PrimaryTicker:   primary,
		UniverseVersion: fc.UniverseVersion,
		Recommendations: recs,
		IssuedAt:        s.now().UTC(),
	})
	return recs, nil
}

// SelectTickers puts primary first, then related tickers in order, dropping
// duplicates and tickers outside u, and keeps at most limit.
func SelectTickers(primary string, related []string, u *forecast.Universe, limit int) []string {
	seen := map[string]bool{primary: true}
	out := []string{primary}
	for _, t := range related {
		if len(out) >= limit {
			break
		}
		t = forecast.NormalizeTicker(t)
		if seen[t] || !u.Contains(t) {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// related returns the stored correlation list. Lookup failures degrade to no
// related tickers.
func (s *RecommendationService) related(ctx context.Context, ticker string) []string {
	key := cache.Key("correlation", ticker)
	doc, hit, err := cache.Remember(ctx, s.cache, key, s.cfg.CorrelationTTL,
		func(ctx context.Context) (*models.Correlation, error) {
			return s.correlations.Find(ctx, ticker)
		})
	if s.metrics != nil {
		s.metrics.RecordCacheResult("correlation", hit)
	}
	if err != nil {
		s.recordError("correlation")
		s.l.Warn("correlation lookup failed", applogger.String("ticker", ticker), applogger.Error(err))
		return nil
	}
	if doc == nil {
		return nil
	}
	return doc.Correlations
}

func (s *RecommendationService) sentimentFor(ctx context.Context, log *applogger.Logger, ticker string) []models.Sentiment {
	records, err := s.sentiment.FindByTicker(ctx, ticker, s.cfg.SentimentLimit)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		s.recordError("sentiment")
		log.Warn("sentiment lookup failed", applogger.String("ticker", ticker), applogger.Error(err))
		return []models.Sentiment{}
	}
	if records == nil {
		return []models.Sentiment{}
	}
	return records
}

func (s *RecommendationService) publish(ctx context.Context, log *applogger.Logger, ev *models.RecommendationIssued) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecommendation(ctx, ev); err != nil {
		s.recordError("publish")
		log.Warn("publish recommendation failed", applogger.String("request_id", ev.RequestID), applogger.Error(err))
	}
}

func (s *RecommendationService) recordError(kind string) {
	if s.metrics != nil {
		s.metrics.RecordError(kind)
	}
}

func (s *RecommendationService) recordLatency(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordLatency(op, time.Since(start).Seconds())
	}
}
