package usecase

import (
	"context"
	"fmt"
	"time"

	"StockSense/internal/domain/models"
	domrepo "StockSense/internal/domain/repository"
	"StockSense/internal/forecast"
	"StockSense/pkg/cache"
	applogger "StockSense/pkg/logger"
	"StockSense/pkg/util"

	"golang.org/x/sync/singleflight"
)

type ForecastConfig struct {
	LookbackDays int
	Timeout      time.Duration
	CacheTTL     time.Duration
}

// ForecastService runs the engine over fresh closes. Results are cached per
// universe version and UTC day, and concurrent misses share one run.
type ForecastService struct {
	engine  *forecast.Engine
	feed    domrepo.PriceFeed
	cache   cache.Service
	metrics domrepo.Metrics
	l       *applogger.Logger
	cfg     ForecastConfig
	group   singleflight.Group
	now     func() time.Time
}

func NewForecastService(engine *forecast.Engine, feed domrepo.PriceFeed, c cache.Service, metrics domrepo.Metrics, l *applogger.Logger, cfg ForecastConfig) *ForecastService {
	if l == nil {
		l = applogger.Nop()
	}
	return &ForecastService{
		engine:  engine,
		feed:    feed,
		cache:   c,
		metrics: metrics,
		l:       l,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *ForecastService) Universe() *forecast.Universe {
	return s.engine.Universe()
}

// Current returns today's forecast for the whole universe.
func (s *ForecastService) Current(ctx context.Context) (*models.Forecast, error) {
	key := cache.Key("forecast", s.engine.Universe().Version(), util.FormatDay(s.now().UTC()))

	ch := s.group.DoChan(key, func() (interface{}, error) {
		// Detached so one caller's cancellation does not fail the others.
		runCtx := context.WithoutCancel(ctx)
		f, hit, err := cache.Remember(runCtx, s.cache, key, s.cfg.CacheTTL, s.run)
		if s.metrics != nil {
			s.metrics.RecordCacheResult("forecast", hit)
		}
		return f, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Forecast), nil
	}
}

// Run bypasses the cache.
func (s *ForecastService) Run(ctx context.Context) (*models.Forecast, error) {
	return s.run(ctx)
}

func (s *ForecastService) run(ctx context.Context) (*models.Forecast, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	start := time.Now()
	u := s.engine.Universe()

	closes, err := s.feed.Fetch(ctx, u.Tickers(), s.cfg.LookbackDays)
	if err != nil {
		s.recordError("price_feed")
		return nil, fmt.Errorf("fetch closes: %w", err)
	}
	panel, err := forecast.BuildPanel(u, closes)
	if err != nil {
		s.recordError("panel")
		return nil, err
	}
	f, err := s.engine.Forecast(ctx, panel)
	if err != nil {
		s.recordError("forecast")
		s.l.Error("forecast failed",
			applogger.String("universe", u.Version()),
			applogger.Int("rows", panel.Rows()),
			applogger.Error(err),
		)
		return nil, err
	}

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordForecast(u.Version(), u.Len(), elapsed.Seconds())
	}
	s.l.Info("forecast computed",
		applogger.String("universe", u.Version()),
		applogger.String("as_of", util.FormatDay(f.AsOf)),
		applogger.Int("rows", panel.Rows()),
		applogger.Duration("duration_ms", elapsed),
	)
	return f, nil
}

func (s *ForecastService) recordError(kind string) {
	if s.metrics != nil {
		s.metrics.RecordError(kind)
	}
}
