package usecase

import (
	"context"
	"fmt"
	"time"

	"StockSense/internal/domain/models"
	domrepo "StockSense/internal/domain/repository"
	"StockSense/internal/forecast"
	"StockSense/internal/services/features"
	applogger "StockSense/pkg/logger"
)

type CorrelationJobConfig struct {
	Threshold       float64
	LookbackDays    int
	MinObservations int
}

// CorrelationJob recomputes, for every universe ticker, the list of tickers
// whose daily returns correlate above the threshold.
type CorrelationJob struct {
	feed     domrepo.PriceFeed
	writer   domrepo.CorrelationWriter
	universe *forecast.Universe
	cfg      CorrelationJobConfig
	l        *applogger.Logger
	now      func() time.Time
}

func NewCorrelationJob(feed domrepo.PriceFeed, writer domrepo.CorrelationWriter, universe *forecast.Universe, cfg CorrelationJobConfig, l *applogger.Logger) *CorrelationJob {
	if l == nil {
		l = applogger.Nop()
	}
	return &CorrelationJob{feed: feed, writer: writer, universe: universe, cfg: cfg, l: l, now: time.Now}
}

// Run writes one document per ticker and returns how many were written.
func (j *CorrelationJob) Run(ctx context.Context, dropExisting bool) (int, error) {
	start := time.Now()
	tickers := j.universe.Tickers()

	closes, err := j.feed.Fetch(ctx, tickers, j.cfg.LookbackDays)
	if err != nil {
		return 0, fmt.Errorf("fetch closes: %w", err)
	}
	ret := features.PctChange(tickers, closes)
	if len(ret.Dates) < j.cfg.MinObservations {
		return 0, fmt.Errorf("%w: %d return rows, need %d", models.ErrInsufficientHistory, len(ret.Dates), j.cfg.MinObservations)
	}

	related := features.Related(ret, j.cfg.Threshold, j.cfg.MinObservations)
	computedAt := j.now().UTC()
	docs := make([]models.Correlation, 0, len(tickers))
	for _, t := range tickers {
		docs = append(docs, models.Correlation{
			Ticker:       t,
			Correlations: related[t],
			Threshold:    j.cfg.Threshold,
			ComputedAt:   computedAt,
		})
	}

	if err := j.writer.Replace(ctx, docs, dropExisting); err != nil {
		return 0, err
	}
	j.l.Info("correlations stored",
		applogger.Int("tickers", len(docs)),
		applogger.Int("return_rows", len(ret.Dates)),
		applogger.Float64("threshold", j.cfg.Threshold),
		applogger.Bool("dropped", dropExisting),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return len(docs), nil
}
