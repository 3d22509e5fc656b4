package yahoo

import (
	"context"
	"fmt"
	"time"

	"StockSense/internal/domain/models"
	"StockSense/internal/domain/repository"
	"StockSense/internal/service/metrics"
	"StockSense/pkg/util"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Bar is one daily bar as returned by the chart API.
type Bar struct {
	Timestamp int
	Close     decimal.Decimal
}

// ChartFunc fetches daily bars for one symbol in [start, end].
type ChartFunc func(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error)

// Feed downloads daily closes from Yahoo Finance, one chart request per
// ticker, with bounded concurrency and a shared request rate.
type Feed struct {
	chart       ChartFunc
	concurrency int
	limiter     *rate.Limiter
	now         func() time.Time
}

type Option func(*Feed)

func WithConcurrency(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithRate limits chart requests per second. Non-positive means unlimited.
func WithRate(perSec float64) Option {
	return func(f *Feed) {
		if perSec > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
	}
}

func WithChartFunc(fn ChartFunc) Option {
	return func(f *Feed) { f.chart = fn }
}

func withClock(now func() time.Time) Option {
	return func(f *Feed) { f.now = now }
}

func NewFeed(opts ...Option) *Feed {
	f := &Feed{
		chart:       fetchChart,
		concurrency: 8,
		limiter:     rate.NewLimiter(rate.Inf, 1),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns closes for every ticker over the last lookbackDays calendar
// days. Bars without a positive close are skipped. Any ticker failing fails
// the whole fetch.
func (f *Feed) Fetch(ctx context.Context, tickers []string, lookbackDays int) (out []models.ClosePrice, err error) {
	start := time.Now()
	defer func() { metrics.Observe("yahoo", "chart", start, err) }()

	end := f.now().UTC()
	from := end.AddDate(0, 0, -lookbackDays)

	results := make([][]models.ClosePrice, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, ticker := range tickers {
		g.Go(func() error {
			if err := f.limiter.Wait(gctx); err != nil {
				return err
			}
			bars, err := f.chart(gctx, ticker, from, end)
			if err != nil {
				return fmt.Errorf("%w: yahoo chart %s: %w", models.ErrUpstreamService, ticker, err)
			}
			closes := make([]models.ClosePrice, 0, len(bars))
			for _, bar := range bars {
				if !bar.Close.IsPositive() {
					continue
				}
				closes = append(closes, models.ClosePrice{
					Date:   util.Day(time.Unix(int64(bar.Timestamp), 0).UTC()),
					Ticker: ticker,
					Close:  bar.Close.InexactFloat64(),
				})
			}
			results[i] = closes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func fetchChart(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}
	params.Context = &ctx

	iter := chart.Get(params)
	var bars []Bar
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, Bar{Timestamp: b.Timestamp, Close: b.Close})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}

var _ repository.PriceFeed = (*Feed)(nil)
