package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	domrepo "StockSense/internal/domain/repository"
	applogger "StockSense/pkg/logger"
)

// PriceSync copies daily closes from a live feed into the price archive.
// When the archive already has data only the gap since its latest date (plus
// a small overlap) is fetched.
type PriceSync struct {
	feed        domrepo.PriceFeed
	archive     domrepo.PriceArchive
	tickers     []string
	maxLookback int
	l           *applogger.Logger
	now         func() time.Time
}

const syncOverlapDays = 3

func NewPriceSync(feed domrepo.PriceFeed, archive domrepo.PriceArchive, tickers []string, maxLookback int, l *applogger.Logger) *PriceSync {
	if l == nil {
		l = applogger.Nop()
	}
	return &PriceSync{feed: feed, archive: archive, tickers: tickers, maxLookback: maxLookback, l: l, now: time.Now}
}

func (p *PriceSync) Run(ctx context.Context) (int, error) {
	latest, err := p.archive.Latest(ctx)
	if err != nil {
		return 0, err
	}
	lookback := p.lookback(latest)

	closes, err := p.feed.Fetch(ctx, p.tickers, lookback)
	if err != nil {
		return 0, fmt.Errorf("fetch closes: %w", err)
	}
	if err := p.archive.StoreBatch(ctx, closes); err != nil {
		return 0, err
	}
	p.l.Info("prices synced",
		applogger.Int("tickers", len(p.tickers)),
		applogger.Int("lookback_days", lookback),
		applogger.Int("rows", len(closes)),
	)
	return len(closes), nil
}

func (p *PriceSync) lookback(latest time.Time) int {
	if latest.IsZero() {
		return p.maxLookback
	}
	gap := int(math.Ceil(p.now().UTC().Sub(latest).Hours()/24)) + syncOverlapDays
	if gap > p.maxLookback {
		return p.maxLookback
	}
	if gap < 1 {
		return 1
	}
	return gap
}
