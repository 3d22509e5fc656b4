package yahoo

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"StockSense/internal/domain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 21, 0, 0, 0, time.UTC)

func day(d int) int {
	return int(time.Date(2024, 3, d, 14, 30, 0, 0, time.UTC).Unix())
}

func TestFetchCollectsCloses(t *testing.T) {
	var gotStart, gotEnd time.Time
	feed := NewFeed(withClock(func() time.Time { return fixedNow }), WithChartFunc(
		func(_ context.Context, symbol string, start, end time.Time) ([]Bar, error) {
			gotStart, gotEnd = start, end
			base := map[string]float64{"AAPL": 170, "MSFT": 400}[symbol]
			return []Bar{
				{Timestamp: day(13), Close: decimal.NewFromFloat(base)},
				{Timestamp: day(14), Close: decimal.Zero},
				{Timestamp: day(15), Close: decimal.NewFromFloat(base + 1.25)},
			}, nil
		}))

	out, err := feed.Fetch(context.Background(), []string{"AAPL", "MSFT"}, 120)
	require.NoError(t, err)

	assert.Equal(t, fixedNow, gotEnd)
	assert.Equal(t, fixedNow.AddDate(0, 0, -120), gotStart)

	sort.Slice(out, func(i, j int) bool {
		if out[i].Ticker != out[j].Ticker {
			return out[i].Ticker < out[j].Ticker
		}
		return out[i].Date.Before(out[j].Date)
	})
	require.Len(t, out, 4)
	assert.Equal(t, models.ClosePrice{Date: time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), Ticker: "AAPL", Close: 170}, out[0])
	assert.Equal(t, 171.25, out[1].Close)
	assert.Equal(t, "MSFT", out[2].Ticker)
}

func TestFetchFailsWhenAnyTickerFails(t *testing.T) {
	feed := NewFeed(WithChartFunc(func(_ context.Context, symbol string, _, _ time.Time) ([]Bar, error) {
		if symbol == "BAD" {
			return nil, errors.New("404 not found")
		}
		return []Bar{{Timestamp: day(1), Close: decimal.NewFromInt(1)}}, nil
	}))

	_, err := feed.Fetch(context.Background(), []string{"AAPL", "BAD"}, 10)
	assert.ErrorIs(t, err, models.ErrUpstreamService)
	assert.ErrorContains(t, err, "BAD")
}

func TestFetchBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	feed := NewFeed(WithConcurrency(2), WithChartFunc(func(context.Context, string, time.Time, time.Time) ([]Bar, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil, nil
	}))

	_, err := feed.Fetch(context.Background(), []string{"A", "B", "C", "D", "E", "F"}, 10)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}
