package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"StockSense/internal/domain/models"
	"StockSense/internal/forecast"
	"StockSense/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func newForecastService(t *testing.T, feed *stubFeed, c cache.Service) (*ForecastService, *countingMetrics) {
	t.Helper()
	u := newUniverse(t, 3, 2, "A", "B")
	engine, err := forecast.NewEngine(lastRowModel{}, u)
	require.NoError(t, err)
	m := newCountingMetrics()
	svc := NewForecastService(engine, feed, c, m, nil, ForecastConfig{LookbackDays: 120, Timeout: time.Second, CacheTTL: time.Minute})
	svc.now = func() time.Time { return day0.AddDate(0, 0, 5) }
	return svc, m
}

func TestForecastServiceComputes(t *testing.T) {
	feed := &stubFeed{closes: linearCloses([]string{"A", "B"}, day0, 5)}
	svc, _ := newForecastService(t, feed, nil)

	f, err := svc.Current(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "test-1", f.UniverseVersion)
	assert.Equal(t, day0.AddDate(0, 0, 4), f.AsOf)
	assert.InDeltaSlice(t, []float64{104, 104}, f.Prices["A"], 1e-9)
	assert.InDeltaSlice(t, []float64{208, 208}, f.Prices["B"], 1e-9)
	assert.Equal(t, []int{120}, feed.lookback)
}

func TestForecastServiceCachesPerDay(t *testing.T) {
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	feed := &stubFeed{closes: linearCloses([]string{"A", "B"}, day0, 5)}
	svc, m := newForecastService(t, feed, mem)

	first, err := svc.Current(context.Background())
	require.NoError(t, err)
	second, err := svc.Current(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, feed.Calls())
	assert.Equal(t, first.Prices, second.Prices)
	assert.Equal(t, [2]int{1, 1}, m.cache["forecast"])

	svc.now = func() time.Time { return day0.AddDate(0, 0, 6) }
	_, err = svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, feed.Calls(), "a new day is a new key")
}

func TestForecastServiceSharesConcurrentRuns(t *testing.T) {
	feed := &stubFeed{closes: linearCloses([]string{"A", "B"}, day0, 5), delay: 50 * time.Millisecond}
	svc, _ := newForecastService(t, feed, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Current(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Less(t, feed.Calls(), 8)
}

func TestForecastServiceErrors(t *testing.T) {
	t.Run("feed", func(t *testing.T) {
		svc, m := newForecastService(t, &stubFeed{err: models.ErrUpstreamService}, nil)
		_, err := svc.Current(context.Background())
		assert.ErrorIs(t, err, models.ErrUpstreamService)
		assert.Equal(t, 1, m.errors["price_feed"])
	})

	t.Run("short history", func(t *testing.T) {
		svc, _ := newForecastService(t, &stubFeed{closes: linearCloses([]string{"A", "B"}, day0, 2)}, nil)
		_, err := svc.Current(context.Background())
		assert.ErrorIs(t, err, models.ErrInsufficientHistory)
	})

	t.Run("missing ticker", func(t *testing.T) {
		svc, _ := newForecastService(t, &stubFeed{closes: linearCloses([]string{"A"}, day0, 5)}, nil)
		_, err := svc.Current(context.Background())
		assert.ErrorIs(t, err, models.ErrMissingAssetData)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		mem := cache.NewMemoryCache()
		t.Cleanup(func() { _ = mem.Close() })
		feed := &stubFeed{err: models.ErrUpstreamService}
		svc, _ := newForecastService(t, feed, mem)

		_, err := svc.Current(context.Background())
		require.Error(t, err)
		feed.err = nil
		feed.closes = linearCloses([]string{"A", "B"}, day0, 5)
		_, err = svc.Current(context.Background())
		require.NoError(t, err)
	})
}

func TestForecastServiceCallerCancellation(t *testing.T) {
	feed := &stubFeed{closes: linearCloses([]string{"A", "B"}, day0, 5), delay: 100 * time.Millisecond}
	svc, _ := newForecastService(t, feed, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := svc.Current(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
