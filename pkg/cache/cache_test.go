package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name   string               `json:"name"`
	Prices map[string][]float64 `json:"prices"`
}

func TestMemoryCacheRoundTripsStructs(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	in := payload{Name: "v1", Prices: map[string][]float64{"AAPL": {1, 2, 3}}}
	require.NoError(t, mc.Set(ctx, "k", in, time.Minute))

	var out payload
	require.NoError(t, mc.Get(ctx, "k", &out))
	assert.Equal(t, in, out)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var out string
	assert.ErrorIs(t, mc.Get(ctx, "k", &out), ErrCacheMiss)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", 2, time.Minute))
	time.Sleep(time.Millisecond)
	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", 3, time.Minute))

	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	assert.NoError(t, mc.Get(ctx, "a", &v))
	assert.NoError(t, mc.Get(ctx, "c", &v))
}

func TestLayeredCacheFillsL1FromRemote(t *testing.T) {
	remote := NewMemoryCache()
	lc := NewLayeredCache(remote, 10, time.Minute)
	defer lc.Close()
	ctx := context.Background()

	require.NoError(t, remote.Set(ctx, "k", []string{"x"}, time.Hour))

	var got []string
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, []string{"x"}, got)

	require.NoError(t, remote.Delete(ctx, "k"))
	got = nil
	require.NoError(t, lc.Get(ctx, "k", &got), "served from L1")
	assert.Equal(t, []string{"x"}, got)
}

func TestRemember(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()
	calls := 0
	load := func(context.Context) ([]float64, error) {
		calls++
		return []float64{1.5, 2.5}, nil
	}

	v, hit, err := Remember(ctx, mc, "f", time.Minute, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []float64{1.5, 2.5}, v)

	v, hit, err = Remember(ctx, mc, "f", time.Minute, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []float64{1.5, 2.5}, v)
	assert.Equal(t, 1, calls)
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()
	boom := errors.New("boom")

	_, _, err := Remember(ctx, mc, "f", time.Minute, func(context.Context) (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)

	var v int
	assert.ErrorIs(t, mc.Get(ctx, "f", &v), ErrCacheMiss)
}

func TestRememberWithNilCache(t *testing.T) {
	v, hit, err := Remember(context.Background(), nil, "f", time.Minute, func(context.Context) (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "ok", v)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "forecast:v1:2024-03-01", Key("forecast", "v1", "2024-03-01"))
	assert.Equal(t, "corr:AAPL:5", Key("corr", "AAPL", 5))
}
