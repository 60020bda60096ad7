package profit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *SummaryCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSummaryCache(client, 0)
}

func TestSummaryCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_, ok, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache must report a miss")

	stored := Summary{
		Amount:     decimal.RequireFromString("987.65"),
		Formatted:  "987,65",
		ComputedAt: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, cache.Store(ctx, stored))

	got, ok, err := cache.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Amount.Equal(stored.Amount))
	assert.Equal(t, stored.Formatted, got.Formatted)
	assert.True(t, got.ComputedAt.Equal(stored.ComputedAt))
}

func TestTriggerPrimesFromCache(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	stored := Summary{
		Amount:     decimal.RequireFromString("2500.00"),
		Formatted:  "2.500,00",
		ComputedAt: time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC),
	}
	require.NoError(t, cache.Store(ctx, stored))

	trigger := NewTrigger(&stubSource{}, nil, WithCache(cache))
	defer trigger.Close()

	_, ok := trigger.Current()
	require.False(t, ok, "no summary before priming")

	trigger.Prime(ctx)

	got, ok := trigger.Current()
	require.True(t, ok)
	assert.Equal(t, "2.500,00", got.Formatted)

	// A later refresh wins over the primed value.
	src := &stubSource{}
	src.set(decimal.RequireFromString("99.00"), nil)
	fresh := NewTrigger(src, nil, WithCache(cache))
	defer fresh.Close()
	_, err := fresh.Refresh(ctx)
	require.NoError(t, err)
	fresh.Prime(ctx)
	got, ok = fresh.Current()
	require.True(t, ok)
	assert.Equal(t, "99,00", got.Formatted)
}

func TestTriggerStoresRefreshIntoCache(t *testing.T) {
	cache := newTestCache(t)
	src := &stubSource{}
	src.set(decimal.RequireFromString("321.00"), nil)

	trigger := NewTrigger(src, nil, WithCache(cache))
	defer trigger.Close()

	_, err := trigger.Refresh(context.Background())
	require.NoError(t, err)

	got, ok, err := cache.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "321,00", got.Formatted)
}
