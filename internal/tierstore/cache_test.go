package tierstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestCacheJSONRoundTripAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, 2*time.Minute)
	ctx := context.Background()
	key := variantKey(uuid.New())

	var dst TierEntry
	ok, err := cache.GetJSON(ctx, key, &dst)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.SetJSON(ctx, key, TierEntry{Threshold: 10, Price: mustDecimal(t, "90")}))
	require.Equal(t, 2*time.Minute, mr.TTL(key))

	ok, err = cache.GetJSON(ctx, key, &dst)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 10, dst.Threshold)

	mr.FastForward(3 * time.Minute)
	ok, err = cache.GetJSON(ctx, key, &dst)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *Cache
	ctx := context.Background()
	ok, err := cache.GetJSON(ctx, "k", &struct{}{})
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, cache.SetJSON(ctx, "k", 1))
	require.NoError(t, cache.Delete(ctx, "k"))
	require.NoError(t, cache.Ping(ctx))
}
