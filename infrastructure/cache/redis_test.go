package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/simdex/simdex/domain/similarity"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestResultCache_RoundTripWithTTL(t *testing.T) {
	srv, client := newTestRedis(t)
	cache := NewResultCache(client, time.Hour)
	ctx := context.Background()

	pred := similarity.Prediction{
		similarity.NewNeighbor("paris", -0.1),
		similarity.NewNeighbor("london", -0.4),
	}
	require.NoError(t, cache.Put(ctx, "sim:france", pred))

	got, err := cache.Get(ctx, "sim:france")
	require.NoError(t, err)
	require.Equal(t, pred, got)

	require.Equal(t, time.Hour, srv.TTL("sim:france"))
}

func TestResultCache_Miss(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewResultCache(client, time.Hour)

	_, err := cache.Get(context.Background(), "sim:atlantis")
	require.ErrorIs(t, err, similarity.ErrCacheMiss)
}

func TestResultCache_CorruptEntryReadsAsMiss(t *testing.T) {
	srv, client := newTestRedis(t)
	cache := NewResultCache(client, time.Hour)

	require.NoError(t, srv.Set("sim:france", "not json"))

	_, err := cache.Get(context.Background(), "sim:france")
	require.ErrorIs(t, err, similarity.ErrCacheMiss)
}

func TestResultCache_GetFailsWhenRedisDown(t *testing.T) {
	srv, client := newTestRedis(t)
	cache := NewResultCache(client, time.Hour)
	srv.Close()

	_, err := cache.Get(context.Background(), "sim:france")
	require.Error(t, err)
	require.False(t, errors.Is(err, similarity.ErrCacheMiss))
}

func TestRateLimiter_WindowKeyAndExpiry(t *testing.T) {
	srv, client := newTestRedis(t)
	at := time.Date(2026, 8, 25, 12, 30, 45, 0, time.UTC)
	limiter := RateLimiter{client: client, now: func() time.Time { return at }}
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "bob@example.org", 5)
	require.NoError(t, err)
	require.True(t, ok)

	key := fmt.Sprintf("usage:bob@example.org:%d", at.Unix()/60)
	require.True(t, srv.Exists(key))
	require.Equal(t, time.Minute, srv.TTL(key))

	ok, err = limiter.Allow(ctx, "bob@example.org", 5)
	require.NoError(t, err)
	require.True(t, ok)

	count, err := srv.Get(key)
	require.NoError(t, err)
	require.Equal(t, "2", count)
}

func TestRateLimiter_LimitBoundary(t *testing.T) {
	_, client := newTestRedis(t)
	at := time.Date(2026, 8, 25, 12, 30, 45, 0, time.UTC)
	limiter := RateLimiter{client: client, now: func() time.Time { return at }}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "bob@example.org", 3)
		require.NoError(t, err)
		require.True(t, ok, "request %d within the quota was denied", i+1)
	}

	ok, err := limiter.Allow(ctx, "bob@example.org", 3)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRateLimiter_WindowRollover(t *testing.T) {
	srv, client := newTestRedis(t)
	at := time.Date(2026, 8, 25, 12, 30, 59, 0, time.UTC)
	limiter := RateLimiter{client: client, now: func() time.Time { return at }}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := limiter.Allow(ctx, "bob@example.org", 1)
		require.NoError(t, err)
	}
	ok, err := limiter.Allow(ctx, "bob@example.org", 1)
	require.NoError(t, err)
	require.False(t, ok)

	// The next minute opens a fresh window under a new key.
	at = at.Add(time.Minute)
	ok, err = limiter.Allow(ctx, "bob@example.org", 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, srv.Exists(fmt.Sprintf("usage:bob@example.org:%d", at.Unix()/60)))
}

func TestRateLimiter_CallersCountedSeparately(t *testing.T) {
	_, client := newTestRedis(t)
	at := time.Date(2026, 8, 25, 12, 30, 45, 0, time.UTC)
	limiter := RateLimiter{client: client, now: func() time.Time { return at }}
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "bob@example.org", 1)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = limiter.Allow(ctx, "alice@gmail.com", 1)
	require.NoError(t, err)
	require.True(t, ok)
}
