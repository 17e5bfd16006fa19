// Package cache provides Redis-backed result caching and rate limiting.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/simdex/simdex/domain/similarity"
)

// NewRedisClient creates a Redis client from a redis:// URL and verifies
// connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// ResultCache implements similarity.ResultCache on Redis with a fixed TTL.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a ResultCache.
func NewResultCache(client *redis.Client, ttl time.Duration) ResultCache {
	return ResultCache{client: client, ttl: ttl}
}

// Get returns the cached prediction for the key, or similarity.ErrCacheMiss.
func (c ResultCache) Get(ctx context.Context, key string) (similarity.Prediction, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, similarity.ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var pred similarity.Prediction
	if err := json.Unmarshal(data, &pred); err != nil {
		// A corrupt entry reads as a miss so the model recomputes it.
		return nil, similarity.ErrCacheMiss
	}
	return pred, nil
}

// Put stores a prediction under the key with the configured TTL.
func (c ResultCache) Put(ctx context.Context, key string, pred similarity.Prediction) error {
	data, err := json.Marshal(pred)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// usageWindow is the width of a rate-limit counting window.
const usageWindow = time.Minute

// RateLimiter counts requests per caller in fixed one-minute windows.
// Each window lives in its own Redis key, expired shortly after the
// window closes.
type RateLimiter struct {
	client *redis.Client
	now    func() time.Time
}

// NewRateLimiter creates a RateLimiter.
func NewRateLimiter(client *redis.Client) RateLimiter {
	return RateLimiter{client: client, now: time.Now}
}

// Allow increments the caller's counter for the current window and reports
// whether the count is within the limit.
func (l RateLimiter) Allow(ctx context.Context, callerID string, limit int) (bool, error) {
	window := l.now().Unix() / int64(usageWindow.Seconds())
	key := fmt.Sprintf("usage:%s:%d", callerID, window)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, usageWindow).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return count <= int64(limit), nil
}
