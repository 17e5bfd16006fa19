package service

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/simdex/simdex/domain/account"
	"github.com/simdex/simdex/domain/similarity"
	"github.com/simdex/simdex/internal/config"
	"github.com/simdex/simdex/internal/log"
)

// RateLimiter tracks per-caller request counts over a one-minute window.
type RateLimiter interface {
	// Allow records a request for the caller and reports whether it is
	// still within the given per-minute quota.
	Allow(ctx context.Context, callerID string, limit int) (bool, error)
}

// SimilarityOption configures the Similarity service.
type SimilarityOption func(*Similarity)

// WithTopK overrides the default neighbor count.
func WithTopK(k int) SimilarityOption {
	return func(s *Similarity) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithSingleFlight deduplicates concurrent model computations for the
// same entity, so a burst of identical cache misses runs the model once.
func WithSingleFlight() SimilarityOption {
	return func(s *Similarity) {
		s.group = &singleflight.Group{}
	}
}

// Similarity serves entity-similarity queries: it enforces the caller's
// rate limit, then answers from the cache or falls through to the model.
type Similarity struct {
	predictor similarity.Predictor
	cache     similarity.ResultCache
	limiter   RateLimiter
	limits    config.TierLimits
	topK      int
	group     *singleflight.Group
	logger    *log.Logger
}

// NewSimilarity creates a new Similarity service.
func NewSimilarity(
	predictor similarity.Predictor,
	cache similarity.ResultCache,
	limiter RateLimiter,
	limits config.TierLimits,
	logger *log.Logger,
	opts ...SimilarityOption,
) *Similarity {
	if logger == nil {
		logger = log.NewLogger(log.FormatPretty, "info")
	}
	s := &Similarity{
		predictor: predictor,
		cache:     cache,
		limiter:   limiter,
		limits:    limits,
		topK:      config.DefaultTopK,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query returns the nearest neighbors for the entity on behalf of the
// authenticated caller, and whether the answer came from the cache.
// Returns ErrRateLimited when the caller's quota is spent and
// similarity.ErrUnknownEntity when the entity does not resolve.
// A failing cache or limiter store aborts the request.
func (s *Similarity) Query(ctx context.Context, caller account.Principal, ref similarity.EntityRef) (similarity.Prediction, bool, error) {
	limit := s.limitFor(caller.AccountType())
	ok, err := s.limiter.Allow(ctx, caller.Email(), limit)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, ErrRateLimited
	}

	key := similarity.Fingerprint(ref)
	logger := s.logger.WithContext(ctx).With("entity", ref.String())

	pred, err := s.cache.Get(ctx, key)
	if err == nil {
		logger.Debug("cache hit")
		return pred, true, nil
	}
	if !errors.Is(err, similarity.ErrCacheMiss) {
		return nil, false, err
	}

	pred, err = s.predict(ctx, key, ref)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Put(ctx, key, pred); err != nil {
		return nil, false, err
	}
	logger.Debug("cache miss", "neighbors", len(pred))
	return pred, false, nil
}

func (s *Similarity) predict(ctx context.Context, key string, ref similarity.EntityRef) (similarity.Prediction, error) {
	if s.group == nil {
		return s.predictor.SimilarEntities(ctx, ref, s.topK)
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.predictor.SimilarEntities(ctx, ref, s.topK)
	})
	if err != nil {
		return nil, err
	}
	return v.(similarity.Prediction), nil
}

func (s *Similarity) limitFor(tier account.Type) int {
	if tier == account.TypePremium {
		return s.limits.Premium()
	}
	return s.limits.Free()
}
