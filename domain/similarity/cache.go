package similarity

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by a ResultCache when no entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// Fingerprint derives the cache key for a prediction request. Label
// references that trim to the same string, and id references for the same
// integer, share a key.
func Fingerprint(ref EntityRef) string {
	return "sim:" + ref.String()
}

// ResultCache stores predictions keyed by request fingerprint.
type ResultCache interface {
	// Get returns the cached prediction, or ErrCacheMiss.
	Get(ctx context.Context, key string) (Prediction, error)
	// Put stores a prediction under the key.
	Put(ctx context.Context, key string, pred Prediction) error
}
