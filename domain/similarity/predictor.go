package similarity

import "context"

// Predictor produces the nearest entities for a reference entity.
type Predictor interface {
	// SimilarEntities returns up to k neighbors ordered by descending score.
	// Returns ErrUnknownEntity when the reference does not resolve.
	SimilarEntities(ctx context.Context, ref EntityRef, k int) (Prediction, error)
}
