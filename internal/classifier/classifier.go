// Package classifier wraps the risk scoring artifact behind a stable
// interface so the pipeline never depends on how a model is trained or
// stored. The active artifact is swappable at runtime without interrupting
// in-flight scoring.
package classifier

import (
	"context"
	"math/rand/v2"
)

// Classifier scores a feature vector into a risk probability and a
// confidence, both in [0, 1].
type Classifier interface {
	// Score returns (probability, confidence). Implementations must be safe
	// for concurrent use; scoring is called from parallel location runs.
	Score(ctx context.Context, features []float64) (float64, float64, error)
	// Version identifies the artifact in stored assessments.
	Version() string
}

// FallbackVersion marks assessments produced without a real artifact.
const FallbackVersion = "fallback-v1"

// Fallback is the stand-in used when no artifact is registered or the
// active one fails to load. It emits a uniform probability in [0.1, 0.9]
// with confidence pinned at 0.5 so downstream consumers can recognize
// degraded scores.
type Fallback struct{}

func (Fallback) Score(_ context.Context, _ []float64) (float64, float64, error) {
	return 0.1 + rand.Float64()*0.8, 0.5, nil
}

func (Fallback) Version() string { return FallbackVersion }
