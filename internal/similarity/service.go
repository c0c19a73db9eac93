// Package similarity defines the semantic similarity collaborator used by the
// scoring engine together with an offline lexical provider.
package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrUnavailable = errors.New("similarity unavailable")

// Service scores how close two texts are. Implementations return a value
// in [0,1]; raw cosine values below 0 are tolerated and floored by callers.
type Service interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// Func adapts a function to Service.
type Func func(ctx context.Context, a, b string) (float64, error)

func (f Func) Similarity(ctx context.Context, a, b string) (float64, error) {
	return f(ctx, a, b)
}

// Unavailable returns a Service that always fails with ErrUnavailable.
func Unavailable() Service {
	return Func(func(context.Context, string, string) (float64, error) {
		return 0, ErrUnavailable
	})
}

// WithTimeout bounds every call to svc by d. A call that outlives d, or a
// provider that ignores context cancellation, yields ErrUnavailable.
// Non-positive d returns svc unchanged.
func WithTimeout(svc Service, d time.Duration) Service {
	if svc == nil {
		return Unavailable()
	}
	if d <= 0 {
		return svc
	}

	return Func(func(ctx context.Context, a, b string) (float64, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		type outcome struct {
			value float64
			err   error
		}
		done := make(chan outcome, 1)

		go func() {
			value, err := svc.Similarity(ctx, a, b)
			done <- outcome{value: value, err: err}
		}()

		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		case out := <-done:
			if out.err != nil {
				return 0, out.err
			}
			if math.IsNaN(out.value) {
				return 0, fmt.Errorf("%w: provider returned NaN", ErrUnavailable)
			}
			return out.value, nil
		}
	})
}

// Cosine returns the cosine similarity of two equally sized vectors, or 0
// when either vector has zero length or norm.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
