package classifier

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limits bounds classifier traffic across all tasks of a run. It is the only
// classifier state shared between tasks.
type Limits struct {
	inflight *semaphore.Weighted
	limiter  *rate.Limiter
}

// NewLimits caps concurrent calls at maxInflight (minimum 1). A positive
// requestsPerMinute additionally spaces calls with a token bucket.
func NewLimits(maxInflight, requestsPerMinute int) *Limits {
	if maxInflight <= 0 {
		maxInflight = 1
	}
	l := &Limits{inflight: semaphore.NewWeighted(int64(maxInflight))}
	if requestsPerMinute > 0 {
		l.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return l
}

// Acquire blocks until a call may proceed. The returned release must be
// called once the call finishes.
func (l *Limits) Acquire(ctx context.Context) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	if err := l.inflight.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			l.inflight.Release(1)
			return nil, err
		}
	}
	return func() { l.inflight.Release(1) }, nil
}
