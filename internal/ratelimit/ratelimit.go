// Package ratelimit spaces out requests to remote hosts. This is a
// politeness measure to avoid hammering sites and getting blocked, not a
// correctness requirement.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter inserts a randomized delay between consecutive waits. Safe for
// concurrent use; waits are serialized so parallel callers still respect
// the spacing.
type Limiter struct {
	mu       sync.Mutex
	min, max time.Duration
	last     time.Time
}

// New builds a limiter that keeps at least a random duration in [min, max]
// between consecutive requests.
func New(min, max time.Duration) *Limiter {
	if max < min {
		max = min
	}
	return &Limiter{min: min, max: max}
}

// Wait blocks until the next request is allowed or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delay := l.min
	if span := l.max - l.min; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}

	next := l.last.Add(delay)
	l.last = time.Now()
	if wait := time.Until(next); wait > 0 {
		l.last = next
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil
}
