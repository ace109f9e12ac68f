// Package ratelimit implements a sliding-window rate limiter over a pluggable
// store, so single-instance deployments can use in-process state while
// replicated deployments share a Redis-backed window.
package ratelimit

import (
	"context"
	"time"
)

// Store records request timestamps per key and decides admission for one
// sliding window. Implementations prune expired entries lazily per call.
type Store interface {
	// Take admits or rejects one request for key at time now. When rejected,
	// retryAfter says how long until the oldest in-window entry expires.
	Take(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (allowed bool, retryAfter time.Duration, err error)
}

// Limiter enforces a fixed sliding window per key.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

// New constructs a Limiter allowing limit requests per window.
func New(store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window, now: time.Now}
}

// Allow reports whether one more request from key fits in the current window.
// Rejected requests are not recorded and do not extend the window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	return l.store.Take(ctx, key, l.now(), l.window, l.limit)
}
