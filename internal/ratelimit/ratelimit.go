// Package ratelimit throttles the moderator HTTP surface. Night
// submissions arrive in bursts when a deadline closes, so the limiter
// works on a sliding window rather than fixed buckets.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter gates a request by key. When allowed is false,
// retryAfterSec feeds the Retry-After header (0 = omit).
type Limiter interface {
	Allow(key string) (allowed bool, retryAfterSec int)
}

// Noop allows everything; the default when no limiter is configured.
type Noop struct{}

func (Noop) Allow(key string) (bool, int) { return true, 0 }

// InMemory tracks request timestamps per key in process memory. One
// engine instance serves a game, so no shared backend is needed.
type InMemory struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	limit   int
	window  time.Duration
	nowFunc func() time.Time
}

// NewInMemory allows up to limit requests per key within window.
func NewInMemory(limit int, window time.Duration) *InMemory {
	return &InMemory{
		hits:    make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		nowFunc: time.Now,
	}
}

func (r *InMemory) Allow(key string) (allowed bool, retryAfterSec int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.nowFunc()
	cutoff := now.Add(-r.window)
	times := r.hits[key]
	i := 0
	for _, t := range times {
		if t.After(cutoff) {
			times[i] = t
			i++
		}
	}
	times = times[:i]
	if len(times) == 0 {
		// Idle keys would otherwise pin their slices forever.
		delete(r.hits, key)
	}
	if len(times) >= r.limit {
		r.hits[key] = times
		wait := times[0].Add(r.window).Sub(now)
		if wait > 0 {
			retryAfterSec = int(wait.Seconds())
			if retryAfterSec < 1 {
				retryAfterSec = 1
			}
		}
		return false, retryAfterSec
	}
	r.hits[key] = append(times, now)
	return true, 0
}
