// Package ratelimit implements per-client token bucket rate limiting.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration // how long to wait before retrying (0 if allowed)
}

// Limiter manages one token bucket per key.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	stop    chan struct{}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a limiter allowing requests per minute per key, with
// the same value as burst capacity. requests <= 0 disables limiting.
func NewLimiter(requestsPerMin int) *Limiter {
	if requestsPerMin <= 0 {
		return nil
	}
	l := &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(float64(requestsPerMin) / 60),
		burst:   requestsPerMin,
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow checks whether a request with the given key may proceed. A nil
// Limiter always allows.
func (l *Limiter) Allow(key string) Result {
	if l == nil {
		return Result{Allowed: true}
	}
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	l.mu.Unlock()

	if b.limiter.Allow() {
		return Result{Allowed: true}
	}
	retry := max(time.Duration(1/float64(l.rate))*time.Second, time.Second)
	return Result{RetryAfter: retry}
}

// cleanupLoop drops buckets that have been idle for a while.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			stale := time.Now().Add(-10 * time.Minute)
			l.mu.Lock()
			for key, b := range l.buckets {
				if b.lastSeen.Before(stale) && b.limiter.Tokens() >= float64(l.burst) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}

// Close stops the cleanup goroutine. Safe on a nil Limiter.
func (l *Limiter) Close() {
	if l != nil {
		close(l.stop)
	}
}
