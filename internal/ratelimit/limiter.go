package ratelimit

import (
	"errors"
	"math"
	"sync"
	"time"
)

// PerKeyLimiter enforces a request rate per client key. Each key gets its own
// token bucket, created lazily the first time the key is seen. The map of
// buckets is guarded by a coarse lock, separate from the finer per-bucket
// locks, so unrelated keys do not contend on Consume.
type PerKeyLimiter struct {
	mu         sync.RWMutex
	buckets    map[string]*TokenBucket
	requests   int
	window     time.Duration
	refillRate float64
	timeNow    func() time.Time // propagated to lazily created buckets, for testing
}

// NewPerKeyLimiter creates a limiter allowing requests per window for each
// key. Both arguments must be positive.
func NewPerKeyLimiter(requests int, window time.Duration) (*PerKeyLimiter, error) {
	if requests <= 0 {
		return nil, errors.New("ratelimit: requests per window must be greater than zero")
	}
	if window <= 0 {
		return nil, errors.New("ratelimit: window must be greater than zero")
	}

	return &PerKeyLimiter{
		buckets:    make(map[string]*TokenBucket),
		requests:   requests,
		window:     window,
		refillRate: float64(requests) / window.Seconds(),
	}, nil
}

// Allow reports whether the key may perform one more unit of work, consuming
// a token if so.
func (l *PerKeyLimiter) Allow(key string) bool {
	return l.getOrCreateBucket(key).Consume(1)
}

// Remaining returns the key's remaining token count, truncated to an integer.
// The value is advisory: concurrent calls may consume tokens at any time.
func (l *PerKeyLimiter) Remaining(key string) int {
	return int(math.Floor(l.getOrCreateBucket(key).Tokens()))
}

// Limit returns the configured requests-per-window ceiling.
func (l *PerKeyLimiter) Limit() int {
	return l.requests
}

// Window returns the configured window duration.
func (l *PerKeyLimiter) Window() time.Duration {
	return l.window
}

// Len returns the number of tracked buckets.
func (l *PerKeyLimiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// CleanupOldBuckets removes half of the buckets that are sitting at full
// capacity, i.e. keys that have not been seen since their tokens refilled to
// the ceiling. Enumeration order decides which half goes; the policy is a
// deliberately cheap approximate decay, not LRU. Returns the number removed.
func (l *PerKeyLimiter) CleanupOldBuckets() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	full := make([]string, 0, len(l.buckets))
	for key, bucket := range l.buckets {
		if bucket.Tokens() >= bucket.capacity {
			full = append(full, key)
		}
	}

	removed := 0
	for _, key := range full[:len(full)/2] {
		delete(l.buckets, key)
		removed++
	}
	return removed
}

// getOrCreateBucket returns the key's bucket, creating it if absent. The
// read-lock fast path keeps hot keys cheap; creation re-checks under the
// write lock so a race cannot produce duplicate buckets.
func (l *PerKeyLimiter) getOrCreateBucket(key string) *TokenBucket {
	l.mu.RLock()
	bucket, exists := l.buckets[key]
	l.mu.RUnlock()

	if exists {
		return bucket
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if bucket, exists := l.buckets[key]; exists {
		return bucket
	}

	bucket = NewTokenBucket(l.requests, l.refillRate)
	if l.timeNow != nil {
		bucket.setTimeNowFunc(l.timeNow)
	}
	l.buckets[key] = bucket
	return bucket
}

// setTimeNowFunc replaces the clock used by all buckets created afterwards,
// for testing.
func (l *PerKeyLimiter) setTimeNowFunc(f func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timeNow = f
}
