// Package ratelimit implements token-bucket rate limiting keyed by client
// identifier (typically an IP address). Buckets refill lazily based on
// elapsed wall-clock time; there are no background timers.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// TokenBucket holds a capped, continuously refilling count of permits.
// Tokens are real-valued internally so fractional accumulation works at low
// refill rates; only external reporting truncates to an integer.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	timeNow    func() time.Time // for testing
}

// NewTokenBucket creates a bucket that starts full.
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
		timeNow:    time.Now,
	}
}

// Consume tries to take n tokens from the bucket. It refills first, then
// spends-or-denies in one atomic step so two concurrent calls can never
// double-spend the same tokens.
func (b *TokenBucket) Consume(n int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked()

	if b.tokens >= float64(n) {
		b.tokens -= float64(n)
		return true
	}
	return false
}

// Tokens refills the bucket and returns the current token count.
func (b *TokenBucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked()
	return b.tokens
}

// refillLocked adds tokens proportional to the elapsed time since the last
// refill, bounded by capacity. Caller must hold the mutex.
func (b *TokenBucket) refillLocked() {
	now := b.timeNow()
	elapsed := now.Sub(b.lastRefill).Seconds()

	b.tokens = math.Min(b.capacity, b.tokens+elapsed*b.refillRate)
	b.lastRefill = now
}

// setTimeNowFunc replaces the bucket clock, for testing. It also resets
// lastRefill so the fake clock's epoch becomes the refill baseline.
func (b *TokenBucket) setTimeNowFunc(f func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.timeNow = f
	b.lastRefill = f()
}
