package cache

import (
	"errors"
	"time"
)

// Manager is the URL-shortener-specific layer over the LRU cache. It only
// admits destinations whose click count has crossed a popularity threshold,
// so cache capacity is spent on hot links instead of one-off ones.
type Manager struct {
	cache     *LRU[string, string]
	threshold int
}

// NewManager creates a cache manager with the given capacity, default TTL
// and popularity threshold. The threshold must not be negative; zero admits
// every destination.
func NewManager(maxSize int, ttl time.Duration, popularThreshold int) (*Manager, error) {
	if popularThreshold < 0 {
		return nil, errors.New("cache: popularity threshold must not be negative")
	}

	lru, err := NewLRU[string, string](maxSize, ttl)
	if err != nil {
		return nil, err
	}

	return &Manager{cache: lru, threshold: popularThreshold}, nil
}

// Lookup returns the cached destination for a short code, if present.
func (m *Manager) Lookup(shortCode string) (string, bool) {
	return m.cache.Get(shortCode)
}

// Admit caches a destination only if its observed usage meets the popularity
// threshold. A below-threshold call is a deliberate silent skip, not an error.
func (m *Manager) Admit(shortCode, destination string, observedUsage int) {
	m.AdmitTTL(shortCode, destination, observedUsage, 0)
}

// AdmitTTL is Admit with a per-entry TTL override. A non-positive ttl falls
// back to the cache default.
func (m *Manager) AdmitTTL(shortCode, destination string, observedUsage int, ttl time.Duration) {
	if observedUsage < m.threshold {
		return
	}
	m.cache.SetTTL(shortCode, destination, ttl)
}

// Invalidate drops a single short code from the cache. Callers must invoke it
// whenever the destination is updated or deleted upstream, so stale data is
// never served.
func (m *Manager) Invalidate(shortCode string) {
	m.cache.Delete(shortCode)
}

// Clear drops every cached destination and resets the counters.
func (m *Manager) Clear() {
	m.cache.Clear()
}

// CleanupExpired sweeps expired destinations. Returns the number removed.
func (m *Manager) CleanupExpired() int {
	return m.cache.CleanupExpired()
}

// Stats returns the underlying cache statistics.
func (m *Manager) Stats() Stats {
	return m.cache.Stats()
}
