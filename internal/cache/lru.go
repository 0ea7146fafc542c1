// Package cache provides the in-memory caching layer for the URL shortener:
// a bounded LRU cache with per-entry TTL and a popularity-gated manager on top.
package cache

import (
	"errors"
	"sync"
	"time"
)

// Stats holds cache statistics
type Stats struct {
	Size          int     // Current number of entries (including not-yet-swept expired ones)
	MaxSize       int     // Maximum cache size
	Hits          uint64  // Number of cache hits
	Misses        uint64  // Number of cache misses
	HitRate       float64 // Hit rate as a percentage (0-100)
	TotalRequests uint64  // Hits + misses
}

// entry is an intrusive doubly-linked list node. The list keeps recency order:
// head is the most recently used entry, tail the least recently used.
type entry[K comparable, V any] struct {
	key         K
	val         V
	expiresAt   time.Time
	accessCount int
	prev        *entry[K, V]
	next        *entry[K, V]
}

// LRU is a thread-safe, fixed-size cache with least-recently-used eviction
// and per-entry expiry. Every operation runs under a single mutex so the
// move-to-front and evict-on-overflow side effects stay atomic with the
// size and order invariants.
//
// An LRU must be created with NewLRU; the zero value is not ready for use.
type LRU[K comparable, V any] struct {
	mu         sync.Mutex
	maxSize    int
	defaultTTL time.Duration
	items      map[K]*entry[K, V]
	head       *entry[K, V] // most recently used
	tail       *entry[K, V] // least recently used
	hits       uint64
	misses     uint64
	timeNow    func() time.Time // for testing
}

// NewLRU creates a bounded cache holding at most maxSize entries, each
// expiring defaultTTL after it is written. Both arguments must be positive.
func NewLRU[K comparable, V any](maxSize int, defaultTTL time.Duration) (*LRU[K, V], error) {
	if maxSize <= 0 {
		return nil, errors.New("cache: max size must be greater than zero")
	}
	if defaultTTL <= 0 {
		return nil, errors.New("cache: default TTL must be greater than zero")
	}

	return &LRU[K, V]{
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		items:      make(map[K]*entry[K, V], maxSize),
		timeNow:    time.Now,
	}, nil
}

// Get retrieves a value from the cache by key.
// A hit moves the entry to the most-recently-used position and bumps its
// access counter. An unknown or expired key counts as a miss; an expired
// entry found this way is removed as a side effect.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V

	e, found := c.items[key]
	if !found {
		c.misses++
		return zero, false
	}

	if c.timeNow().After(e.expiresAt) {
		c.removeLocked(e)
		c.misses++
		return zero, false
	}

	c.moveToFront(e)
	e.accessCount++
	c.hits++
	return e.val, true
}

// Set adds or updates an item with the cache's default TTL.
func (c *LRU[K, V]) Set(key K, value V) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL adds or updates an item with a per-entry TTL.
// Updating an existing key replaces its value and expiry and moves it to the
// most-recently-used position; it never triggers an eviction. Inserting a new
// key past capacity evicts exactly one entry, the least recently used.
func (c *LRU[K, V]) SetTTL(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.timeNow().Add(ttl)

	if e, found := c.items[key]; found {
		e.val = value
		e.expiresAt = expiresAt
		e.accessCount = 0
		c.moveToFront(e)
		return
	}

	e := &entry[K, V]{key: key, val: value, expiresAt: expiresAt}
	c.pushFront(e)
	c.items[key] = e

	if len(c.items) > c.maxSize {
		c.removeLocked(c.tail)
	}
}

// Delete removes a key if present. Deleting an absent key is a no-op.
func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, found := c.items[key]; found {
		c.removeLocked(e)
	}
}

// Clear removes all entries and resets the hit/miss counters.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*entry[K, V], c.maxSize)
	c.head = nil
	c.tail = nil
	c.hits = 0
	c.misses = 0
}

// CleanupExpired removes every expired entry, independent of Get traffic.
// It exists so the surrounding service can bound memory held by entries
// nobody re-reads. Returns the number of entries removed.
func (c *LRU[K, V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.timeNow()
	removed := 0
	for e := c.head; e != nil; {
		next := e.next
		if now.After(e.expiresAt) {
			c.removeLocked(e)
			removed++
		}
		e = next
	}
	return removed
}

// Len returns the number of currently stored entries, including expired
// entries that have not been swept yet.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of the cache statistics. It does not mutate state.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100
	}

	return Stats{
		Size:          len(c.items),
		MaxSize:       c.maxSize,
		Hits:          c.hits,
		Misses:        c.misses,
		HitRate:       hitRate,
		TotalRequests: total,
	}
}

// Keys returns the cached keys in MRU to LRU order.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.items))
	for e := c.head; e != nil; e = e.next {
		keys = append(keys, e.key)
	}
	return keys
}

// SetTimeNowFunc replaces the clock used for expiry decisions.
// Primarily useful for testing. Passing nil resets to time.Now.
func (c *LRU[K, V]) SetTimeNowFunc(f func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f == nil {
		f = time.Now
	}
	c.timeNow = f
}

// removeLocked unlinks an entry from both the list and the index.
func (c *LRU[K, V]) removeLocked(e *entry[K, V]) {
	if e == nil {
		return
	}
	delete(c.items, e.key)
	c.unlink(e)
}

func (c *LRU[K, V]) moveToFront(e *entry[K, V]) {
	if c.head == e {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

func (c *LRU[K, V]) pushFront(e *entry[K, V]) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *LRU[K, V]) unlink(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}
