package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestNewLRU_Validation(t *testing.T) {
	_, err := NewLRU[string, string](0, time.Minute)
	assert.Error(t, err, "zero capacity must be rejected")

	_, err = NewLRU[string, string](-1, time.Minute)
	assert.Error(t, err, "negative capacity must be rejected")

	_, err = NewLRU[string, string](10, 0)
	assert.Error(t, err, "zero TTL must be rejected")

	c, err := NewLRU[string, string](10, time.Minute)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestLRU_GetSet(t *testing.T) {
	c, err := NewLRU[string, string](10, time.Minute)
	require.NoError(t, err)

	_, found := c.Get("missing")
	assert.False(t, found)

	c.Set("abc123", "https://example.com")
	val, found := c.Get("abc123")
	assert.True(t, found)
	assert.Equal(t, "https://example.com", val)
}

func TestLRU_CapacityInvariant(t *testing.T) {
	c, err := NewLRU[string, int](3, time.Minute)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
		assert.LessOrEqual(t, c.Len(), 3, "size must never exceed capacity")
	}
}

func TestLRU_EvictionOrder(t *testing.T) {
	c, err := NewLRU[string, string](3, time.Minute)
	require.NoError(t, err)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	// Reading "a" makes it most recently used, so "b" is now the LRU tail.
	_, found := c.Get("a")
	require.True(t, found)

	c.Set("d", "4")

	_, found = c.Get("b")
	assert.False(t, found, "b should have been evicted")
	_, found = c.Get("a")
	assert.True(t, found)
	_, found = c.Get("c")
	assert.True(t, found)
	_, found = c.Get("d")
	assert.True(t, found)
}

func TestLRU_TTLExpiry(t *testing.T) {
	clock := newFakeClock()
	c, err := NewLRU[string, string](10, time.Minute)
	require.NoError(t, err)
	c.SetTimeNowFunc(clock.Now)

	c.SetTTL("code", "https://example.com", time.Second)

	val, found := c.Get("code")
	require.True(t, found)
	assert.Equal(t, "https://example.com", val)

	clock.Advance(1100 * time.Millisecond)

	_, found = c.Get("code")
	assert.False(t, found, "entry should have expired")
	assert.Equal(t, 0, c.Len(), "expired entry is removed on access")

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses, "expired read counts as a miss")
}

func TestLRU_UpdateIsNotEviction(t *testing.T) {
	c, err := NewLRU[string, string](2, time.Minute)
	require.NoError(t, err)

	c.Set("a", "1")
	c.Set("b", "2")

	// Re-setting "a" refreshes it to MRU without changing the size.
	c.Set("a", "1-updated")
	assert.Equal(t, 2, c.Len())

	// "b" is now the LRU tail, so inserting "c" evicts it.
	c.Set("c", "3")
	assert.Equal(t, 2, c.Len())

	val, found := c.Get("a")
	assert.True(t, found)
	assert.Equal(t, "1-updated", val)
	_, found = c.Get("b")
	assert.False(t, found)
}

func TestLRU_UpdateRefreshesExpiry(t *testing.T) {
	clock := newFakeClock()
	c, err := NewLRU[string, string](10, 2*time.Second)
	require.NoError(t, err)
	c.SetTimeNowFunc(clock.Now)

	c.Set("code", "v1")
	clock.Advance(1500 * time.Millisecond)
	c.Set("code", "v2")
	clock.Advance(1500 * time.Millisecond)

	// 3s after the first write but only 1.5s after the refresh.
	val, found := c.Get("code")
	assert.True(t, found)
	assert.Equal(t, "v2", val)
}

func TestLRU_HitRate(t *testing.T) {
	c, err := NewLRU[string, string](10, time.Minute)
	require.NoError(t, err)

	c.Set("a", "1")
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(3), stats.TotalRequests)
	assert.InDelta(t, 200.0/3.0, stats.HitRate, 0.0001)
}

func TestLRU_HitRateZeroRequests(t *testing.T) {
	c, err := NewLRU[string, string](10, time.Minute)
	require.NoError(t, err)

	stats := c.Stats()
	assert.Zero(t, stats.HitRate)
	assert.Zero(t, stats.TotalRequests)
}

func TestLRU_Delete(t *testing.T) {
	c, err := NewLRU[string, string](10, time.Minute)
	require.NoError(t, err)

	c.Set("a", "1")
	c.Delete("a")
	_, found := c.Get("a")
	assert.False(t, found)

	// Deleting an absent key is a no-op.
	c.Delete("never-existed")
	c.Delete("a")
}

func TestLRU_Clear(t *testing.T) {
	c, err := NewLRU[string, string](10, time.Minute)
	require.NoError(t, err)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Get("missing")

	c.Clear()

	assert.Equal(t, 0, c.Len())
	stats := c.Stats()
	assert.Zero(t, stats.Hits, "clear resets counters")
	assert.Zero(t, stats.Misses)
}

func TestLRU_CleanupExpired(t *testing.T) {
	clock := newFakeClock()
	c, err := NewLRU[string, string](10, time.Minute)
	require.NoError(t, err)
	c.SetTimeNowFunc(clock.Now)

	c.SetTTL("short", "1", time.Second)
	c.SetTTL("long", "2", time.Hour)
	clock.Advance(2 * time.Second)

	removed := c.CleanupExpired()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	_, found := c.Get("long")
	assert.True(t, found)
}

func TestLRU_KeysOrder(t *testing.T) {
	c, err := NewLRU[string, string](3, time.Minute)
	require.NoError(t, err)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")
	c.Get("a")

	assert.Equal(t, []string{"a", "c", "b"}, c.Keys())
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c, err := NewLRU[string, int](100, time.Minute)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("key-%d", i%150)
				c.Set(key, i)
				c.Get(key)
				if i%50 == 0 {
					c.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 100)
}
