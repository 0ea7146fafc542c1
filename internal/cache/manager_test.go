package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Validation(t *testing.T) {
	_, err := NewManager(100, time.Minute, -1)
	assert.Error(t, err, "negative threshold must be rejected")

	_, err = NewManager(0, time.Minute, 5)
	assert.Error(t, err, "cache validation propagates")

	m, err := NewManager(100, time.Minute, 0)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestManager_PopularityGate(t *testing.T) {
	m, err := NewManager(100, time.Minute, 5)
	require.NoError(t, err)

	// Below threshold: silent skip.
	m.Admit("cold", "https://example.com/cold", 3)
	_, found := m.Lookup("cold")
	assert.False(t, found)

	// At and above threshold: admitted.
	m.Admit("warm", "https://example.com/warm", 5)
	val, found := m.Lookup("warm")
	assert.True(t, found)
	assert.Equal(t, "https://example.com/warm", val)

	m.Admit("hot", "https://example.com/hot", 10)
	val, found = m.Lookup("hot")
	assert.True(t, found)
	assert.Equal(t, "https://example.com/hot", val)
}

func TestManager_ZeroThresholdAdmitsEverything(t *testing.T) {
	m, err := NewManager(100, time.Minute, 0)
	require.NoError(t, err)

	m.Admit("code", "https://example.com", 0)
	_, found := m.Lookup("code")
	assert.True(t, found)
}

func TestManager_Invalidate(t *testing.T) {
	m, err := NewManager(100, time.Minute, 0)
	require.NoError(t, err)

	m.Admit("code", "https://example.com", 10)
	m.Invalidate("code")

	_, found := m.Lookup("code")
	assert.False(t, found)

	// Idempotent.
	m.Invalidate("code")
}

func TestManager_ClearAndStats(t *testing.T) {
	m, err := NewManager(100, time.Minute, 0)
	require.NoError(t, err)

	m.Admit("a", "1", 10)
	m.Lookup("a")
	m.Lookup("missing")

	stats := m.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 100, stats.MaxSize)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)

	m.Clear()
	stats = m.Stats()
	assert.Zero(t, stats.Size)
	assert.Zero(t, stats.TotalRequests)
}

func TestManager_AdmitTTL(t *testing.T) {
	m, err := NewManager(100, time.Hour, 0)
	require.NoError(t, err)

	clock := newFakeClock()
	m.cache.SetTimeNowFunc(clock.Now)

	m.AdmitTTL("code", "https://example.com", 10, time.Second)
	clock.Advance(2 * time.Second)

	_, found := m.Lookup("code")
	assert.False(t, found, "per-entry TTL overrides the default")
}
