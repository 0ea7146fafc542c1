package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, s.Port)
	assert.Equal(t, "0.0.0.0:8000", s.Addr())
	assert.Equal(t, time.Hour, s.CacheTTL)
	assert.Equal(t, 1000, s.CacheMaxSize)
	assert.Equal(t, 10, s.CachePopularThreshold)
	assert.Equal(t, 10, s.RateLimitRequests)
	assert.Equal(t, time.Minute, s.RateLimitWindow)
	assert.Equal(t, 100, s.RateLimitGlobalRPS)
	assert.Equal(t, 200, s.RateLimitGlobalBurst)
	assert.True(t, s.CacheEnabled)
	assert.True(t, s.RateLimitEnabled)
	assert.False(t, s.TracingEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "120")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("CACHE_POPULAR_THRESHOLD", "3")
	t.Setenv("RATE_LIMIT_GLOBAL_RPS", "0")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, s.Port)
	assert.Equal(t, 2*time.Minute, s.CacheTTL)
	assert.False(t, s.RateLimitEnabled)
	assert.Equal(t, 3, s.CachePopularThreshold)
	assert.Equal(t, 0, s.RateLimitGlobalRPS)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
