// Package config loads service settings from the environment, with defaults
// suitable for local development. Settings are read once at startup and
// passed explicitly to the components that need them; there is no runtime
// reconfiguration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Settings holds the full service configuration.
type Settings struct {
	AppName    string
	AppVersion string
	Host       string
	Port       int

	DatabasePath string
	BaseURL      string

	ShortCodeLength      int
	CustomAliasMinLength int
	CustomAliasMaxLength int

	CacheEnabled          bool
	CacheTTL              time.Duration
	CacheMaxSize          int
	CachePopularThreshold int

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Process-wide ceiling applied ahead of the per-client buckets.
	// A zero RPS disables it.
	RateLimitGlobalRPS   int
	RateLimitGlobalBurst int

	// Interval for the cache/limiter maintenance sweep.
	CleanupInterval time.Duration

	TracingEnabled bool
	JaegerEndpoint string

	LogLevel string
}

// Load reads settings from the environment, falling back to defaults.
func Load() (Settings, error) {
	s := Settings{
		AppName:               "URL Shortener Service",
		AppVersion:            "1.0.0",
		Host:                  "0.0.0.0",
		Port:                  8000,
		DatabasePath:          "urls.db",
		BaseURL:               "http://localhost:8000",
		ShortCodeLength:       6,
		CustomAliasMinLength:  4,
		CustomAliasMaxLength:  20,
		CacheEnabled:          true,
		CacheTTL:              time.Hour,
		CacheMaxSize:          1000,
		CachePopularThreshold: 10,
		RateLimitEnabled:      true,
		RateLimitRequests:     10,
		RateLimitWindow:       time.Minute,
		RateLimitGlobalRPS:    100,
		RateLimitGlobalBurst:  200,
		CleanupInterval:       5 * time.Minute,
		TracingEnabled:        false,
		JaegerEndpoint:        "http://localhost:14268/api/traces",
		LogLevel:              "info",
	}

	var err error
	s.AppName = envString("APP_NAME", s.AppName)
	s.AppVersion = envString("APP_VERSION", s.AppVersion)
	s.Host = envString("HOST", s.Host)
	if s.Port, err = envInt("PORT", s.Port); err != nil {
		return Settings{}, err
	}

	s.DatabasePath = envString("DATABASE_PATH", s.DatabasePath)
	s.BaseURL = envString("BASE_URL", s.BaseURL)

	if s.ShortCodeLength, err = envInt("SHORT_CODE_LENGTH", s.ShortCodeLength); err != nil {
		return Settings{}, err
	}
	if s.CustomAliasMinLength, err = envInt("CUSTOM_ALIAS_MIN_LENGTH", s.CustomAliasMinLength); err != nil {
		return Settings{}, err
	}
	if s.CustomAliasMaxLength, err = envInt("CUSTOM_ALIAS_MAX_LENGTH", s.CustomAliasMaxLength); err != nil {
		return Settings{}, err
	}

	if s.CacheEnabled, err = envBool("CACHE_ENABLED", s.CacheEnabled); err != nil {
		return Settings{}, err
	}
	if s.CacheTTL, err = envSeconds("CACHE_TTL", s.CacheTTL); err != nil {
		return Settings{}, err
	}
	if s.CacheMaxSize, err = envInt("CACHE_MAX_SIZE", s.CacheMaxSize); err != nil {
		return Settings{}, err
	}
	if s.CachePopularThreshold, err = envInt("CACHE_POPULAR_THRESHOLD", s.CachePopularThreshold); err != nil {
		return Settings{}, err
	}

	if s.RateLimitEnabled, err = envBool("RATE_LIMIT_ENABLED", s.RateLimitEnabled); err != nil {
		return Settings{}, err
	}
	if s.RateLimitRequests, err = envInt("RATE_LIMIT_REQUESTS", s.RateLimitRequests); err != nil {
		return Settings{}, err
	}
	if s.RateLimitWindow, err = envSeconds("RATE_LIMIT_WINDOW", s.RateLimitWindow); err != nil {
		return Settings{}, err
	}
	if s.RateLimitGlobalRPS, err = envInt("RATE_LIMIT_GLOBAL_RPS", s.RateLimitGlobalRPS); err != nil {
		return Settings{}, err
	}
	if s.RateLimitGlobalBurst, err = envInt("RATE_LIMIT_GLOBAL_BURST", s.RateLimitGlobalBurst); err != nil {
		return Settings{}, err
	}

	if s.CleanupInterval, err = envSeconds("CLEANUP_INTERVAL", s.CleanupInterval); err != nil {
		return Settings{}, err
	}

	if s.TracingEnabled, err = envBool("TRACING_ENABLED", s.TracingEnabled); err != nil {
		return Settings{}, err
	}
	s.JaegerEndpoint = envString("JAEGER_ENDPOINT", s.JaegerEndpoint)

	s.LogLevel = envString("LOG_LEVEL", s.LogLevel)

	return s, nil
}

// Addr returns the host:port the server should listen on.
func (s Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func envString(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) (int, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", name, err)
	}
	return n, nil
}

func envBool(name string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s: %w", name, err)
	}
	return b, nil
}

// envSeconds reads a duration expressed as a whole number of seconds, the
// same unit the environment has always used for these knobs.
func envSeconds(name string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", name, err)
	}
	return time.Duration(n) * time.Second, nil
}
