// Package service implements the URL shortening business logic, coordinating
// the repository, the popularity-gated cache and the short-code generator.
package service

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/NehaKotwal/tinyurl/internal/cache"
	"github.com/NehaKotwal/tinyurl/internal/model"
	"github.com/NehaKotwal/tinyurl/internal/repository"
	"github.com/NehaKotwal/tinyurl/internal/shortcode"
	"github.com/NehaKotwal/tinyurl/internal/validate"
)

var (
	// ErrNotFound is returned when a short code resolves to nothing.
	ErrNotFound = repository.ErrNotFound
	// ErrAliasTaken is returned when the requested custom alias exists.
	ErrAliasTaken = repository.ErrAliasTaken
	// ErrExpired is returned when a link exists but has passed its expiry.
	ErrExpired = errors.New("url has expired")
	// ErrInvalidInput wraps validation failures on URLs and aliases.
	ErrInvalidInput = errors.New("invalid input")
)

// Config carries the service-level knobs out of the settings object.
type Config struct {
	BaseURL              string
	ShortCodeLength      int
	CustomAliasMinLength int
	CustomAliasMaxLength int
	CacheTTL             time.Duration
}

// Summary aggregates service-wide statistics.
type Summary struct {
	TotalURLs int64        `json:"total_urls"`
	BaseURL   string       `json:"base_url"`
	Cache     *cache.Stats `json:"cache,omitempty"`
}

// URLService orchestrates shortening, redirecting and link management.
// The cache manager may be nil when caching is disabled.
type URLService struct {
	repo      *repository.URLRepository
	cache     *cache.Manager
	generator *shortcode.Generator
	cfg       Config
	logger    *zap.Logger
	lookups   singleflight.Group // dedupes concurrent repository reads per code
	timeNow   func() time.Time
}

// New creates a URL service. cacheManager may be nil to disable caching.
func New(repo *repository.URLRepository, cacheManager *cache.Manager, cfg Config, logger *zap.Logger) *URLService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &URLService{
		repo:      repo,
		cache:     cacheManager,
		generator: shortcode.NewGenerator(cfg.ShortCodeLength),
		cfg:       cfg,
		logger:    logger,
		timeNow:   time.Now,
	}
}

// Shorten validates the request, persists a record and derives its short
// code from the assigned row ID.
func (s *URLService) Shorten(req model.CreateRequest) (*model.ShortenResponse, error) {
	originalURL, err := validate.SanitizeURL(req.OriginalURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := validate.CustomAlias(req.CustomAlias, s.cfg.CustomAliasMinLength, s.cfg.CustomAliasMaxLength); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var alias *string
	if req.CustomAlias != "" {
		alias = &req.CustomAlias
	}
	var userID *string
	if req.UserID != "" {
		userID = &req.UserID
	}

	record, err := s.repo.Create(originalURL, alias, req.ExpiresAt, userID)
	if err != nil {
		return nil, err
	}

	code := s.generator.FromID(record.ID)
	record, err = s.repo.SetShortCode(record.ID, code)
	if err != nil {
		return nil, err
	}

	s.logger.Info("url shortened",
		zap.String("short_code", code),
		zap.Uint64("id", record.ID))

	return &model.ShortenResponse{
		ShortCode:   code,
		ShortURL:    s.shortURL(code),
		OriginalURL: originalURL,
		CustomAlias: req.CustomAlias,
		CreatedAt:   record.CreatedAt,
		ExpiresAt:   record.ExpiresAt,
	}, nil
}

// ResolveRedirect returns the destination for a short code or alias and
// tracks the access. The cache is consulted first; a hit still increments
// the click counter best-effort so analytics survive caching. On a miss the
// repository lookup is deduplicated across concurrent requests for the same
// code, and the fresh click count decides whether the destination is
// admitted into the cache.
func (s *URLService) ResolveRedirect(code string) (string, error) {
	if s.cache != nil {
		if destination, ok := s.cache.Lookup(code); ok {
			if _, err := s.repo.IncrementClickCount(code); err != nil {
				// Never fail a redirect over a counter update.
				s.logger.Warn("click count update failed on cache hit",
					zap.String("short_code", code), zap.Error(err))
			}
			return destination, nil
		}
	}

	v, err, _ := s.lookups.Do(code, func() (any, error) {
		return s.repo.Resolve(code)
	})
	if err != nil {
		return "", err
	}
	record := v.(*model.URL)

	if record.IsExpired(s.timeNow().UTC()) {
		return "", fmt.Errorf("%w: %s", ErrExpired, code)
	}

	record, err = s.repo.IncrementClickCount(code)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		s.cache.AdmitTTL(code, record.OriginalURL, record.ClickCount, s.cfg.CacheTTL)
	}

	return record.OriginalURL, nil
}

// Stats returns the analytics view of one link.
func (s *URLService) Stats(code string) (*model.URLStats, error) {
	record, err := s.repo.Resolve(code)
	if err != nil {
		return nil, err
	}

	return &model.URLStats{
		ShortCode:      record.ShortCode,
		OriginalURL:    record.OriginalURL,
		CreatedAt:      record.CreatedAt,
		ClickCount:     record.ClickCount,
		LastAccessedAt: record.LastAccessedAt,
		ExpiresAt:      record.ExpiresAt,
		IsExpired:      record.IsExpired(s.timeNow().UTC()),
	}, nil
}

// List returns a page of links, newest first.
func (s *URLService) List(limit, offset int, userID string) ([]model.URLResponse, error) {
	var uid *string
	if userID != "" {
		uid = &userID
	}

	records, err := s.repo.List(limit, offset, uid)
	if err != nil {
		return nil, err
	}

	responses := make([]model.URLResponse, 0, len(records))
	for _, r := range records {
		alias := ""
		if r.CustomAlias != nil {
			alias = *r.CustomAlias
		}
		responses = append(responses, model.URLResponse{
			ID:             r.ID,
			ShortCode:      r.ShortCode,
			OriginalURL:    r.OriginalURL,
			CustomAlias:    alias,
			CreatedAt:      r.CreatedAt,
			ExpiresAt:      r.ExpiresAt,
			ClickCount:     r.ClickCount,
			LastAccessedAt: r.LastAccessedAt,
			ShortURL:       s.shortURL(r.ShortCode),
		})
	}
	return responses, nil
}

// Update changes a link's destination and/or expiry, invalidating the cache
// entry before returning so stale destinations are never served.
func (s *URLService) Update(code string, req model.UpdateRequest) (*model.URLResponse, error) {
	var originalURL *string
	if req.OriginalURL != "" {
		sanitized, err := validate.SanitizeURL(req.OriginalURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		originalURL = &sanitized
	}

	record, err := s.repo.Update(code, originalURL, req.ExpiresAt)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(code)
		if record.ShortCode != code {
			// The caller may have addressed the link by alias.
			s.cache.Invalidate(record.ShortCode)
		}
	}

	alias := ""
	if record.CustomAlias != nil {
		alias = *record.CustomAlias
	}
	return &model.URLResponse{
		ID:             record.ID,
		ShortCode:      record.ShortCode,
		OriginalURL:    record.OriginalURL,
		CustomAlias:    alias,
		CreatedAt:      record.CreatedAt,
		ExpiresAt:      record.ExpiresAt,
		ClickCount:     record.ClickCount,
		LastAccessedAt: record.LastAccessedAt,
		ShortURL:       s.shortURL(record.ShortCode),
	}, nil
}

// Delete removes a link and its cache entry. Returns false when nothing
// matched.
func (s *URLService) Delete(code string) (bool, error) {
	deleted, err := s.repo.Delete(code)
	if err != nil {
		return false, err
	}

	if deleted && s.cache != nil {
		s.cache.Invalidate(code)
	}
	return deleted, nil
}

// SummaryStats returns service-wide totals plus cache statistics when
// caching is enabled.
func (s *URLService) SummaryStats(userID string) (*Summary, error) {
	var uid *string
	if userID != "" {
		uid = &userID
	}

	total, err := s.repo.Count(uid)
	if err != nil {
		return nil, err
	}

	summary := &Summary{TotalURLs: total, BaseURL: s.cfg.BaseURL}
	if s.cache != nil {
		stats := s.cache.Stats()
		summary.Cache = &stats
	}
	return summary, nil
}

func (s *URLService) shortURL(code string) string {
	return fmt.Sprintf("%s/%s", s.cfg.BaseURL, code)
}
