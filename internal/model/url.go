// Package model defines the persisted URL record and the API schemas built
// from it.
package model

import "time"

// URL is the persisted record for one shortened link.
type URL struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ShortCode      string     `gorm:"size:20;uniqueIndex" json:"short_code"`
	OriginalURL    string     `gorm:"size:2048;not null" json:"original_url"`
	CustomAlias    *string    `gorm:"size:50;uniqueIndex" json:"custom_alias,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;index" json:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ClickCount     int        `gorm:"not null;default:0" json:"click_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	UserID         *string    `gorm:"size:100;index" json:"user_id,omitempty"`
}

// TableName keeps the table name the service has always used.
func (URL) TableName() string { return "urls" }

// IsExpired reports whether the link itself (not a cache entry) has passed
// its optional expiry.
func (u *URL) IsExpired(now time.Time) bool {
	return u.ExpiresAt != nil && u.ExpiresAt.Before(now)
}

// CreateRequest is the payload for shortening a URL.
type CreateRequest struct {
	OriginalURL string     `json:"original_url"`
	CustomAlias string     `json:"custom_alias,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UserID      string     `json:"user_id,omitempty"`
}

// UpdateRequest is the payload for changing a link's destination or expiry.
type UpdateRequest struct {
	OriginalURL string     `json:"original_url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// ShortenResponse is returned after a successful shorten call.
type ShortenResponse struct {
	ShortCode   string     `json:"short_code"`
	ShortURL    string     `json:"short_url"`
	OriginalURL string     `json:"original_url"`
	CustomAlias string     `json:"custom_alias,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// URLResponse is the listing/update representation of a link.
type URLResponse struct {
	ID             uint64     `json:"id"`
	ShortCode      string     `json:"short_code"`
	OriginalURL    string     `json:"original_url"`
	CustomAlias    string     `json:"custom_alias,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ClickCount     int        `json:"click_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	ShortURL       string     `json:"short_url"`
}

// URLStats is the analytics view of one link.
type URLStats struct {
	ShortCode      string     `json:"short_code"`
	OriginalURL    string     `json:"original_url"`
	CreatedAt      time.Time  `json:"created_at"`
	ClickCount     int        `json:"click_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	IsExpired      bool       `json:"is_expired"`
}
