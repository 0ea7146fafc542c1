// Package repository persists URL records in SQLite through GORM.
package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NehaKotwal/tinyurl/internal/model"
)

var (
	// ErrNotFound is returned when no record matches a short code or alias.
	ErrNotFound = errors.New("url not found")
	// ErrAliasTaken is returned when a custom alias already exists.
	ErrAliasTaken = errors.New("custom alias already exists")
)

// URLRepository wraps database access for URL records.
type URLRepository struct {
	db      *gorm.DB
	timeNow func() time.Time
}

// Open connects to the SQLite database at path, runs migrations and returns
// a repository. Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*URLRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: open database: %w", err)
	}

	if err := db.AutoMigrate(&model.URL{}); err != nil {
		return nil, fmt.Errorf("repository: migrate: %w", err)
	}

	return &URLRepository{db: db, timeNow: time.Now}, nil
}

// Create inserts a new record without a short code; the code is derived from
// the assigned ID afterwards via SetShortCode.
func (r *URLRepository) Create(originalURL string, customAlias *string, expiresAt *time.Time, userID *string) (*model.URL, error) {
	if customAlias != nil {
		var count int64
		if err := r.db.Model(&model.URL{}).Where("custom_alias = ?", *customAlias).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("repository: check alias: %w", err)
		}
		if count > 0 {
			return nil, ErrAliasTaken
		}
	}

	record := &model.URL{
		OriginalURL: originalURL,
		CustomAlias: customAlias,
		CreatedAt:   r.timeNow().UTC(),
		ExpiresAt:   expiresAt,
		UserID:      userID,
	}

	if err := r.db.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAliasTaken
		}
		return nil, fmt.Errorf("repository: create: %w", err)
	}
	return record, nil
}

// SetShortCode stores the generated code on a freshly created record.
func (r *URLRepository) SetShortCode(id uint64, shortCode string) (*model.URL, error) {
	res := r.db.Model(&model.URL{}).Where("id = ?", id).Update("short_code", shortCode)
	if res.Error != nil {
		return nil, fmt.Errorf("repository: set short code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(id)
}

// GetByID fetches a record by primary key.
func (r *URLRepository) GetByID(id uint64) (*model.URL, error) {
	var record model.URL
	if err := r.db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: get by id: %w", err)
	}
	return &record, nil
}

// GetByShortCode fetches a record by its generated code.
func (r *URLRepository) GetByShortCode(shortCode string) (*model.URL, error) {
	var record model.URL
	if err := r.db.First(&record, "short_code = ?", shortCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: get by short code: %w", err)
	}
	return &record, nil
}

// GetByCustomAlias fetches a record by its custom alias.
func (r *URLRepository) GetByCustomAlias(alias string) (*model.URL, error) {
	var record model.URL
	if err := r.db.First(&record, "custom_alias = ?", alias).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: get by alias: %w", err)
	}
	return &record, nil
}

// Resolve fetches a record by short code, falling back to custom alias, the
// lookup order the redirect path uses.
func (r *URLRepository) Resolve(code string) (*model.URL, error) {
	record, err := r.GetByShortCode(code)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return r.GetByCustomAlias(code)
}

// IncrementClickCount bumps the click counter and the last-accessed time for
// a short code or alias, returning the updated record.
func (r *URLRepository) IncrementClickCount(code string) (*model.URL, error) {
	record, err := r.Resolve(code)
	if err != nil {
		return nil, err
	}

	now := r.timeNow().UTC()
	updates := map[string]any{
		"click_count":      gorm.Expr("click_count + 1"),
		"last_accessed_at": now,
	}
	if err := r.db.Model(record).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("repository: increment click count: %w", err)
	}

	record.ClickCount++
	record.LastAccessedAt = &now
	return record, nil
}

// Update changes the destination and/or expiry of a record found by short
// code or alias.
func (r *URLRepository) Update(code string, originalURL *string, expiresAt *time.Time) (*model.URL, error) {
	record, err := r.Resolve(code)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if originalURL != nil {
		updates["original_url"] = *originalURL
	}
	if expiresAt != nil {
		updates["expires_at"] = *expiresAt
	}
	if len(updates) == 0 {
		return record, nil
	}

	if err := r.db.Model(record).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("repository: update: %w", err)
	}
	return r.GetByID(record.ID)
}

// Delete removes a record found by short code or alias. Returns false when
// nothing matched.
func (r *URLRepository) Delete(code string) (bool, error) {
	record, err := r.Resolve(code)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := r.db.Delete(record).Error; err != nil {
		return false, fmt.Errorf("repository: delete: %w", err)
	}
	return true, nil
}

// List returns records ordered by creation time, newest first.
func (r *URLRepository) List(limit, offset int, userID *string) ([]model.URL, error) {
	q := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var records []model.URL
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("repository: list: %w", err)
	}
	return records, nil
}

// Count returns the total number of records, optionally per user.
func (r *URLRepository) Count(userID *string) (int64, error) {
	q := r.db.Model(&model.URL{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("repository: count: %w", err)
	}
	return count, nil
}
