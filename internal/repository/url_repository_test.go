package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *URLRepository {
	t.Helper()
	repo, err := Open(":memory:")
	require.NoError(t, err)
	return repo
}

func strPtr(s string) *string { return &s }

func TestRepository_CreateAndResolve(t *testing.T) {
	repo := newTestRepo(t)

	record, err := repo.Create("https://example.com", nil, nil, nil)
	require.NoError(t, err)
	assert.NotZero(t, record.ID)
	assert.Zero(t, record.ClickCount)

	record, err = repo.SetShortCode(record.ID, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", record.ShortCode)

	got, err := repo.Resolve("abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got.OriginalURL)
}

func TestRepository_ResolveFallsBackToAlias(t *testing.T) {
	repo := newTestRepo(t)

	record, err := repo.Create("https://example.com", strPtr("my-link"), nil, nil)
	require.NoError(t, err)
	_, err = repo.SetShortCode(record.ID, "abc123")
	require.NoError(t, err)

	got, err := repo.Resolve("my-link")
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
}

func TestRepository_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Resolve("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.SetShortCode(999, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_DuplicateAlias(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Create("https://example.com/1", strPtr("taken"), nil, nil)
	require.NoError(t, err)

	_, err = repo.Create("https://example.com/2", strPtr("taken"), nil, nil)
	assert.ErrorIs(t, err, ErrAliasTaken)
}

func TestRepository_IncrementClickCount(t *testing.T) {
	repo := newTestRepo(t)

	record, err := repo.Create("https://example.com", nil, nil, nil)
	require.NoError(t, err)
	_, err = repo.SetShortCode(record.ID, "abc123")
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		got, err := repo.IncrementClickCount("abc123")
		require.NoError(t, err)
		assert.Equal(t, i, got.ClickCount)
		assert.NotNil(t, got.LastAccessedAt)
	}
}

func TestRepository_Update(t *testing.T) {
	repo := newTestRepo(t)

	record, err := repo.Create("https://example.com/old", nil, nil, nil)
	require.NoError(t, err)
	_, err = repo.SetShortCode(record.ID, "abc123")
	require.NoError(t, err)

	expires := time.Now().UTC().Add(24 * time.Hour)
	updated, err := repo.Update("abc123", strPtr("https://example.com/new"), &expires)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/new", updated.OriginalURL)
	require.NotNil(t, updated.ExpiresAt)
	assert.WithinDuration(t, expires, *updated.ExpiresAt, time.Second)
}

func TestRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)

	record, err := repo.Create("https://example.com", nil, nil, nil)
	require.NoError(t, err)
	_, err = repo.SetShortCode(record.ID, "abc123")
	require.NoError(t, err)

	deleted, err := repo.Delete("abc123")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete("abc123")
	require.NoError(t, err)
	assert.False(t, deleted, "second delete finds nothing")
}

func TestRepository_ListAndCount(t *testing.T) {
	repo := newTestRepo(t)

	for i := 0; i < 5; i++ {
		record, err := repo.Create("https://example.com", nil, nil, nil)
		require.NoError(t, err)
		_, err = repo.SetShortCode(record.ID, "code-"+string(rune('a'+i)))
		require.NoError(t, err)
	}

	records, err := repo.List(3, 0, nil)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	records, err = repo.List(10, 3, nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	count, err := repo.Count(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestRepository_CountByUser(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Create("https://example.com/1", nil, nil, strPtr("alice"))
	require.NoError(t, err)
	_, err = repo.Create("https://example.com/2", nil, nil, strPtr("alice"))
	require.NoError(t, err)
	_, err = repo.Create("https://example.com/3", nil, nil, strPtr("bob"))
	require.NoError(t, err)

	count, err := repo.Count(strPtr("alice"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
