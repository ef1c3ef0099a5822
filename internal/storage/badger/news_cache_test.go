package badger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/common"
	"github.com/ternarybob/riskos/internal/models"
)

func newTestCache(t *testing.T) *NewsCache {
	t.Helper()
	logger := arbor.NewLogger()
	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "cache")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewNewsCache(db, logger)
}

func TestNewsCache_PutGet(t *testing.T) {
	cache := newTestCache(t)
	headlines := []models.Headline{
		{Ticker: "AAA", Title: "AAA earnings beat", Source: "Wire", URL: "https://x/1", PublishedAt: "2024-03-01T12:00:00Z", Score: models.ScoreMajor},
	}

	require.NoError(t, cache.Put("newsapi|AAA|24h", headlines))

	got, ok := cache.Get("newsapi|AAA|24h", 15*time.Minute)
	require.True(t, ok)
	assert.Equal(t, headlines, got)

	_, ok = cache.Get("newsapi|BBB|24h", 15*time.Minute)
	assert.False(t, ok)
}

func TestNewsCache_TTLExpiry(t *testing.T) {
	cache := newTestCache(t)
	start := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return start }
	require.NoError(t, cache.Put("k", []models.Headline{{Ticker: "AAA", Title: "x"}}))

	cache.now = func() time.Time { return start.Add(14 * time.Minute) }
	_, ok := cache.Get("k", 15*time.Minute)
	assert.True(t, ok, "fresh entry is served")

	cache.now = func() time.Time { return start.Add(16 * time.Minute) }
	_, ok = cache.Get("k", 15*time.Minute)
	assert.False(t, ok, "expired entry is ignored")

	entry, err := cache.Load("k")
	require.NoError(t, err)
	assert.Equal(t, start, entry.SavedAt.UTC())
}

func TestNewsCache_EmptyResultIsCached(t *testing.T) {
	cache := newTestCache(t)
	require.NoError(t, cache.Put("k", nil))

	got, ok := cache.Get("k", time.Hour)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestNewsCache_Prune(t *testing.T) {
	cache := newTestCache(t)
	start := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

	cache.now = func() time.Time { return start }
	require.NoError(t, cache.Put("old", nil))
	cache.now = func() time.Time { return start.Add(2 * time.Hour) }
	require.NoError(t, cache.Put("new", nil))

	require.NoError(t, cache.Prune(time.Hour))

	count, err := cache.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = cache.Load("old")
	assert.ErrorIs(t, err, ErrNotFound)
}
