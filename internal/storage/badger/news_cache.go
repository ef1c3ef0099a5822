package badger

import (
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ErrNotFound is returned when a cache entry does not exist
var ErrNotFound = errors.New("cache entry not found")

// CachedHeadlines is one provider response for a source|ticker|since key
type CachedHeadlines struct {
	Key       string
	Headlines []models.Headline
	SavedAt   time.Time
}

// NewsCache stores headline lists keyed by query with a read-time TTL
type NewsCache struct {
	db     *BadgerDB
	logger arbor.ILogger
	now    func() time.Time
}

// NewNewsCache creates a new NewsCache instance
func NewNewsCache(db *BadgerDB, logger arbor.ILogger) *NewsCache {
	return &NewsCache{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Load returns the stored entry regardless of age
func (c *NewsCache) Load(key string) (*CachedHeadlines, error) {
	var entry CachedHeadlines
	err := c.db.Store().Get(key, &entry)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return &entry, nil
}

// Get returns cached headlines saved within ttl
func (c *NewsCache) Get(key string, ttl time.Duration) ([]models.Headline, bool) {
	entry, err := c.Load(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn().Err(err).Str("key", key).Msg("News cache read failed")
		}
		return nil, false
	}
	if c.now().Sub(entry.SavedAt) > ttl {
		return nil, false
	}
	if entry.Headlines == nil {
		return []models.Headline{}, true
	}
	return entry.Headlines, true
}

// Put stores headlines for key, replacing any previous entry
func (c *NewsCache) Put(key string, headlines []models.Headline) error {
	entry := CachedHeadlines{
		Key:       key,
		Headlines: headlines,
		SavedAt:   c.now().UTC(),
	}
	if err := c.db.Store().Upsert(key, &entry); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Prune deletes entries saved more than maxAge ago
func (c *NewsCache) Prune(maxAge time.Duration) error {
	cutoff := c.now().UTC().Add(-maxAge)
	if err := c.db.Store().DeleteMatching(&CachedHeadlines{}, badgerhold.Where("SavedAt").Lt(cutoff)); err != nil {
		return fmt.Errorf("failed to prune news cache: %w", err)
	}
	return nil
}

// Count returns the number of stored entries
func (c *NewsCache) Count() (int, error) {
	count, err := c.db.Store().Count(&CachedHeadlines{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return int(count), nil
}
