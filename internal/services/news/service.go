// Package news fetches, scores and de-duplicates ticker headlines with a TTL cache.
package news

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/common"
	"github.com/ternarybob/riskos/internal/models"
	"golang.org/x/sync/errgroup"
)

// StatusNoProvider is reported when no API key is configured
const StatusNoProvider = "No provider configured"

// DefaultCacheTTL is used when the configured TTL is missing or invalid
const DefaultCacheTTL = 15 * time.Minute

const fetchConcurrency = 4

// Cache stores per-ticker headline lists. Get returns false when the entry
// is missing or older than ttl.
type Cache interface {
	Get(key string, ttl time.Duration) ([]models.Headline, bool)
	Put(key string, headlines []models.Headline) error
}

// Service fetches news for a ticker set through one provider.
// Provider failures are reported inside the result and never returned as errors.
type Service struct {
	provider    Provider
	providerErr error
	cache       Cache
	ttl         time.Duration
	logger      arbor.ILogger
	now         func() time.Time
}

// NewService creates a service around a provider. cache may be nil.
func NewService(provider Provider, cache Cache, ttl time.Duration, logger arbor.ILogger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		provider: provider,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// NewServiceFromConfig builds the configured provider. A missing key or an unknown
// source is kept and reported by every Fetch.
func NewServiceFromConfig(config common.NewsConfig, cache Cache, logger arbor.ILogger) *Service {
	provider, err := NewProvider(config, logger)
	if !config.CacheEnabled {
		cache = nil
	}
	s := NewService(provider, cache, common.ParseDuration(config.CacheTTL, DefaultCacheTTL), logger)
	s.providerErr = err
	return s
}

// Fetch returns scored headlines for tickers within the since window.
// useCache=false bypasses both cache reads and writes for this call.
func (s *Service) Fetch(ctx context.Context, tickers []string, since string, useCache bool) models.NewsResult {
	if since == "" {
		since = DefaultSince
	}
	result := models.NewsResult{
		Headlines: []models.Headline{},
		Alerts:    []string{},
		Since:     since,
	}

	if s.providerErr != nil {
		result.Error = s.providerErr.Error()
		if errors.Is(s.providerErr, ErrNoAPIKey) {
			result.Status = StatusNoProvider
		}
		return result
	}

	useCache = useCache && s.cache != nil
	result.Source = s.provider.Name()
	result.Cache = models.CacheStats{
		Enabled:    useCache,
		TTLMinutes: int(s.ttl / time.Minute),
	}

	tickers = common.NormalizeTickers(tickers)
	sinceTime := SinceTime(s.now(), since)

	type tickerNews struct {
		headlines []models.Headline
		cached    bool
		err       error
	}
	fetched := make([]tickerNews, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			key := CacheKey(result.Source, ticker, since)
			if useCache {
				if cached, ok := s.cache.Get(key, s.ttl); ok {
					fetched[i] = tickerNews{headlines: cached, cached: true}
					return nil
				}
			}

			headlines, err := s.provider.Fetch(gctx, ticker, sinceTime)
			if err != nil {
				fetched[i] = tickerNews{err: err}
				return nil
			}
			if useCache {
				if err := s.cache.Put(key, headlines); err != nil && s.logger != nil {
					s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to write news cache")
				}
			}
			fetched[i] = tickerNews{headlines: headlines}
			return nil
		})
	}
	_ = g.Wait()

	var all []models.Headline
	for i, tn := range fetched {
		switch {
		case tn.err != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", tickers[i], tn.err))
			if s.logger != nil {
				s.logger.Warn().Err(tn.err).Str("ticker", tickers[i]).Str("source", result.Source).Msg("News fetch failed")
			}
		case tn.cached:
			result.Cache.Hits++
			all = append(all, tn.headlines...)
		default:
			all = append(all, tn.headlines...)
		}
	}

	result.Headlines = Deduplicate(all)
	result.Alerts = BuildAlerts(result.Headlines)

	if s.logger != nil {
		s.logger.Debug().
			Str("source", result.Source).
			Int("tickers", len(tickers)).
			Int("headlines", len(result.Headlines)).
			Int("cache_hits", result.Cache.Hits).
			Msg("News fetched")
	}
	return result
}

// CacheKey identifies one provider query
func CacheKey(source, ticker, since string) string {
	return strings.Join([]string{source, ticker, since}, "|")
}

// Deduplicate keeps the first headline per URL (or ticker|title|publishedAt when the URL is empty)
func Deduplicate(headlines []models.Headline) []models.Headline {
	seen := make(map[string]bool, len(headlines))
	unique := make([]models.Headline, 0, len(headlines))
	for _, h := range headlines {
		key := h.URL
		if key == "" {
			key = h.Ticker + "|" + h.Title + "|" + h.PublishedAt
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, h)
	}
	return unique
}

// BuildAlerts formats adversarial and major headlines as "{T}: {score} - {title}"
func BuildAlerts(headlines []models.Headline) []string {
	alerts := []string{}
	for _, h := range headlines {
		if IsAlertScore(h.Score) {
			alerts = append(alerts, fmt.Sprintf("%s: %s - %s", h.Ticker, h.Score, h.Title))
		}
	}
	return alerts
}
