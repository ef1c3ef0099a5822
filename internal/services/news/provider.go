package news

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/common"
	"github.com/ternarybob/riskos/internal/httpclient"
	"github.com/ternarybob/riskos/internal/models"
)

// Provider names accepted by news.source / NEWS_API_SOURCE
const (
	SourceNewsAPI = "newsapi"
	SourceFinnhub = "finnhub"
	SourceEODHD   = "eodhd"
)

// ErrNoAPIKey is returned when no provider key is configured
var ErrNoAPIKey = errors.New("NEWS_API_KEY not set. Configure a provider key and retry.")

// Provider fetches scored headlines for one ticker published after since
type Provider interface {
	Name() string
	Fetch(ctx context.Context, ticker string, since time.Time) ([]models.Headline, error)
}

type providerFactory func(apiKey string, client *httpclient.Client) Provider

var providers = map[string]struct {
	baseURL string
	build   providerFactory
}{
	SourceNewsAPI: {"https://newsapi.org", func(key string, c *httpclient.Client) Provider { return newNewsAPIProvider(key, c) }},
	SourceFinnhub: {"https://finnhub.io", func(key string, c *httpclient.Client) Provider { return newFinnhubProvider(key, c) }},
	SourceEODHD:   {"https://eodhd.com/api", func(key string, c *httpclient.Client) Provider { return newEODHDProvider(key, c) }},
}

// SupportedSources returns the provider names, sorted
func SupportedSources() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProvider builds the configured provider behind a rate-limited, circuit-broken HTTP client
func NewProvider(config common.NewsConfig, logger arbor.ILogger) (Provider, error) {
	if config.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	source := strings.ToLower(strings.TrimSpace(config.Source))
	entry, ok := providers[source]
	if !ok {
		return nil, fmt.Errorf("Unsupported NEWS_API_SOURCE='%s'. Supported: %s", source, strings.Join(SupportedSources(), ", "))
	}

	baseURL := entry.baseURL
	if config.BaseURL != "" {
		baseURL = config.BaseURL
	}

	client := httpclient.New(source,
		httpclient.WithBaseURL(baseURL),
		httpclient.WithHTTPClient(httpclient.NewDefaultHTTPClient(12*time.Second)),
		httpclient.WithHeader("User-Agent", "riskos/"+common.GetVersion()),
		httpclient.WithLogger(logger),
		httpclient.WithRateLimit(config.RateLimit),
		httpclient.WithBreaker(config.BreakerFailures, 0),
	)
	return entry.build(config.APIKey, client), nil
}

// newHeadline scores title + body and applies the provider's source fallback.
// Returns false when there is no text to score.
func newHeadline(ticker, title, body, source, fallbackSource, url, publishedAt string) (models.Headline, bool) {
	title = strings.TrimSpace(title)
	text := strings.TrimSpace(title + " " + strings.TrimSpace(body))
	if text == "" {
		return models.Headline{}, false
	}
	if strings.TrimSpace(source) == "" {
		source = fallbackSource
	}
	return models.Headline{
		Ticker:      ticker,
		Title:       title,
		Source:      source,
		URL:         url,
		PublishedAt: publishedAt,
		Score:       ScoreText(text),
	}, true
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
