package eodhd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/httpclient"
)

const (
	// DefaultBaseURL is the base URL for the EODHD API.
	DefaultBaseURL = "https://eodhd.com/api"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10
)

// Client is an EODHD API client.
type Client struct {
	apiKey string
	http   *httpclient.Client
}

// clientSettings collects options before the shared HTTP client is built.
type clientSettings struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	rateLimit  int
	shared     *httpclient.Client
}

// ClientOption configures the Client.
type ClientOption func(*clientSettings)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(s *clientSettings) {
		if baseURL != "" {
			s.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(s *clientSettings) {
		s.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(s *clientSettings) {
		s.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(s *clientSettings) {
		if requestsPerSecond > 0 {
			s.rateLimit = requestsPerSecond
		}
	}
}

// WithAPIClient reuses an already configured shared client (base URL, limiter and breaker included).
func WithAPIClient(client *httpclient.Client) ClientOption {
	return func(s *clientSettings) {
		s.shared = client
	}
}

// NewClient creates a new EODHD API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	s := &clientSettings{
		baseURL:    DefaultBaseURL,
		httpClient: httpclient.NewDefaultHTTPClient(DefaultTimeout),
		rateLimit:  DefaultRateLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.shared != nil {
		return &Client{apiKey: apiKey, http: s.shared}
	}

	return &Client{
		apiKey: apiKey,
		http: httpclient.New("eodhd",
			httpclient.WithBaseURL(s.baseURL),
			httpclient.WithHTTPClient(s.httpClient),
			httpclient.WithLogger(s.logger),
			httpclient.WithRateLimit(s.rateLimit),
		),
	}
}

// get performs a GET request to the API with the token and JSON format set.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")
	return c.http.GetJSON(ctx, path, params, result)
}

// GetEOD retrieves end-of-day price data for a symbol.
// Symbol format: TICKER.EXCHANGE (e.g., "AAPL.US", "GNP.AU")
func (c *Client) GetEOD(ctx context.Context, symbol string, opts ...QueryOption) (EODResponse, error) {
	params := &queryParams{
		Period: "d",
		Order:  "a",
	}
	for _, opt := range opts {
		opt(params)
	}

	var result EODResponse
	if err := c.get(ctx, "/eod/"+url.PathEscape(symbol), params.values(), &result); err != nil {
		return nil, err
	}

	for i := range result {
		if t, err := time.Parse("2006-01-02", result[i].DateStr); err == nil {
			result[i].Date = t
		}
	}

	return result, nil
}

// GetNews retrieves news for one or more symbols.
// Symbols should be in TICKER.EXCHANGE format.
func (c *Client) GetNews(ctx context.Context, symbols []string, opts ...QueryOption) (NewsResponse, error) {
	params := &queryParams{
		Limit: 50,
	}
	for _, opt := range opts {
		opt(params)
	}

	queryParams := params.values()
	queryParams.Set("s", strings.Join(symbols, ","))

	var result NewsResponse
	if err := c.get(ctx, "/news", queryParams, &result); err != nil {
		return nil, err
	}

	for i := range result {
		result[i].Date = parseNewsDate(result[i].DateStr)
	}

	return result, nil
}

func parseNewsDate(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// Validate checks that the client has an API key
func (c *Client) Validate() error {
	if c.apiKey == "" {
		return fmt.Errorf("EODHD API key not configured")
	}
	return nil
}
