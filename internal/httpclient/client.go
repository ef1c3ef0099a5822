package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	// DefaultBreakerFailures is the number of consecutive failures that opens the circuit.
	DefaultBreakerFailures = 5

	// DefaultBreakerCooldown is how long an open circuit rejects calls before probing again.
	DefaultBreakerCooldown = 60 * time.Second

	maxErrorBody = 512
)

// ErrCircuitOpen is returned (wrapped) while a service's circuit is open
var ErrCircuitOpen = errors.New("circuit open")

// APIError represents a non-2xx response from an upstream service
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d) at %s: %s", e.Service, e.StatusCode, e.Endpoint, e.Message)
}

// NewDefaultHTTPClient creates a simple HTTP client with a timeout
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// Client performs rate-limited, circuit-broken JSON GET requests against one service.
// All collaborator API clients (EODHD, Navexa, NewsAPI, Finnhub, Schwab) share it.
type Client struct {
	service         string
	baseURL         string
	httpClient      *http.Client
	logger          arbor.ILogger
	limiter         *rate.Limiter
	headers         map[string]string
	breakerFailures uint32
	breakerCooldown time.Duration
	breaker         *gobreaker.CircuitBreaker
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL sets the base URL requests are resolved against.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client (e.g. an OAuth2 client).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit in requests per second. Values <= 0 are ignored.
func WithRateLimit(requestsPerSecond int) Option {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithBreaker configures the circuit breaker. Values <= 0 keep the defaults.
func WithBreaker(consecutiveFailures int, cooldown time.Duration) Option {
	return func(c *Client) {
		if consecutiveFailures > 0 {
			c.breakerFailures = uint32(consecutiveFailures)
		}
		if cooldown > 0 {
			c.breakerCooldown = cooldown
		}
	}
}

// New creates a client for the named service.
func New(service string, opts ...Option) *Client {
	c := &Client{
		service:         service,
		httpClient:      NewDefaultHTTPClient(DefaultTimeout),
		limiter:         rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		headers:         make(map[string]string),
		breakerFailures: DefaultBreakerFailures,
		breakerCooldown: DefaultBreakerCooldown,
	}

	for _, opt := range opts {
		opt(c)
	}

	failures := c.breakerFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    service,
		Timeout: c.breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Client errors say nothing about upstream health
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if c.logger != nil {
				c.logger.Warn().
					Str("service", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("Circuit breaker state changed")
			}
		},
	})

	return c
}

// Service returns the service name used in errors and logs
func (c *Client) Service() string {
	return c.service
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetJSON performs a GET request to path with query params and decodes the JSON body into result.
// path may be absolute (starting with http) or relative to the base URL.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limiter: %w", c.service, err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.get(ctx, path, params, result)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s %w: %v", c.service, ErrCircuitOpen, err)
	}
	return err
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	reqURL := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		reqURL = c.baseURL + path
	}
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("service", c.service).
			Str("path", path).
			Msg("API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute %s request: %w", c.service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Service:    c.service,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.service, err)
	}
	return nil
}
