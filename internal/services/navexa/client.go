// Package navexa provides a client for the Navexa portfolio API.
package navexa

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
	// DefaultBaseURL is the base URL for the Navexa API.
	DefaultBaseURL = "https://api.navexa.com.au"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// Client is a Navexa API client.
type Client struct {
	apiKey string
	http   *httpclient.Client
	now    func() time.Time
}

type clientSettings struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	rateLimit  int
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

// NewClient creates a new Navexa API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	s := &clientSettings{
		baseURL:    DefaultBaseURL,
		httpClient: httpclient.NewDefaultHTTPClient(DefaultTimeout),
		rateLimit:  DefaultRateLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	return &Client{
		apiKey: apiKey,
		http: httpclient.New("navexa",
			httpclient.WithBaseURL(s.baseURL),
			httpclient.WithHTTPClient(s.httpClient),
			httpclient.WithLogger(s.logger),
			httpclient.WithRateLimit(s.rateLimit),
			httpclient.WithHeader("x-api-key", apiKey),
		),
		now: time.Now,
	}
}

// Configured reports whether an API key is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// GetPortfolios retrieves all portfolios for the authenticated user.
func (c *Client) GetPortfolios(ctx context.Context) ([]Portfolio, error) {
	var portfolios []Portfolio
	if err := c.http.GetJSON(ctx, "/v1/portfolios", nil, &portfolios); err != nil {
		return nil, fmt.Errorf("failed to fetch portfolios: %w", err)
	}
	return portfolios, nil
}

// GetPortfolioByName finds a portfolio by name (case-insensitive contains match).
// An empty name selects the first portfolio.
func (c *Client) GetPortfolioByName(ctx context.Context, name string) (*Portfolio, error) {
	portfolios, err := c.GetPortfolios(ctx)
	if err != nil {
		return nil, err
	}
	if len(portfolios) == 0 {
		return nil, fmt.Errorf("no portfolios found")
	}

	nameUpper := strings.ToUpper(strings.TrimSpace(name))
	for i := range portfolios {
		if strings.Contains(strings.ToUpper(portfolios[i].Name), nameUpper) {
			return &portfolios[i], nil
		}
	}

	return nil, fmt.Errorf("no portfolio found matching name '%s'", name)
}

// GetPerformance retrieves per-holding performance data for a portfolio.
func (c *Client) GetPerformance(ctx context.Context, portfolioID int, fromDate, toDate string) (*PerformanceResponse, error) {
	path := fmt.Sprintf("/v1/portfolios/%d/performance", portfolioID)

	params := url.Values{}
	params.Set("from", fromDate)
	params.Set("to", toDate)
	params.Set("isPortfolioGroup", "false")
	params.Set("groupBy", "holding")
	params.Set("showLocalCurrency", "false")

	var perf PerformanceResponse
	if err := c.http.GetJSON(ctx, path, params, &perf); err != nil {
		return nil, fmt.Errorf("failed to fetch performance for portfolio %d: %w", portfolioID, err)
	}
	return &perf, nil
}

// GetPortfolioWithHoldings fetches a portfolio by name and derives per-holding prices from performance data.
func (c *Client) GetPortfolioWithHoldings(ctx context.Context, portfolioName string) (*PortfolioWithHoldings, error) {
	portfolio, err := c.GetPortfolioByName(ctx, portfolioName)
	if err != nil {
		return nil, err
	}

	// Performance over the portfolio's lifetime gives current value and total cost
	fromDate := portfolio.DateCreated
	if len(fromDate) > 10 {
		fromDate = fromDate[:10]
	}
	now := c.now()
	toDate := now.Format("2006-01-02")

	perf, err := c.GetPerformance(ctx, portfolio.ID, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	holdings := make([]EnrichedHolding, 0, len(perf.Holdings))
	for _, h := range perf.Holdings {
		holding := EnrichedHolding{
			Symbol:       h.Symbol,
			Name:         h.Name,
			Exchange:     h.Exchange,
			Quantity:     h.TotalQuantity,
			CurrentValue: h.TotalReturn.TotalValue,
			TotalCost:    h.TotalReturn.TotalCost,
			ReturnPct:    h.TotalReturn.ReturnPct,
			CurrencyCode: h.CurrencyCode,
		}
		if h.TotalQuantity > 0 {
			holding.CurrentPrice = h.TotalReturn.TotalValue / h.TotalQuantity
			holding.AvgCost = h.TotalReturn.TotalCost / h.TotalQuantity
		}
		holdings = append(holdings, holding)
	}

	return &PortfolioWithHoldings{
		Portfolio: *portfolio,
		Holdings:  holdings,
		FetchedAt: now.UTC().Format(time.RFC3339),
	}, nil
}
