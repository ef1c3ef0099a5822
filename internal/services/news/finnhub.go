package news

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"github.com/ternarybob/riskos/internal/httpclient"
	"github.com/ternarybob/riskos/internal/models"
)

type finnhubArticle struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"` // unix seconds
}

// finnhubProvider queries finnhub.io company news by date range
type finnhubProvider struct {
	apiKey string
	client *httpclient.Client
	now    func() time.Time
}

func newFinnhubProvider(apiKey string, client *httpclient.Client) *finnhubProvider {
	return &finnhubProvider{apiKey: apiKey, client: client, now: time.Now}
}

func (p *finnhubProvider) Name() string { return SourceFinnhub }

func (p *finnhubProvider) Fetch(ctx context.Context, ticker string, since time.Time) ([]models.Headline, error) {
	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("from", since.UTC().Format("2006-01-02"))
	params.Set("to", p.now().UTC().Format("2006-01-02"))
	params.Set("token", p.apiKey)

	// Errors come back as an object, articles as a list
	var raw json.RawMessage
	if err := p.client.GetJSON(ctx, "/api/v1/company-news", params, &raw); err != nil {
		return nil, err
	}

	var articles []finnhubArticle
	if err := json.Unmarshal(raw, &articles); err != nil {
		var failure struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &failure) == nil && failure.Error != "" {
			return nil, errors.New(failure.Error)
		}
		return nil, errors.New("Finnhub request failed")
	}

	headlines := make([]models.Headline, 0, len(articles))
	for _, a := range articles {
		published := ""
		if a.Datetime > 0 {
			published = formatTimestamp(time.Unix(a.Datetime, 0))
		}
		if h, ok := newHeadline(ticker, a.Headline, a.Summary, a.Source, SourceFinnhub, a.URL, published); ok {
			headlines = append(headlines, h)
		}
	}
	return headlines, nil
}
