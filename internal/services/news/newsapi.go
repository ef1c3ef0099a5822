package news

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/ternarybob/riskos/internal/httpclient"
	"github.com/ternarybob/riskos/internal/models"
)

const newsAPIPageSize = 20

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// newsAPIProvider queries newsapi.org /v2/everything for an exact ticker phrase
type newsAPIProvider struct {
	apiKey string
	client *httpclient.Client
}

func newNewsAPIProvider(apiKey string, client *httpclient.Client) *newsAPIProvider {
	return &newsAPIProvider{apiKey: apiKey, client: client}
}

func (p *newsAPIProvider) Name() string { return SourceNewsAPI }

func (p *newsAPIProvider) Fetch(ctx context.Context, ticker string, since time.Time) ([]models.Headline, error) {
	params := url.Values{}
	params.Set("q", strconv.Quote(ticker))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("from", since.UTC().Format(time.RFC3339))
	params.Set("pageSize", strconv.Itoa(newsAPIPageSize))
	params.Set("apiKey", p.apiKey)

	var resp newsAPIResponse
	if err := p.client.GetJSON(ctx, "/v2/everything", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		if resp.Message != "" {
			return nil, errors.New(resp.Message)
		}
		return nil, errors.New("NewsAPI request failed")
	}

	headlines := make([]models.Headline, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if h, ok := newHeadline(ticker, a.Title, a.Description, a.Source.Name, "unknown", a.URL, a.PublishedAt); ok {
			headlines = append(headlines, h)
		}
	}
	return headlines, nil
}
