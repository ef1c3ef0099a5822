package news

import (
	"context"
	"time"

	"github.com/ternarybob/riskos/internal/common"
	"github.com/ternarybob/riskos/internal/eodhd"
	"github.com/ternarybob/riskos/internal/httpclient"
	"github.com/ternarybob/riskos/internal/models"
)

const eodhdNewsLimit = 20

// eodhdProvider reads ticker news from the EODHD /news endpoint
type eodhdProvider struct {
	client *eodhd.Client
	now    func() time.Time
}

func newEODHDProvider(apiKey string, client *httpclient.Client) *eodhdProvider {
	return &eodhdProvider{
		client: eodhd.NewClient(apiKey, eodhd.WithAPIClient(client)),
		now:    time.Now,
	}
}

func (p *eodhdProvider) Name() string { return SourceEODHD }

func (p *eodhdProvider) Fetch(ctx context.Context, ticker string, since time.Time) ([]models.Headline, error) {
	symbol := common.ParseTicker(ticker).EODHDSymbol()
	items, err := p.client.GetNews(ctx, []string{symbol},
		eodhd.WithDateRange(since, p.now()),
		eodhd.WithLimit(eodhdNewsLimit),
	)
	if err != nil {
		return nil, err
	}

	headlines := make([]models.Headline, 0, len(items))
	for _, item := range items {
		// The endpoint filters by day; trim to the exact window
		if !item.Date.IsZero() && item.Date.Before(since) {
			continue
		}
		if h, ok := newHeadline(ticker, item.Title, item.Content, "", SourceEODHD, item.Link, formatTimestamp(item.Date)); ok {
			headlines = append(headlines, h)
		}
	}
	return headlines, nil
}
