// Package prices provides daily close histories for the phase engine.
package prices

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/common"
	"github.com/ternarybob/riskos/internal/eodhd"
	"github.com/ternarybob/riskos/internal/models"
	"golang.org/x/sync/errgroup"
)

// ErrNoAPIKey is reported per ticker when the price provider is not configured
const ErrNoAPIKey = "EODHD_API_KEY not set. Configure a price provider key and retry."

// Source returns chronological daily closes per ticker. Failures are reported
// inside each SeriesResult; the map always holds one entry per requested ticker.
type Source interface {
	Closes(ctx context.Context, tickers []string) map[string]models.SeriesResult
}

// EODHDSource fetches end-of-day closes from EODHD, a bounded number of tickers at a time
type EODHDSource struct {
	client       *eodhd.Client
	logger       arbor.ILogger
	lookbackDays int
	concurrency  int
	now          func() time.Time
}

// NewEODHDSource creates a price source. lookbackDays and concurrency fall back to 92 and 4.
func NewEODHDSource(client *eodhd.Client, logger arbor.ILogger, lookbackDays, concurrency int) *EODHDSource {
	if lookbackDays <= 0 {
		lookbackDays = 92
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &EODHDSource{
		client:       client,
		logger:       logger,
		lookbackDays: lookbackDays,
		concurrency:  concurrency,
		now:          time.Now,
	}
}

// Closes fetches every ticker concurrently. A failed ticker never cancels the others.
func (s *EODHDSource) Closes(ctx context.Context, tickers []string) map[string]models.SeriesResult {
	tickers = common.NormalizeTickers(tickers)
	results := make(map[string]models.SeriesResult, len(tickers))

	if err := s.client.Validate(); err != nil {
		for _, ticker := range tickers {
			results[ticker] = models.SeriesResult{Ticker: ticker, Error: ErrNoAPIKey}
		}
		return results
	}

	to := s.now().UTC()
	from := to.AddDate(0, 0, -s.lookbackDays)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			result := s.fetch(gctx, ticker, from, to)
			mu.Lock()
			results[ticker] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *EODHDSource) fetch(ctx context.Context, ticker string, from, to time.Time) models.SeriesResult {
	symbol := common.ParseTicker(ticker).EODHDSymbol()

	data, err := s.client.GetEOD(ctx, symbol, eodhd.WithDateRange(from, to), eodhd.WithPeriod("d"), eodhd.WithOrder("a"))
	if err != nil {
		if s.logger != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Str("symbol", symbol).Msg("Failed to fetch price history")
		}
		return models.SeriesResult{Ticker: ticker, Error: fmt.Sprintf("failed to fetch %s: %v", symbol, err)}
	}

	closes := data.Closes()
	result := models.SeriesResult{Ticker: ticker, Closes: closes, Points: len(closes)}
	if len(data) > 0 && !data[len(data)-1].Date.IsZero() {
		last := data[len(data)-1].Date
		result.LastDate = last.Format("2006-01-02")
		staleness := common.CheckSeriesStaleness(last, s.now(), common.ScheduleForExchange(common.ParseTicker(ticker).Exchange))
		result.Stale = staleness.IsStale
		if staleness.IsStale && s.logger != nil {
			s.logger.Warn().Str("ticker", ticker).Str("reason", staleness.Reason).Msg("Price history is stale")
		}
	}
	if s.logger != nil {
		s.logger.Debug().Str("ticker", ticker).Int("points", len(closes)).Msg("Fetched price history")
	}
	return result
}
