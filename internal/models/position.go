package models

import (
	"sort"
	"strings"
)

// Direction of a net position
const (
	DirectionLong  = "long"
	DirectionShort = "short"
)

// Position is the canonical record every position source normalizes to.
// Quantity is always positive; direction carries the sign.
type Position struct {
	Ticker       string   `json:"ticker"`
	Quantity     int      `json:"quantity"`
	Direction    string   `json:"direction,omitempty"`
	AvgCost      *float64 `json:"avgCost"`
	CurrentPrice float64  `json:"currentPrice"`
	MarketValue  *float64 `json:"marketValue,omitempty"`
	PnL          *float64 `json:"pnl"`
	PnLPct       *float64 `json:"pnlPct"`
	Stop         *float64 `json:"stop"`
}

// PortfolioSummary holds account-level figures for one run.
// DailyPnLPct is nil when the source does not report it.
type PortfolioSummary struct {
	TotalValue  float64  `json:"totalValue"`
	Cash        float64  `json:"cash"`
	DailyPnLPct *float64 `json:"dailyPnlPct"`
}

// PositionsResult is the position source payload. Error is set (and Positions empty)
// when the source is unavailable; the briefing continues with an empty portfolio.
type PositionsResult struct {
	Positions []Position       `json:"positions"`
	Summary   PortfolioSummary `json:"summary"`
	Source    string           `json:"_source,omitempty"`
	Cached    bool             `json:"_cached,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Tickers returns the distinct upper-case tickers held, sorted
func (r PositionsResult) Tickers() []string {
	seen := make(map[string]bool, len(r.Positions))
	tickers := make([]string, 0, len(r.Positions))
	for _, p := range r.Positions {
		ticker := strings.ToUpper(strings.TrimSpace(p.Ticker))
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// Float returns a pointer to v, for optional numeric fields
func Float(v float64) *float64 {
	return &v
}
