package positions

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/models"
	"github.com/ternarybob/riskos/internal/services/navexa"
)

// NavexaSource reads holdings from a Navexa portfolio
type NavexaSource struct {
	client    *navexa.Client
	portfolio string
	stopsPath string
	logger    arbor.ILogger
}

// NewNavexaSource creates a Navexa-backed source for the named portfolio
func NewNavexaSource(client *navexa.Client, portfolio, stopsPath string, logger arbor.ILogger) *NavexaSource {
	return &NavexaSource{client: client, portfolio: portfolio, stopsPath: stopsPath, logger: logger}
}

// Name identifies the source
func (s *NavexaSource) Name() string { return SourceNavexa }

// Fetch converts Navexa holdings to positions. Stops come from the stops file.
func (s *NavexaSource) Fetch(ctx context.Context) models.PositionsResult {
	if !s.client.Configured() {
		return errorResult(SourceNavexa, errors.New("NAVEXA_API_KEY not set. Configure a Navexa key and retry."))
	}

	portfolio, err := s.client.GetPortfolioWithHoldings(ctx, s.portfolio)
	if err != nil {
		return errorResult(SourceNavexa, err)
	}

	positions := make([]models.Position, 0, len(portfolio.Holdings))
	for _, h := range portfolio.Holdings {
		qty := decimal.NewFromFloat(h.Quantity).Truncate(0)
		if !qty.IsPositive() {
			continue
		}
		value := decimal.NewFromFloat(h.CurrentValue)
		cost := decimal.NewFromFloat(h.TotalCost)

		p := models.Position{
			Ticker:       strings.ToUpper(h.Symbol),
			Quantity:     int(qty.IntPart()),
			Direction:    models.DirectionLong,
			CurrentPrice: value.Div(qty).RoundBank(2).InexactFloat64(),
			MarketValue:  floatPtr(value),
		}
		if cost.IsPositive() {
			pnl := value.Sub(cost)
			p.AvgCost = floatPtr(cost.Div(qty).RoundBank(4))
			p.PnL = floatPtr(pnl.RoundBank(2))
			p.PnLPct = floatPtr(pnl.Div(cost).Mul(decimal.NewFromInt(100)).RoundBank(2))
		}
		positions = append(positions, p)
	}
	sortPositions(positions)

	stops, err := LoadStops(s.stopsPath)
	if err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Str("path", s.stopsPath).Msg("Ignoring unreadable stops file")
	}
	ApplyStops(positions, stops, false)

	return models.PositionsResult{
		Positions: positions,
		Summary: models.PortfolioSummary{
			TotalValue: portfolio.TotalValue(),
		},
		Source: SourceNavexa,
	}
}
