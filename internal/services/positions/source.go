// Package positions provides the portfolio position sources: the Schwab Trader API,
// Navexa, a local snapshot file and Schwab CSV exports.
package positions

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/common"
	"github.com/ternarybob/riskos/internal/models"
	"github.com/ternarybob/riskos/internal/services/navexa"
)

// Source names, as recorded in PositionsResult.Source
const (
	SourceSchwab = "schwab"
	SourceNavexa = "navexa"
	SourceFile   = "file"
	SourceCSV    = "csv"
)

// Source fetches the current portfolio. Failures are reported in the result's
// Error field with an empty position list; Fetch never panics on upstream data.
type Source interface {
	Name() string
	Fetch(ctx context.Context) models.PositionsResult
}

// NewSource builds the configured position source
func NewSource(config common.PositionsConfig, logger arbor.ILogger) (Source, error) {
	switch config.Source {
	case SourceSchwab:
		return NewSchwabSource(config, logger), nil
	case SourceNavexa:
		client := navexa.NewClient(config.Navexa.APIKey,
			navexa.WithBaseURL(config.Navexa.BaseURL),
			navexa.WithRateLimit(config.Navexa.RateLimit),
			navexa.WithLogger(logger),
		)
		return NewNavexaSource(client, config.Navexa.Portfolio, config.StopsPath, logger), nil
	case SourceFile:
		return NewFileSource(config.SnapshotPath, config.StopsPath, logger), nil
	default:
		return nil, fmt.Errorf("unsupported positions source '%s'", config.Source)
	}
}

func errorResult(source string, err error) models.PositionsResult {
	return models.PositionsResult{
		Positions: []models.Position{},
		Source:    source,
		Error:     err.Error(),
	}
}
