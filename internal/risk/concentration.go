package risk

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/riskos/internal/models"
)

// ReasonConcentration is the only re-evaluation reason currently raised
const ReasonConcentration = "concentration"

// ConcentrationFlag marks a position whose weight exceeds the warning threshold
type ConcentrationFlag struct {
	Ticker    string  `json:"ticker"`
	WeightPct float64 `json:"weightPct"`
	Reason    string  `json:"reason"`
}

// ExposureReport summarizes portfolio weights
type ExposureReport struct {
	Positions    int                 `json:"positions"`
	TotalValue   float64             `json:"totalValue"`
	ThresholdPct float64             `json:"thresholdPct"`
	Flags        []ConcentrationFlag `json:"reEvalFlags"`
}

// MarketValue returns the explicit market value, or quantity x current price when absent
func MarketValue(p models.Position) decimal.Decimal {
	if p.MarketValue != nil {
		return dec(*p.MarketValue)
	}
	return decimal.NewFromInt(int64(p.Quantity)).Mul(dec(p.CurrentPrice))
}

// CheckConcentration flags positions whose share of the portfolio total is above
// thresholdPct. Weights are quantized to 1 place (banker's rounding) before the
// comparison. A non-positive total yields no flags.
func CheckConcentration(positions []models.Position, summary models.PortfolioSummary, thresholdPct float64) ExposureReport {
	report := ExposureReport{
		Positions:    len(positions),
		TotalValue:   summary.TotalValue,
		ThresholdPct: thresholdPct,
		Flags:        []ConcentrationFlag{},
	}

	total := dec(summary.TotalValue)
	if !total.IsPositive() {
		return report
	}

	threshold := dec(thresholdPct)
	for _, p := range positions {
		weight := MarketValue(p).Div(total).Mul(hundred).RoundBank(1)
		if weight.GreaterThan(threshold) {
			report.Flags = append(report.Flags, ConcentrationFlag{
				Ticker:    strings.ToUpper(p.Ticker),
				WeightPct: weight.InexactFloat64(),
				Reason:    ReasonConcentration,
			})
		}
	}

	sort.SliceStable(report.Flags, func(i, j int) bool {
		return report.Flags[i].Ticker < report.Flags[j].Ticker
	})
	return report
}
