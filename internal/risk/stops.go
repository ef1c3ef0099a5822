package risk

import (
	"sort"
	"strings"

	"github.com/ternarybob/riskos/internal/models"
)

// Stop statuses reported in alerts. "ok" positions are not reported.
const (
	StopHit         = "hit"
	StopApproaching = "approaching"
)

// ErrNoPositions is reported when there is nothing to evaluate
const ErrNoPositions = "No positions"

// StopAlert is a position trading at or near its protective stop
type StopAlert struct {
	Ticker       string  `json:"ticker"`
	Status       string  `json:"status"`
	CurrentPrice float64 `json:"currentPrice"`
	Stop         float64 `json:"stop"`
	PctToStop    float64 `json:"pctToStop"`
}

// StopReport is the stop proximity check result
type StopReport struct {
	Alerts       []StopAlert `json:"alerts"`
	Checked      int         `json:"checked"`
	ThresholdPct float64     `json:"thresholdPct"`
	Error        string      `json:"error,omitempty"`
}

// CheckStops reports positions whose price is at or below the stop (hit) or within
// thresholdPct of it (approaching). pctToStop = (price - stop) / price * 100,
// quantized to 2 places with banker's rounding. Positions without a usable stop
// or price are skipped. Alerts are sorted by ticker.
func CheckStops(positions []models.Position, thresholdPct float64) StopReport {
	report := StopReport{Alerts: []StopAlert{}, ThresholdPct: thresholdPct}
	if len(positions) == 0 {
		report.Error = ErrNoPositions
		return report
	}

	threshold := dec(thresholdPct)
	for _, p := range positions {
		if p.Stop == nil || p.CurrentPrice <= 0 || *p.Stop <= 0 {
			continue
		}
		report.Checked++

		current := dec(p.CurrentPrice)
		stop := dec(*p.Stop)
		pct := current.Sub(stop).Div(current).Mul(hundred).RoundBank(2)

		var status string
		switch {
		case current.LessThanOrEqual(stop):
			status = StopHit
		case pct.LessThanOrEqual(threshold):
			status = StopApproaching
		default:
			continue
		}

		report.Alerts = append(report.Alerts, StopAlert{
			Ticker:       strings.ToUpper(p.Ticker),
			Status:       status,
			CurrentPrice: p.CurrentPrice,
			Stop:         *p.Stop,
			PctToStop:    pct.InexactFloat64(),
		})
	}

	sort.SliceStable(report.Alerts, func(i, j int) bool {
		return report.Alerts[i].Ticker < report.Alerts[j].Ticker
	})
	return report
}
