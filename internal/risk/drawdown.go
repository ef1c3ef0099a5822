package risk

import "github.com/ternarybob/riskos/internal/models"

// ErrDailyNotReported marks a summary without a daily move; it is evaluated as 0
const ErrDailyNotReported = "Daily P&L not reported"

// DrawdownReport is the portfolio daily drawdown check result
type DrawdownReport struct {
	DailyPnLPct  float64 `json:"dailyPnlPct"`
	ThresholdPct float64 `json:"thresholdPct"`
	Alert        bool    `json:"alert"`
	Error        string  `json:"error,omitempty"`
}

// CheckDrawdown raises an alert when the daily move is below -thresholdPct
func CheckDrawdown(summary models.PortfolioSummary, thresholdPct float64) DrawdownReport {
	report := DrawdownReport{ThresholdPct: thresholdPct}
	if summary.DailyPnLPct == nil {
		report.Error = ErrDailyNotReported
	}

	daily := decPtr(summary.DailyPnLPct)
	report.DailyPnLPct = daily.InexactFloat64()
	report.Alert = daily.LessThan(dec(thresholdPct).Neg())
	return report
}
