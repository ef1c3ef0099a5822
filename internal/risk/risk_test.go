package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/riskos/internal/models"
)

func TestCheckStops_Approaching(t *testing.T) {
	report := CheckStops([]models.Position{
		{Ticker: "XYZ", Quantity: 10, CurrentPrice: 95, Stop: models.Float(92)},
	}, 5.0)

	require.Len(t, report.Alerts, 1)
	alert := report.Alerts[0]
	assert.Equal(t, "XYZ", alert.Ticker)
	assert.Equal(t, StopApproaching, alert.Status)
	assert.Equal(t, 3.16, alert.PctToStop)
	assert.Equal(t, 95.0, alert.CurrentPrice)
	assert.Equal(t, 92.0, alert.Stop)
	assert.Empty(t, report.Error)
}

func TestCheckStops_Statuses(t *testing.T) {
	tests := []struct {
		name       string
		price      float64
		stop       float64
		wantStatus string // empty = not reported
		wantPct    float64
	}{
		{"price equal to stop is hit", 50, 50, StopHit, 0},
		{"price below stop is hit", 48, 50, StopHit, -4.17},
		{"exactly at threshold is approaching", 100, 95, StopApproaching, 5},
		{"just outside threshold is ok", 100, 94.99, "", 0},
		{"far from stop is ok", 100, 80, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := CheckStops([]models.Position{
				{Ticker: "abc", Quantity: 1, CurrentPrice: tt.price, Stop: models.Float(tt.stop)},
			}, 5.0)

			if tt.wantStatus == "" {
				assert.Empty(t, report.Alerts)
				return
			}
			require.Len(t, report.Alerts, 1)
			assert.Equal(t, "ABC", report.Alerts[0].Ticker)
			assert.Equal(t, tt.wantStatus, report.Alerts[0].Status)
			assert.Equal(t, tt.wantPct, report.Alerts[0].PctToStop)
		})
	}
}

func TestCheckStops_SkipsUnusableRows(t *testing.T) {
	report := CheckStops([]models.Position{
		{Ticker: "NOSTOP", Quantity: 1, CurrentPrice: 10},
		{Ticker: "NOPRICE", Quantity: 1, CurrentPrice: 0, Stop: models.Float(9)},
		{Ticker: "ZEROSTOP", Quantity: 1, CurrentPrice: 10, Stop: models.Float(0)},
	}, 5.0)

	assert.Empty(t, report.Alerts)
	assert.Equal(t, 0, report.Checked)
	assert.Empty(t, report.Error)
}

func TestCheckStops_SortedByTicker(t *testing.T) {
	report := CheckStops([]models.Position{
		{Ticker: "ZZZ", Quantity: 1, CurrentPrice: 10, Stop: models.Float(10)},
		{Ticker: "AAA", Quantity: 1, CurrentPrice: 10, Stop: models.Float(9.8)},
	}, 5.0)

	require.Len(t, report.Alerts, 2)
	assert.Equal(t, "AAA", report.Alerts[0].Ticker)
	assert.Equal(t, "ZZZ", report.Alerts[1].Ticker)
}

func TestCheckStops_NoPositions(t *testing.T) {
	report := CheckStops(nil, 5.0)
	assert.Equal(t, ErrNoPositions, report.Error)
	assert.NotNil(t, report.Alerts)
	assert.Empty(t, report.Alerts)
}

func TestCheckDrawdown(t *testing.T) {
	tests := []struct {
		name      string
		daily     *float64
		wantAlert bool
	}{
		{"breach", models.Float(-1.5), true},
		{"exactly at threshold", models.Float(-1.0), false},
		{"up day", models.Float(0.8), false},
		{"not reported", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := CheckDrawdown(models.PortfolioSummary{TotalValue: 1000, DailyPnLPct: tt.daily}, 1.0)
			assert.Equal(t, tt.wantAlert, report.Alert)
		})
	}

	report := CheckDrawdown(models.PortfolioSummary{}, 1.0)
	assert.Equal(t, 0.0, report.DailyPnLPct)
	assert.Equal(t, ErrDailyNotReported, report.Error)
}

func TestCheckConcentration(t *testing.T) {
	summary := models.PortfolioSummary{TotalValue: 100}
	report := CheckConcentration([]models.Position{
		{Ticker: "BIG", Quantity: 1, CurrentPrice: 25, MarketValue: models.Float(25)},
		{Ticker: "EDGE", Quantity: 2, CurrentPrice: 10},
		{Ticker: "SMALL", Quantity: 1, CurrentPrice: 5},
	}, summary, 20.0)

	assert.Equal(t, 3, report.Positions)
	assert.Equal(t, 100.0, report.TotalValue)
	require.Len(t, report.Flags, 1, "a weight equal to the threshold is not flagged")
	assert.Equal(t, ConcentrationFlag{Ticker: "BIG", WeightPct: 25.0, Reason: ReasonConcentration}, report.Flags[0])
}

func TestCheckConcentration_DerivedMarketValue(t *testing.T) {
	report := CheckConcentration([]models.Position{
		{Ticker: "XYZ", Quantity: 3, CurrentPrice: 33.33},
	}, models.PortfolioSummary{TotalValue: 300}, 20.0)

	require.Len(t, report.Flags, 1)
	// 99.99 / 300 = 33.33%
	assert.Equal(t, 33.3, report.Flags[0].WeightPct)
}

func TestCheckConcentration_NonPositiveTotal(t *testing.T) {
	report := CheckConcentration([]models.Position{
		{Ticker: "XYZ", Quantity: 10, CurrentPrice: 100},
	}, models.PortfolioSummary{TotalValue: 0}, 20.0)

	assert.Empty(t, report.Flags)
	assert.Equal(t, 1, report.Positions)
}
