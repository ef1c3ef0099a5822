package briefing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/riskos/internal/risk"
	"github.com/ternarybob/riskos/internal/signals"
)

func phase(v int) *int { return &v }

func TestAggregate_OrderingAndDedup(t *testing.T) {
	in := AggregateInput{
		Drawdown: risk.DrawdownReport{DailyPnLPct: -1.5, Alert: true},
		Stops: risk.StopReport{Alerts: []risk.StopAlert{
			{Ticker: "ZZZ", Status: risk.StopHit, CurrentPrice: 10, Stop: 11, PctToStop: -10},
			{Ticker: "XYZ", Status: risk.StopApproaching, CurrentPrice: 95, Stop: 92, PctToStop: 3.16},
		}},
		NewsAlerts: []string{"BBB: major - Guidance cut", "AAA: adversarial - Short report", "AAA: adversarial - Short report"},
		Phases: []signals.PhaseRecord{
			{Ticker: "CCC", Phase: 5, HullTrend: signals.HullRising, HullCross: signals.CrossNeutral},
			{Ticker: "AAA", Phase: 4, PreviousPhase: phase(3), HullTrend: signals.HullFalling, HullCross: signals.CrossNeutral},
			{Ticker: "DDD", Error: signals.ErrInsufficientData},
			{Ticker: "BBB", Phase: 3, PreviousPhase: phase(2), HullTrend: signals.HullFalling, HullCross: signals.CrossBearish},
		},
		Exposure: risk.ExposureReport{Flags: []risk.ConcentrationFlag{
			{Ticker: "AAA", WeightPct: 25, Reason: risk.ReasonConcentration},
		}},
		HardTransitions: DefaultTransitionPairs(),
	}

	set := Aggregate(in)

	assert.Equal(t, []string{
		"Portfolio daily move is -1.50% (hard-alert threshold breached).",
		"XYZ stop approaching: price $95.00, stop $92.00, distance +3.16%.",
		"ZZZ stop hit: price $10.00, stop $11.00, distance -10.00%.",
		"News alert: AAA: adversarial - Short report",
		"News alert: BBB: major - Guidance cut",
		"Phase alert: AAA phase transition 3 -> 4 (hard-alert transition).",
	}, set.Hard)

	assert.Equal(t, []string{
		"AAA is in Phase 4 (weakening trend; Hull is falling).",
		"BBB phase transition 2 -> 3.",
		"BBB remains Phase 3, but Hull slope is falling.",
		"BBB shows bearish HMA cross behavior.",
		"CCC is in Phase 5 (pullback below 10EMA while above 30SMA).",
		"AAA concentration at +25.00% (concentration).",
	}, set.Watch)

	assert.Equal(t, []string{"AAA phase transition 3 -> 4", "BBB phase transition 2 -> 3"}, set.Transitions)
}

func TestAggregate_CustomHardTransitions(t *testing.T) {
	in := AggregateInput{
		Phases: []signals.PhaseRecord{
			{Ticker: "AAA", Phase: 4, PreviousPhase: phase(3)},
			{Ticker: "BBB", Phase: 1, PreviousPhase: phase(2)},
		},
		HardTransitions: NewTransitionPairs([][]int{{2, 1}}),
	}

	set := Aggregate(in)
	assert.Equal(t, []string{"Phase alert: BBB phase transition 2 -> 1 (hard-alert transition)."}, set.Hard)
	assert.Contains(t, set.Watch, "AAA phase transition 3 -> 4.")
}

func TestAggregate_Empty(t *testing.T) {
	set := Aggregate(AggregateInput{})
	assert.NotNil(t, set.Hard)
	assert.Empty(t, set.Hard)
	assert.Empty(t, set.Watch)
	assert.Empty(t, set.Transitions)
}

func TestAggregate_UnchangedPhaseIsNotATransition(t *testing.T) {
	set := Aggregate(AggregateInput{Phases: []signals.PhaseRecord{
		{Ticker: "AAA", Phase: 2, PreviousPhase: phase(2)},
	}})
	assert.Empty(t, set.Transitions)
	assert.Empty(t, set.Watch)
}

func TestNewTransitionPairs(t *testing.T) {
	pairs := NewTransitionPairs([][]int{{1, 2}, {3}})
	assert.True(t, pairs.Has(1, 2))
	assert.False(t, pairs.Has(3, 4))

	defaults := NewTransitionPairs(nil)
	assert.True(t, defaults.Has(3, 4))
	assert.True(t, defaults.Has(4, 5))
	assert.False(t, defaults.Has(5, 4))
}

func TestUniqueLines(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, UniqueLines([]string{"b", "a", "b", "c", "a"}))
	assert.Equal(t, []string{}, UniqueLines(nil))
}

func TestChooseActionableThought(t *testing.T) {
	records := []signals.PhaseRecord{
		{Ticker: "MSFT", Phase: 5},
		{Ticker: "AAPL", Phase: 4},
		{Ticker: "NVDA", Phase: 3},
		{Ticker: "XOM", Error: signals.ErrInsufficientData},
	}

	tests := []struct {
		name    string
		hard    []string
		records []signals.PhaseRecord
		want    string
	}{
		{"hard alerts win", []string{"x"}, records, "Address hard alerts first before considering new entries."},
		{"weakening", nil, records, "Trend is weakening on AAPL, MSFT; review stop placement and position size."},
		{"phase 3 only", nil, []signals.PhaseRecord{{Ticker: "NVDA", Phase: 3}, {Ticker: "AMD", Phase: 3}},
			"Phase 3 names (AMD, NVDA) remain in the long-entry zone; wait for high-quality setups."},
		{"nothing", nil, []signals.PhaseRecord{{Ticker: "T", Phase: 1}}, ""},
		{"no records", nil, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChooseActionableThought(tt.hard, tt.records))
		})
	}
}
