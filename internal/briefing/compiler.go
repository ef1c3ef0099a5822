package briefing

import (
	"fmt"
	"time"

	"github.com/ternarybob/riskos/internal/models"
	"github.com/ternarybob/riskos/internal/risk"
	"github.com/ternarybob/riskos/internal/signals"
)

// PhasesResult is the phase engine payload recorded under inputs
type PhasesResult struct {
	Phases []signals.PhaseRecord `json:"phases"`
	Status string                `json:"status,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// PortfolioSnapshot is the headline numbers of the report
type PortfolioSnapshot struct {
	TotalValue     float64 `json:"totalValue"`
	DailyPnLPct    float64 `json:"dailyPnlPct"`
	Positions      int     `json:"positions"`
	HardAlertCount int     `json:"hardAlertCount"`
}

// Sections are the rendered report sections, in display order
type Sections struct {
	ChangesSinceLastRun []string `json:"changesSinceLastRun"`
	ImmediateActions    []string `json:"immediateActions"`
	WatchlistFlags      []string `json:"watchlistFlags"`
	ExternalEvents      []string `json:"externalEvents"`
	ActionableThought   *string  `json:"actionableThought"`
}

// DeltaSummary is the machine-readable change summary
type DeltaSummary struct {
	PhaseTransitions  []string `json:"phaseTransitions"`
	NewHeadlinesCount int      `json:"newHeadlinesCount"`
}

// Inputs records every collaborator and evaluator payload the report was built from
type Inputs struct {
	Positions models.PositionsResult `json:"positions"`
	Stops     risk.StopReport        `json:"stops"`
	Drawdown  risk.DrawdownReport    `json:"drawdown"`
	Exposure  risk.ExposureReport    `json:"exposure"`
	Phases    PhasesResult           `json:"phases"`
	News      models.NewsResult      `json:"news"`
}

// Report is the briefing artifact for one as-of date
type Report struct {
	AsOfDate    string            `json:"asOfDate"`
	GeneratedAt string            `json:"generatedAt"`
	RunID       string            `json:"runId"`
	Portfolio   PortfolioSnapshot `json:"portfolio"`
	SummaryLine string            `json:"summaryLine"`
	Sections    Sections          `json:"sections"`
	Deltas      DeltaSummary      `json:"deltas"`
	Inputs      Inputs            `json:"inputs"`
}

// Thought returns the actionable thought as rendered text
func (r *Report) Thought() string {
	if r.Sections.ActionableThought == nil || *r.Sections.ActionableThought == "" {
		return NoActionThought
	}
	return *r.Sections.ActionableThought
}

// CompileInput is everything one run has evaluated
type CompileInput struct {
	AsOfDate           string
	GeneratedAt        time.Time
	RunID              string
	Inputs             Inputs
	Alerts             AlertSet
	Deltas             Deltas
	ExternalEventLimit int
}

// SnapshotLine renders "{$total} total | daily move {pct} | {n} positions | {k} hard alerts"
func SnapshotLine(totalValue, dailyPnLPct float64, positions, hardAlerts int) string {
	return fmt.Sprintf("%s total | daily move %s | %d positions | %d hard alerts",
		FormatCurrency(totalValue), FormatPercent(dailyPnLPct), positions, hardAlerts)
}

// Compile assembles the report. It is a pure function of its input.
// External events come from every headline on a baseline run and only from new ones afterwards.
func Compile(in CompileInput) *Report {
	positions := in.Inputs.Positions
	total := positions.Summary.TotalValue
	if total == 0 {
		total = in.Inputs.Exposure.TotalValue
	}
	daily := in.Inputs.Drawdown.DailyPnLPct
	count := len(positions.Positions)

	eventSource := in.Inputs.News.Headlines
	if in.Deltas.StateLoaded {
		eventSource = in.Deltas.NewHeadlines
	}

	var thought *string
	if t := ChooseActionableThought(in.Alerts.Hard, in.Inputs.Phases.Phases); t != "" {
		thought = &t
	}

	transitions := in.Alerts.Transitions
	if transitions == nil {
		transitions = []string{}
	}

	return &Report{
		AsOfDate:    in.AsOfDate,
		GeneratedAt: in.GeneratedAt.UTC().Format(time.RFC3339),
		RunID:       in.RunID,
		Portfolio: PortfolioSnapshot{
			TotalValue:     q2(total).InexactFloat64(),
			DailyPnLPct:    q2(daily).InexactFloat64(),
			Positions:      count,
			HardAlertCount: len(in.Alerts.Hard),
		},
		SummaryLine: SnapshotLine(total, daily, count, len(in.Alerts.Hard)),
		Sections: Sections{
			ChangesSinceLastRun: in.Deltas.Lines(),
			ImmediateActions:    nonNil(in.Alerts.Hard),
			WatchlistFlags:      nonNil(in.Alerts.Watch),
			ExternalEvents:      BuildExternalEvents(eventSource, in.ExternalEventLimit),
			ActionableThought:   thought,
		},
		Deltas: DeltaSummary{
			PhaseTransitions:  transitions,
			NewHeadlinesCount: len(in.Deltas.NewHeadlines),
		},
		Inputs: in.Inputs,
	}
}

func nonNil(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}
