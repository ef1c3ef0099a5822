package briefing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/riskos/internal/risk"
	"github.com/ternarybob/riskos/internal/signals"
)

// NoActionThought is rendered when no actionable thought applies
const NoActionThought = "No high-confidence action today."

// TransitionPairs is the set of (previous, current) phase transitions that raise a hard alert
type TransitionPairs map[[2]int]bool

// DefaultTransitionPairs returns {(3,4), (4,5)}
func DefaultTransitionPairs() TransitionPairs {
	return TransitionPairs{{3, 4}: true, {4, 5}: true}
}

// NewTransitionPairs builds the set from [[from, to], ...]; malformed pairs are skipped
// and an empty result falls back to the defaults.
func NewTransitionPairs(pairs [][]int) TransitionPairs {
	set := make(TransitionPairs, len(pairs))
	for _, pair := range pairs {
		if len(pair) == 2 {
			set[[2]int{pair[0], pair[1]}] = true
		}
	}
	if len(set) == 0 {
		return DefaultTransitionPairs()
	}
	return set
}

// Has reports whether from -> to is a hard transition
func (t TransitionPairs) Has(from, to int) bool {
	return t[[2]int{from, to}]
}

// AggregateInput carries the evaluated inputs of one run.
// Phase records must already carry PreviousPhase (see ComputeDeltas).
type AggregateInput struct {
	Drawdown        risk.DrawdownReport
	Stops           risk.StopReport
	NewsAlerts      []string
	Phases          []signals.PhaseRecord
	Exposure        risk.ExposureReport
	HardTransitions TransitionPairs
}

// AlertSet holds the ordered, de-duplicated alert lines of one run
type AlertSet struct {
	Hard        []string
	Watch       []string
	Transitions []string
}

// UniqueLines removes repeated lines, keeping the first occurrence
func UniqueLines(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}

// classifiedSorted returns the classified records sorted by ticker
func classifiedSorted(records []signals.PhaseRecord) []signals.PhaseRecord {
	rows := make([]signals.PhaseRecord, 0, len(records))
	for _, r := range records {
		if r.OK() {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Ticker < rows[j].Ticker })
	return rows
}

func transitionLine(r signals.PhaseRecord) string {
	return fmt.Sprintf("%s phase transition %d -> %d", r.Ticker, *r.PreviousPhase, r.Phase)
}

// PhaseTransitions lists "{T} phase transition {p} -> {c}" for classified records whose phase changed
func PhaseTransitions(records []signals.PhaseRecord) []string {
	lines := []string{}
	for _, r := range classifiedSorted(records) {
		if r.PreviousPhase != nil && *r.PreviousPhase != r.Phase {
			lines = append(lines, transitionLine(r))
		}
	}
	return lines
}

// Aggregate builds the hard alert and watch flag lists.
// Hard: drawdown, stops by ticker, news alerts sorted, hard phase transitions.
// Watch: per phase row (by ticker) the soft transition, phase state and bearish cross
// lines, then concentration flags by ticker.
func Aggregate(in AggregateInput) AlertSet {
	pairs := in.HardTransitions
	if pairs == nil {
		pairs = DefaultTransitionPairs()
	}

	set := AlertSet{Hard: []string{}, Watch: []string{}, Transitions: []string{}}

	if in.Drawdown.Alert {
		set.Hard = append(set.Hard, fmt.Sprintf("Portfolio daily move is %s (hard-alert threshold breached).",
			FormatPercent(in.Drawdown.DailyPnLPct)))
	}

	stops := append([]risk.StopAlert(nil), in.Stops.Alerts...)
	sort.SliceStable(stops, func(i, j int) bool { return stops[i].Ticker < stops[j].Ticker })
	for _, a := range stops {
		set.Hard = append(set.Hard, fmt.Sprintf("%s stop %s: price %s, stop %s, distance %s.",
			a.Ticker, a.Status, FormatCurrency(a.CurrentPrice), FormatCurrency(a.Stop), FormatPercent(a.PctToStop)))
	}

	news := append([]string(nil), in.NewsAlerts...)
	sort.Strings(news)
	for _, alert := range news {
		set.Hard = append(set.Hard, "News alert: "+alert)
	}

	for _, r := range classifiedSorted(in.Phases) {
		if r.PreviousPhase != nil && *r.PreviousPhase != r.Phase {
			transition := transitionLine(r)
			set.Transitions = append(set.Transitions, transition)
			if pairs.Has(*r.PreviousPhase, r.Phase) {
				set.Hard = append(set.Hard, fmt.Sprintf("Phase alert: %s (hard-alert transition).", transition))
			} else {
				set.Watch = append(set.Watch, transition+".")
			}
		}

		switch {
		case r.Phase == 4:
			set.Watch = append(set.Watch, fmt.Sprintf("%s is in Phase 4 (weakening trend; Hull is falling).", r.Ticker))
		case r.Phase == 5:
			set.Watch = append(set.Watch, fmt.Sprintf("%s is in Phase 5 (pullback below 10EMA while above 30SMA).", r.Ticker))
		case r.Phase == 3 && r.HullTrend == signals.HullFalling:
			set.Watch = append(set.Watch, fmt.Sprintf("%s remains Phase 3, but Hull slope is falling.", r.Ticker))
		}
		if r.HullCross == signals.CrossBearish {
			set.Watch = append(set.Watch, fmt.Sprintf("%s shows bearish HMA cross behavior.", r.Ticker))
		}
	}

	flags := append([]risk.ConcentrationFlag(nil), in.Exposure.Flags...)
	sort.SliceStable(flags, func(i, j int) bool { return flags[i].Ticker < flags[j].Ticker })
	for _, f := range flags {
		set.Watch = append(set.Watch, fmt.Sprintf("%s concentration at %s (%s).", f.Ticker, FormatPercent(f.WeightPct), f.Reason))
	}

	set.Hard = UniqueLines(set.Hard)
	set.Watch = UniqueLines(set.Watch)
	return set
}

// ChooseActionableThought picks the single closing recommendation. Hard alerts always
// win; then weakening trends (phase 4/5), then phase 3 entries. Returns "" when none applies.
func ChooseActionableThought(hard []string, records []signals.PhaseRecord) string {
	if len(hard) > 0 {
		return "Address hard alerts first before considering new entries."
	}

	var weakening, entries []string
	for _, r := range records {
		if !r.OK() || r.Ticker == "" {
			continue
		}
		switch r.Phase {
		case 4, 5:
			weakening = append(weakening, r.Ticker)
		case 3:
			entries = append(entries, r.Ticker)
		}
	}
	sort.Strings(weakening)
	sort.Strings(entries)

	switch {
	case len(weakening) > 0:
		return fmt.Sprintf("Trend is weakening on %s; review stop placement and position size.", strings.Join(weakening, ", "))
	case len(entries) > 0:
		return fmt.Sprintf("Phase 3 names (%s) remain in the long-entry zone; wait for high-quality setups.", strings.Join(entries, ", "))
	}
	return ""
}
