package briefing

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/riskos/internal/models"
	"github.com/ternarybob/riskos/internal/risk"
	"github.com/ternarybob/riskos/internal/signals"
)

func TestBuildExternalEvents(t *testing.T) {
	headlines := []models.Headline{
		{Ticker: "AAA", Title: "old major", Source: "wire", PublishedAt: "2024-03-01T08:00:00Z", Score: models.ScoreMajor},
		{Ticker: "AAA", Title: "just relevant", Source: "wire", PublishedAt: "2024-03-01T11:00:00Z", Score: models.ScoreRelevant},
		{Ticker: "BBB", Title: "fraud probe", PublishedAt: "2024-03-01T10:00:00Z", Score: models.ScoreAdversarial},
		{Ticker: "", Title: "fed holds", Source: "wire", PublishedAt: "2024-03-01T09:00:00Z", Score: models.ScoreMacro},
		{Ticker: "BBB", Title: "fraud probe", PublishedAt: "2024-03-01T10:00:00Z", Score: models.ScoreAdversarial},
	}

	assert.Equal(t, []string{
		"BBB: [adversarial] fraud probe (unknown)",
		"?: [macro] fed holds (wire)",
		"AAA: [major] old major (wire)",
	}, BuildExternalEvents(headlines, 8))

	assert.Equal(t, []string{"BBB: [adversarial] fraud probe (unknown)"}, BuildExternalEvents(headlines, 2),
		"the limit applies before duplicates collapse")
	assert.Empty(t, BuildExternalEvents(nil, 0))
}

func compileFixture(loaded bool) CompileInput {
	headline := models.Headline{Ticker: "XYZ", Title: "XYZ cuts guidance", Source: "wire", PublishedAt: "2024-03-01T09:00:00Z", Score: models.ScoreMajor}
	return CompileInput{
		AsOfDate:    "2024-03-01",
		GeneratedAt: time.Date(2024, 3, 1, 11, 30, 0, 0, time.UTC),
		RunID:       "run-1",
		Inputs: Inputs{
			Positions: models.PositionsResult{
				Positions: []models.Position{{Ticker: "XYZ", Quantity: 10, CurrentPrice: 95, Stop: models.Float(92)}},
				Summary:   models.PortfolioSummary{TotalValue: 1234.5, DailyPnLPct: models.Float(-0.256)},
			},
			Drawdown: risk.DrawdownReport{DailyPnLPct: -0.256},
			Phases:   PhasesResult{Phases: []signals.PhaseRecord{{Ticker: "XYZ", Phase: 3}}},
			News:     models.NewsResult{Headlines: []models.Headline{headline}, Alerts: []string{}},
		},
		Alerts: AlertSet{
			Hard:  []string{"XYZ stop approaching: price $95.00, stop $92.00, distance +3.16%."},
			Watch: []string{},
		},
		Deltas: ComputeDeltas(State{NewsHashes: []string{Fingerprint(headline)}}, loaded, nil, []models.Headline{headline}),
	}
}

func TestCompile(t *testing.T) {
	report := Compile(compileFixture(false))

	assert.Equal(t, "2024-03-01", report.AsOfDate)
	assert.Equal(t, "2024-03-01T11:30:00Z", report.GeneratedAt)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, PortfolioSnapshot{TotalValue: 1234.5, DailyPnLPct: -0.26, Positions: 1, HardAlertCount: 1}, report.Portfolio)
	assert.Equal(t, "$1,234.50 total | daily move -0.26% | 1 positions | 1 hard alerts", report.SummaryLine)
	assert.Equal(t, []string{"Baseline run: no previous state found."}, report.Sections.ChangesSinceLastRun)
	assert.Equal(t, []string{"XYZ: [major] XYZ cuts guidance (wire)"}, report.Sections.ExternalEvents, "baseline shows every headline")
	require.NotNil(t, report.Sections.ActionableThought)
	assert.Equal(t, "Address hard alerts first before considering new entries.", *report.Sections.ActionableThought)
	assert.Equal(t, 0, report.Deltas.NewHeadlinesCount)
}

func TestCompile_LoadedStateShowsOnlyNewHeadlines(t *testing.T) {
	report := Compile(compileFixture(true))
	assert.Empty(t, report.Sections.ExternalEvents)
	assert.Equal(t, []string{"New scored headlines since last run: 0"}, report.Sections.ChangesSinceLastRun)
}

func TestCompile_JSONShape(t *testing.T) {
	in := compileFixture(false)
	in.Alerts = AlertSet{}
	in.Inputs.Phases = PhasesResult{Phases: []signals.PhaseRecord{}}
	report := Compile(in)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"asOfDate", "generatedAt", "runId", "portfolio", "summaryLine", "sections", "deltas", "inputs"} {
		assert.Contains(t, decoded, key)
	}
	sections := decoded["sections"].(map[string]interface{})
	assert.Nil(t, sections["actionableThought"])
	assert.Equal(t, []interface{}{}, sections["immediateActions"])

	inputs := decoded["inputs"].(map[string]interface{})
	for _, key := range []string{"positions", "stops", "drawdown", "exposure", "phases", "news"} {
		assert.Contains(t, inputs, key)
	}
}

func TestRenderMarkdown(t *testing.T) {
	report := &Report{
		AsOfDate:    "2024-03-01",
		GeneratedAt: "2024-03-01T11:30:00Z",
		SummaryLine: "$0.00 total | daily move 0.00% | 0 positions | 0 hard alerts",
		Sections: Sections{
			ChangesSinceLastRun: []string{"Baseline run: no previous state found."},
			WatchlistFlags:      []string{"AAA is in Phase 4 (weakening trend; Hull is falling)."},
		},
	}

	want := strings.Join([]string{
		"# Morning Briefing - 2024-03-01",
		"",
		"Generated: 2024-03-01T11:30:00Z",
		"",
		"Portfolio health snapshot: $0.00 total | daily move 0.00% | 0 positions | 0 hard alerts",
		"",
		"## Changes since previous run",
		"- Baseline run: no previous state found.",
		"",
		"## Immediate actions",
		"- None.",
		"",
		"## Watchlist flags",
		"- AAA is in Phase 4 (weakening trend; Hull is falling).",
		"",
		"## External events tied to holdings",
		"- None.",
		"",
		"## One actionable thought",
		"No high-confidence action today.",
		"",
	}, "\n")
	assert.Equal(t, want, RenderMarkdown(report))
}

func TestWriteArtifacts_OverwritesOnRerun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "briefings")
	report := Compile(compileFixture(false))

	artifacts, err := WriteArtifacts(dir, report, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024-03-01.json"), artifacts.JSON)
	assert.Equal(t, filepath.Join(dir, "2024-03-01.md"), artifacts.Markdown)

	report.RunID = "run-2"
	_, err = WriteArtifacts(dir, report, true)
	require.NoError(t, err)

	data, err := os.ReadFile(artifacts.JSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"runId": "run-2"`)

	page, err := os.ReadFile(artifacts.HTML)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Morning Briefing - 2024-03-01</title>")
	assert.Contains(t, string(page), "<h2 id=\"immediate-actions\">Immediate actions</h2>")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestWriteArtifacts_Unwritable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := WriteArtifacts(filepath.Join(file, "out"), Compile(compileFixture(false)), false)
	assert.Error(t, err)
}
