package briefing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/common"
	"github.com/ternarybob/riskos/internal/models"
	"github.com/ternarybob/riskos/internal/risk"
	"github.com/ternarybob/riskos/internal/signals"
	"golang.org/x/sync/errgroup"
)

// StatusNoTickers marks phase and news payloads skipped for an empty portfolio
const StatusNoTickers = "No tickers"

// PositionSource supplies the current portfolio
type PositionSource interface {
	Fetch(ctx context.Context) models.PositionsResult
}

// PriceSource supplies daily closes per ticker
type PriceSource interface {
	Closes(ctx context.Context, tickers []string) map[string]models.SeriesResult
}

// NewsSource supplies scored headlines for the held tickers
type NewsSource interface {
	Fetch(ctx context.Context, tickers []string, since string, useCache bool) models.NewsResult
}

// Settings are the thresholds and limits of a briefing run
type Settings struct {
	StopApproachingPct    float64
	PortfolioDailyDownPct float64
	ConcentrationWarnPct  float64
	HardTransitions       TransitionPairs
	ExternalEventLimit    int
	HistoryCap            int
	OutputDir             string
	NewsSince             string
	RenderHTML            bool
	PositionsTimeout      time.Duration
	PricesTimeout         time.Duration
	NewsTimeout           time.Duration
}

// SettingsFromConfig maps the application config onto run settings
func SettingsFromConfig(config *common.Config) Settings {
	return Settings{
		StopApproachingPct:    config.Risk.StopApproachingPct,
		PortfolioDailyDownPct: config.Risk.PortfolioDailyDownPct,
		ConcentrationWarnPct:  config.Risk.ConcentrationWarnPct,
		HardTransitions:       NewTransitionPairs(config.Risk.PhaseTransitionPairs),
		ExternalEventLimit:    config.Briefing.ExternalEventLimit,
		HistoryCap:            config.Briefing.HistoryCap,
		OutputDir:             config.Briefing.OutputDir,
		NewsSince:             config.Briefing.NewsSince,
		RenderHTML:            config.Briefing.RenderHTML,
		PositionsTimeout:      common.ParseDuration(config.Positions.Timeout, 120*time.Second),
		PricesTimeout:         common.ParseDuration(config.Prices.Timeout, 240*time.Second),
		NewsTimeout:           common.ParseDuration(config.News.Timeout, 180*time.Second),
	}
}

// RunOptions are per-invocation overrides. Empty values use the settings.
type RunOptions struct {
	AsOfDate    string
	Since       string
	OutputDir   string
	NoNewsCache bool
}

// RunResult summarizes a completed run
type RunResult struct {
	Report       *Report
	Artifacts    Artifacts
	StatePath    string
	StateSaved   bool
	WatchFlags   int
	NewHeadlines int
}

// Runner executes the briefing pipeline: positions, then prices and news in parallel,
// then the pure risk, phase, aggregation and compile stages, then the artifact and state writes.
type Runner struct {
	positions PositionSource
	prices    PriceSource
	news      NewsSource
	analyzer  *signals.PhaseAnalyzer
	state     *StateStore
	settings  Settings
	logger    arbor.ILogger
	now       func() time.Time
	newRunID  func() string
}

// NewRunner creates a runner. prices or news may be nil, in which case their
// sections are reported as unavailable.
func NewRunner(positions PositionSource, prices PriceSource, news NewsSource, analyzer *signals.PhaseAnalyzer,
	state *StateStore, settings Settings, logger arbor.ILogger) *Runner {
	if analyzer == nil {
		analyzer = signals.NewPhaseAnalyzer(signals.DefaultPhaseConfig())
	}
	if logger == nil {
		logger = arbor.NewLogger()
	}
	return &Runner{
		positions: positions,
		prices:    prices,
		news:      news,
		analyzer:  analyzer,
		state:     state,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
		newRunID:  func() string { return uuid.New().String() },
	}
}

// Run produces and writes one briefing. The only error returned is a failed artifact write.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	startedAt := r.now()
	runID := r.newRunID()

	asOf := opts.AsOfDate
	if asOf == "" {
		asOf = startedAt.Format("2006-01-02")
	}
	since := opts.Since
	if since == "" {
		since = r.settings.NewsSince
	}
	if since == "" {
		since = "24h"
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = r.settings.OutputDir
	}

	logger := r.logger
	logger.Info().Str("run_id", runID).Str("as_of", asOf).Str("since", since).Msg("Starting morning briefing")

	prev, loaded := r.state.Load()

	positions := r.fetchPositions(ctx)
	if positions.Error != "" {
		logger.Warn().Str("run_id", runID).Str("error", positions.Error).Msg("Position source unavailable")
	}
	tickers := positions.Tickers()

	phases, news := r.fanOut(ctx, tickers, since, !opts.NoNewsCache)

	stops := risk.CheckStops(positions.Positions, r.settings.StopApproachingPct)
	drawdown := risk.CheckDrawdown(positions.Summary, r.settings.PortfolioDailyDownPct)
	exposure := risk.CheckConcentration(positions.Positions, positions.Summary, r.settings.ConcentrationWarnPct)

	deltas := ComputeDeltas(prev, loaded, phases.Phases, news.Headlines)
	alerts := Aggregate(AggregateInput{
		Drawdown:        drawdown,
		Stops:           stops,
		NewsAlerts:      news.Alerts,
		Phases:          phases.Phases,
		Exposure:        exposure,
		HardTransitions: r.settings.HardTransitions,
	})

	generatedAt := r.now()
	report := Compile(CompileInput{
		AsOfDate:    asOf,
		GeneratedAt: generatedAt,
		RunID:       runID,
		Inputs: Inputs{
			Positions: positions,
			Stops:     stops,
			Drawdown:  drawdown,
			Exposure:  exposure,
			Phases:    phases,
			News:      news,
		},
		Alerts:             alerts,
		Deltas:             deltas,
		ExternalEventLimit: r.settings.ExternalEventLimit,
	})

	artifacts, err := WriteArtifacts(outputDir, report, r.settings.RenderHTML)
	if err != nil {
		logger.Error().Err(err).Str("run_id", runID).Msg("Failed to write briefing artifacts")
		return nil, fmt.Errorf("failed to write briefing: %w", err)
	}

	result := &RunResult{
		Report:       report,
		Artifacts:    artifacts,
		StatePath:    r.state.Path(),
		WatchFlags:   len(alerts.Watch),
		NewHeadlines: len(deltas.NewHeadlines),
	}

	next := NextState(prev, phases.Phases, deltas.RunHashes, generatedAt, r.settings.HistoryCap)
	if err := r.state.Save(next); err != nil {
		logger.Warn().Err(err).Str("run_id", runID).Str("path", r.state.Path()).Msg("Failed to persist briefing state")
	} else {
		result.StateSaved = true
	}

	logger.Info().
		Str("run_id", runID).
		Int("positions", len(positions.Positions)).
		Int("hard_alerts", len(alerts.Hard)).
		Int("watch_flags", len(alerts.Watch)).
		Int("new_headlines", len(deltas.NewHeadlines)).
		Str("duration", r.now().Sub(startedAt).String()).
		Msg("Morning briefing written")

	return result, nil
}

// Phases fetches prices and classifies the given tickers without writing a briefing
func (r *Runner) Phases(ctx context.Context, tickers []string) PhasesResult {
	tickers = common.NormalizeTickers(tickers)
	if len(tickers) == 0 {
		return PhasesResult{Phases: []signals.PhaseRecord{}, Status: StatusNoTickers}
	}
	return r.classify(ctx, tickers)
}

func (r *Runner) fetchPositions(ctx context.Context) models.PositionsResult {
	if r.positions == nil {
		return models.PositionsResult{Positions: []models.Position{}, Error: "No position source configured"}
	}
	ctx, cancel := withTimeout(ctx, r.settings.PositionsTimeout)
	defer cancel()

	result := r.positions.Fetch(ctx)
	if result.Positions == nil {
		result.Positions = []models.Position{}
	}
	return result
}

// fanOut fetches prices (then classifies phases) and news concurrently. Tasks record
// failures in their results and never return an error, so one cannot cancel the other.
func (r *Runner) fanOut(ctx context.Context, tickers []string, since string, useCache bool) (PhasesResult, models.NewsResult) {
	if len(tickers) == 0 {
		return PhasesResult{Phases: []signals.PhaseRecord{}, Status: StatusNoTickers},
			models.NewsResult{Headlines: []models.Headline{}, Alerts: []string{}, Status: StatusNoTickers}
	}

	var phases PhasesResult
	var news models.NewsResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		phases = r.classify(gctx, tickers)
		return nil
	})
	g.Go(func() error {
		news = r.fetchNews(gctx, tickers, since, useCache)
		return nil
	})
	_ = g.Wait()

	return phases, news
}

func (r *Runner) classify(ctx context.Context, tickers []string) PhasesResult {
	if r.prices == nil {
		return PhasesResult{Phases: []signals.PhaseRecord{}, Error: "No price source configured"}
	}
	ctx, cancel := withTimeout(ctx, r.settings.PricesTimeout)
	defer cancel()

	series := r.prices.Closes(ctx, tickers)
	records := make([]signals.PhaseRecord, 0, len(tickers))
	closes := make(map[string][]float64, len(tickers))
	for _, ticker := range tickers {
		s, ok := series[ticker]
		switch {
		case !ok:
			records = append(records, signals.PhaseRecord{Ticker: ticker, Error: "No price data returned"})
		case s.Error != "":
			records = append(records, signals.PhaseRecord{Ticker: ticker, Error: s.Error})
		default:
			closes[ticker] = s.Closes
		}
	}
	records = append(records, r.analyzer.AnalyzeAll(closes)...)
	sortRecords(records)

	for _, rec := range records {
		if !rec.OK() {
			r.logger.Debug().Str("ticker", rec.Ticker).Str("error", rec.Error).Msg("Phase not classified")
		}
	}
	return PhasesResult{Phases: records}
}

func (r *Runner) fetchNews(ctx context.Context, tickers []string, since string, useCache bool) models.NewsResult {
	if r.news == nil {
		return models.NewsResult{Headlines: []models.Headline{}, Alerts: []string{}, Error: "No news source configured"}
	}
	ctx, cancel := withTimeout(ctx, r.settings.NewsTimeout)
	defer cancel()

	result := r.news.Fetch(ctx, tickers, since, useCache)
	if result.Headlines == nil {
		result.Headlines = []models.Headline{}
	}
	if result.Alerts == nil {
		result.Alerts = []string{}
	}
	if result.Error != "" {
		r.logger.Warn().Str("error", result.Error).Msg("News source unavailable")
	}
	if len(result.Errors) > 0 {
		r.logger.Warn().Str("errors", strings.Join(result.Errors, "; ")).Msg("News fetch failed for some tickers")
	}
	return result
}

func sortRecords(records []signals.PhaseRecord) {
	sort.SliceStable(records, func(i, j int) bool { return records[i].Ticker < records[j].Ticker })
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
