package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/briefing"
	"github.com/ternarybob/riskos/internal/common"
	"github.com/ternarybob/riskos/internal/eodhd"
	"github.com/ternarybob/riskos/internal/services/news"
	"github.com/ternarybob/riskos/internal/services/positions"
	"github.com/ternarybob/riskos/internal/services/prices"
	"github.com/ternarybob/riskos/internal/signals"
	"github.com/ternarybob/riskos/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	DB        *badger.BadgerDB
	NewsCache *badger.NewsCache

	// Collaborators
	Positions positions.Source
	Prices    *prices.EODHDSource
	News      *news.Service
	Analyzer  *signals.PhaseAnalyzer

	// Briefing
	State  *briefing.StateStore
	Runner *briefing.Runner
}

// New initializes the application with all dependencies.
// Storage failures disable the news cache instead of failing startup.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	app.initStorage()

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.State = briefing.NewStateStore(cfg.Briefing.StatePath, logger)
	app.Runner = briefing.NewRunner(
		app.Positions,
		app.Prices,
		app.News,
		app.Analyzer,
		app.State,
		briefing.SettingsFromConfig(cfg),
		logger,
	)

	logger.Debug().
		Str("positions_source", app.Positions.Name()).
		Str("news_source", cfg.News.Source).
		Bool("news_cache", app.NewsCache != nil).
		Str("output_dir", cfg.Briefing.OutputDir).
		Msg("Application initialized")

	return app, nil
}

func (a *App) initStorage() {
	if !a.Config.News.CacheEnabled {
		return
	}

	db, err := badger.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		a.Logger.Warn().Err(err).Str("path", a.Config.Storage.Badger.Path).Msg("News cache unavailable, continuing without it")
		return
	}
	a.DB = db
	a.NewsCache = badger.NewNewsCache(db, a.Logger)

	// Entries past the TTL are never served again
	ttl := common.ParseDuration(a.Config.News.CacheTTL, news.DefaultCacheTTL)
	if err := a.NewsCache.Prune(ttl); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to prune news cache")
	}
}

func (a *App) initServices() error {
	cfg := a.Config

	source, err := positions.NewSource(cfg.Positions, a.Logger)
	if err != nil {
		return err
	}
	a.Positions = source

	common.SetDefaultExchange(cfg.Prices.DefaultExchange)
	client := eodhd.NewClient(cfg.Prices.APIKey,
		eodhd.WithBaseURL(cfg.Prices.BaseURL),
		eodhd.WithRateLimit(cfg.Prices.RateLimit),
		eodhd.WithLogger(a.Logger),
	)
	a.Prices = prices.NewEODHDSource(client, a.Logger, cfg.Phase.LookbackDays, cfg.Prices.Concurrency)

	newsConfig := cfg.News
	if newsConfig.Source == news.SourceEODHD && newsConfig.APIKey == "" {
		newsConfig.APIKey = cfg.Prices.APIKey
	}
	var cache news.Cache
	if a.NewsCache != nil {
		cache = a.NewsCache
	}
	a.News = news.NewServiceFromConfig(newsConfig, cache, a.Logger)

	a.Analyzer = signals.NewPhaseAnalyzer(signals.PhaseConfig{
		EMAPeriod: cfg.Phase.EMAPeriod,
		SMAPeriod: cfg.Phase.SMAPeriod,
		HMAPeriod: cfg.Phase.HMAPeriod,
	})

	return nil
}

// Close releases storage. Safe to call more than once.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	db := a.DB
	a.DB = nil
	a.NewsCache = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	a.Logger.Debug().Msg("Storage closed")
	return nil
}
