package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Briefing    BriefingConfig  `toml:"briefing"`
	Risk        RiskConfig      `toml:"risk"`
	Phase       PhaseConfig     `toml:"phase"`
	Positions   PositionsConfig `toml:"positions"`
	Prices      PricesConfig    `toml:"prices"`
	News        NewsConfig      `toml:"news"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Schedule    ScheduleConfig  `toml:"schedule"`
}

// BriefingConfig controls artifact output and persisted run state
type BriefingConfig struct {
	OutputDir          string `toml:"output_dir" validate:"required"`        // Directory for {date}.json / {date}.md
	StatePath          string `toml:"state_path" validate:"required"`        // Persisted state across runs
	NewsSince          string `toml:"news_since"`                            // News lookback window, e.g. "24h", "2d"
	ExternalEventLimit int    `toml:"external_event_limit" validate:"gte=1"` // Max external event lines
	HistoryCap         int    `toml:"history_cap" validate:"gte=1"`          // Max remembered headline fingerprints
	RenderHTML         bool   `toml:"render_html"`                           // Also write {date}.html
}

// RiskConfig holds alert thresholds (percentages)
type RiskConfig struct {
	StopApproachingPct    float64 `toml:"stop_approaching_pct" validate:"gte=0"`
	PortfolioDailyDownPct float64 `toml:"portfolio_daily_down_pct" validate:"gte=0"`
	ConcentrationWarnPct  float64 `toml:"concentration_warn_pct" validate:"gt=0,lte=100"`
	PhaseTransitionPairs  [][]int `toml:"phase_transition_pairs"` // Transitions that raise a hard alert, e.g. [[3,4],[4,5]]
	RulesFile             string  `toml:"rules_file"`             // Optional risk-rules.yaml override
}

// PhaseConfig holds moving average periods for the phase engine
type PhaseConfig struct {
	EMAPeriod    int `toml:"ema_period" validate:"gte=1"`
	SMAPeriod    int `toml:"sma_period" validate:"gte=1"`
	HMAPeriod    int `toml:"hma_period" validate:"gte=0"` // 0 = max(ema_period, sma_period)
	LookbackDays int `toml:"lookback_days" validate:"gte=1"`
}

// PositionsConfig selects and configures the position source
type PositionsConfig struct {
	Source       string       `toml:"source" validate:"oneof=schwab navexa file"`
	SnapshotPath string       `toml:"snapshot_path" validate:"required"` // Cached positions.json
	StopsPath    string       `toml:"stops_path"`                        // Manual stops.json fallback
	Timeout      string       `toml:"timeout"`                           // e.g. "120s"
	Schwab       SchwabConfig `toml:"schwab"`
	Navexa       NavexaConfig `toml:"navexa"`
}

// SchwabConfig contains Schwab Trader API credentials and order detection rules
type SchwabConfig struct {
	APIKey               string   `toml:"api_key"`
	AppSecret            string   `toml:"app_secret"`
	TokenPath            string   `toml:"token_path"`
	BaseURL              string   `toml:"base_url"`
	TokenURL             string   `toml:"token_url"`
	ActiveStatuses       []string `toml:"active_statuses"`
	ProtectiveOrderTypes []string `toml:"protective_order_types"`
	OrderLookbackDays    int      `toml:"order_lookback_days"`
	RateLimit            int      `toml:"rate_limit"`
}

// NavexaConfig contains Navexa API configuration
type NavexaConfig struct {
	APIKey    string `toml:"api_key"`
	Portfolio string `toml:"portfolio"` // Portfolio name (case-insensitive contains match)
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
}

// PricesConfig configures the price-history provider
type PricesConfig struct {
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	DefaultExchange string `toml:"default_exchange"` // Exchange assumed for bare tickers
	Timeout         string `toml:"timeout"`          // e.g. "240s"
	RateLimit       int    `toml:"rate_limit"`
	Concurrency     int    `toml:"concurrency" validate:"gte=1"`
}

// NewsConfig configures the news provider and its cache
type NewsConfig struct {
	Source          string `toml:"source" validate:"required"` // newsapi, finnhub, eodhd
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	CacheEnabled    bool   `toml:"cache_enabled"`
	CacheTTL        string `toml:"cache_ttl"` // e.g. "15m"
	Timeout         string `toml:"timeout"`
	RateLimit       int    `toml:"rate_limit"`
	BreakerFailures int    `toml:"breaker_failures"` // Consecutive failures before the provider circuit opens
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
	Dir        string   `toml:"dir"`         // Log directory when file output is enabled
}

// ScheduleConfig configures the recurring briefing
type ScheduleConfig struct {
	Cron string `toml:"cron"` // 6-field cron expression (seconds first)
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Briefing: BriefingConfig{
			OutputDir:          "./workspace/briefings",
			StatePath:          "./workspace/alerts/briefing_state.json",
			NewsSince:          "24h",
			ExternalEventLimit: 8,
			HistoryCap:         500,
		},
		Risk: RiskConfig{
			StopApproachingPct:    5.0,
			PortfolioDailyDownPct: 1.0,
			ConcentrationWarnPct:  20.0,
			PhaseTransitionPairs:  [][]int{{3, 4}, {4, 5}},
		},
		Phase: PhaseConfig{
			EMAPeriod:    10,
			SMAPeriod:    30,
			HMAPeriod:    0,
			LookbackDays: 92, // ~3 months of daily bars
		},
		Positions: PositionsConfig{
			Source:       "schwab",
			SnapshotPath: "./workspace/portfolio/positions.json",
			StopsPath:    "./workspace/portfolio/stops.json",
			Timeout:      "120s",
			Schwab: SchwabConfig{
				TokenPath:            "./workspace/portfolio/token.json",
				BaseURL:              "https://api.schwabapi.com",
				TokenURL:             "https://api.schwabapi.com/v1/oauth/token",
				ActiveStatuses:       []string{"WORKING", "AWAITING_STOP_CONDITION", "QUEUED", "PENDING_ACTIVATION"},
				ProtectiveOrderTypes: []string{"STOP", "STOP_LIMIT", "TRAILING_STOP"},
				OrderLookbackDays:    60,
				RateLimit:            2,
			},
			Navexa: NavexaConfig{
				BaseURL:   "https://api.navexa.com.au",
				RateLimit: 5,
			},
		},
		Prices: PricesConfig{
			BaseURL:         "https://eodhd.com/api",
			DefaultExchange: "US",
			Timeout:         "240s",
			RateLimit:       10,
			Concurrency:     4,
		},
		News: NewsConfig{
			Source:          "newsapi",
			CacheEnabled:    true,
			CacheTTL:        "15m",
			Timeout:         "180s",
			RateLimit:       5,
			BreakerFailures: 3,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./workspace/news/cache",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
			Dir:        "./workspace/logs",
		},
		Schedule: ScheduleConfig{
			Cron: "0 30 6 * * 1-5", // 06:30 on weekdays
		},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> env -> rules file.
// Later files override earlier files. CLI overrides are applied by the caller.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if config.Risk.RulesFile != "" {
		if err := ApplyRiskRules(config, config.Risk.RulesFile); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
// Provider credentials also honour the plain variable names used by the provider SDKs.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("RISKOS_ENV"); env != "" {
		config.Environment = env
	}

	// Briefing
	if dir := os.Getenv("RISKOS_OUTPUT_DIR"); dir != "" {
		config.Briefing.OutputDir = dir
	}
	if path := os.Getenv("RISKOS_STATE_PATH"); path != "" {
		config.Briefing.StatePath = path
	}

	// Positions
	if source := os.Getenv("RISKOS_POSITIONS_SOURCE"); source != "" {
		config.Positions.Source = strings.ToLower(source)
	}
	if key := firstEnv("RISKOS_SCHWAB_API_KEY", "SCHWAB_API_KEY"); key != "" {
		config.Positions.Schwab.APIKey = key
	}
	if secret := firstEnv("RISKOS_SCHWAB_APP_SECRET", "SCHWAB_APP_SECRET"); secret != "" {
		config.Positions.Schwab.AppSecret = secret
	}
	if path := firstEnv("RISKOS_SCHWAB_TOKEN_PATH", "SCHWAB_TOKEN_PATH"); path != "" {
		config.Positions.Schwab.TokenPath = path
	}
	if key := firstEnv("RISKOS_NAVEXA_API_KEY", "NAVEXA_API_KEY"); key != "" {
		config.Positions.Navexa.APIKey = key
	}

	// Prices
	if key := firstEnv("RISKOS_EODHD_API_KEY", "EODHD_API_KEY"); key != "" {
		config.Prices.APIKey = key
	}

	// News
	if key := firstEnv("RISKOS_NEWS_API_KEY", "NEWS_API_KEY", "NEWS_API_KEY_ALT"); key != "" {
		config.News.APIKey = key
	}
	if source := firstEnv("RISKOS_NEWS_SOURCE", "NEWS_API_SOURCE"); source != "" {
		config.News.Source = strings.ToLower(source)
	}
	if ttl := os.Getenv("NEWS_CACHE_TTL_MIN"); ttl != "" {
		if minutes, err := strconv.Atoi(ttl); err == nil && minutes > 0 {
			config.News.CacheTTL = fmt.Sprintf("%dm", minutes)
		}
	}

	// Logging
	if level := os.Getenv("RISKOS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("RISKOS_LOG_OUTPUT"); output != "" {
		config.Logging.Output = splitString(output, ",")
	}

	if expr := os.Getenv("RISKOS_SCHEDULE"); expr != "" {
		config.Schedule.Cron = expr
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, logLevel, outputDir string) {
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
	if outputDir != "" {
		config.Briefing.OutputDir = outputDir
	}
}

// Validate checks struct constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for _, pair := range c.Risk.PhaseTransitionPairs {
		if len(pair) != 2 || !validPhase(pair[0]) || !validPhase(pair[1]) {
			return fmt.Errorf("invalid phase transition pair %v: phases must be 1-5", pair)
		}
	}
	for name, value := range map[string]string{
		"positions.timeout": c.Positions.Timeout,
		"prices.timeout":    c.Prices.Timeout,
		"news.timeout":      c.News.Timeout,
		"news.cache_ttl":    c.News.CacheTTL,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}
	if c.Schedule.Cron != "" {
		if err := ValidateCronSchedule(c.Schedule.Cron); err != nil {
			return err
		}
	}
	return nil
}

// HullPeriod resolves the configured Hull period (0 means the larger of the two averages)
func (p PhaseConfig) HullPeriod() int {
	if p.HMAPeriod > 0 {
		return p.HMAPeriod
	}
	if p.EMAPeriod > p.SMAPeriod {
		return p.EMAPeriod
	}
	return p.SMAPeriod
}

// ParseDuration parses a duration string, returning fallback when empty or invalid
func ParseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// ValidateCronSchedule validates a 6-field cron expression (seconds first)
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

func validPhase(p int) bool {
	return p >= 1 && p <= 5
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// splitString splits a string by separator and trims whitespace
func splitString(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
