package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/common"
)

// jsonOutput marks commands whose stdout is a single JSON document.
// Unless --log-level is given, their logging is limited to errors.
const jsonOutput = "json"

var (
	// Command-line flags
	configFiles []string // Multiple --config flags supported
	logLevel    string

	// Global state
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:           "riskos",
	Short:         "Portfolio risk briefing",
	Long:          `RiskOS pulls positions, prices and news, checks stops, drawdown, concentration and trend phases, and writes a morning briefing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return setup(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil, "Configuration file path (can be specified multiple times, later files override earlier ones)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(briefCmd, phasesCmd, newsCmd, positionsCmd, importCSVCmd, scheduleCmd, versionCmd)
}

func main() {
	defer common.RecoverWithCrashFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error().Err(err).Msg("Command failed")
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// Startup sequence (REQUIRED ORDER):
// 1. Load config (defaults -> file1 -> file2 -> ... -> env -> rules file)
// 2. Apply CLI overrides (highest priority)
// 3. Validate
// 4. Initialize logger
func setup(cmd *cobra.Command) error {
	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("riskos.toml"); err == nil {
			configFiles = append(configFiles, "riskos.toml")
		} else if _, err := os.Stat("deployments/local/riskos.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/riskos.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := logLevel
	if level == "" && cmd.Annotations["output"] == jsonOutput {
		level = "error"
	}
	common.ApplyFlagOverrides(config, level, "")

	if err := config.Validate(); err != nil {
		return err
	}

	logger = common.InitLogger(config)
	common.InstallCrashHandler(config.Logging.Dir)

	logger.Debug().
		Strs("config_files", configFiles).
		Str("positions_source", config.Positions.Source).
		Str("news_source", config.News.Source).
		Str("log_level", config.Logging.Level).
		Msg("Resolved configuration (sanitized)")

	return nil
}

// printJSON writes v to stdout as indented JSON
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func withTimeout(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), timeout)
}
