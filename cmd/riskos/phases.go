package main

import (
	"github.com/spf13/cobra"
	"github.com/ternarybob/riskos/internal/app"
)

var phasesCmd = &cobra.Command{
	Use:         "phases TICKER...",
	Short:       "Classify the trend phase of tickers",
	Long:        `Fetches daily closes and prints the phase (1-5), moving averages and Hull trend of each ticker as JSON.`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{"output": jsonOutput},
	RunE:        runPhases,
}

func runPhases(cmd *cobra.Command, args []string) error {
	application, err := app.New(config, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	return printJSON(application.Runner.Phases(cmd.Context(), args))
}
