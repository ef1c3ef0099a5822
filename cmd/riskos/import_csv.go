package main

import (
	"github.com/spf13/cobra"
	"github.com/ternarybob/riskos/internal/services/positions"
)

var importCSVCmd = &cobra.Command{
	Use:         "import-csv FILE",
	Short:       "Import a Schwab positions CSV export",
	Long:        `Parses a Schwab "Positions" CSV export, applies manual stops and writes the positions snapshot used when the API is unavailable.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"output": jsonOutput},
	RunE:        runImportCSV,
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	result, err := positions.ImportCSV(args[0], config.Positions.StopsPath, config.Positions.SnapshotPath)
	if err != nil {
		return err
	}
	logger.Info().
		Str("file", args[0]).
		Int("positions", len(result.Positions)).
		Str("snapshot", config.Positions.SnapshotPath).
		Msg("Positions imported")
	return printJSON(result)
}
