package main

import (
	"github.com/spf13/cobra"
	"github.com/ternarybob/riskos/internal/common"
	"github.com/ternarybob/riskos/internal/services/positions"
)

var positionsCmd = &cobra.Command{
	Use:         "positions",
	Short:       "Print the current portfolio",
	Long:        `Fetches positions from the configured source (schwab, navexa or file) and prints them as JSON. Failures are reported in the "error" field.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{"output": jsonOutput},
	RunE:        runPositions,
}

func runPositions(cmd *cobra.Command, args []string) error {
	source, err := positions.NewSource(config.Positions, logger)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd, common.ParseDuration(config.Positions.Timeout, 0))
	defer cancel()

	return printJSON(source.Fetch(ctx))
}
