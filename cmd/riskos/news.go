package main

import (
	"github.com/spf13/cobra"
	"github.com/ternarybob/riskos/internal/app"
	"github.com/ternarybob/riskos/internal/common"
)

var newsCmd = &cobra.Command{
	Use:         "news TICKER...",
	Short:       "Fetch and score news for tickers",
	Long:        `Fetches headlines from the configured news provider, scores them (adversarial, major, macro, relevant) and prints them as JSON.`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{"output": jsonOutput},
	RunE:        runNews,
}

var (
	newsSince   string
	newsNoCache bool
)

func init() {
	newsCmd.Flags().StringVar(&newsSince, "since", "24h", "Lookback window, e.g. 24h, 2d, 90m")
	newsCmd.Flags().BoolVar(&newsNoCache, "no-cache", false, "Bypass the news cache")
}

func runNews(cmd *cobra.Command, args []string) error {
	application, err := app.New(config, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	result := application.News.Fetch(cmd.Context(), common.NormalizeTickers(args), newsSince, !newsNoCache)
	return printJSON(result)
}
