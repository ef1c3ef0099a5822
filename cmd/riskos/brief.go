package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/ternarybob/riskos/internal/app"
	"github.com/ternarybob/riskos/internal/briefing"
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Run the morning briefing",
	Long:  `Fetches positions, prices and news, evaluates risk and writes {date}.json and {date}.md to the briefing directory.`,
	RunE:  runBrief,
}

var (
	briefDate        string
	briefSince       string
	briefOutputDir   string
	briefNoNewsCache bool
)

func init() {
	briefCmd.Flags().StringVar(&briefDate, "date", "", "As-of date (YYYY-MM-DD, default today)")
	briefCmd.Flags().StringVar(&briefSince, "since", "", "News lookback window, e.g. 24h, 2d, 90m")
	briefCmd.Flags().StringVar(&briefOutputDir, "output-dir", "", "Briefing directory (overrides config)")
	briefCmd.Flags().BoolVar(&briefNoNewsCache, "no-news-cache", false, "Bypass the news cache for this run")
}

func runBrief(cmd *cobra.Command, args []string) error {
	if briefDate != "" {
		if _, err := time.Parse("2006-01-02", briefDate); err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", briefDate)
		}
	}

	application, err := app.New(config, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	result, err := application.Runner.Run(cmd.Context(), briefing.RunOptions{
		AsOfDate:    briefDate,
		Since:       briefSince,
		OutputDir:   briefOutputDir,
		NoNewsCache: briefNoNewsCache,
	})
	if err != nil {
		return err
	}

	fmt.Println(result.Report.SummaryLine)
	fmt.Printf("Briefing: %s\n", result.Artifacts.Markdown)
	fmt.Printf("JSON:     %s\n", result.Artifacts.JSON)
	if result.Artifacts.HTML != "" {
		fmt.Printf("HTML:     %s\n", result.Artifacts.HTML)
	}
	if !result.StateSaved {
		fmt.Printf("Warning: state not saved to %s\n", result.StatePath)
	}
	return nil
}
