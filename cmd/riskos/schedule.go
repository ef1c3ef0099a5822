package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/ternarybob/riskos/internal/app"
	"github.com/ternarybob/riskos/internal/briefing"
	"github.com/ternarybob/riskos/internal/common"
	"github.com/ternarybob/riskos/internal/services/scheduler"
)

const briefJobName = "morning-brief"

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the briefing on the configured cron schedule",
	Long:  `Runs in the foreground and writes a briefing on every tick of schedule.cron (6 fields, seconds first). Stop with Ctrl+C.`,
	Args:  cobra.NoArgs,
	RunE:  runSchedule,
}

var (
	scheduleCron string
	scheduleNow  bool
)

func init() {
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "Cron expression (overrides config)")
	scheduleCmd.Flags().BoolVar(&scheduleNow, "run-now", false, "Also run once at startup")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	expr := config.Schedule.Cron
	if scheduleCron != "" {
		expr = scheduleCron
	}
	if err := common.ValidateCronSchedule(expr); err != nil {
		return err
	}

	common.PrintBanner()

	application, err := app.New(config, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	svc := scheduler.NewService(logger)
	err = svc.RegisterJob(briefJobName, expr, "Morning risk briefing", scheduleNow, func(ctx context.Context) error {
		result, err := application.Runner.Run(ctx, briefing.RunOptions{})
		if err != nil {
			return err
		}
		logger.Info().
			Str("summary", result.Report.SummaryLine).
			Str("markdown", result.Artifacts.Markdown).
			Msg("Scheduled briefing written")
		return nil
	})
	if err != nil {
		return err
	}

	if err := svc.Start(); err != nil {
		return err
	}
	for _, job := range svc.Jobs() {
		if job.NextRun != nil {
			logger.Info().Str("job_name", job.Name).Str("next_run", job.NextRun.Format(time.RFC3339)).Msg("Next briefing scheduled")
		}
	}
	fmt.Printf("\nScheduler running (%s)\n", expr)
	fmt.Println("Press Ctrl+C to stop")

	<-cmd.Context().Done()
	logger.Info().Msg("Interrupt signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := svc.Stop(ctx); err != nil {
		logger.Warn().Err(err).Msg("Scheduler did not stop cleanly")
	}
	return nil
}
