package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockSense/internal/di"
	"StockSense/pkg/config"
	applogger "StockSense/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:          "jobs",
		Short:        "Batch jobs that refresh correlations, sentiment and prices",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "config file path")

	withJobs := func(run func(ctx context.Context, cfg *config.Config, jobs *di.Jobs) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWithEnv(configPath)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			jobs, err := di.InitializeJobs(cfg)
			if err != nil {
				return fmt.Errorf("jobs initialization failed: %w", err)
			}
			defer jobs.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, jobs)
		}
	}

	var drop bool
	correlate := &cobra.Command{
		Use:   "correlate",
		Short: "Recompute correlated tickers for the universe",
		RunE: withJobs(func(ctx context.Context, _ *config.Config, jobs *di.Jobs) error {
			_, err := jobs.Correlation.Run(ctx, drop)
			return err
		}),
	}
	correlate.Flags().BoolVar(&drop, "drop", false, "drop the correlation collection before writing")

	ingest := &cobra.Command{
		Use:   "ingest-sentiment",
		Short: "Copy news sentiment insights into the sentiment store",
		RunE: withJobs(func(ctx context.Context, _ *config.Config, jobs *di.Jobs) error {
			_, err := jobs.Sentiment.Run(ctx)
			return err
		}),
	}

	syncPrices := &cobra.Command{
		Use:   "sync-prices",
		Short: "Archive daily closes into ClickHouse",
		RunE: withJobs(func(ctx context.Context, _ *config.Config, jobs *di.Jobs) error {
			if jobs.PriceSync == nil {
				return errPriceSyncDisabled
			}
			_, err := jobs.PriceSync.Run(ctx)
			return err
		}),
	}

	schedule := &cobra.Command{
		Use:   "schedule",
		Short: "Run every job on its cron schedule until interrupted",
		RunE: withJobs(func(ctx context.Context, cfg *config.Config, jobs *di.Jobs) error {
			return runSchedule(ctx, jobs, cfg.Scheduler)
		}),
	}

	root.AddCommand(correlate, ingest, syncPrices, schedule)
	return root
}

var errPriceSyncDisabled = errors.New("sync-prices requires clickhouse.enabled")

func runSchedule(ctx context.Context, jobs *di.Jobs, cfg config.SchedulerConfig) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("scheduler timezone: %w", err)
	}
	l := jobs.Logger
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	add := func(name, spec string, run func(context.Context) (int, error)) error {
		if spec == "" {
			return nil
		}
		_, err := c.AddFunc(spec, func() {
			start := time.Now()
			n, err := run(ctx)
			if err != nil {
				l.Error("scheduled job failed", applogger.String("job", name), applogger.Error(err))
				return
			}
			l.Info("scheduled job done",
				applogger.String("job", name),
				applogger.Int("records", n),
				applogger.Duration("duration_ms", time.Since(start)),
			)
		})
		if err != nil {
			return fmt.Errorf("schedule %s %q: %w", name, spec, err)
		}
		l.Info("job scheduled", applogger.String("job", name), applogger.String("cron", spec))
		return nil
	}

	if err := add("correlate", cfg.CorrelationCron, func(ctx context.Context) (int, error) {
		return jobs.Correlation.Run(ctx, false)
	}); err != nil {
		return err
	}
	if err := add("ingest-sentiment", cfg.SentimentCron, jobs.Sentiment.Run); err != nil {
		return err
	}
	if jobs.PriceSync != nil {
		if err := add("sync-prices", cfg.PriceSyncCron, jobs.PriceSync.Run); err != nil {
			return err
		}
	}

	c.Start()
	l.Info("scheduler started", applogger.String("timezone", loc.String()))
	<-ctx.Done()

	// Wait for running jobs to finish.
	<-c.Stop().Done()
	l.Info("scheduler stopped")
	return nil
}
