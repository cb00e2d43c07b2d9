package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/robfig/cron"

	"github.com/goncalonina/Road-to-Power/config"
	"github.com/goncalonina/Road-to-Power/logging"
	"github.com/goncalonina/Road-to-Power/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional YAML config file (environment variables override it)")
		schedule   = flag.String("schedule", "", "Cron spec with seconds (default REPORT_SCHEDULE or \"0 0 7 * * MON\")")
		runNow     = flag.Bool("now", false, "Run the job once at startup as well")
		noFetch    = flag.Bool("no-fetch", false, "Skip the Strava export step")
		noEmail    = flag.Bool("no-email", false, "Skip mail delivery")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [--config config.yaml] [--schedule \"0 0 7 * * MON\"]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "weekly_scheduler failed: %v\n", err)
		os.Exit(1)
	}
	if *schedule != "" {
		cfg.Schedule = *schedule
	}

	logger, err := logging.New(cfg.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "weekly_scheduler failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.WeeklyOptions{Fetch: !*noFetch, Send: !*noEmail, Logger: logger}
	job := func() {
		res, err := pipeline.Weekly(ctx, cfg, opts)
		if err != nil {
			logger.Error("weekly job failed", "error", err)
			return
		}
		logger.Info("weekly job finished", "run_id", res.RunID, "report", res.ReportPath)
	}

	c := cron.New()
	if err := c.AddFunc(cfg.Schedule, job); err != nil {
		fmt.Fprintf(os.Stderr, "weekly_scheduler failed: invalid schedule %q: %v\n", cfg.Schedule, err)
		os.Exit(2)
	}
	c.Start()
	logger.Info("weekly scheduler started", "schedule", cfg.Schedule)

	if *runNow {
		job()
	}

	<-ctx.Done()
	c.Stop()
	logger.Info("weekly scheduler stopped")
}
