package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/goncalonina/Road-to-Power/config"
	"github.com/goncalonina/Road-to-Power/logging"
	"github.com/goncalonina/Road-to-Power/mailer"
	"github.com/goncalonina/Road-to-Power/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional YAML config file (environment variables override it)")
		csvPath    = flag.String("csv", "", "Export CSV to use (default: newest file in the export directory)")
		outDir     = flag.String("out", "", "Report directory (default REPORT_DIR or .)")
		format     = flag.String("format", "", "Daily series format: parquet|csv")
		noEmail    = flag.Bool("no-email", false, "Skip mail delivery")
		jsonOut    = flag.Bool("json", false, "Print the result as JSON instead of the report text")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [--config config.yaml] [--csv export.csv] [--out dir] [--no-email]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "weekly_report failed: %v\n", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Paths.ReportDir = *outDir
	}
	if *format != "" {
		cfg.Paths.DailyFormat = *format
	}

	logger, err := logging.New(cfg.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "weekly_report failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.Run(ctx, pipeline.Options{
		ExportDir: cfg.Paths.ExportDir,
		CSVPath:   *csvPath,
		OutDir:    cfg.Paths.ReportDir,
		Format:    cfg.Paths.DailyFormat,
		Athlete:   cfg.Athlete.Name,
		Engine:    cfg.Engine(),
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "weekly_report failed: %v\n", err)
		os.Exit(1)
	}

	if !*noEmail {
		switch err := pipeline.Deliver(ctx, cfg.Mail(), res); {
		case errors.Is(err, mailer.ErrNotConfigured):
			logger.Warn("smtp not configured, report kept locally", "report", res.ReportPath)
		case err != nil:
			fmt.Fprintf(os.Stderr, "weekly_report failed: %v\n", err)
			os.Exit(1)
		}
	}

	if *jsonOut {
		data, err := os.ReadFile(res.ResultPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "weekly_report failed: %v\n", err)
			os.Exit(1)
		}
		_, _ = os.Stdout.Write(data)
		return
	}

	fmt.Println(res.Notes)
	fmt.Printf("Report:   %s\n", res.ReportPath)
	fmt.Printf("Workbook: %s\n", res.WorkbookPath)
	if res.DailyPath != "" {
		fmt.Printf("Daily:    %s\n", res.DailyPath)
	}
}
