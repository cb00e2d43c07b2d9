package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/goncalonina/Road-to-Power/config"
	"github.com/goncalonina/Road-to-Power/logging"
	"github.com/goncalonina/Road-to-Power/pipeline"
	"github.com/goncalonina/Road-to-Power/strava"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional YAML config file (environment variables override it)")
		exportDir  = flag.String("out", "", "Export directory (default EXPORT_DIR or strava_exports)")
		days       = flag.Int("days", 0, "Look-back window in days (default HISTORY_DAYS or 120)")
		authURL    = flag.Bool("auth-url", false, "Print the Strava authorization URL and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [--config config.yaml] [--out dir] [--days N]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "strava_export failed: %v\n", err)
		os.Exit(1)
	}
	if *exportDir != "" {
		cfg.Paths.ExportDir = *exportDir
	}
	if *days > 0 {
		cfg.Strava.HistoryDays = *days
	}

	auth := cfg.StravaAuth()
	oauthCfg := auth.OAuthConfig()
	if *authURL {
		fmt.Println(oauthCfg.AuthCodeURL("road-to-power"))
		return
	}

	logger, err := logging.New(cfg.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "strava_export failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ts, err := auth.TokenSource(ctx, oauthCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "strava_export failed: %v\n", err)
		os.Exit(1)
	}
	clientOpts := []strava.ClientOption{strava.WithLogger(logger)}
	if cfg.Strava.APIURL != "" {
		clientOpts = append(clientOpts, strava.WithBaseURL(cfg.Strava.APIURL))
	}
	client := strava.NewClient(ctx, ts, clientOpts...)
	res, err := pipeline.Export(ctx, client, pipeline.ExportOptions{
		ExportDir: cfg.Paths.ExportDir,
		Days:      cfg.Strava.HistoryDays,
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "strava_export failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("strava_export complete\n")
	fmt.Printf("Activities:  %d\n", res.Activities)
	fmt.Printf("Export file: %s\n", res.Path)
}
