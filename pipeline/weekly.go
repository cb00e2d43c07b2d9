package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/goncalonina/Road-to-Power/config"
	"github.com/goncalonina/Road-to-Power/mailer"
	"github.com/goncalonina/Road-to-Power/strava"
)

// WeeklyOptions selects the optional steps of the weekly job.
type WeeklyOptions struct {
	// Fetch refreshes the export from Strava before reporting.
	Fetch bool
	// Send mails the report when SMTP is configured.
	Send   bool
	Logger *slog.Logger
}

// Weekly is the scheduled job: export, report, mail. A failed fetch falls
// back to the newest export already on disk. Missing SMTP settings skip
// delivery and keep the local artifacts.
func Weekly(ctx context.Context, cfg *config.Config, opts WeeklyOptions) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Fetch {
		if _, err := FetchStrava(ctx, cfg, logger); err != nil {
			logger.Warn("strava export failed, using newest export on disk", "error", err)
		}
	}

	res, err := Run(ctx, Options{
		ExportDir: cfg.Paths.ExportDir,
		OutDir:    cfg.Paths.ReportDir,
		Format:    cfg.Paths.DailyFormat,
		Athlete:   cfg.Athlete.Name,
		Engine:    cfg.Engine(),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	if !opts.Send {
		return res, nil
	}
	switch err := Deliver(ctx, cfg.Mail(), res); {
	case errors.Is(err, mailer.ErrNotConfigured):
		logger.Warn("smtp not configured, report kept locally", "report", res.ReportPath)
	case err != nil:
		return res, err
	default:
		logger.Info("weekly report mailed", "to", cfg.SMTP.To)
	}
	return res, nil
}

// FetchStrava authorises against Strava and writes an export covering the
// configured history window.
func FetchStrava(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ExportResult, error) {
	auth := cfg.StravaAuth()
	ts, err := auth.TokenSource(ctx, auth.OAuthConfig())
	if err != nil {
		return nil, err
	}
	clientOpts := []strava.ClientOption{strava.WithLogger(logger)}
	if cfg.Strava.APIURL != "" {
		clientOpts = append(clientOpts, strava.WithBaseURL(cfg.Strava.APIURL))
	}
	client := strava.NewClient(ctx, ts, clientOpts...)
	return Export(ctx, client, ExportOptions{
		ExportDir: cfg.Paths.ExportDir,
		Days:      cfg.Strava.HistoryDays,
		Logger:    logger,
	})
}
