// Package pipeline ties the export store, the planning engine and the
// report writers into one weekly run.
package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	loadplan "github.com/goncalonina/Road-to-Power"
	"github.com/goncalonina/Road-to-Power/exportstore"
	"github.com/goncalonina/Road-to-Power/mailer"
	"github.com/goncalonina/Road-to-Power/report"
)

const (
	resultFileName = "result.json"
	dailyBaseName  = "daily_load"
)

// Run computes the week from the newest export and writes the text report,
// the workbook, the daily series and result.json into OutDir.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	src := opts.CSVPath
	if src == "" {
		latest, err := exportstore.Latest(opts.ExportDir)
		if err != nil {
			return nil, err
		}
		src = latest
	}
	raw, err := exportstore.ReadCSV(src)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)
	logger.Info("computing weekly plan", "source", src, "rows", len(raw))

	computed := loadplan.ComputeFromRaw(raw, opts.Engine)
	for _, w := range computed.Warnings {
		logger.Warn("engine warning", "warning", w)
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	stamp := now.Format("20060102")

	res := &Result{
		RunID:       runID,
		GeneratedAt: now,
		SourcePath:  src,
		OutputDir:   opts.OutDir,
		Subject:     loadplan.ReportSubject(now),
		Notes:       loadplan.BuildWeeklyNotes(computed, opts.Athlete, now),
		Engine:      computed,
	}

	res.ReportPath = filepath.Join(opts.OutDir, "weekly_report_"+stamp+".txt")
	if err := os.WriteFile(res.ReportPath, []byte(res.Notes), 0o644); err != nil {
		return nil, fmt.Errorf("write weekly report: %w", err)
	}

	wb, err := report.Workbook(computed, now)
	if err != nil {
		return nil, fmt.Errorf("build workbook: %w", err)
	}
	res.WorkbookPath = filepath.Join(opts.OutDir, "weekly_report_"+stamp+".xlsx")
	if err := wb.SaveAs(res.WorkbookPath); err != nil {
		_ = wb.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := wb.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}

	if rows := buildDailyRows(computed); len(rows) > 0 {
		res.DailyPath = filepath.Join(opts.OutDir, dailyBaseName+"."+format)
		switch format {
		case "csv":
			if err := writeDailyCSV(res.DailyPath, rows); err != nil {
				return nil, fmt.Errorf("write daily csv: %w", err)
			}
		case "parquet":
			if err := writeDailyParquet(res.DailyPath, rows); err != nil {
				return nil, fmt.Errorf("write daily parquet: %w", err)
			}
		}
	}

	res.ResultPath = filepath.Join(opts.OutDir, resultFileName)
	if err := writeJSON(res.ResultPath, res); err != nil {
		return nil, fmt.Errorf("write %s: %w", resultFileName, err)
	}

	logger.Info("weekly report written",
		"report", res.ReportPath,
		"workbook", res.WorkbookPath,
		"daily", res.DailyPath,
		"state", string(computed.State),
		"fatigue_flag", computed.Fatigued,
	)
	return res, nil
}

// Export fetches the look-back window from lister and writes it as the
// day's export file. The window must cover the load model's history, not
// just the reported week.
func Export(ctx context.Context, lister ActivityLister, opts ExportOptions) (*ExportResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	days := opts.Days
	if days <= 0 {
		days = loadplan.DefaultHistoryDays
	}
	after := now.AddDate(0, 0, -days)

	rows, err := lister.ListActivities(ctx, after, opts.PerPage)
	if err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}

	path := filepath.Join(opts.ExportDir, exportstore.FileName(now))
	if err := exportstore.WriteCSV(path, rows); err != nil {
		return nil, err
	}
	logger.Info("activity export written", "path", path, "activities", len(rows), "after", after.Format(time.RFC3339))
	return &ExportResult{Path: path, Activities: len(rows), After: after}, nil
}

// Message builds the mail carrying the report and its workbook.
func (r *Result) Message() (mailer.Message, error) {
	msg := mailer.Message{Subject: r.Subject, Body: r.Notes}
	for _, path := range []string{r.ReportPath, r.WorkbookPath} {
		if path == "" {
			continue
		}
		a, err := mailer.AttachFile(path)
		if err != nil {
			return mailer.Message{}, err
		}
		msg.Attachments = append(msg.Attachments, a)
	}
	return msg, nil
}

// Deliver mails the report. A missing SMTP setup returns
// mailer.ErrNotConfigured and leaves the artifacts in place.
func Deliver(ctx context.Context, cfg mailer.Config, r *Result) error {
	if !cfg.Complete() {
		return mailer.ErrNotConfigured
	}
	msg, err := r.Message()
	if err != nil {
		return err
	}
	if err := mailer.Send(ctx, cfg, msg); err != nil {
		return fmt.Errorf("send weekly report: %w", err)
	}
	return nil
}

func buildDailyRows(r loadplan.Result) []dailyRow {
	rows := make([]dailyRow, 0, len(r.Series))
	for i, day := range r.Series {
		row := dailyRow{Date: day.Date.Format("2006-01-02"), Load: day.Load}
		if i < len(r.Trend) {
			row.Fitness = r.Trend[i].Fitness
			row.Fatigue = r.Trend[i].Fatigue
			row.Form = r.Trend[i].Form
		} else {
			row.Fitness, row.Fatigue, row.Form = math.NaN(), math.NaN(), math.NaN()
		}
		rows = append(rows, row)
	}
	return rows
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeDailyCSV(path string, rows []dailyRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "load", "fitness", "fatigue", "form"}); err != nil {
		return err
	}
	for _, d := range rows {
		row := []string{
			d.Date,
			formatFloat(d.Load),
			formatFloat(d.Fitness),
			formatFloat(d.Fatigue),
			formatFloat(d.Form),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
