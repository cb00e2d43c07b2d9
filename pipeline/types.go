package pipeline

import (
	"context"
	"log/slog"
	"time"

	loadplan "github.com/goncalonina/Road-to-Power"
)

// Options configures a weekly report run.
type Options struct {
	// ExportDir is searched for the newest export when CSVPath is empty.
	ExportDir string
	CSVPath   string
	OutDir    string
	Format    string // parquet|csv
	Athlete   string
	Engine    loadplan.Config
	// Now stamps the artifacts; zero means time.Now.
	Now    time.Time
	Logger *slog.Logger
}

// Result returns the generated output paths and the computed week.
type Result struct {
	RunID        string          `json:"run_id"`
	GeneratedAt  time.Time       `json:"generated_at"`
	SourcePath   string          `json:"source_path"`
	OutputDir    string          `json:"output_dir"`
	ReportPath   string          `json:"report_path"`
	WorkbookPath string          `json:"workbook_path"`
	DailyPath    string          `json:"daily_path,omitempty"`
	ResultPath   string          `json:"result_path"`
	Subject      string          `json:"subject"`
	Notes        string          `json:"-"`
	Engine       loadplan.Result `json:"engine"`
}

// ActivityLister is the activity source for Export.
type ActivityLister interface {
	ListActivities(ctx context.Context, after time.Time, perPage int) ([]loadplan.RawRecord, error)
}

// ExportOptions configures Export.
type ExportOptions struct {
	ExportDir string
	// Days is the look-back window; zero means loadplan.DefaultHistoryDays.
	Days    int
	PerPage int
	Now     time.Time
	Logger  *slog.Logger
}

// ExportResult describes a written export.
type ExportResult struct {
	Path       string
	Activities int
	After      time.Time
}

// dailyRow is one day of load with its trend values.
type dailyRow struct {
	Date    string
	Load    float64
	Fitness float64
	Fatigue float64
	Form    float64
}
