// Package loadplan turns an activity history into a weekly training summary,
// a fitness/fatigue/form estimate and next week's prescription.
package loadplan

import "time"

// Warnings attached to degraded results.
const (
	WarnInsufficientData = "insufficient data: no dated activities, performance model skipped"
	WarnNoFTP            = "athlete FTP not configured: intensity factor omitted"
	WarnNoLongRideDay    = "long ride day not configured: defaulting to Sunday"
)

// Config carries the athlete-specific inputs. Nil pointers are configuration
// gaps and degrade the result instead of failing it.
type Config struct {
	LongRideDay *LongRideDay
	FTPWatts    *float64
	// WindowEnd anchors the trailing week; zero uses the latest activity.
	WindowEnd time.Time
	// Location decides calendar days; nil means UTC.
	Location *time.Location
}

// Result is everything the report and delivery layers need.
type Result struct {
	Summary     WeekSummary        `json:"summary"`
	Performance *PerformanceState  `json:"performance,omitempty"`
	State       TrainingState      `json:"training_state,omitempty"`
	Fatigued    bool               `json:"fatigue_flag"`
	LongRideDay string             `json:"long_ride_day"`
	Series      DailySeries        `json:"daily_series,omitempty"`
	Trend       []PerformanceState `json:"trend,omitempty"`
	Plan        Plan               `json:"plan"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// ComputeFromRaw normalizes raw rows before running the engine.
func ComputeFromRaw(raw []RawRecord, cfg Config) Result {
	return ComputeEngineResult(NormalizeRecords(raw), cfg)
}

// ComputeEngineResult summarizes the trailing week, runs the load model over
// the full history and prescribes next week. It never fails: sparse data and
// missing configuration yield a partially populated result.
func ComputeEngineResult(records []ActivityRecord, cfg Config) Result {
	var res Result

	week := TrailingWeek(records, cfg.WindowEnd)
	res.Summary = Summarize(week, cfg.FTPWatts)
	res.Summary.WindowEnd = cfg.WindowEnd
	if res.Summary.WindowEnd.IsZero() {
		res.Summary.WindowEnd = latestStart(week)
	}
	if !res.Summary.WindowEnd.IsZero() {
		res.Summary.WindowStart = res.Summary.WindowEnd.Add(-summaryWindow)
	}

	res.Series = AggregateDaily(records, cfg.Location)
	res.Trend = Trend(res.Series)
	if len(res.Trend) > 0 {
		last := res.Trend[len(res.Trend)-1]
		res.Performance = &last
		res.State = Classify(last.Form)
	} else {
		res.Warnings = append(res.Warnings, WarnInsufficientData)
	}

	if cfg.FTPWatts == nil || *cfg.FTPWatts <= 0 {
		res.Warnings = append(res.Warnings, WarnNoFTP)
	}
	longRide := DefaultLongRideDay
	if cfg.LongRideDay != nil {
		longRide = *cfg.LongRideDay
	} else {
		res.Warnings = append(res.Warnings, WarnNoLongRideDay)
	}
	res.LongRideDay = longRide.String()

	res.Fatigued = FatigueFlag(res.Summary.TotalLoad)
	res.Plan = Prescribe(PlannerInput{
		Fatigued:       res.Fatigued,
		LongRide:       longRide,
		Best20MinPower: res.Summary.Best20MinPower,
	})
	return res
}

func latestStart(records []ActivityRecord) time.Time {
	var latest time.Time
	for _, rec := range records {
		if rec.Start.After(latest) {
			latest = rec.Start
		}
	}
	return latest
}
