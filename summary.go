package loadplan

import (
	"math"
	"time"
)

const (
	secondsPerHour = 3600.0
	metersPerKm    = 1000.0
	summaryWindow  = 7 * 24 * time.Hour
)

// WeekSummary aggregates the trailing week. Nil fields mean "not measured":
// no record in the window carried the source field.
type WeekSummary struct {
	WindowStart     time.Time `json:"window_start,omitempty"`
	WindowEnd       time.Time `json:"window_end,omitempty"`
	Activities      int       `json:"n_activities"`
	TotalHours      float64   `json:"total_hours"`
	TotalDistanceKm *float64  `json:"total_distance_km"`
	TotalLoad       *float64  `json:"total_tss"`
	MeanPower       *float64  `json:"np_mean"`
	IntensityFactor *float64  `json:"if_mean"`
	Best20MinPower  *float64  `json:"best_20min"`
}

// TrailingWeek keeps dated records whose start falls in (end-7d, end].
// A zero end anchors the window on the latest record start.
func TrailingWeek(records []ActivityRecord, end time.Time) []ActivityRecord {
	if end.IsZero() {
		for _, rec := range records {
			if rec.HasStart() && rec.Start.After(end) {
				end = rec.Start
			}
		}
		if end.IsZero() {
			return nil
		}
	}
	start := end.Add(-summaryWindow)

	out := make([]ActivityRecord, 0, len(records))
	for _, rec := range records {
		if !rec.HasStart() {
			continue
		}
		if rec.Start.After(start) && !rec.Start.After(end) {
			out = append(out, rec)
		}
	}
	return out
}

// Summarize aggregates records. The intensity factor is only produced when
// both a mean power and a positive threshold power are known.
func Summarize(records []ActivityRecord, ftpWatts *float64) WeekSummary {
	summary := WeekSummary{Activities: len(records)}
	if len(records) == 0 {
		return summary
	}

	var (
		seconds  float64
		distance optionalSum
		load     optionalSum
		weighted []float64
		avgPower []float64
	)
	for _, rec := range records {
		seconds += rec.MovingSeconds
		distance.add(rec.DistanceMeters)
		load.add(rec.Load)
		if rec.WeightedPower != nil {
			weighted = append(weighted, *rec.WeightedPower)
		}
		if rec.AveragePower != nil {
			avgPower = append(avgPower, *rec.AveragePower)
		}
	}

	summary.TotalHours = round(seconds/secondsPerHour, 2)
	if distance.seen {
		summary.TotalDistanceKm = floatPtr(round(distance.total/metersPerKm, 1))
	}
	if load.seen {
		summary.TotalLoad = floatPtr(round(load.total, 1))
	}

	switch {
	case len(weighted) > 0:
		summary.MeanPower = floatPtr(round(average(weighted), 1))
	case len(avgPower) > 0:
		summary.MeanPower = floatPtr(round(average(avgPower), 1))
	}
	if summary.MeanPower != nil && ftpWatts != nil && *ftpWatts > 0 && isFinite(*ftpWatts) {
		summary.IntensityFactor = floatPtr(round(*summary.MeanPower / *ftpWatts, 2))
	}

	// No peak-power stream exists in exported rows, so the best weighted
	// average stands in for the 20-minute peak.
	if len(weighted) > 0 {
		summary.Best20MinPower = floatPtr(round(maxValue(weighted), 1))
	}
	return summary
}

type optionalSum struct {
	total float64
	seen  bool
}

func (s *optionalSum) add(v *float64) {
	if v == nil {
		return
	}
	s.total += *v
	s.seen = true
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func maxValue(values []float64) float64 {
	max := 0.0
	for i, v := range values {
		if i == 0 || v > max {
			max = v
		}
	}
	return max
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func floatPtr(v float64) *float64 {
	return &v
}
