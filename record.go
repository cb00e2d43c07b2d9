package loadplan

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// RawRecord is one exported activity row as handed over by an importer
// (CSV row, Strava JSON object, decoded FIT session). Unknown keys are ignored.
type RawRecord map[string]any

// ActivityRecord is a normalized training session.
type ActivityRecord struct {
	Name           string    `json:"name,omitempty"`
	SportType      string    `json:"sport_type,omitempty"`
	Start          time.Time `json:"start"`
	MovingSeconds  float64   `json:"moving_seconds"`
	DistanceMeters *float64  `json:"distance_meters,omitempty"`
	Load           *float64  `json:"load,omitempty"`
	WeightedPower  *float64  `json:"weighted_power_watts,omitempty"`
	AveragePower   *float64  `json:"average_power_watts,omitempty"`
}

// HasStart reports whether the record carries a usable start instant.
func (r ActivityRecord) HasStart() bool {
	return !r.Start.IsZero()
}

var (
	startKeys    = []string{"start_date", "start_date_local", "start_time", "timestamp"}
	durationKeys = []string{"moving_time", "elapsed_time", "duration"}
	loadKeys     = []string{"tss", "workout_tss", "training_stress_score"}
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NormalizeRecords converts every raw row; it never fails.
func NormalizeRecords(raw []RawRecord) []ActivityRecord {
	out := make([]ActivityRecord, 0, len(raw))
	for _, r := range raw {
		out = append(out, NormalizeRecord(r))
	}
	return out
}

// NormalizeRecord applies the field fallback chains. Missing optional fields
// stay nil; present but malformed numbers coerce to zero.
func NormalizeRecord(raw RawRecord) ActivityRecord {
	rec := ActivityRecord{
		Name:      stringField(raw, "name"),
		SportType: stringField(raw, "sport_type", "type"),
	}

	if v, ok := firstPresent(raw, startKeys...); ok {
		rec.Start = parseInstant(v)
	}
	if v, ok := firstPresent(raw, durationKeys...); ok {
		rec.MovingSeconds = coerceNonNegative(v)
	}
	rec.DistanceMeters = optionalNumber(raw, "distance")
	rec.Load = optionalNumber(raw, loadKeys...)
	rec.WeightedPower = optionalNumber(raw, "weighted_average_watts")
	rec.AveragePower = optionalNumber(raw, "average_watts")
	return rec
}

// firstPresent returns the first key carrying a non-blank value.
func firstPresent(raw RawRecord, keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func optionalNumber(raw RawRecord, keys ...string) *float64 {
	v, ok := firstPresent(raw, keys...)
	if !ok {
		return nil
	}
	n := coerceNonNegative(v)
	return &n
}

func stringField(raw RawRecord, keys ...string) string {
	v, ok := firstPresent(raw, keys...)
	if !ok {
		return ""
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s)
	}
	return ""
}

func coerceNonNegative(v any) float64 {
	n, ok := toFloat(v)
	if !ok {
		return 0
	}
	return safePositive(n)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Instants outside this range are treated as malformed; a millisecond epoch
// read as seconds lands tens of millennia ahead.
var (
	earliestInstant = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	latestInstant   = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)

func parseInstant(v any) time.Time {
	t := decodeInstant(v)
	if t.Before(earliestInstant) || !t.Before(latestInstant) {
		return time.Time{}
	}
	return t
}

func decodeInstant(v any) time.Time {
	switch x := v.(type) {
	case time.Time:
		return x
	case *time.Time:
		if x == nil {
			return time.Time{}
		}
		return *x
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
			return time.Unix(secs, 0).UTC()
		}
		return time.Time{}
	default:
		secs, ok := toFloat(v)
		if !ok || !isFinite(secs) || secs <= 0 || secs > float64(latestInstant.Unix()) {
			return time.Time{}
		}
		return time.Unix(int64(secs), 0).UTC()
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func safePositive(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return v
}
