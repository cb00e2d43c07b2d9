package loadplan

import (
	"sort"
	"time"
)

const dateKeyLayout = "2006-01-02"

// DailyLoad is the summed session load of one calendar day.
type DailyLoad struct {
	Date time.Time `json:"date"`
	Load float64   `json:"load"`
}

// DailySeries is a gap-free, chronological run of days.
type DailySeries []DailyLoad

// AggregateDaily sums record load per calendar day (in loc, UTC when nil) and
// zero-fills every day between the first and last dated record. Records
// without a start instant are dropped; an absent load counts as zero.
func AggregateDaily(records []ActivityRecord, loc *time.Location) DailySeries {
	if loc == nil {
		loc = time.UTC
	}

	perDay := make(map[string]float64)
	keys := make([]string, 0)
	for _, rec := range records {
		if !rec.HasStart() {
			continue
		}
		key := rec.Start.In(loc).Format(dateKeyLayout)
		if _, seen := perDay[key]; !seen {
			keys = append(keys, key)
			perDay[key] = 0
		}
		if rec.Load != nil {
			perDay[key] += *rec.Load
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)

	first, _ := time.ParseInLocation(dateKeyLayout, keys[0], loc)
	last, _ := time.ParseInLocation(dateKeyLayout, keys[len(keys)-1], loc)

	series := make(DailySeries, 0, daysBetween(first, last)+1)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		series = append(series, DailyLoad{
			Date: d,
			Load: perDay[d.Format(dateKeyLayout)],
		})
	}
	return series
}

// First returns the earliest day; ok is false for an empty series.
func (s DailySeries) First() (DailyLoad, bool) {
	if len(s) == 0 {
		return DailyLoad{}, false
	}
	return s[0], true
}

// Last returns the latest day; ok is false for an empty series.
func (s DailySeries) Last() (DailyLoad, bool) {
	if len(s) == 0 {
		return DailyLoad{}, false
	}
	return s[len(s)-1], true
}

// Contiguous reports whether consecutive entries are exactly one calendar day apart.
func (s DailySeries) Contiguous() bool {
	for i := 1; i < len(s); i++ {
		next := s[i-1].Date.AddDate(0, 0, 1)
		if s[i].Date.Format(dateKeyLayout) != next.Format(dateKeyLayout) {
			return false
		}
	}
	return true
}

// Loads returns the load column.
func (s DailySeries) Loads() []float64 {
	out := make([]float64, len(s))
	for i, d := range s {
		out[i] = d.Load
	}
	return out
}

// daysBetween counts calendar days, so DST shifts in loc do not matter.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
