package loadplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayAt(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func loadRecord(start time.Time, load float64) ActivityRecord {
	return ActivityRecord{Start: start, MovingSeconds: 3600, Load: floatPtr(load)}
}

func TestAggregateDailyZeroFillsGaps(t *testing.T) {
	records := []ActivityRecord{
		loadRecord(dayAt(2025, 10, 10, 8), 80),
		loadRecord(dayAt(2025, 10, 1, 8), 50),
		loadRecord(dayAt(2025, 10, 1, 18), 30),
		loadRecord(dayAt(2025, 10, 5, 7), 120),
	}

	series := AggregateDaily(records, nil)
	require.Len(t, series, 10)
	assert.True(t, series.Contiguous())

	first, _ := series.First()
	last, _ := series.Last()
	assert.Equal(t, "2025-10-01", first.Date.Format(dateKeyLayout))
	assert.Equal(t, "2025-10-10", last.Date.Format(dateKeyLayout))
	assert.Equal(t, daysBetween(first.Date, last.Date)+1, len(series))

	assert.Equal(t, []float64{80, 0, 0, 0, 120, 0, 0, 0, 0, 80}, series.Loads())
}

func TestAggregateDailyDropsUndatedAndTreatsMissingLoadAsZero(t *testing.T) {
	records := []ActivityRecord{
		{Start: dayAt(2025, 10, 1, 8)},
		{Load: floatPtr(500)},
		loadRecord(dayAt(2025, 10, 2, 8), 40),
	}

	series := AggregateDaily(records, nil)
	require.Len(t, series, 2)
	assert.Equal(t, []float64{0, 40}, series.Loads())
}

func TestAggregateDailyEmpty(t *testing.T) {
	assert.Empty(t, AggregateDaily(nil, nil))
	assert.Empty(t, AggregateDaily([]ActivityRecord{{Load: floatPtr(10)}}, nil))

	var empty DailySeries
	_, ok := empty.First()
	assert.False(t, ok)
	_, ok = empty.Last()
	assert.False(t, ok)
}

func TestAggregateDailySingleDay(t *testing.T) {
	series := AggregateDaily([]ActivityRecord{loadRecord(dayAt(2025, 10, 1, 8), 75)}, nil)
	require.Len(t, series, 1)
	assert.Equal(t, 75.0, series[0].Load)
	assert.True(t, series.Contiguous())
}

func TestAggregateDailyUsesLocationForCalendarDay(t *testing.T) {
	lisbon := time.FixedZone("WEST", 3600)
	// 23:30 UTC on the 1st is already the 2nd at UTC+1.
	records := []ActivityRecord{
		loadRecord(time.Date(2025, 10, 1, 23, 30, 0, 0, time.UTC), 60),
		loadRecord(dayAt(2025, 10, 2, 10), 40),
	}

	assert.Len(t, AggregateDaily(records, time.UTC), 2)

	local := AggregateDaily(records, lisbon)
	require.Len(t, local, 1)
	assert.Equal(t, 100.0, local[0].Load)
}

func TestAggregateDailyAcrossDSTKeepsOneEntryPerDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Lisbon")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	records := []ActivityRecord{
		loadRecord(time.Date(2025, 10, 20, 9, 0, 0, 0, loc), 50),
		loadRecord(time.Date(2025, 10, 30, 9, 0, 0, 0, loc), 50),
	}

	series := AggregateDaily(records, loc)
	require.Len(t, series, 11)
	assert.True(t, series.Contiguous())
}
