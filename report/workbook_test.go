package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	loadplan "github.com/goncalonina/Road-to-Power"
)

func weekOfRides() []loadplan.RawRecord {
	start := time.Date(2025, 10, 6, 7, 0, 0, 0, time.UTC)
	rows := make([]loadplan.RawRecord, 0, 7)
	for i := 0; i < 7; i++ {
		rows = append(rows, loadplan.RawRecord{
			"name":                   "Ride",
			"start_date":             start.AddDate(0, 0, i).Format(time.RFC3339),
			"moving_time":            3600,
			"distance":               30000,
			"tss":                    60,
			"weighted_average_watts": 210,
		})
	}
	return rows
}

func TestWorkbookSheets(t *testing.T) {
	res := loadplan.ComputeFromRaw(weekOfRides(), loadplan.Config{})
	now := time.Date(2025, 10, 13, 7, 0, 0, 0, time.UTC)

	f, err := Workbook(res, now)
	require.NoError(t, err)
	assert.Equal(t, []string{SheetSummary, SheetPlan, SheetDailyLoad}, f.GetSheetList())

	path := filepath.Join(t.TempDir(), "weekly.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	back, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer back.Close()

	summary, err := back.GetRows(SheetSummary)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(summary), 3)
	assert.Equal(t, []string{"Metric", "Value"}, summary[0])
	assert.Equal(t, []string{"Activities", "7"}, summary[1])
	assert.Equal(t, []string{"Total hours", "7"}, summary[2])

	plan, err := back.GetRows(SheetPlan)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(plan), 8)
	assert.Equal(t, "Monday", plan[1][0])
	assert.Equal(t, "Sunday", plan[7][0])
	assert.Equal(t, res.Plan.Days[6].Workout, plan[7][1])

	daily, err := back.GetRows(SheetDailyLoad)
	require.NoError(t, err)
	require.Len(t, daily, 8)
	assert.Equal(t, []string{"Date", "Load", "Fitness", "Fatigue", "Form"}, daily[0])
	assert.Equal(t, "2025-10-06", daily[1][0])
	assert.Equal(t, "60", daily[1][1])
	// The first day seeds both averages, so form is zero.
	assert.Equal(t, "0", daily[1][4])
}

func TestWorkbookEmptyResult(t *testing.T) {
	res := loadplan.ComputeFromRaw(nil, loadplan.Config{})

	f, err := Workbook(res, time.Time{})
	require.NoError(t, err)
	defer f.Close()

	daily, err := f.GetRows(SheetDailyLoad)
	require.NoError(t, err)
	assert.Len(t, daily, 1)

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	var warnings int
	for _, row := range summary {
		if len(row) > 0 && row[0] == "Warning" {
			warnings++
		}
	}
	assert.Equal(t, len(res.Warnings), warnings)
}
