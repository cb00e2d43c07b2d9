package loadplan

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildWeeklyNotesOmitsUnknownFields(t *testing.T) {
	res := ComputeEngineResult(nil, Config{})
	body := BuildWeeklyNotes(res, "", time.Time{})

	assert.True(t, strings.HasPrefix(body, "Hi athlete,"))
	assert.Contains(t, body, "- Sessions: 0")
	assert.NotContains(t, body, "Total distance")
	assert.NotContains(t, body, "Total TSS")
	assert.Contains(t, body, "Not enough dated activities")
	assert.Contains(t, body, "- Monday: "+workoutRecovery)
	assert.NotContains(t, body, "Generated")
}

func TestBuildWeeklyNotesFullResult(t *testing.T) {
	res := ComputeFromRaw(consecutiveWeek(100), Config{FTPWatts: floatPtr(250)})
	now := time.Date(2025, 10, 13, 7, 0, 0, 0, time.UTC)
	body := BuildWeeklyNotes(res, "Gonçalo", now)

	assert.Contains(t, body, "Hi Gonçalo,")
	assert.Contains(t, body, "- Total distance: 210.0 km")
	assert.Contains(t, body, "- Total TSS: 700.0")
	assert.Contains(t, body, "- Mean IF (approx): 0.81")
	assert.Contains(t, body, "(fresh/positive trend)")
	assert.Contains(t, body, "- Sunday: "+workoutLongRide)
	assert.Contains(t, body, "Latest best 20': 206.0 W")
	assert.Contains(t, body, "Generated 2025-10-13 07:00")
	assert.Equal(t, "Weekly report - 2025-10-13", ReportSubject(now))
}
