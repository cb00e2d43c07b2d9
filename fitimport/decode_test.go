package fitimport

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"

	loadplan "github.com/goncalonina/Road-to-Power"
)

var rideStart = time.Date(2025, 10, 4, 8, 0, 0, 0, time.UTC)

// buildRideFIT encodes a steady ride with one power sample per second.
func buildRideFIT(t *testing.T, start time.Time, seconds int, watts uint16) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	require.NoError(t, err)
	activity, err := file.Activity()
	require.NoError(t, err)

	for i := 0; i < seconds; i++ {
		rec := fit.NewRecordMsg()
		rec.Timestamp = start.Add(time.Duration(i) * time.Second)
		rec.Power = watts
		rec.HeartRate = 140
		activity.Records = append(activity.Records, rec)
	}

	session := fit.NewSessionMsg()
	session.Timestamp = start.Add(time.Duration(seconds) * time.Second)
	session.StartTime = start
	session.Sport = fit.SportCycling
	session.TotalTimerTime = uint32(seconds * 1000)
	session.TotalElapsedTime = uint32(seconds * 1000)
	session.TotalDistance = 1_250_000
	activity.Sessions = append(activity.Sessions, session)

	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))
	return buf.Bytes()
}

func TestDecodeSteadyRide(t *testing.T) {
	data := buildRideFIT(t, rideStart, 25*60, 200)

	row, err := Decode(bytes.NewReader(data), Options{FTPWatts: 250})
	require.NoError(t, err)

	assert.Equal(t, rideStart.Format(time.RFC3339), row["start_date"])
	assert.InDelta(t, 1500.0, row["elapsed_time"], 1e-6)
	assert.InDelta(t, 1500.0, row["moving_time"], 1e-6)
	assert.InDelta(t, 12500.0, row["distance"], 1e-6)
	assert.InDelta(t, 200.0, row["weighted_average_watts"], 1e-6)
	assert.InDelta(t, 200.0, row["best_20min_watts"], 1e-6)
	assert.InDelta(t, 0.8, row["intensity_factor"], 1e-9)
	assert.InDelta(t, 1500.0/3600.0*0.64*100, row["tss"], 1e-6)

	rec := loadplan.NormalizeRecord(row)
	require.NotNil(t, rec.Load)
	assert.True(t, rec.Start.Equal(rideStart))
}

func TestDecodeWithoutFTPHasNoComputedTSS(t *testing.T) {
	data := buildRideFIT(t, rideStart, 120, 180)

	row, err := Decode(bytes.NewReader(data), Options{})
	require.NoError(t, err)
	_, hasIF := row["intensity_factor"]
	assert.False(t, hasIF)
	_, hasTSS := row["tss"]
	assert.False(t, hasTSS)
	assert.InDelta(t, 180.0, row["average_watts"], 1e-6)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a fit file")), Options{})
	assert.Error(t, err)
}

func TestDecodeDirSkipsBadFilesAndSorts(t *testing.T) {
	dir := t.TempDir()
	later := buildRideFIT(t, rideStart.AddDate(0, 0, 2), 60, 210)
	earlier := buildRideFIT(t, rideStart, 60, 190)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_later.fit"), later, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_earlier.FIT"), earlier, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.fit"), []byte("nope"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	rows, err := DecodeDir(dir, Options{FTPWatts: 250})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b_earlier.FIT", rows[0]["source_file"])
	assert.Equal(t, "a_later.fit", rows[1]["source_file"])
}

func TestNormalizedPowerSteadyEqualsAverage(t *testing.T) {
	power := make([]float64, 600)
	for i := range power {
		power[i] = 230
	}
	assert.InDelta(t, 230.0, normalizedPower(power), 1e-9)
	assert.InDelta(t, 230.0, bestRollingPower(power, 300), 1e-9)
	assert.Equal(t, 0.0, normalizedPower(nil))
}

func TestBestRollingPowerFindsPeak(t *testing.T) {
	power := []float64{100, 100, 300, 300, 100}
	assert.InDelta(t, 300.0, bestRollingPower(power, 2), 1e-9)
	assert.InDelta(t, 180.0, bestRollingPower(power, 10), 1e-9)
}
