// Package fitimport turns activity FIT files into the same row shape as an
// exported activity list, so FIT history can feed the load model directly.
package fitimport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tormoder/fit"

	loadplan "github.com/goncalonina/Road-to-Power"
)

const secondsPerHour = 3600.0

// ErrNoSession is returned for activity files without a session message.
var ErrNoSession = errors.New("activity file has no session message")

// Options controls optional calculations that require athlete-specific inputs.
type Options struct {
	// FTPWatts enables IF/TSS computation; without it the device TSS is used
	// when the file carries one.
	FTPWatts float64
	Logger   *slog.Logger
}

// DecodeFile decodes one activity FIT file into a single raw row.
func DecodeFile(path string, opts Options) (loadplan.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	row, err := Decode(bytes.NewReader(data), opts)
	if err != nil {
		return nil, err
	}
	row["source_file"] = filepath.Base(path)
	return row, nil
}

// Decode reads an activity FIT stream.
func Decode(r io.Reader, opts Options) (loadplan.RawRecord, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode fit file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity fit expected: %w", err)
	}
	if len(activity.Sessions) == 0 || activity.Sessions[0] == nil {
		return nil, ErrNoSession
	}
	return sessionRow(activity.Sessions[0], activity.Records, opts.FTPWatts), nil
}

// DecodeDir decodes every .fit file in dir, oldest first. Files that fail to
// decode are logged and skipped.
func DecodeDir(dir string, opts Options) ([]loadplan.RawRecord, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fit directory: %w", err)
	}

	rows := make([]loadplan.RawRecord, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".fit") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		row, err := DecodeFile(path, opts)
		if err != nil {
			logger.Warn("skipping fit file", "path", path, "error", err)
			continue
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := rows[i]["start_date"].(string)
		b, _ := rows[j]["start_date"].(string)
		return a < b
	})
	logger.Info("decoded fit directory", "dir", dir, "activities", len(rows))
	return rows, nil
}

func sessionRow(session *fit.SessionMsg, records []*fit.RecordMsg, ftp float64) loadplan.RawRecord {
	power := powerSeries(records)
	row := loadplan.RawRecord{
		"sport_type": fmt.Sprint(session.Sport),
	}

	start := validTimeOrZero(session.StartTime)
	if start.IsZero() && len(records) > 0 && records[0] != nil {
		start = validTimeOrZero(records[0].Timestamp)
	}
	if !start.IsZero() {
		row["start_date"] = start.UTC().Format(time.RFC3339)
	}

	elapsed := safePositive(session.GetTotalTimerTimeScaled())
	if elapsed == 0 {
		elapsed = float64(len(power))
	}
	moving := safePositive(session.GetTotalMovingTimeScaled())
	if moving == 0 {
		moving = elapsed
	}
	if elapsed > 0 {
		row["elapsed_time"] = elapsed
		row["moving_time"] = moving
	}
	if d := safePositive(session.GetTotalDistanceScaled()); d > 0 {
		row["distance"] = d
	}

	avgPower := float64(validUint16(session.AvgPower))
	if avgPower == 0 {
		avgPower = average(power)
	}
	np := float64(validUint16(session.NormalizedPower))
	if np == 0 {
		np = normalizedPower(power)
	}
	if avgPower > 0 {
		row["average_watts"] = avgPower
	}
	if np > 0 {
		row["weighted_average_watts"] = np
	}
	if best := bestRollingPower(power, best20Seconds); best > 0 {
		row["best_20min_watts"] = best
	}

	ftp = safePositive(ftp)
	switch {
	case ftp > 0 && np > 0 && elapsed > 0:
		intensity := np / ftp
		row["intensity_factor"] = intensity
		row["tss"] = (elapsed / secondsPerHour) * intensity * intensity * 100.0
	case safePositive(session.GetTrainingStressScoreScaled()) > 0:
		row["tss"] = session.GetTrainingStressScoreScaled()
	}
	return row
}
