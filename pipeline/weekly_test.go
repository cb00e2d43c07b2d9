package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	loadplan "github.com/goncalonina/Road-to-Power"
	"github.com/goncalonina/Road-to-Power/config"
	"github.com/goncalonina/Road-to-Power/logging"
	"github.com/goncalonina/Road-to-Power/strava"
)

func weeklyConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Athlete.Name = "Ana"
	cfg.Athlete.FTP = "250"
	cfg.Paths.ExportDir = t.TempDir()
	cfg.Paths.ReportDir = t.TempDir()
	cfg.Paths.DailyFormat = "csv"
	cfg.Strava.TokenFile = filepath.Join(t.TempDir(), "token.json")
	cfg.SMTP.Port = config.DefaultSMTPPort
	return cfg
}

func TestWeeklyKeepsArtifactsWithoutSMTP(t *testing.T) {
	cfg := weeklyConfig(t)
	writeWeekExport(t, cfg.Paths.ExportDir, 60)

	res, err := Weekly(context.Background(), cfg, WeeklyOptions{Send: true, Logger: logging.Discard()})
	require.NoError(t, err)
	_, err = os.Stat(res.ReportPath)
	require.NoError(t, err)
	assert.NotContains(t, res.Engine.Warnings, loadplan.WarnNoFTP)
	assert.Contains(t, res.Engine.Warnings, loadplan.WarnNoLongRideDay)
}

func TestWeeklyFallsBackWhenFetchFails(t *testing.T) {
	cfg := weeklyConfig(t)
	writeWeekExport(t, cfg.Paths.ExportDir, 60)

	res, err := Weekly(context.Background(), cfg, WeeklyOptions{Fetch: true, Logger: logging.Discard()})
	require.NoError(t, err)
	assert.Equal(t, 7, res.Engine.Summary.Activities)
}

func TestFetchStravaWithoutCredentials(t *testing.T) {
	cfg := weeklyConfig(t)
	_, err := FetchStrava(context.Background(), cfg, logging.Discard())
	assert.True(t, errors.Is(err, strava.ErrNoToken))
}

// stravaStub serves recent rides and records the after parameter of each call.
func stravaStub(t *testing.T) (*httptest.Server, func() []time.Time) {
	t.Helper()
	var (
		mu     sync.Mutex
		afters []time.Time
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secs, err := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
		require.NoError(t, err)
		mu.Lock()
		afters = append(afters, time.Unix(secs, 0))
		mu.Unlock()

		var out []map[string]any
		if r.URL.Query().Get("page") == "1" {
			day := time.Now().UTC().AddDate(0, 0, -2).Truncate(24 * time.Hour)
			out = append(out, map[string]any{
				"name":        "Ride",
				"start_date":  day.Add(7 * time.Hour).Format(time.RFC3339),
				"moving_time": 3600,
				"tss":         80,
			})
		}
		require.NoError(t, json.NewEncoder(w).Encode(out))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []time.Time {
		mu.Lock()
		defer mu.Unlock()
		return append([]time.Time(nil), afters...)
	}
}

func authorisedConfig(t *testing.T, apiURL string, days int) *config.Config {
	t.Helper()
	cfg := weeklyConfig(t)
	cfg.Strava.APIURL = apiURL
	cfg.Strava.HistoryDays = days
	require.NoError(t, strava.SaveToken(cfg.Strava.TokenFile, &oauth2.Token{
		AccessToken: "abc",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}))
	return cfg
}

func TestFetchStravaRequestsHistoryWindow(t *testing.T) {
	srv, afters := stravaStub(t)
	cfg := authorisedConfig(t, srv.URL, 90)

	before := time.Now()
	res, err := FetchStrava(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Activities)

	got := afters()
	require.NotEmpty(t, got)
	assert.WithinDuration(t, before.AddDate(0, 0, -90), got[0], time.Minute)
	assert.True(t, got[0].Before(before.AddDate(0, 0, -60)))
}

func TestWeeklyFetchUsesConfiguredHistory(t *testing.T) {
	srv, afters := stravaStub(t)
	cfg := authorisedConfig(t, srv.URL, loadplan.DefaultHistoryDays)

	before := time.Now()
	res, err := Weekly(context.Background(), cfg, WeeklyOptions{Fetch: true, Logger: logging.Discard()})
	require.NoError(t, err)

	got := afters()
	require.NotEmpty(t, got)
	assert.WithinDuration(t, before.AddDate(0, 0, -loadplan.DefaultHistoryDays), got[0], time.Minute)
	assert.Equal(t, filepath.Dir(res.SourcePath), cfg.Paths.ExportDir)
	assert.Equal(t, 1, res.Engine.Summary.Activities)
}
