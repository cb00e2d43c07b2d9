// Package config loads tool settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	loadplan "github.com/goncalonina/Road-to-Power"
	"github.com/goncalonina/Road-to-Power/logging"
	"github.com/goncalonina/Road-to-Power/mailer"
	"github.com/goncalonina/Road-to-Power/strava"
)

// Defaults.
const (
	DefaultSMTPPort    = 587
	DefaultExportDir   = "strava_exports"
	DefaultReportDir   = "."
	DefaultTokenFile   = "strava_token.json"
	DefaultSchedule    = "0 0 7 * * MON"
	DefaultDailyFormat = "parquet"
)

// Config is the full tool configuration.
type Config struct {
	Athlete  Athlete      `yaml:"athlete"`
	Strava   StravaConfig `yaml:"strava"`
	SMTP     SMTP         `yaml:"smtp"`
	Paths    Paths        `yaml:"paths"`
	Log      Log          `yaml:"log"`
	Schedule string       `yaml:"schedule"`
}

// Athlete holds planning inputs. FTP and LongRideDay stay as text so an
// unusable value becomes a gap rather than a load error.
type Athlete struct {
	Name        string `yaml:"name"`
	FTP         string `yaml:"ftp"`
	LongRideDay string `yaml:"long_ride_day"`
	Timezone    string `yaml:"timezone"`
}

type StravaConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	AuthCode     string `yaml:"auth_code"`
	TokenFile    string `yaml:"token_file"`
	// HistoryDays is the export look-back; the load model needs far more
	// than the reported week.
	HistoryDays int    `yaml:"history_days"`
	APIURL      string `yaml:"api_url"`
}

type SMTP struct {
	Host string   `yaml:"host"`
	Port int      `yaml:"port"`
	User string   `yaml:"user"`
	Pass string   `yaml:"pass"`
	From string   `yaml:"from"`
	To   []string `yaml:"to"`
}

type Paths struct {
	ExportDir string `yaml:"export_dir"`
	ReportDir string `yaml:"report_dir"`
	// DailyFormat is parquet or csv.
	DailyFormat string `yaml:"daily_format"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Load reads path (skipped when empty) and applies environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// FromEnv builds the configuration from the environment alone.
func FromEnv() (*Config, error) {
	return Load("")
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set(&c.Athlete.Name, "ATHLETE_NAME")
	set(&c.Athlete.FTP, "ATHLETE_FTP")
	set(&c.Athlete.LongRideDay, "LONG_RIDE_DAY")
	set(&c.Athlete.Timezone, "ATHLETE_TIMEZONE")

	set(&c.Strava.ClientID, "STRAVA_CLIENT_ID")
	set(&c.Strava.ClientSecret, "STRAVA_CLIENT_SECRET")
	set(&c.Strava.AuthCode, "STRAVA_AUTH_CODE")
	set(&c.Strava.TokenFile, "STRAVA_TOKEN_FILE")
	set(&c.Strava.APIURL, "STRAVA_API_URL")
	if v, ok := lookup("HISTORY_DAYS"); ok && strings.TrimSpace(v) != "" {
		days, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse HISTORY_DAYS: %w", err)
		}
		c.Strava.HistoryDays = days
	}

	set(&c.SMTP.Host, "SMTP_HOST")
	set(&c.SMTP.User, "SMTP_USER")
	set(&c.SMTP.Pass, "SMTP_PASS")
	set(&c.SMTP.From, "SENDER_EMAIL")
	if v, ok := lookup("EMAIL_TO"); ok && strings.TrimSpace(v) != "" {
		c.SMTP.To = splitList(v)
	}
	if v, ok := lookup("SMTP_PORT"); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse SMTP_PORT: %w", err)
		}
		c.SMTP.Port = port
	}

	set(&c.Paths.ExportDir, "EXPORT_DIR")
	set(&c.Paths.ReportDir, "REPORT_DIR")
	set(&c.Paths.DailyFormat, "DAILY_FORMAT")

	set(&c.Log.Level, "LOG_LEVEL")
	set(&c.Log.Format, "LOG_FORMAT")
	set(&c.Log.File, "LOG_FILE")

	set(&c.Schedule, "REPORT_SCHEDULE")
	return nil
}

func (c *Config) applyDefaults() {
	if c.SMTP.Port == 0 {
		c.SMTP.Port = DefaultSMTPPort
	}
	if c.Paths.ExportDir == "" {
		c.Paths.ExportDir = DefaultExportDir
	}
	if c.Paths.ReportDir == "" {
		c.Paths.ReportDir = DefaultReportDir
	}
	if c.Paths.DailyFormat == "" {
		c.Paths.DailyFormat = DefaultDailyFormat
	}
	if c.Strava.HistoryDays == 0 {
		c.Strava.HistoryDays = loadplan.DefaultHistoryDays
	}
	if c.Strava.TokenFile == "" {
		c.Strava.TokenFile = DefaultTokenFile
	}
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
}

// Validate reports settings no tool can work with. Planning gaps such as a
// missing FTP are not errors.
func (c *Config) Validate() error {
	var errs []error
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("smtp.port out of range: %d", c.SMTP.Port))
	}
	if c.Strava.HistoryDays < loadplan.FatigueSpan {
		errs = append(errs, fmt.Errorf("strava.history_days must be at least %d, got %d", loadplan.FatigueSpan, c.Strava.HistoryDays))
	}
	switch strings.ToLower(c.Paths.DailyFormat) {
	case "parquet", "csv":
	default:
		errs = append(errs, fmt.Errorf("paths.daily_format must be parquet or csv, got %q", c.Paths.DailyFormat))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.New(c.Logging()); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	return errors.Join(errs...)
}

// Location resolves the athlete's time zone; empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Athlete.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Athlete.Timezone)
	if err != nil {
		return nil, fmt.Errorf("athlete.timezone: %w", err)
	}
	return loc, nil
}

// FTP returns the configured threshold power, or nil when unset or unusable.
func (c *Config) FTP() *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Athlete.FTP), 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

// Engine maps the configuration onto the planning engine's inputs.
func (c *Config) Engine() loadplan.Config {
	out := loadplan.Config{FTPWatts: c.FTP()}
	if day, ok := loadplan.ParseLongRideDay(c.Athlete.LongRideDay); ok {
		out.LongRideDay = &day
	}
	if loc, err := c.Location(); err == nil {
		out.Location = loc
	}
	return out
}

// SMTPConfigured reports whether every setting needed to send mail is present.
func (c *Config) SMTPConfigured() bool {
	return c.Mail().Complete()
}

func (c *Config) Mail() mailer.Config {
	return mailer.Config{
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.User,
		Password: c.SMTP.Pass,
		From:     c.SMTP.From,
		To:       c.SMTP.To,
	}
}

func (c *Config) StravaAuth() strava.Auth {
	return strava.Auth{
		ClientID:     c.Strava.ClientID,
		ClientSecret: c.Strava.ClientSecret,
		Code:         c.Strava.AuthCode,
		TokenFile:    c.Strava.TokenFile,
	}
}

func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format, File: c.Log.File}
}

func splitList(v string) []string {
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
