// Package config handles threadreport configuration loading and validation.
package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/tOgg1/threadreport/internal/logging"
	"github.com/tOgg1/threadreport/internal/report"
	"github.com/tOgg1/threadreport/internal/source"
)

// Report output formats.
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// Config is the root configuration structure for threadreport.
type Config struct {
	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Ingest settings
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`

	// Report settings
	Report ReportConfig `yaml:"report" mapstructure:"report"`

	// Database settings for the sqlite report format
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// IngestConfig controls how the message log is read.
type IngestConfig struct {
	// OnMalformed is skip or abort.
	OnMalformed string `yaml:"on_malformed" mapstructure:"on_malformed"`
}

// ReportConfig controls how the report is rendered.
type ReportConfig struct {
	// Format is csv or sqlite.
	Format string `yaml:"format" mapstructure:"format"`

	// DateLayout is the Go time layout of the Date column.
	DateLayout string `yaml:"date_layout" mapstructure:"date_layout"`

	// Timezone is the IANA zone dates are rendered in.
	Timezone string `yaml:"timezone" mapstructure:"timezone"`

	// StatsFormat is csv or table.
	StatsFormat string `yaml:"stats_format" mapstructure:"stats_format"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	// BusyTimeoutMs is how long to wait for a locked database.
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Ingest: IngestConfig{
			OnMalformed: string(source.MalformedSkip),
		},
		Report: ReportConfig{
			Format:      FormatCSV,
			DateLayout:  report.DefaultDateLayout,
			Timezone:    "UTC",
			StatsFormat: string(report.StatsCSV),
		},
		Database: DatabaseConfig{
			BusyTimeoutMs: 5000,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not one of trace, debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	if _, err := source.ParsePolicy(c.Ingest.OnMalformed); err != nil {
		return fmt.Errorf("ingest.on_malformed: %w", err)
	}

	switch c.Report.Format {
	case FormatCSV, FormatSQLite:
	default:
		return fmt.Errorf("report.format must be csv or sqlite, got %q", c.Report.Format)
	}
	if c.Report.DateLayout == "" {
		return fmt.Errorf("report.date_layout must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := report.ParseStatsFormat(c.Report.StatsFormat); err != nil {
		return fmt.Errorf("report.stats_format: %w", err)
	}

	if c.Database.BusyTimeoutMs < 0 {
		return fmt.Errorf("database.busy_timeout_ms must not be negative")
	}
	return nil
}

// Location loads the configured report timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Report.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("report.timezone %q: %w", c.Report.Timezone, err)
	}
	return loc, nil
}

// Policy returns the malformed-record policy.
func (c *Config) Policy() source.MalformedPolicy {
	policy, err := source.ParsePolicy(c.Ingest.OnMalformed)
	if err != nil {
		return source.MalformedSkip
	}
	return policy
}

// StatsFormat returns the stats output format.
func (c *Config) StatsFormat() report.StatsFormat {
	format, err := report.ParseStatsFormat(c.Report.StatsFormat)
	if err != nil {
		return report.StatsCSV
	}
	return format
}

// LogConfig converts the logging section for logging.Init.
func (c *Config) LogConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.EnableCaller = c.Logging.EnableCaller
	return cfg
}
