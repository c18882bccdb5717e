package config

import (
	"fmt"
	"time"
)

// Config is the root configuration shared by the decode, query and viewer
// commands.
type Config struct {
	Feed       FeedConfig       `yaml:"feed"`
	Noteworthy NoteworthyConfig `yaml:"noteworthy"`
	Output     OutputConfig     `yaml:"output"`
	Session    SessionConfig    `yaml:"session"`
	Workers    int              `yaml:"workers"`
	Database   DBConfig         `yaml:"database"`
	Writers    WritersConfig    `yaml:"writers"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
	Viewer     ViewerConfig     `yaml:"viewer"`
}

// FeedConfig locates raw quote files.
type FeedConfig struct {
	DataDir  string   `yaml:"data_dir" split_words:"true"`
	Markets  []string `yaml:"markets"`
	Encoding string   `yaml:"encoding"` // utf-8 or big5
}

// NoteworthyConfig selects where the per-day noteworthy symbol lists come from.
type NoteworthyConfig struct {
	Source       string `yaml:"source"` // csv, parquet or postgres
	Path         string `yaml:"path"`
	Query        string `yaml:"query"`
	LookbackDays int    `yaml:"lookback_days" split_words:"true"`
}

// OutputConfig controls the sinks.
type OutputConfig struct {
	Dir          string   `yaml:"dir"`
	Formats      []string `yaml:"formats"` // json, parquet
	SkipExisting *bool    `yaml:"skip_existing" split_words:"true"`
}

// ShouldSkipExisting reports whether units with complete output are skipped.
func (o OutputConfig) ShouldSkipExisting() bool {
	return o.SkipExisting == nil || *o.SkipExisting
}

// HasFormat reports whether format is enabled.
func (o OutputConfig) HasFormat(format string) bool {
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// SessionConfig restricts analytics to the regular session.
type SessionConfig struct {
	Open   string `yaml:"open"` // HH:MM
	Filter *bool  `yaml:"filter"`
}

// Enabled reports whether out-of-session records are filtered.
func (s SessionConfig) Enabled() bool {
	return s.Filter == nil || *s.Filter
}

// OpenOffset parses Open as an offset from midnight.
func (s SessionConfig) OpenOffset() (time.Duration, error) {
	t, err := time.Parse("15:04", s.Open)
	if err != nil {
		return 0, fmt.Errorf("parse session open %q: %w", s.Open, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// DBConfig holds the optional TimescaleDB connection.
type DBConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode" split_words:"true"`
	MaxConns int    `yaml:"max_conns" split_words:"true"`
	MinConns int    `yaml:"min_conns" split_words:"true"`
}

// WritersConfig holds batch writer settings.
type WritersConfig struct {
	BatchSize     int           `yaml:"batch_size" split_words:"true"`
	FlushInterval time.Duration `yaml:"flush_interval" split_words:"true"`
	BufferSize    int           `yaml:"buffer_size" split_words:"true"`
}

// MetricsConfig holds Prometheus metrics settings. The decode command only
// serves metrics when Enabled; the viewer always mounts Path.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// ViewerConfig holds the HTTP viewer settings.
type ViewerConfig struct {
	Addr        string  `yaml:"addr"`
	ReplayRate  float64 `yaml:"replay_rate" split_words:"true"` // Trades per second
	ReplayBurst int     `yaml:"replay_burst" split_words:"true"`
}
