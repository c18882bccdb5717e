package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Feed.DataDir == "" {
		return errors.New("feed.data_dir is required")
	}
	switch strings.ToLower(c.Feed.Encoding) {
	case "utf-8", "utf8", "big5":
	default:
		return fmt.Errorf("feed.encoding %q must be utf-8 or big5", c.Feed.Encoding)
	}

	switch c.Noteworthy.Source {
	case "csv", "parquet":
		if c.Noteworthy.Path == "" {
			return errors.New("noteworthy.path is required")
		}
	case "postgres":
		if !c.Database.Enabled {
			return errors.New("noteworthy.source postgres requires database.enabled")
		}
	default:
		return fmt.Errorf("noteworthy.source %q must be csv, parquet or postgres", c.Noteworthy.Source)
	}
	if c.Noteworthy.LookbackDays < 1 {
		return errors.New("noteworthy.lookback_days must be >= 1")
	}

	if c.Output.Dir == "" {
		return errors.New("output.dir is required")
	}
	for _, f := range c.Output.Formats {
		if f != "json" && f != "parquet" {
			return fmt.Errorf("output.formats: unknown format %q", f)
		}
	}

	if _, err := c.Session.OpenOffset(); err != nil {
		return fmt.Errorf("session.open: %w", err)
	}

	if c.Workers < 1 {
		return errors.New("workers must be >= 1")
	}

	if c.Database.Enabled {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	if c.Writers.BatchSize < 1 {
		return errors.New("writers.batch_size must be >= 1")
	}
	if c.Writers.BufferSize < 1 {
		return errors.New("writers.buffer_size must be >= 1")
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be 1-65535, got %d", c.Metrics.Port)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format %q must be text or json", c.Logging.Format)
	}

	if c.Viewer.ReplayRate <= 0 {
		return errors.New("viewer.replay_rate must be > 0")
	}
	if c.Viewer.ReplayBurst < 1 {
		return errors.New("viewer.replay_burst must be >= 1")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
