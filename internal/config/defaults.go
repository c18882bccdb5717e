package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultDataDir          = "data"
	DefaultEncoding         = "utf-8"
	DefaultNoteworthySource = "csv"
	DefaultNoteworthyPath   = "noteworthy.csv"
	DefaultLookbackDays     = 7
	DefaultOutputDir        = "processed_data"
	DefaultFormat           = "json"
	DefaultSessionOpen      = "09:00"
	DefaultWorkers          = 4
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultBatchSize        = 1000
	DefaultFlushInterval    = 1 * time.Second
	DefaultBufferSize       = 10000
	DefaultMetricsPort      = 9090
	DefaultMetricsPath      = "/metrics"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultViewerAddr       = ":5000"
	DefaultReplayRate       = 20
	DefaultReplayBurst      = 1
)

// DefaultMarkets are the feeds processed when feed.markets is empty.
var DefaultMarkets = []string{"OTC", "TSE"}

func (c *Config) applyDefaults() {
	// Feed defaults
	if c.Feed.DataDir == "" {
		c.Feed.DataDir = DefaultDataDir
	}
	if len(c.Feed.Markets) == 0 {
		c.Feed.Markets = append([]string(nil), DefaultMarkets...)
	}
	if c.Feed.Encoding == "" {
		c.Feed.Encoding = DefaultEncoding
	}

	// Noteworthy defaults
	if c.Noteworthy.Source == "" {
		c.Noteworthy.Source = DefaultNoteworthySource
	}
	if c.Noteworthy.Path == "" && c.Noteworthy.Source == DefaultNoteworthySource {
		c.Noteworthy.Path = DefaultNoteworthyPath
	}
	if c.Noteworthy.LookbackDays == 0 {
		c.Noteworthy.LookbackDays = DefaultLookbackDays
	}

	// Output defaults
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if len(c.Output.Formats) == 0 {
		c.Output.Formats = []string{DefaultFormat}
	}

	if c.Session.Open == "" {
		c.Session.Open = DefaultSessionOpen
	}

	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Writers defaults
	if c.Writers.BatchSize == 0 {
		c.Writers.BatchSize = DefaultBatchSize
	}
	if c.Writers.FlushInterval == 0 {
		c.Writers.FlushInterval = DefaultFlushInterval
	}
	if c.Writers.BufferSize == 0 {
		c.Writers.BufferSize = DefaultBufferSize
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}

	// Viewer defaults
	if c.Viewer.Addr == "" {
		c.Viewer.Addr = DefaultViewerAddr
	}
	if c.Viewer.ReplayRate == 0 {
		c.Viewer.ReplayRate = DefaultReplayRate
	}
	if c.Viewer.ReplayBurst == 0 {
		c.Viewer.ReplayBurst = DefaultReplayBurst
	}
}
