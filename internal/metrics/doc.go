// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Feed lines by decode result and records by kind
//   - Unit (market, date) outcomes and durations
//   - Symbols written per output format
//
// A nil *Metrics is valid and records nothing.
package metrics
