package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quotefeed"

// Line results.
const (
	LineDecoded = "decoded"
	LineSkipped = "skipped"
	LineError   = "error"
)

// Unit statuses.
const (
	UnitOK      = "ok"
	UnitFailed  = "failed"
	UnitSkipped = "skipped"
)

// Metrics holds the pipeline collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	lines        *prometheus.CounterVec
	records      *prometheus.CounterVec
	units        *prometheus.CounterVec
	symbols      *prometheus.CounterVec
	unitDuration prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_total",
			Help:      "Feed lines read, by result.",
		}, []string{"result"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Decoded records retained, by kind.",
		}, []string{"kind"}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Processed (market, date) units, by status.",
		}, []string{"status"}),
		symbols: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "symbols_written_total",
			Help:      "Per-symbol outputs written, by format.",
		}, []string{"format"}),
		unitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_duration_seconds",
			Help:      "Wall time to process one unit.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
	m.registry.MustRegister(
		m.lines, m.records, m.units, m.symbols, m.unitDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// AddLines counts scanned lines.
func (m *Metrics) AddLines(decoded, skipped, errored int) {
	if m == nil {
		return
	}
	m.lines.WithLabelValues(LineDecoded).Add(float64(decoded))
	m.lines.WithLabelValues(LineSkipped).Add(float64(skipped))
	m.lines.WithLabelValues(LineError).Add(float64(errored))
}

// AddRecords counts retained records.
func (m *Metrics) AddRecords(trades, depths int) {
	if m == nil {
		return
	}
	m.records.WithLabelValues("trade").Add(float64(trades))
	m.records.WithLabelValues("depth").Add(float64(depths))
}

// ObserveUnit records a unit outcome and its duration.
func (m *Metrics) ObserveUnit(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.units.WithLabelValues(status).Inc()
	m.unitDuration.Observe(d.Seconds())
}

// SymbolWritten counts one output of format.
func (m *Metrics) SymbolWritten(format string) {
	if m == nil {
		return
	}
	m.symbols.WithLabelValues(format).Inc()
}
