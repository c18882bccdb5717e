package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.AddLines(10, 5, 2)
	m.AddLines(1, 0, 0)
	m.AddRecords(7, 4)
	m.ObserveUnit(UnitOK, 2*time.Second)
	m.ObserveUnit(UnitFailed, time.Second)
	m.SymbolWritten("json")
	m.SymbolWritten("json")

	assert.Equal(t, 11.0, testutil.ToFloat64(m.lines.WithLabelValues(LineDecoded)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.lines.WithLabelValues(LineSkipped)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.lines.WithLabelValues(LineError)))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.records.WithLabelValues("trade")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.units.WithLabelValues(UnitOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.symbols.WithLabelValues("json")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AddLines(1, 1, 1)
		m.AddRecords(1, 1)
		m.ObserveUnit(UnitSkipped, time.Second)
		m.SymbolWritten("parquet")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.SymbolWritten("parquet")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), `quotefeed_symbols_written_total{format="parquet"} 1`), "body missing counter")
}
