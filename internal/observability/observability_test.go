package observability

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("day processed", "date", "2022-09-14", "samples", 8640)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "exactly one JSON line: %s", buf.String())
	assert.Equal(t, "day processed", entry["msg"])
	assert.Equal(t, "pv-monitoring-etl", entry["service"])
	assert.Equal(t, "2022-09-14", entry["date"])
	assert.EqualValues(t, 8640, entry["samples"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "TEXT")

	logger.Debug("site loaded", "timezone", "US/Pacific")
	assert.Contains(t, buf.String(), "msg=\"site loaded\"")
	assert.Contains(t, buf.String(), "timezone=US/Pacific")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestNewMetricsForTesting(t *testing.T) {
	// Two instances must not collide.
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.DaysProcessed.WithLabelValues("success").Inc()
	a.Coefficient.Set(0.88)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.DaysProcessed.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.DaysProcessed.WithLabelValues("success")))
	assert.Equal(t, 0.88, testutil.ToFloat64(a.Coefficient))
}

func TestMetricNames(t *testing.T) {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)

	m.DaysProcessed.WithLabelValues("malformed").Inc()
	m.SamplesProcessed.Add(8640)

	n, err := testutil.GatherAndCount(reg, "pv_etl_days_processed_total", "pv_etl_samples_processed_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
