package telemetry

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Treatment(t *testing.T) {
	m := NewMetrics()

	m.ObserveTreatment("parse", "success", 120*time.Millisecond)
	m.ObserveTreatment("parse", "success", 80*time.Millisecond)
	m.ObserveTreatment("parse", "skip", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.treatmentRuns.WithLabelValues("parse", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.treatmentRuns.WithLabelValues("parse", "skip")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.treatmentDuration))
}

func TestMetrics_DeletedFiles(t *testing.T) {
	m := NewMetrics()

	m.AddDeletedFiles("replace", 3)
	m.AddDeletedFiles("replace", 0)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.deletedFiles.WithLabelValues("replace")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveTreatment("x", "success", time.Second)
		m.AddDeletedFiles("replace", 1)
		m.ObserveView(2)
		m.ObserveFlow("f", "SUCCEEDED", time.Second)
		m.IncSinkError("postgres")
	})
	assert.NoError(t, m.Push(t.Context(), "http://unused", "myx"))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveFlow("meteo", "SUCCEEDED", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `myx_flow_runs_total{flow="meteo",status="SUCCEEDED"} 1`))
}

func TestMetrics_Push(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMetrics()
	m.ObserveTreatment("parse", "success", time.Second)

	require.NoError(t, m.Push(t.Context(), srv.URL, "myx"))
	assert.Equal(t, "/metrics/job/myx", gotPath)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", ParseLevel("debug").String())
	assert.Equal(t, "WARN", ParseLevel("WARN").String())
	assert.Equal(t, "INFO", ParseLevel("").String())
}

func TestMiddleware(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	mux.HandleFunc("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	h := Chain(Recovery(logger), AccessLog(logger))(mux)

	tests := []struct {
		path   string
		status int
		log    string
	}{
		{path: "/ok", status: http.StatusTeapot, log: "status=418"},
		{path: "/panic", status: http.StatusInternalServerError, log: "panic recovered"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, buf.String(), tt.log)
		})
	}
}
