package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics — Prometheus метрики Myx.
//
// Собственный Registry вместо глобального: разовые запуски CLI
// отправляют его в Pushgateway целиком.
// Все методы безопасны для nil-получателя.
type Metrics struct {
	Registry *prometheus.Registry

	treatmentRuns     *prometheus.CounterVec
	treatmentDuration *prometheus.HistogramVec
	deletedFiles      *prometheus.CounterVec
	viewFiles         prometheus.Histogram
	flowRuns          *prometheus.CounterVec
	flowDuration      *prometheus.HistogramVec
	sinkErrors        *prometheus.CounterVec
}

// NewMetrics создаёт и регистрирует метрики.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		treatmentRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myx_treatment_runs_total",
			Help: "Treatment invocations by final event status.",
		}, []string{"treatment", "status"}),
		treatmentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "myx_treatment_duration_seconds",
			Help:    "Wall-clock duration of treatment invocations.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"treatment"}),
		deletedFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myx_output_deleted_files_total",
			Help: "Output files deleted by reconciliation.",
		}, []string{"mode"}),
		viewFiles: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "myx_view_files",
			Help:    "Number of files linked into filtered input views.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		flowRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myx_flow_runs_total",
			Help: "Flow runs by final status.",
		}, []string{"flow", "status"}),
		flowDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "myx_flow_duration_seconds",
			Help:    "Wall-clock duration of flow runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 10),
		}, []string{"flow"}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myx_eventlog_mirror_errors_total",
			Help: "Failed writes to secondary event sinks.",
		}, []string{"sink"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.treatmentRuns,
		m.treatmentDuration,
		m.deletedFiles,
		m.viewFiles,
		m.flowRuns,
		m.flowDuration,
		m.sinkErrors,
	)

	return m
}

// ObserveTreatment учитывает завершённый вызов treatment.
// d == 0 для skip — длительность не записывается.
func (m *Metrics) ObserveTreatment(treatment, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.treatmentRuns.WithLabelValues(treatment, status).Inc()
	if d > 0 {
		m.treatmentDuration.WithLabelValues(treatment).Observe(d.Seconds())
	}
}

// AddDeletedFiles учитывает удалённые выходные файлы.
func (m *Metrics) AddDeletedFiles(mode string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.deletedFiles.WithLabelValues(mode).Add(float64(n))
}

// ObserveView учитывает размер отфильтрованного представления.
func (m *Metrics) ObserveView(files int) {
	if m == nil {
		return
	}
	m.viewFiles.Observe(float64(files))
}

// ObserveFlow учитывает завершённый запуск flow.
func (m *Metrics) ObserveFlow(flow, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.flowRuns.WithLabelValues(flow, status).Inc()
	m.flowDuration.WithLabelValues(flow).Observe(d.Seconds())
}

// IncSinkError учитывает сбой вторичного приёмника журнала.
func (m *Metrics) IncSinkError(sink string) {
	if m == nil {
		return
	}
	m.sinkErrors.WithLabelValues(sink).Inc()
}

// Handler возвращает HTTP handler для /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve поднимает HTTP сервер с /healthz и /metrics до отмены ctx.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           Chain(Recovery(logger), AccessLog(logger))(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Push отправляет метрики в Pushgateway. Пустой url — ничего не делает.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if m == nil || url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(m.Registry).PushContext(ctx)
}
