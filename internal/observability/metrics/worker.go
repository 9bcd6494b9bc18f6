package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics tracks ingestion pipeline progress. It implements
// ports.IngestionMetrics.
type WorkerMetrics struct {
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	runsInFlight     prometheus.Gauge
	filesTotal       *prometheus.CounterVec
	recordsTotal     *prometheus.CounterVec
	documentsWritten prometheus.Counter
}

func NewWorkerMetrics(worker string) *WorkerMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"worker": worker}

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "ingest",
			Subsystem:   "worker",
			Name:        "runs_total",
			Help:        "Completed rebuild runs by overall status.",
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "ingest",
			Subsystem:   "worker",
			Name:        "run_duration_seconds",
			Help:        "Rebuild run duration in seconds by overall status.",
			Buckets:     []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	runsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "ingest",
			Subsystem:   "worker",
			Name:        "runs_in_flight",
			Help:        "Number of rebuild runs currently executing.",
			ConstLabels: constLabels,
		},
	)
	filesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "ingest",
			Subsystem:   "worker",
			Name:        "files_total",
			Help:        "Processed source files by per-file status.",
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	recordsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "ingest",
			Subsystem:   "worker",
			Name:        "records_total",
			Help:        "Source records by processing outcome.",
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)
	documentsWritten := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "ingest",
			Subsystem:   "worker",
			Name:        "documents_written_total",
			Help:        "Documents successfully bulk-inserted into the store.",
			ConstLabels: constLabels,
		},
	)

	registry.MustRegister(runsTotal, runDuration, runsInFlight, filesTotal, recordsTotal, documentsWritten)

	return &WorkerMetrics{
		registry:         registry,
		runsTotal:        runsTotal,
		runDuration:      runDuration,
		runsInFlight:     runsInFlight,
		filesTotal:       filesTotal,
		recordsTotal:     recordsTotal,
		documentsWritten: documentsWritten,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) RunStarted() {
	m.runsInFlight.Inc()
}

func (m *WorkerMetrics) RunFinished(status string, elapsed time.Duration) {
	m.runsInFlight.Dec()
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (m *WorkerMetrics) FileProcessed(status string) {
	m.filesTotal.WithLabelValues(status).Inc()
}

func (m *WorkerMetrics) RecordsProcessed(n int) {
	if n > 0 {
		m.recordsTotal.WithLabelValues("processed").Add(float64(n))
	}
}

func (m *WorkerMetrics) RecordsSkipped(n int) {
	if n > 0 {
		m.recordsTotal.WithLabelValues("skipped").Add(float64(n))
	}
}

func (m *WorkerMetrics) DocumentsWritten(n int) {
	if n > 0 {
		m.documentsWritten.Add(float64(n))
	}
}
