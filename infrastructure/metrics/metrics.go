package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the exporter
type Metrics struct {
	registry *prometheus.Registry

	ExportsTotal     *prometheus.CounterVec
	ExportDuration   *prometheus.HistogramVec
	ExportRows       prometheus.Histogram
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playlist_exporter_exports_total",
				Help: "Total playlist exports, by status.",
			},
			[]string{"status"},
		),
		ExportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "playlist_exporter_export_duration_seconds",
				Help:    "Duration of playlist exports in seconds, by status.",
				Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"status"},
		),
		ExportRows: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "playlist_exporter_export_rows",
				Help:    "Rows written per successful export.",
				Buckets: prometheus.ExponentialBuckets(10, 4, 6),
			},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "playlist_exporter_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds, by route, method and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "playlist_exporter_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served.",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ExportsTotal,
		m.ExportDuration,
		m.ExportRows,
		m.RequestDuration,
		m.RequestsInFlight,
	)
	return m
}

// ObserveExport records one export outcome
func (m *Metrics) ObserveExport(status string, rows int, elapsed time.Duration) {
	m.ExportsTotal.WithLabelValues(status).Inc()
	m.ExportDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	if status == "success" {
		m.ExportRows.Observe(float64(rows))
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
