// Package metrics exposes per-run counters for fetches and decoded lines.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for a run. Each Metrics owns its
// registry so runs and tests never collide on the global one.
type Metrics struct {
	Registry *prometheus.Registry

	FetchesTotal   *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	RecordsDecoded *prometheus.CounterVec
	RecordsDropped *prometheus.CounterVec
	RecordsSkipped *prometheus.CounterVec
	LastRunSeconds prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	labels := []string{"appliance", "category"}
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fwdigest_fetches_total",
			Help: "Log page fetches by appliance, category and result.",
		}, append(labels, "result")),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fwdigest_fetch_duration_seconds",
			Help:    "Time spent fetching one log page.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, labels),
		RecordsDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fwdigest_records_decoded_total",
			Help: "Log lines decoded into records.",
		}, labels),
		RecordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fwdigest_records_dropped_total",
			Help: "Malformed log lines dropped.",
		}, labels),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fwdigest_records_skipped_total",
			Help: "Log lines filtered out because they carry no reportable action.",
		}, labels),
		LastRunSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fwdigest_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}
	m.Registry.MustRegister(
		m.FetchesTotal, m.FetchDuration,
		m.RecordsDecoded, m.RecordsDropped, m.RecordsSkipped,
		m.LastRunSeconds,
	)
	return m
}

// ObserveFetch records one fetch attempt.
func (m *Metrics) ObserveFetch(appliance, category string, ok bool, d time.Duration) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.FetchesTotal.WithLabelValues(appliance, category, result).Inc()
	m.FetchDuration.WithLabelValues(appliance, category).Observe(d.Seconds())
}

// ObserveDecode records the decode counts of one page.
func (m *Metrics) ObserveDecode(appliance, category string, decoded, dropped, skipped int) {
	m.RecordsDecoded.WithLabelValues(appliance, category).Add(float64(decoded))
	m.RecordsDropped.WithLabelValues(appliance, category).Add(float64(dropped))
	m.RecordsSkipped.WithLabelValues(appliance, category).Add(float64(skipped))
}

// MarkRun sets the last-run gauge.
func (m *Metrics) MarkRun(t time.Time) {
	m.LastRunSeconds.Set(float64(t.Unix()))
}

// WriteTextfile writes the registry in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
