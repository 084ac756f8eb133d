package observability

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	exportRunsTotal       *prometheus.CounterVec
	exportRecords         prometheus.Gauge
	exportBytes           prometheus.Gauge
	exportDurationSeconds prometheus.Histogram
	exportLastSuccess     prometheus.Gauge
	sideChannelErrors     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the exporter.
func RegisterMetrics() {
	registerOnce.Do(func() {
		exportRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_export_runs_total",
			Help: "Total number of activity export runs by outcome.",
		}, []string{"status"})

		exportRecords = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "activity_export_records",
			Help: "Number of records in the last written activities document.",
		})

		exportBytes = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "activity_export_bytes",
			Help: "Size in bytes of the last written activities document.",
		})

		exportDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "activity_export_duration_seconds",
			Help:    "Duration of activity export runs.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		})

		exportLastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "activity_export_last_success_timestamp_seconds",
			Help: "Unix time of the last successful activity export.",
		})

		sideChannelErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_export_side_channel_errors_total",
			Help: "Failures delivering the exported document to optional side channels.",
		}, []string{"channel"})

		prometheus.MustRegister(exportRunsTotal, exportRecords, exportBytes, exportDurationSeconds, exportLastSuccess, sideChannelErrors)
	})
}

// ExportRuns exposes the counter for export runs.
func ExportRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return exportRunsTotal
}

// ExportRecords exposes the gauge for the exported record count.
func ExportRecords() prometheus.Gauge {
	RegisterMetrics()
	return exportRecords
}

// ExportBytes exposes the gauge for the exported document size.
func ExportBytes() prometheus.Gauge {
	RegisterMetrics()
	return exportBytes
}

// ExportDuration exposes the export latency histogram.
func ExportDuration() prometheus.Histogram {
	RegisterMetrics()
	return exportDurationSeconds
}

// ExportLastSuccess exposes the last-success timestamp gauge.
func ExportLastSuccess() prometheus.Gauge {
	RegisterMetrics()
	return exportLastSuccess
}

// SideChannelErrors exposes the counter for side-channel delivery failures.
func SideChannelErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return sideChannelErrors
}

// WriteTextfile dumps the default registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	RegisterMetrics()
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
