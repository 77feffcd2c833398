package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// report pipeline.
type Metrics struct {
	EventsIngested   prometheus.Counter
	IngestErrors     prometheus.Counter
	RowsInserted     *prometheus.CounterVec // label: table={events,categories,sources,geometries}
	RecordsDerived   *prometheus.CounterVec // label: category
	DecodeFailures   prometheus.Counter
	ArtifactsWritten *prometheus.CounterVec // label: kind={workbook,chart}

	StageDuration *prometheus.HistogramVec // label: stage
	RunDuration   prometheus.Histogram
	RunActive     prometheus.Gauge
	LastRunStatus prometheus.Gauge // 1 delivered, 0 no-op (fetch failure), -1 error
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		EventsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eonet_report",
			Name:      "events_ingested_total",
			Help:      "Total feed events loaded into the snapshot store.",
		}),
		IngestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eonet_report",
			Name:      "ingest_errors_total",
			Help:      "Feed events skipped during ingestion due to missing required fields.",
		}),
		RowsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eonet_report",
			Name:      "rows_inserted_total",
			Help:      "Rows inserted into the snapshot store by table.",
		}, []string{"table"}),
		RecordsDerived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eonet_report",
			Name:      "records_derived_total",
			Help:      "Report records derived by category.",
		}, []string{"category"}),
		DecodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eonet_report",
			Name:      "geometry_decode_failures_total",
			Help:      "Geometry payloads that failed structured decoding.",
		}),
		ArtifactsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eonet_report",
			Name:      "artifacts_written_total",
			Help:      "Report artifacts written to the workspace by kind.",
		}, []string{"kind"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eonet_report",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eonet_report",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete pipeline run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}),
		RunActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eonet_report",
			Name:      "run_active",
			Help:      "1 while a pipeline run is in progress, 0 otherwise.",
		}),
		LastRunStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eonet_report",
			Name:      "last_run_status",
			Help:      "Outcome of the last run: 1 delivered, 0 fetch no-op, -1 error.",
		}),
	}

	prometheus.MustRegister(
		m.EventsIngested,
		m.IngestErrors,
		m.RowsInserted,
		m.RecordsDerived,
		m.DecodeFailures,
		m.ArtifactsWritten,
		m.StageDuration,
		m.RunDuration,
		m.RunActive,
		m.LastRunStatus,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		EventsIngested:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "eonet_report", Name: "events_ingested_total"}),
		IngestErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "eonet_report", Name: "ingest_errors_total"}),
		RowsInserted:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "eonet_report", Name: "rows_inserted_total"}, []string{"table"}),
		RecordsDerived:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "eonet_report", Name: "records_derived_total"}, []string{"category"}),
		DecodeFailures:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "eonet_report", Name: "geometry_decode_failures_total"}),
		ArtifactsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "eonet_report", Name: "artifacts_written_total"}, []string{"kind"}),
		StageDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "eonet_report", Name: "stage_duration_seconds"}, []string{"stage"}),
		RunDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "eonet_report", Name: "run_duration_seconds"}),
		RunActive:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "eonet_report", Name: "run_active"}),
		LastRunStatus:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "eonet_report", Name: "last_run_status"}),
	}
}
