package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "zip_coverage"

// Metrics holds the Prometheus counters, histograms, and gauges for ingestion and the API.
type Metrics struct {
	// Ledger extraction metrics.
	LedgerLines       *prometheus.CounterVec // labels: kind={header,status,orphan,malformed,ignored}
	LedgerDiagnostics prometheus.Counter
	AvailabilityZIPs  prometheus.Gauge

	// Boundary fetch metrics.
	BoundaryRequests    *prometheus.CounterVec // labels: outcome={success,error}
	BoundaryAPIDuration prometheus.Histogram
	BoundaryFeatures    prometheus.Counter
	BoundaryMissingZIPs prometheus.Gauge

	// Publisher metrics.
	RecordsPublished prometheus.Counter

	// API metrics.
	Lookups     *prometheus.CounterVec // labels: outcome={available,unavailable,unknown}
	ReportCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.LedgerLines,
		m.LedgerDiagnostics,
		m.AvailabilityZIPs,
		m.BoundaryRequests,
		m.BoundaryAPIDuration,
		m.BoundaryFeatures,
		m.BoundaryMissingZIPs,
		m.RecordsPublished,
		m.Lookups,
		m.ReportCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		LedgerLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_lines_total",
			Help:      "Ledger lines scanned, by classification.",
		}, []string{"kind"}),
		LedgerDiagnostics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_diagnostics_total",
			Help:      "Orphan or malformed ledger entries found.",
		}),
		AvailabilityZIPs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "availability_zips",
			Help:      "Distinct ZIPs with at least one brand status in the last extraction.",
		}),
		BoundaryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boundary_requests_total",
			Help:      "Boundary service batch requests by outcome.",
		}, []string{"outcome"}),
		BoundaryAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "boundary_api_duration_seconds",
			Help:      "Boundary service request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		BoundaryFeatures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boundary_features_total",
			Help:      "Features returned by the boundary service.",
		}),
		BoundaryMissingZIPs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "boundary_missing_zips",
			Help:      "Requested ZIPs without geometry in the last fetch.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Availability records written to Kafka.",
		}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Availability lookups served, by outcome.",
		}, []string{"outcome"}),
		ReportCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_total",
			Help:      "Rendered report cache lookups by result.",
		}, []string{"result"}),
	}
}
