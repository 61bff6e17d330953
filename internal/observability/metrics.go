// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Ingestion metrics
	TransactionsLoaded  prometheus.Counter
	TransactionsDropped prometheus.Counter
	UnknownActions      prometheus.Counter
	WalletsAggregated   prometheus.Gauge

	// Model metrics
	ModelR2       *prometheus.GaugeVec
	ModelMAE      *prometheus.GaugeVec
	ModelSelected *prometheus.CounterVec

	// Scoring metrics
	WalletsScored *prometheus.GaugeVec

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec
	ReportsGenerated  prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Dashboard metrics
	LookupsTotal *prometheus.CounterVec

	// Health metrics
	LastSuccessfulPipeline prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "wallet_credit_lab"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		// Ingestion metrics
		TransactionsLoaded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "transactions_loaded_total",
			Help:      "Total number of transactions loaded",
		}),
		TransactionsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "transactions_dropped_total",
			Help:      "Total number of transactions dropped for lacking a wallet id",
		}),
		UnknownActions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "unknown_actions_total",
			Help:      "Total number of transactions with an unrecognized action",
		}),
		WalletsAggregated: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "wallets",
			Help:      "Number of wallets in the last aggregation",
		}),

		// Model metrics
		ModelR2: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "r2",
			Help:      "Held-out R² of each candidate in the last run",
		}, []string{"model"}),
		ModelMAE: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "mae",
			Help:      "Held-out mean absolute error of each candidate in the last run",
		}, []string{"model"}),
		ModelSelected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "selected_total",
			Help:      "Number of times each candidate won selection",
		}, []string{"model"}),

		// Scoring metrics
		WalletsScored: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "wallets",
			Help:      "Number of wallets per risk category in the last run",
		}, []string{"risk_category"}),

		// Pipeline metrics
		PipelineRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"variant", "status"}),
		PipelineDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"variant"}),
		ReportsGenerated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		// Database metrics
		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Dashboard metrics
		LookupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "lookups_total",
			Help:      "Total number of wallet lookups by result",
		}, []string{"result"}),

		// Health metrics
		LastSuccessfulPipeline: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// HandlerFor returns a /metrics handler serving the given gatherer.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordIngestion records loader and aggregator counts.
func (m *Metrics) RecordIngestion(loaded, dropped, unknown, wallets int) {
	if m == nil {
		return
	}
	m.TransactionsLoaded.Add(float64(loaded))
	m.TransactionsDropped.Add(float64(dropped))
	m.UnknownActions.Add(float64(unknown))
	m.WalletsAggregated.Set(float64(wallets))
}

// RecordModelEvaluation records one candidate's held-out metrics.
func (m *Metrics) RecordModelEvaluation(model string, mae, r2 float64, selected bool) {
	if m == nil {
		return
	}
	m.ModelMAE.WithLabelValues(model).Set(mae)
	m.ModelR2.WithLabelValues(model).Set(r2)
	if selected {
		m.ModelSelected.WithLabelValues(model).Inc()
	}
}

// RecordRiskCounts sets the per-tier wallet gauges.
func (m *Metrics) RecordRiskCounts(counts map[string]int) {
	if m == nil {
		return
	}
	for risk, n := range counts {
		m.WalletsScored.WithLabelValues(risk).Set(float64(n))
	}
}

// RecordPipelineRun records a pipeline run.
func (m *Metrics) RecordPipelineRun(variant, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.PipelineRunsTotal.WithLabelValues(variant, status).Inc()
	m.PipelineDuration.WithLabelValues(variant).Observe(duration.Seconds())
	if status == StatusSuccess {
		m.LastSuccessfulPipeline.SetToCurrentTime()
	}
}

// RecordReport increments the reports generated counter.
func (m *Metrics) RecordReport() {
	if m == nil {
		return
	}
	m.ReportsGenerated.Inc()
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordLookup records a dashboard lookup hit or miss.
func (m *Metrics) RecordLookup(found bool) {
	if m == nil {
		return
	}
	result := "miss"
	if found {
		result = "hit"
	}
	m.LookupsTotal.WithLabelValues(result).Inc()
}

// Pipeline run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)
