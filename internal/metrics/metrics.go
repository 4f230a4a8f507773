package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the agent's Prometheus collectors. A nil *Recorder is a
// valid no-op recorder.
type Recorder struct {
	RunsTotal               *prometheus.CounterVec
	RunDuration             *prometheus.HistogramVec
	GenerationAttemptsTotal prometheus.Counter
	ExecutionFailuresTotal  prometheus.Counter
	RetryExhaustedTotal     prometheus.Counter
	ModelCostUSD            *prometheus.CounterVec
	SyncTotal               *prometheus.CounterVec
	SyncRowsTotal           prometheus.Counter
	SyncDuration            prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheetsql_runs_total",
				Help: "Agent runs by classified intent and outcome.",
			},
			[]string{"intent", "status"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sheetsql_run_duration_seconds",
				Help:    "Wall time of agent runs.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"intent"},
		),
		GenerationAttemptsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sheetsql_generation_attempts_total",
			Help: "SQL candidates produced by the generator.",
		}),
		ExecutionFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sheetsql_execution_failures_total",
			Help: "SQL candidates whose execution failed.",
		}),
		RetryExhaustedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sheetsql_retry_exhausted_total",
			Help: "Runs that ended in a failure explanation.",
		}),
		ModelCostUSD: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheetsql_model_cost_usd_total",
				Help: "Estimated model spend in USD.",
			},
			[]string{"model"},
		),
		SyncTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheetsql_sync_total",
				Help: "Sheet sync cycles by status.",
			},
			[]string{"status"},
		),
		SyncRowsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sheetsql_sync_rows_total",
			Help: "Rows written by sheet sync.",
		}),
		SyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sheetsql_sync_duration_seconds",
			Help:    "Duration of sheet sync cycles.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Recorder) ObserveRun(intent, status string, d time.Duration) {
	if r == nil {
		return
	}
	if intent == "" {
		intent = "unknown"
	}
	r.RunsTotal.WithLabelValues(intent, status).Inc()
	r.RunDuration.WithLabelValues(intent).Observe(d.Seconds())
}

func (r *Recorder) IncGeneration() {
	if r == nil {
		return
	}
	r.GenerationAttemptsTotal.Inc()
}

func (r *Recorder) IncExecutionFailure() {
	if r == nil {
		return
	}
	r.ExecutionFailuresTotal.Inc()
}

func (r *Recorder) IncRetryExhausted() {
	if r == nil {
		return
	}
	r.RetryExhaustedTotal.Inc()
}

func (r *Recorder) AddModelCost(model string, usd float64) {
	if r == nil || usd <= 0 {
		return
	}
	r.ModelCostUSD.WithLabelValues(model).Add(usd)
}

func (r *Recorder) ObserveSync(err error, rows int, d time.Duration) {
	if r == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	r.SyncTotal.WithLabelValues(status).Inc()
	r.SyncRowsTotal.Add(float64(rows))
	r.SyncDuration.Observe(d.Seconds())
}
