// Package metrics registers the Prometheus collectors of the forecasting
// pipeline. Collectors live in the default registry and are exposed by the
// API server at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "salescast"

// ⭐ SSOT: 메트릭 이름은 여기서만 정의
var (
	FitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "search",
		Name:      "fits_total",
		Help:      "Candidate fits attempted by the order search, by outcome.",
	}, []string{"outcome"})

	FitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "sarima",
		Name:      "fit_duration_seconds",
		Help:      "Wall time of a single model fit.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	SearchBestAIC = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "search",
		Name:      "best_aic",
		Help:      "AIC of the best candidate of the last search.",
	})

	TrainingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "training",
		Name:      "runs_total",
		Help:      "Training runs, by outcome.",
	}, []string{"outcome"})

	EvaluationError = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "evaluation",
		Name:      "error",
		Help:      "Holdout error of the last evaluation, by metric (mae, rmse, mape).",
	}, []string{"metric"})

	ForecastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "forecast",
		Name:      "requests_total",
		Help:      "Forecast requests, by outcome.",
	}, []string{"outcome"})

	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "modelstore",
		Name:      "operations_total",
		Help:      "Model store operations, by operation and outcome.",
	}, []string{"op", "outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "HTTP requests, by route and status code.",
	}, []string{"route", "code"})

	ModelState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "modelstore",
		Name:      "state",
		Help:      "1 for the current state of the model slot (absent, present_valid, present_stale), 0 otherwise.",
	}, []string{"state"})

	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "job_runs_total",
		Help:      "Scheduled job executions, by job and outcome.",
	}, []string{"job", "outcome"})
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Outcome maps an error to an outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// SetModelState marks state as the current one.
func SetModelState(state string) {
	for _, s := range []string{"absent", "present_valid", "present_stale"} {
		v := 0.0
		if s == state {
			v = 1
		}
		ModelState.WithLabelValues(s).Set(v)
	}
}

// ObserveFit records one fit duration.
func ObserveFit(start time.Time) {
	FitDuration.Observe(time.Since(start).Seconds())
}
