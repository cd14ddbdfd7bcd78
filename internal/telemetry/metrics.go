// Package telemetry exposes evaluation counters in the Prometheus format.
package telemetry

import (
	"net/http"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/batch"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trigger_eval"

// Metrics implements the executor observer.
type Metrics struct {
	registry *prometheus.Registry

	scenarios    *prometheus.CounterVec
	quality      *prometheus.HistogramVec
	judgeCalls   *prometheus.CounterVec
	judgeErrors  *prometheus.CounterVec
	judgmentCost prometheus.Counter
	batches      *prometheus.CounterVec
	batchSeconds prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		scenarios: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenarios_total",
			Help:      "Evaluated scenario runs by component type and outcome.",
		}, []string{"component_type", "outcome", "conflict"}),
		quality: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quality_score",
			Help:      "Aggregated judge quality scores.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}, []string{"component_type"}),
		judgeCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "judge_calls_total",
			Help:      "Judge calls dispatched by path.",
		}, []string{"path"}),
		judgeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "judge_errors_total",
			Help:      "Degraded judge samples by kind.",
		}, []string{"kind"}),
		judgmentCost: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "judgment_cost_usd_total",
			Help:      "Judgment spend in USD.",
		}),
		batches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_jobs_total",
			Help:      "Batch jobs by terminal state.",
		}, []string{"state"}),
		batchSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of batch jobs.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
		}),
	}
}

func (m *Metrics) ScenarioEvaluated(r models.EvaluationResult) {
	outcome := "incorrect"
	if r.Correct {
		outcome = "correct"
	}
	conflict := string(r.ConflictSeverity)
	if conflict == "" {
		conflict = string(models.SeverityNone)
	}
	ct := string(r.ComponentType)
	m.scenarios.WithLabelValues(ct, outcome, conflict).Inc()

	if r.QualityScore != nil {
		m.quality.WithLabelValues(ct).Observe(*r.QualityScore)
	}
	for _, kind := range r.JudgeErrors {
		m.judgeErrors.WithLabelValues(string(kind)).Inc()
	}
	m.judgmentCost.Add(r.JudgmentCostUSD)
}

func (m *Metrics) JudgmentDispatched(path string, calls int) {
	m.judgeCalls.WithLabelValues(path).Add(float64(calls))
}

func (m *Metrics) BatchFinished(report *batch.Report, err error) {
	state := string(batch.StateFailed)
	if report != nil {
		state = string(report.State)
		m.batchSeconds.Observe(report.Duration.Seconds())
	}
	m.batches.WithLabelValues(state).Inc()
}

// Handler serves the registry on /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
