package metrics

import (
	"amrikyy/nanoagent/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// DecisionMetrics tracks engine decisions.
//
// Metrics:
//   - nanoagent_engine_decisions_total: Decisions by task type and outcome
//   - nanoagent_engine_decision_duration_seconds: Decision wall-clock time
//   - nanoagent_engine_decision_confidence: Winning score of successful decisions
//   - nanoagent_engine_decision_strategies: Strategies raced per decision
type DecisionMetrics struct {
	decisionsTotal *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	confidence     *prometheus.HistogramVec
	strategies     *prometheus.HistogramVec
}

// NewDecisionMetrics creates and registers decision metrics with the provided registry.
func NewDecisionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DecisionMetrics {
	dm := &DecisionMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "decisions_total",
				Help:      "Total number of decisions by outcome",
			},
			[]string{"task_type", "outcome"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "decision_duration_seconds",
				Help:      "Duration of decisions in seconds",
				Buckets:   cfg.DecisionDurationBuckets,
			},
			[]string{"task_type"},
		),

		confidence: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "decision_confidence",
				Help:      "Score of the winning candidate",
				Buckets:   scoreBuckets,
			},
			[]string{"task_type"},
		),

		strategies: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "decision_strategies",
				Help:      "Number of strategies raced per decision",
				Buckets:   prometheus.LinearBuckets(1, 1, 8),
			},
			[]string{"task_type"},
		),
	}

	registry.MustRegister(
		dm.decisionsTotal,
		dm.duration,
		dm.confidence,
		dm.strategies,
	)

	return dm
}

// RecordDecision records a finished decision.
func (dm *DecisionMetrics) RecordDecision(taskType, outcome string, seconds float64, strategies int) {
	dm.decisionsTotal.WithLabelValues(taskType, outcome).Inc()
	dm.duration.WithLabelValues(taskType).Observe(seconds)
	dm.strategies.WithLabelValues(taskType).Observe(float64(strategies))
}

// RecordConfidence records the winning score of a successful decision.
func (dm *DecisionMetrics) RecordConfidence(taskType string, confidence float64) {
	dm.confidence.WithLabelValues(taskType).Observe(confidence)
}
