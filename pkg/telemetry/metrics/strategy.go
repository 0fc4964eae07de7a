package metrics

import (
	"amrikyy/nanoagent/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// scoreBuckets cover the [0,1] score range with extra resolution around the
// default confidence floor.
var scoreBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}

// StrategyMetrics tracks individual strategy attempts.
//
// Metrics:
//   - nanoagent_engine_attempts_total: Attempts by strategy and outcome
//   - nanoagent_engine_attempt_duration_seconds: Attempt latency
//   - nanoagent_engine_attempt_score: Score of successful attempts
//   - nanoagent_engine_strategy_wins_total: Decisions won per strategy
type StrategyMetrics struct {
	attemptsTotal *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	score         *prometheus.HistogramVec
	wins          *prometheus.CounterVec
}

// NewStrategyMetrics creates and registers strategy metrics with the provided registry.
func NewStrategyMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StrategyMetrics {
	sm := &StrategyMetrics{
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "attempts_total",
				Help:      "Total number of strategy attempts by outcome",
			},
			[]string{"strategy", "outcome"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "attempt_duration_seconds",
				Help:      "Duration of strategy attempts in seconds",
				Buckets:   cfg.DecisionDurationBuckets,
			},
			[]string{"strategy"},
		),

		score: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "attempt_score",
				Help:      "Score assigned to successful attempts",
				Buckets:   scoreBuckets,
			},
			[]string{"strategy"},
		),

		wins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "strategy_wins_total",
				Help:      "Total number of decisions won by each strategy",
			},
			[]string{"strategy"},
		),
	}

	registry.MustRegister(
		sm.attemptsTotal,
		sm.duration,
		sm.score,
		sm.wins,
	)

	return sm
}

// RecordAttempt records one attempt. The score is only observed for
// successful attempts.
func (sm *StrategyMetrics) RecordAttempt(strategy, outcome string, seconds float64, succeeded bool, score float64) {
	sm.attemptsTotal.WithLabelValues(strategy, outcome).Inc()
	sm.duration.WithLabelValues(strategy).Observe(seconds)
	if succeeded {
		sm.score.WithLabelValues(strategy).Observe(score)
	}
}

// RecordWin records a decision won by strategy.
func (sm *StrategyMetrics) RecordWin(strategy string) {
	sm.wins.WithLabelValues(strategy).Inc()
}
