package metrics

import (
	"amrikyy/nanoagent/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// WeightMetrics tracks the learned strategy weights.
//
// Metrics:
//   - nanoagent_engine_strategy_weight: Current weight per strategy
//   - nanoagent_engine_weight_changes_total: Weight updates by reason
type WeightMetrics struct {
	weight  *prometheus.GaugeVec
	changes *prometheus.CounterVec
}

// NewWeightMetrics creates and registers weight metrics with the provided registry.
func NewWeightMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *WeightMetrics {
	wm := &WeightMetrics{
		weight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "strategy_weight",
				Help:      "Current learned weight of each strategy",
			},
			[]string{"strategy"},
		),

		changes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "weight_changes_total",
				Help:      "Total number of weight updates by reason",
			},
			[]string{"strategy", "reason"},
		),
	}

	registry.MustRegister(
		wm.weight,
		wm.changes,
	)

	return wm
}

// RecordChange records one weight update and sets the gauge to the new value.
func (wm *WeightMetrics) RecordChange(strategy, reason string, weight float64) {
	wm.changes.WithLabelValues(strategy, reason).Inc()
	wm.weight.WithLabelValues(strategy).Set(weight)
}

// SetWeight sets the gauge for one strategy.
func (wm *WeightMetrics) SetWeight(strategy string, weight float64) {
	wm.weight.WithLabelValues(strategy).Set(weight)
}
