package metrics

import (
	"errors"
	"sync"

	"amrikyy/nanoagent/pkg/config"
	"amrikyy/nanoagent/pkg/learning"
	"amrikyy/nanoagent/pkg/racer"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxCardinality bounds distinct strategy and task type label values.
const DefaultMaxCardinality = 1000

// otherLabel replaces label values beyond the cardinality limit.
const otherLabel = "other"

// Decision outcome label values.
const (
	OutcomeSuccess           = "success"
	OutcomeNoStrategies      = "no_strategies"
	OutcomeNoViableCandidate = "no_viable_candidate"
	OutcomeClosed            = "closed"
	OutcomeError             = "error"
)

// Collector is the main orchestrator for all Prometheus metrics in NanoAgent.
// It implements racer.Observer so an engine can report every attempt,
// decision, and weight change directly.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	decisionMetrics *DecisionMetrics
	strategyMetrics *StrategyMetrics
	weightMetrics   *WeightMetrics

	strategyLimiter *CardinalityLimiter
	taskTypeLimiter *CardinalityLimiter
}

var _ racer.Observer = (*Collector)(nil)

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true}
//	collector := metrics.NewCollector(cfg, nil)
//	opts.Observer = collector
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DecisionDurationBuckets) == 0 {
		cfg.DecisionDurationBuckets = append([]float64(nil), config.DefaultDecisionDurationBuckets...)
	}

	c := &Collector{
		config:          cfg,
		registry:        registry,
		strategyLimiter: NewCardinalityLimiter(DefaultMaxCardinality),
		taskTypeLimiter: NewCardinalityLimiter(DefaultMaxCardinality),
	}

	c.decisionMetrics = NewDecisionMetrics(cfg, registry)
	c.strategyMetrics = NewStrategyMetrics(cfg, registry)
	c.weightMetrics = NewWeightMetrics(cfg, registry)

	return c
}

// ObserveAttempt records one strategy attempt.
func (c *Collector) ObserveAttempt(_ string, a racer.Attempt) {
	if !c.config.Enabled {
		return
	}

	c.strategyMetrics.RecordAttempt(
		c.strategyLabel(a.Strategy),
		string(a.Outcome),
		a.Latency.Seconds(),
		a.Success,
		a.Score,
	)
}

// ObserveDecision records a finished decision and its winner.
func (c *Collector) ObserveDecision(d *racer.Decision) {
	if !c.config.Enabled || d == nil {
		return
	}

	taskType := c.taskTypeLabel(d.TaskType)
	c.decisionMetrics.RecordDecision(taskType, DecisionOutcome(d), d.Latency.Seconds(), d.Metadata.StrategiesTried)

	if d.Success {
		c.decisionMetrics.RecordConfidence(taskType, d.Confidence)
		c.strategyMetrics.RecordWin(c.strategyLabel(d.Strategy))
	}
}

// ObserveWeightChanges records learner updates.
func (c *Collector) ObserveWeightChanges(changes []learning.Change) {
	if !c.config.Enabled {
		return
	}

	for _, ch := range changes {
		c.weightMetrics.RecordChange(c.strategyLabel(ch.Strategy), string(ch.Reason), ch.New)
	}
}

// SetWeights publishes a full weight table, for example after restoring
// persisted weights at startup.
func (c *Collector) SetWeights(snapshot map[string]float64) {
	if !c.config.Enabled {
		return
	}

	for name, w := range snapshot {
		c.weightMetrics.SetWeight(c.strategyLabel(name), w)
	}
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) strategyLabel(name string) string {
	if !c.strategyLimiter.Allow(name) {
		return otherLabel
	}
	return name
}

func (c *Collector) taskTypeLabel(taskType string) string {
	if taskType == "" {
		return "default"
	}
	if !c.taskTypeLimiter.Allow(taskType) {
		return otherLabel
	}
	return taskType
}

// DecisionOutcome classifies a decision for the outcome label.
func DecisionOutcome(d *racer.Decision) string {
	switch {
	case d.Success:
		return OutcomeSuccess
	case errors.Is(d.Err, racer.ErrNoStrategies):
		return OutcomeNoStrategies
	case errors.Is(d.Err, racer.ErrNoViableCandidate):
		return OutcomeNoViableCandidate
	case errors.Is(d.Err, racer.ErrClosed):
		return OutcomeClosed
	default:
		return OutcomeError
	}
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label value is allowed. Returns true if the value
// already exists or if we haven't reached the cardinality limit yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
