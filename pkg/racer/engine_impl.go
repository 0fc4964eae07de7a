package racer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"

	"amrikyy/nanoagent/pkg/learning"
	"amrikyy/nanoagent/pkg/scoring"
	"amrikyy/nanoagent/pkg/strategy"
	"amrikyy/nanoagent/pkg/telemetry/logging"
	"amrikyy/nanoagent/pkg/telemetry/tracing"
	"amrikyy/nanoagent/pkg/weights"
)

// ErrClosed is reported by Execute after Close.
var ErrClosed = errors.New("engine closed")

// DefaultEngine implements Engine.
type DefaultEngine struct {
	// registry holds strategies and ranks them by weight
	registry *strategy.Registry

	// supervisor races the selected strategies
	supervisor *Supervisor

	// learner updates weights after each decision
	learner *learning.Learner

	// rules maps task types to scorer and collapse rule
	rules *scoring.Rules

	store    weights.Store
	stats    *AtomicEngineStats
	history  *History
	observer Observer
	tracer   Tracer
	logger   *slog.Logger

	// mu protects runtime
	mu      sync.RWMutex
	runtime RuntimeOptions

	closed atomic.Bool
}

var _ Engine = (*DefaultEngine)(nil)

// New creates an engine from opts.
func New(opts Options) (*DefaultEngine, error) {
	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		store = weights.NewMemoryStore(opts.WeightFloor)
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	logger := opts.Logger.With("component", "racer")

	learner, err := learning.New(store, learning.Config{
		Rate:           opts.LearningRate,
		NonWinnerDecay: opts.NonWinnerDecay,
	}, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	return &DefaultEngine{
		registry:   strategy.NewRegistry(store, logger),
		supervisor: NewSupervisor(opts.MaxConcurrency, tracer, logger),
		learner:    learner,
		rules:      opts.Rules,
		store:      store,
		stats:      NewAtomicEngineStats(),
		history:    NewHistory(opts.HistorySize),
		observer:   opts.Observer,
		tracer:     tracer,
		logger:     logger,
		runtime: RuntimeOptions{
			MaxStrategies:   opts.MaxStrategies,
			Timeout:         opts.Timeout,
			MinConfidence:   opts.MinConfidence,
			LearningEnabled: opts.LearningEnabled,
		},
	}, nil
}

// Register adds or replaces a strategy.
func (e *DefaultEngine) Register(name string, fn strategy.Func, meta strategy.Metadata) error {
	return e.registry.Register(name, fn, meta)
}

// Registry exposes the strategy registry.
func (e *DefaultEngine) Registry() *strategy.Registry {
	return e.registry
}

// RuntimeOptions returns the current runtime settings.
func (e *DefaultEngine) RuntimeOptions() RuntimeOptions {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.runtime
}

// Reconfigure replaces the runtime settings. Decisions already running keep
// the settings they started with.
func (e *DefaultEngine) Reconfigure(r RuntimeOptions) error {
	if err := r.validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.runtime = r
	e.mu.Unlock()

	e.logger.Info("engine reconfigured",
		"max_strategies", r.MaxStrategies,
		"timeout", r.Timeout,
		"min_confidence", r.MinConfidence,
		"learning_enabled", r.LearningEnabled,
	)
	return nil
}

// Execute runs one decision.
func (e *DefaultEngine) Execute(ctx context.Context, task strategy.Task, shared any) (d *Decision) {
	start := time.Now()
	d = &Decision{
		ID:        uuid.New(),
		TaskID:    task.ID,
		TaskType:  task.Type,
		Timestamp: start,
	}

	ctx = logging.WithDecisionID(ctx, d.ID.String())
	ctx = logging.WithTaskType(ctx, task.Type)
	ctx, span := e.tracer.Start(ctx, tracing.SpanExecute, tracing.DecisionStart(d.ID.String(), task.ID, task.Type))

	defer func() {
		if r := recover(); r != nil {
			d.fail(fmt.Errorf("decision aborted: panic: %v", r))
			e.logger.Error("decision panicked", "decision_id", d.ID, "panic", r)
		}
		d.Latency = time.Since(start)
		e.record(ctx, d)

		tracing.SetDecisionAttributes(span, d.Success, d.Strategy, d.Confidence,
			d.Metadata.StrategiesTried, d.Metadata.Candidates)
		tracing.SetStatus(span, d.Err)
		span.End()
	}()

	if e.closed.Load() {
		d.fail(ErrClosed)
		return d
	}

	rt := e.RuntimeOptions()

	// Selecting
	selected := e.registry.Select(task, rt.MaxStrategies)
	if len(selected) == 0 {
		d.fail(fmt.Errorf("%w for task type %q (%d registered)", ErrNoStrategies, task.Type, e.registry.Len()))
		return d
	}

	// Racing
	d.Attempts = e.supervisor.Run(ctx, task, shared, selected, rt.Timeout)
	d.Metadata.StrategiesTried = len(d.Attempts)

	// Scoring
	rules := e.rules.For(task.Type)
	candidates := e.score(d, selected, rules.Scorer, rt.MinConfidence)

	// Collapsing
	if winner, err := scoring.Collapse(rules.Collapse, candidates); err == nil {
		d.Success = true
		d.Strategy = winner.Strategy
		d.Result = winner.Result
		d.Confidence = winner.Score
	} else {
		d.Err = e.noViableCandidate(d, rt.MinConfidence)
	}

	// Learning
	if rt.LearningEnabled {
		d.Metadata.WeightChanges = e.learner.Update(observations(d.Attempts), d.Strategy)
	}

	return d
}

// score fills Score and Eligible on every successful attempt and returns
// the eligible ones as candidates. A zero score is never eligible, whatever
// the floor.
func (e *DefaultEngine) score(d *Decision, selected []*strategy.Strategy, scorer scoring.Scorer, minConfidence float64) []scoring.Candidate {
	var candidates []scoring.Candidate
	for i := range d.Attempts {
		a := &d.Attempts[i]
		if !a.Success {
			continue
		}
		d.Metadata.SuccessfulStrategies++

		a.Score = scoring.Clamp(scorer.Score(a.Result, a.Latency, selected[i].Metadata()))
		a.Eligible = a.Score > 0 && a.Score >= minConfidence
		if !a.Eligible {
			continue
		}
		candidates = append(candidates, scoring.Candidate{
			Strategy: a.Strategy,
			Result:   a.Result,
			Score:    a.Score,
			Latency:  a.Latency,
		})
	}
	d.Metadata.Candidates = len(candidates)
	return candidates
}

func (e *DefaultEngine) noViableCandidate(d *Decision, minConfidence float64) error {
	err := &NoViableCandidateError{
		TaskType:      d.TaskType,
		Attempted:     make([]string, len(d.Attempts)),
		MinConfidence: minConfidence,
	}
	for i, a := range d.Attempts {
		err.Attempted[i] = a.Strategy
		if a.Score > err.BestScore {
			err.BestScore = a.Score
		}
	}
	return err
}

// record updates history, statistics and observers, and logs the outcome.
func (e *DefaultEngine) record(ctx context.Context, d *Decision) {
	for _, a := range d.Attempts {
		e.stats.RecordAttempt(a, d.Timestamp)
		e.observer.ObserveAttempt(d.TaskType, a)
	}
	e.stats.RecordDecision(d)
	e.history.Add(d)
	e.observer.ObserveDecision(d)
	if len(d.Metadata.WeightChanges) > 0 {
		e.observer.ObserveWeightChanges(d.Metadata.WeightChanges)
	}

	logger := e.logger.With(logging.Fields(ctx)...)
	if d.Success {
		logger.Info("decision completed",
			"task_id", d.TaskID,
			"winner", d.Strategy,
			"confidence", d.Confidence,
			"strategies_tried", d.Metadata.StrategiesTried,
			"candidates", d.Metadata.Candidates,
			"latency_ms", d.Latency.Milliseconds(),
		)
		return
	}
	logger.Warn("decision failed",
		"task_id", d.TaskID,
		"strategies_tried", d.Metadata.StrategiesTried,
		"successful_strategies", d.Metadata.SuccessfulStrategies,
		"latency_ms", d.Latency.Milliseconds(),
		"error", d.Err,
	)
}

// Weights returns a copy of the weight table.
func (e *DefaultEngine) Weights() map[string]float64 {
	return e.store.Snapshot()
}

// Stats returns a snapshot of engine counters.
func (e *DefaultEngine) Stats() *EngineStats {
	return e.stats.Snapshot()
}

// StrategyStats returns one strategy's counters.
func (e *DefaultEngine) StrategyStats(name string) StrategyStats {
	return e.stats.Strategy(name)
}

// History returns retained decisions, oldest first.
func (e *DefaultEngine) History() []DecisionRecord {
	return e.history.Records()
}

// Report returns per-strategy performance sorted by win rate.
func (e *DefaultEngine) Report() *PerformanceReport {
	stats := e.stats.Snapshot()
	reliability := func(name string) float64 {
		if s := e.registry.Get(name); s != nil {
			return s.Metadata().Reliability
		}
		return 0
	}
	return &PerformanceReport{
		RegisteredStrategies: e.registry.Len(),
		TotalDecisions:       stats.TotalDecisions,
		History:              e.history.Summary(),
		Strategies:           buildReport(stats, e.store.Get, reliability),
	}
}

// Close marks the engine closed. It does not close the weight store.
func (e *DefaultEngine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	e.logger.Info("engine closed", "decisions", e.stats.Snapshot().TotalDecisions)
	return nil
}

// fail marks d as failed with err, clearing any winner.
func (d *Decision) fail(err error) {
	d.Success = false
	d.Result = nil
	d.Strategy = ""
	d.Confidence = 0
	d.Err = err
}

func observations(attempts []Attempt) []learning.Observation {
	out := make([]learning.Observation, len(attempts))
	for i, a := range attempts {
		out[i] = learning.Observation{
			Strategy: a.Strategy,
			Outcome:  a.Outcome.learningOutcome(a.Eligible),
		}
	}
	return out
}
