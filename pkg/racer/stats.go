package racer

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// EngineStats is a point-in-time snapshot of engine counters.
type EngineStats struct {
	// TotalDecisions is the number of Execute calls.
	TotalDecisions int64

	// SuccessfulDecisions is the number of decisions with a winner.
	SuccessfulDecisions int64

	// FailedDecisions is the number of decisions without a winner.
	FailedDecisions int64

	// Strategies holds per-strategy counters keyed by name.
	Strategies map[string]StrategyStats

	// LastResetTime is when statistics were last reset.
	LastResetTime time.Time
}

// StrategyStats counts one strategy's attempts.
type StrategyStats struct {
	Executions    int64
	Successes     int64
	Failures      int64
	Abstentions   int64
	Timeouts      int64
	Cancellations int64
	Throttles     int64
	Wins          int64

	// TotalLatency is the sum of attempt latencies.
	TotalLatency time.Duration

	// TotalScore is the sum of attempt scores.
	TotalScore float64

	// LastUsed is when the strategy last ran, zero if never.
	LastUsed time.Time
}

// AverageLatency returns TotalLatency / Executions.
func (s StrategyStats) AverageLatency() time.Duration {
	if s.Executions == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(s.Executions)
}

// AverageScore returns TotalScore / Executions.
func (s StrategyStats) AverageScore() float64 {
	if s.Executions == 0 {
		return 0
	}
	return s.TotalScore / float64(s.Executions)
}

// WinRate returns Wins / Executions.
func (s StrategyStats) WinRate() float64 {
	if s.Executions == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Executions)
}

// scoreScale converts scores to integer micro-units for atomic accumulation.
const scoreScale = 1e6

type strategyCounters struct {
	executions    atomic.Int64
	successes     atomic.Int64
	failures      atomic.Int64
	abstentions   atomic.Int64
	timeouts      atomic.Int64
	cancellations atomic.Int64
	throttles     atomic.Int64
	wins          atomic.Int64
	latencyNanos  atomic.Int64
	scoreMicros   atomic.Int64
	lastUsedNanos atomic.Int64
}

// AtomicEngineStats tracks engine statistics with atomic counters.
type AtomicEngineStats struct {
	totalDecisions      atomic.Int64
	successfulDecisions atomic.Int64
	failedDecisions     atomic.Int64

	// strategies maps strategy name to *strategyCounters
	strategies sync.Map

	lastResetTime time.Time
	mu            sync.RWMutex
}

// NewAtomicEngineStats creates an empty statistics tracker.
func NewAtomicEngineStats() *AtomicEngineStats {
	return &AtomicEngineStats{lastResetTime: time.Now()}
}

// RecordAttempt counts one attempt.
func (s *AtomicEngineStats) RecordAttempt(a Attempt, at time.Time) {
	c := s.counters(a.Strategy)
	c.executions.Add(1)
	c.latencyNanos.Add(int64(a.Latency))
	c.scoreMicros.Add(int64(a.Score * scoreScale))
	c.lastUsedNanos.Store(at.UnixNano())

	switch a.Outcome {
	case OutcomeSucceeded:
		c.successes.Add(1)
	case OutcomeAbstained:
		c.abstentions.Add(1)
	case OutcomeErrored:
		c.failures.Add(1)
	case OutcomeTimedOut:
		c.failures.Add(1)
		c.timeouts.Add(1)
	case OutcomeCancelled:
		c.cancellations.Add(1)
	case OutcomeThrottled:
		c.throttles.Add(1)
	}
}

// RecordDecision counts one decision and its winner.
func (s *AtomicEngineStats) RecordDecision(d *Decision) {
	s.totalDecisions.Add(1)
	if !d.Success {
		s.failedDecisions.Add(1)
		return
	}
	s.successfulDecisions.Add(1)
	s.counters(d.Strategy).wins.Add(1)
}

// Strategy returns a snapshot of one strategy's counters.
func (s *AtomicEngineStats) Strategy(name string) StrategyStats {
	val, ok := s.strategies.Load(name)
	if !ok {
		return StrategyStats{}
	}
	return val.(*strategyCounters).snapshot()
}

// Snapshot returns a point-in-time copy of all statistics.
func (s *AtomicEngineStats) Snapshot() *EngineStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	strategies := make(map[string]StrategyStats)
	s.strategies.Range(func(key, value any) bool {
		strategies[key.(string)] = value.(*strategyCounters).snapshot()
		return true
	})

	return &EngineStats{
		TotalDecisions:      s.totalDecisions.Load(),
		SuccessfulDecisions: s.successfulDecisions.Load(),
		FailedDecisions:     s.failedDecisions.Load(),
		Strategies:          strategies,
		LastResetTime:       s.lastResetTime,
	}
}

// Reset clears all statistics.
func (s *AtomicEngineStats) Reset() {
	s.totalDecisions.Store(0)
	s.successfulDecisions.Store(0)
	s.failedDecisions.Store(0)

	s.strategies.Range(func(key, _ any) bool {
		s.strategies.Delete(key)
		return true
	})

	s.mu.Lock()
	s.lastResetTime = time.Now()
	s.mu.Unlock()
}

func (s *AtomicEngineStats) counters(name string) *strategyCounters {
	val, _ := s.strategies.LoadOrStore(name, &strategyCounters{})
	return val.(*strategyCounters)
}

func (c *strategyCounters) snapshot() StrategyStats {
	st := StrategyStats{
		Executions:    c.executions.Load(),
		Successes:     c.successes.Load(),
		Failures:      c.failures.Load(),
		Abstentions:   c.abstentions.Load(),
		Timeouts:      c.timeouts.Load(),
		Cancellations: c.cancellations.Load(),
		Throttles:     c.throttles.Load(),
		Wins:          c.wins.Load(),
		TotalLatency:  time.Duration(c.latencyNanos.Load()),
		TotalScore:    float64(c.scoreMicros.Load()) / scoreScale,
	}
	if ns := c.lastUsedNanos.Load(); ns != 0 {
		st.LastUsed = time.Unix(0, ns)
	}
	return st
}

// sortedNames returns the keys of m in ascending order.
func sortedNames(m map[string]StrategyStats) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
