package racer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"amrikyy/nanoagent/pkg/strategy"
	"amrikyy/nanoagent/pkg/telemetry/logging"
	"amrikyy/nanoagent/pkg/telemetry/tracing"
)

// Tracer starts spans. Both trace.Tracer and *tracing.Tracer satisfy it.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// Supervisor runs a set of strategies concurrently, each against its own
// deadline, and reports one Attempt per strategy.
//
// Run never fails. A strategy that ignores its context is abandoned when
// the deadline passes; its late result lands in a buffered channel nobody
// reads and is garbage collected.
type Supervisor struct {
	sem    *semaphore.Weighted
	tracer Tracer
	logger *slog.Logger
}

// NewSupervisor creates a Supervisor. maxConcurrency caps the number of
// strategy calls in flight across all decisions; zero means unlimited.
func NewSupervisor(maxConcurrency int, tracer Tracer, logger *slog.Logger) *Supervisor {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Supervisor{tracer: tracer, logger: logger}
	if maxConcurrency > 0 {
		s.sem = semaphore.NewWeighted(int64(maxConcurrency))
	}
	return s
}

// Run launches every selected strategy and waits for all attempts to reach
// an outcome. Attempts are returned in the order of selected. Wall-clock
// time is bounded by timeout.
func (s *Supervisor) Run(ctx context.Context, task strategy.Task, shared any, selected []*strategy.Strategy, timeout time.Duration) []Attempt {
	attempts := make([]Attempt, len(selected))

	var g errgroup.Group
	for i, st := range selected {
		g.Go(func() error {
			attempts[i] = s.attempt(ctx, task, shared, st, timeout)
			return nil
		})
	}
	_ = g.Wait()

	return attempts
}

type callResult struct {
	value any
	err   error
}

// attempt runs one strategy against its deadline.
func (s *Supervisor) attempt(ctx context.Context, task strategy.Task, shared any, st *strategy.Strategy, timeout time.Duration) Attempt {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, tracing.SpanAttempt, tracing.AttemptStart(st.Name(), task.Type))
	defer span.End()

	ctx = logging.WithStrategy(ctx, st.Name())
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	a := Attempt{Strategy: st.Name()}

	release, waited, err := s.admit(actx, st)
	if err != nil {
		a = s.expired(ctx, a, err, true)
		a.Latency = time.Since(start)
		s.finish(span, task, a)
		return a
	}

	done := make(chan callResult, 1)
	go func() {
		defer release()
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := st.Call(actx, task, shared)
		done <- callResult{value: v, err: err}
	}()

	select {
	case res := <-done:
		a.Latency = time.Since(start)
		switch {
		case res.err != nil && actx.Err() != nil && errors.Is(res.err, actx.Err()):
			a = s.expired(ctx, a, res.err, waited)
		case res.err != nil:
			a.Outcome = OutcomeErrored
			a.Err = &StrategyError{Strategy: a.Strategy, Outcome: OutcomeErrored, Err: res.err}
		case isNil(res.value):
			a.Outcome = OutcomeAbstained
		default:
			a.Outcome = OutcomeSucceeded
			a.Success = true
			a.Result = res.value
		}
	case <-actx.Done():
		a.Latency = time.Since(start)
		a = s.expired(ctx, a, actx.Err(), waited)
	}

	s.finish(span, task, a)
	return a
}

// admit waits for the strategy's rate limiter and a concurrency slot.
// Both waits count against the attempt deadline. waited reports whether
// either of them blocked.
func (s *Supervisor) admit(ctx context.Context, st *strategy.Strategy) (release func(), waited bool, err error) {
	if !st.Allow() {
		waited = true
		if err := st.Wait(ctx); err != nil {
			return nil, waited, err
		}
	}
	if s.sem == nil {
		return func() {}, waited, nil
	}
	if !s.sem.TryAcquire(1) {
		waited = true
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, waited, err
		}
	}
	return func() { s.sem.Release(1) }, waited, nil
}

// expired classifies an attempt whose context ended. parent is the caller's
// context: if it is done the attempt was cancelled. Otherwise the deadline
// passed; when admission had to wait, part of the budget went to the
// engine's own limits and the attempt is throttled rather than timed out.
func (s *Supervisor) expired(parent context.Context, a Attempt, cause error, waited bool) Attempt {
	if parent.Err() != nil {
		a.Outcome = OutcomeCancelled
		a.Err = &StrategyError{Strategy: a.Strategy, Outcome: OutcomeCancelled, Err: ErrStrategyCancelled}
		return a
	}
	if waited {
		a.Outcome = OutcomeThrottled
		a.Err = &StrategyError{Strategy: a.Strategy, Outcome: OutcomeThrottled, Err: ErrStrategyThrottled}
		s.logger.Debug("strategy attempt throttled", "strategy", a.Strategy, "cause", cause)
		return a
	}
	a.Outcome = OutcomeTimedOut
	a.Err = &StrategyError{Strategy: a.Strategy, Outcome: OutcomeTimedOut, Err: ErrStrategyTimeout}
	s.logger.Debug("strategy attempt expired", "strategy", a.Strategy, "cause", cause)
	return a
}

// isNil reports whether v is nil or a nil pointer, map, slice, channel,
// func or interface wrapped in a non-nil any.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func (s *Supervisor) finish(span trace.Span, task strategy.Task, a Attempt) {
	tracing.SetAttemptAttributes(span, string(a.Outcome), a.Latency)
	tracing.SetError(span, a.Err)

	s.logger.Debug("strategy attempt finished",
		"task_id", task.ID,
		"strategy", a.Strategy,
		"outcome", a.Outcome,
		"latency_ms", a.Latency.Milliseconds(),
	)
}
