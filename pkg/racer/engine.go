package racer

import (
	"context"

	"amrikyy/nanoagent/pkg/learning"
	"amrikyy/nanoagent/pkg/strategy"
)

// Engine races registered strategies for a task and collapses their
// results to a single decision.
//
// Every decision runs through the same stages:
//
//	Selecting → Racing → Scoring → Collapsing → Learning → Done
//
// Done is reached even when no candidate survives; the decision is then
// marked failed. There are no retries within a decision.
//
// Engine implementations must be safe for concurrent use.
//
// Example usage:
//
//	opts := racer.DefaultOptions()
//	opts.Rules = pricing.DefaultRules() // without rules the highest score wins
//	engine, err := racer.New(opts)
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
//	engine.Register("amadeus", amadeusQuote, strategy.Metadata{Reliability: 0.9})
//	engine.Register("kiwi", kiwiQuote, strategy.Metadata{Reliability: 0.8})
//
//	d := engine.Execute(ctx, strategy.Task{Type: pricing.TaskTypePriceCheck, Payload: q}, clients)
//	if !d.Success {
//	    return d.Err
//	}
type Engine interface {
	// Register adds or replaces a strategy.
	Register(name string, fn strategy.Func, meta strategy.Metadata) error

	// Execute runs one decision. It never panics and never returns an
	// error: failures are reported through Decision.Success and
	// Decision.Err. Cancelling ctx ends outstanding attempts early.
	Execute(ctx context.Context, task strategy.Task, shared any) *Decision

	// Weights returns a copy of the weight table.
	Weights() map[string]float64

	// Stats returns a snapshot of engine counters.
	Stats() *EngineStats

	// Report returns per-strategy performance with recommendations.
	Report() *PerformanceReport

	// History returns retained decisions, oldest first.
	History() []DecisionRecord

	// Close releases resources. Execute after Close returns a failed decision.
	Close() error
}

// Observer receives decision events, typically to export metrics.
// Methods are called synchronously from Execute and must not block.
type Observer interface {
	ObserveAttempt(taskType string, a Attempt)
	ObserveDecision(d *Decision)
	ObserveWeightChanges(changes []learning.Change)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) ObserveAttempt(string, Attempt) {}

func (NopObserver) ObserveDecision(*Decision) {}

func (NopObserver) ObserveWeightChanges([]learning.Change) {}
