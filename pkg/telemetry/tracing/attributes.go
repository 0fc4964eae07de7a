package tracing

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanExecute = "racer.execute"
	SpanAttempt = "racer.attempt"
)

// Attribute keys for decision and attempt spans.
const (
	// Decision attributes
	AttrDecisionID         = "decision.id"
	AttrDecisionSuccess    = "decision.success"
	AttrDecisionStrategy   = "decision.strategy"
	AttrDecisionConfidence = "decision.confidence"
	AttrDecisionCandidates = "decision.candidates"
	AttrDecisionTried      = "decision.strategies_tried"

	// Task attributes
	AttrTaskID   = "task.id"
	AttrTaskType = "task.type"

	// Attempt attributes
	AttrStrategyName     = "strategy.name"
	AttrAttemptOutcome   = "attempt.outcome"
	AttrAttemptLatencyMs = "attempt.latency_ms"
	AttrAttemptScore     = "attempt.score"

	// Error attributes
	AttrError        = "error"
	AttrErrorMessage = "error.message"
)

// DecisionStart returns the start options for a decision span.
func DecisionStart(decisionID, taskID, taskType string) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String(AttrDecisionID, decisionID),
		attribute.String(AttrTaskID, taskID),
		attribute.String(AttrTaskType, taskType),
	)
}

// SetDecisionAttributes records a decision's result on its span.
func SetDecisionAttributes(span trace.Span, success bool, winner string, confidence float64, tried, candidates int) {
	span.SetAttributes(
		attribute.Bool(AttrDecisionSuccess, success),
		attribute.String(AttrDecisionStrategy, winner),
		attribute.Float64(AttrDecisionConfidence, confidence),
		attribute.Int(AttrDecisionTried, tried),
		attribute.Int(AttrDecisionCandidates, candidates),
	)
}

// AttemptStart returns the start options for an attempt span.
func AttemptStart(strategy, taskType string) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String(AttrStrategyName, strategy),
		attribute.String(AttrTaskType, taskType),
	)
}

// SetAttemptAttributes records an attempt's outcome on its span.
func SetAttemptAttributes(span trace.Span, outcome string, latency time.Duration) {
	span.SetAttributes(
		attribute.String(AttrAttemptOutcome, outcome),
		attribute.Int64(AttrAttemptLatencyMs, latency.Milliseconds()),
	)
}

// SetError marks the span as failed and records the error.
func SetError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool(AttrError, true),
		attribute.String(AttrErrorMessage, err.Error()),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetStatus sets the span status based on an error.
// If err is nil, status is set to OK, otherwise to Error.
func SetStatus(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
