package racer

import (
	"errors"
	"fmt"
	"strings"
)

// Errors that can be checked with errors.Is().
var (
	// ErrStrategyFailed matches every *StrategyError.
	ErrStrategyFailed = errors.New("strategy failed")

	// ErrStrategyTimeout is recorded when an attempt misses its deadline.
	ErrStrategyTimeout = errors.New("strategy timed out")

	// ErrStrategyCancelled is recorded when the caller's context ends an attempt.
	ErrStrategyCancelled = errors.New("strategy cancelled")

	// ErrStrategyThrottled is recorded when an attempt could not be admitted
	// before its deadline.
	ErrStrategyThrottled = errors.New("strategy throttled")

	// ErrNoStrategies is returned when no registered strategy accepts the task.
	ErrNoStrategies = errors.New("no strategies available")

	// ErrNoViableCandidate is returned when no attempt reached the confidence floor.
	ErrNoViableCandidate = errors.New("no viable candidate")

	// ErrInvalidOptions is returned by New for malformed options.
	ErrInvalidOptions = errors.New("invalid engine options")
)

// StrategyError is recorded on an attempt that did not produce a result.
type StrategyError struct {
	// Strategy is the strategy name.
	Strategy string

	// Outcome is the attempt outcome.
	Outcome Outcome

	// Err is the underlying error: the strategy's own error,
	// ErrStrategyTimeout, ErrStrategyCancelled or ErrStrategyThrottled.
	Err error
}

// Error implements the error interface.
func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy %q %s: %v", e.Strategy, e.Outcome, e.Err)
}

// Is implements error matching for errors.Is().
func (e *StrategyError) Is(target error) bool {
	return target == ErrStrategyFailed
}

// Unwrap returns the wrapped error for error chain traversal.
func (e *StrategyError) Unwrap() error {
	return e.Err
}

// NoViableCandidateError is returned when every attempt failed, abstained
// or scored below the confidence floor.
type NoViableCandidateError struct {
	// TaskType is the task type of the decision.
	TaskType string

	// Attempted contains the names of the strategies that ran.
	Attempted []string

	// BestScore is the highest score observed.
	BestScore float64

	// MinConfidence is the floor that was not reached.
	MinConfidence float64
}

// Error implements the error interface.
func (e *NoViableCandidateError) Error() string {
	return fmt.Sprintf("no viable candidate for task type %q (attempted: %s, best score %.3f < %.3f)",
		e.TaskType, strings.Join(e.Attempted, ", "), e.BestScore, e.MinConfidence)
}

// Is implements error matching for errors.Is().
func (e *NoViableCandidateError) Is(target error) bool {
	return target == ErrNoViableCandidate
}
