package racer

import (
	"time"

	"github.com/google/uuid"

	"amrikyy/nanoagent/pkg/learning"
)

// Outcome is the terminal state of one attempt.
type Outcome string

const (
	// OutcomeSucceeded means the strategy returned a non-nil result in time.
	OutcomeSucceeded Outcome = "succeeded"

	// OutcomeAbstained means the strategy returned no result and no error.
	OutcomeAbstained Outcome = "abstained"

	// OutcomeErrored means the strategy returned an error or panicked.
	OutcomeErrored Outcome = "errored"

	// OutcomeTimedOut means the attempt deadline elapsed first.
	OutcomeTimedOut Outcome = "timed_out"

	// OutcomeCancelled means the caller's context ended first.
	OutcomeCancelled Outcome = "cancelled"

	// OutcomeThrottled means the deadline elapsed after the attempt had to
	// wait for its rate limiter or a concurrency slot. The strategy may not
	// have run at all.
	OutcomeThrottled Outcome = "throttled"
)

// learningOutcome maps an attempt outcome to the learner's classification.
// Abstentions, cancellations and throttled attempts are neutral; errors and
// timeouts are penalised.
func (o Outcome) learningOutcome(eligible bool) learning.Outcome {
	switch o {
	case OutcomeSucceeded:
		if eligible {
			return learning.Valid
		}
		return learning.Neutral
	case OutcomeErrored, OutcomeTimedOut:
		return learning.Failed
	}
	return learning.Neutral
}

// Attempt records one strategy's run within a decision. Every selected
// strategy yields exactly one Attempt, whatever happened to it.
type Attempt struct {
	// Strategy is the strategy name.
	Strategy string

	// Outcome is the terminal state of the attempt.
	Outcome Outcome

	// Success is true only for OutcomeSucceeded.
	Success bool

	// Result is the strategy's result, nil unless Success.
	Result any

	// Err is set for errored, timed out, cancelled and throttled attempts.
	Err error

	// Latency is the wall-clock time from launch to outcome.
	Latency time.Duration

	// Score is the scorer's confidence in [0,1]; 0 unless Success.
	Score float64

	// Eligible reports whether Score is positive and reached the confidence
	// floor.
	Eligible bool
}

// Decision is the outcome of one Execute call.
//
// Success is true exactly when Strategy names a winner whose Score reached
// the confidence floor. A failed decision carries Err and a nil Result but
// still lists every Attempt.
type Decision struct {
	// ID uniquely identifies the decision.
	ID uuid.UUID

	// TaskID and TaskType are copied from the task.
	TaskID   string
	TaskType string

	// Success reports whether a winner was chosen.
	Success bool

	// Result is the winning strategy's result.
	Result any

	// Strategy is the winning strategy's name, empty on failure.
	Strategy string

	// Confidence is the winner's score, 0 on failure.
	Confidence float64

	// Attempts lists every attempt in selection order.
	Attempts []Attempt

	// Latency is the total decision time.
	Latency time.Duration

	// Err explains a failed decision.
	Err error

	// Metadata summarises the race.
	Metadata DecisionMetadata

	// Timestamp is when the decision started.
	Timestamp time.Time
}

// DecisionMetadata summarises a decision's race.
type DecisionMetadata struct {
	// StrategiesTried is the number of strategies launched.
	StrategiesTried int

	// SuccessfulStrategies is the number of attempts that returned a result.
	SuccessfulStrategies int

	// Candidates is the number of attempts that reached the confidence floor.
	Candidates int

	// WeightChanges lists the weight updates applied after the decision.
	WeightChanges []learning.Change
}

// Attempt returns the attempt for the named strategy, if any.
func (d *Decision) Attempt(strategy string) (Attempt, bool) {
	for _, a := range d.Attempts {
		if a.Strategy == strategy {
			return a, true
		}
	}
	return Attempt{}, false
}
