package strategy

import (
	"context"
	"slices"
	"time"
)

// CostClass is a coarse estimate of what a strategy costs to run.
type CostClass string

const (
	CostLow    CostClass = "low"
	CostMedium CostClass = "medium"
	CostHigh   CostClass = "high"
)

// IsValid reports whether c is a known cost class.
func (c CostClass) IsValid() bool {
	switch c {
	case CostLow, CostMedium, CostHigh:
		return true
	}
	return false
}

// Defaults applied to zero-valued metadata fields.
const (
	DefaultCostClass       = CostMedium
	DefaultReliability     = 0.8
	DefaultExpectedLatency = 1500 * time.Millisecond
)

// Task is the unit of work submitted by the caller. It is treated as
// immutable once submitted.
type Task struct {
	// ID identifies the task for logging (optional).
	ID string

	// Type selects the scoring rules and filters strategies by TaskTypes.
	// Example: "price_check"
	Type string

	// Description is a human-readable summary used in logs.
	Description string

	// Payload carries the domain-specific fields.
	Payload any
}

// Func executes a strategy. The context is cancelled when the attempt's
// deadline elapses; strategies should honour it.
//
// Returning (nil, nil) means the strategy abstains (for example a cache
// miss): the attempt counts as unsuccessful but is not held against the
// strategy's weight. A typed nil such as (*pricing.Quote)(nil) abstains too.
type Func func(ctx context.Context, task Task, shared any) (any, error)

// Metadata describes a strategy's static characteristics.
type Metadata struct {
	// Description is free-form documentation.
	Description string

	// CostClass estimates the cost of one call.
	// Default: "medium"
	CostClass CostClass

	// Reliability is the expected probability of a useful result, in [0,1].
	// Default: 0.8
	Reliability float64

	// ExpectedLatency is the typical completion time.
	// Default: 1500ms
	ExpectedLatency time.Duration

	// TaskTypes restricts the strategy to these task types.
	// Empty means every task type.
	TaskTypes []string

	// RateLimit caps calls per second across decisions. Zero disables limiting.
	RateLimit float64

	// Burst is the rate limiter bucket size.
	// Default: 1 when RateLimit is set
	Burst int
}

// WithDefaults returns a copy of m with zero fields replaced by defaults.
func (m Metadata) WithDefaults() Metadata {
	if m.CostClass == "" {
		m.CostClass = DefaultCostClass
	}
	if m.Reliability == 0 {
		m.Reliability = DefaultReliability
	}
	if m.ExpectedLatency <= 0 {
		m.ExpectedLatency = DefaultExpectedLatency
	}
	if m.RateLimit > 0 && m.Burst <= 0 {
		m.Burst = 1
	}
	m.TaskTypes = slices.Clone(m.TaskTypes)
	return m
}

// Supports reports whether a strategy with this metadata accepts taskType.
func (m Metadata) Supports(taskType string) bool {
	if len(m.TaskTypes) == 0 {
		return true
	}
	return slices.Contains(m.TaskTypes, taskType)
}
