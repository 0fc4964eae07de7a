package racer

import (
	"fmt"
	"log/slog"
	"time"

	"amrikyy/nanoagent/pkg/learning"
	"amrikyy/nanoagent/pkg/scoring"
	"amrikyy/nanoagent/pkg/weights"
)

// Option defaults.
const (
	DefaultMaxStrategies = 5
	DefaultTimeout       = 10 * time.Second
	DefaultMinConfidence = 0.6
)

// Options configures a DefaultEngine. Start from DefaultOptions: zero
// MaxStrategies, Timeout, HistorySize, LearningRate and WeightFloor are
// replaced by defaults, but MinConfidence and LearningEnabled are taken
// as given.
type Options struct {
	// MaxStrategies caps how many strategies race per decision.
	// Default: 5
	MaxStrategies int

	// Timeout is the per-strategy attempt deadline.
	// Default: 10s
	Timeout time.Duration

	// MinConfidence is the score a result needs to be a candidate, in [0,1].
	// Default: 0.6
	MinConfidence float64

	// LearningEnabled turns weight updates on.
	// Default: true
	LearningEnabled bool

	// LearningRate is α.
	// Default: 0.1
	LearningRate float64

	// WeightFloor bounds weights from below when Store is nil.
	// Default: 0.1
	WeightFloor float64

	// NonWinnerDecay is the rate applied to valid results that lost.
	// Default: 0
	NonWinnerDecay float64

	// MaxConcurrency caps strategy calls in flight. Zero is unlimited.
	MaxConcurrency int

	// HistorySize is the number of decisions retained.
	// Default: 1000
	HistorySize int

	// Rules selects the scorer and collapse rule per task type. Price tasks
	// need pricing.DefaultRules to pick the cheapest quote.
	// Default: highest score wins for every task type
	Rules *scoring.Rules

	// Store holds the weights. Default: an in-memory store.
	Store weights.Store

	// Logger receives engine logs. Default: slog.Default()
	Logger *slog.Logger

	// Observer receives decision events. Default: NopObserver
	Observer Observer

	// Tracer opens spans per decision and attempt. Default: no-op
	Tracer Tracer
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MaxStrategies:   DefaultMaxStrategies,
		Timeout:         DefaultTimeout,
		MinConfidence:   DefaultMinConfidence,
		LearningEnabled: true,
		LearningRate:    learning.DefaultRate,
		WeightFloor:     weights.DefaultFloor,
		HistorySize:     DefaultHistorySize,
	}
}

func (o *Options) applyDefaults() {
	if o.MaxStrategies == 0 {
		o.MaxStrategies = DefaultMaxStrategies
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.HistorySize == 0 {
		o.HistorySize = DefaultHistorySize
	}
	if o.LearningRate == 0 {
		o.LearningRate = learning.DefaultRate
	}
	if o.WeightFloor == 0 {
		o.WeightFloor = weights.DefaultFloor
	}
	if o.Rules == nil {
		o.Rules = scoring.NewRules(scoring.RuleSet{})
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
}

func (o *Options) validate() error {
	if o.MaxStrategies < 0 {
		return fmt.Errorf("%w: max strategies %d must be positive", ErrInvalidOptions, o.MaxStrategies)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("%w: timeout %s must be positive", ErrInvalidOptions, o.Timeout)
	}
	if o.MinConfidence < 0 || o.MinConfidence > 1 {
		return fmt.Errorf("%w: min confidence %v outside [0,1]", ErrInvalidOptions, o.MinConfidence)
	}
	if o.WeightFloor < 0 || o.WeightFloor > weights.MaxWeight {
		return fmt.Errorf("%w: weight floor %v outside [0,1]", ErrInvalidOptions, o.WeightFloor)
	}
	if o.MaxConcurrency < 0 {
		return fmt.Errorf("%w: max concurrency %d cannot be negative", ErrInvalidOptions, o.MaxConcurrency)
	}
	if o.HistorySize < 0 {
		return fmt.Errorf("%w: history size %d cannot be negative", ErrInvalidOptions, o.HistorySize)
	}
	return nil
}

// RuntimeOptions are the settings that can change while the engine runs.
type RuntimeOptions struct {
	MaxStrategies   int
	Timeout         time.Duration
	MinConfidence   float64
	LearningEnabled bool
}

func (r RuntimeOptions) validate() error {
	o := Options{
		MaxStrategies: r.MaxStrategies,
		Timeout:       r.Timeout,
		MinConfidence: r.MinConfidence,
	}
	if r.MaxStrategies <= 0 {
		return fmt.Errorf("%w: max strategies %d must be positive", ErrInvalidOptions, r.MaxStrategies)
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("%w: timeout %s must be positive", ErrInvalidOptions, r.Timeout)
	}
	return o.validate()
}
