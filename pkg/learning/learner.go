// Package learning adapts per-strategy weights after each decision.
//
// The winner moves toward 1 by w + α(1-w). Strategies that errored or timed
// out move toward the floor by max(floor, w - αw). Abstentions and
// cancellations leave the weight unchanged. Valid results that lost the
// collapse are optionally decayed by NonWinnerDecay.
package learning

import (
	"fmt"
	"log/slog"
	"math"

	"amrikyy/nanoagent/pkg/weights"
)

// Defaults.
const (
	DefaultRate  = 0.1
	DefaultFloor = weights.DefaultFloor
)

// Outcome classifies an attempt for learning purposes.
type Outcome int

const (
	// Neutral outcomes (abstained, cancelled) leave the weight unchanged.
	Neutral Outcome = iota

	// Valid outcomes produced a usable result.
	Valid

	// Failed outcomes (errored, timed out) are penalised.
	Failed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case Failed:
		return "failed"
	}
	return "neutral"
}

// Observation is one strategy's outcome in a decision.
type Observation struct {
	Strategy string
	Outcome  Outcome
}

// Reason explains a weight change.
type Reason string

const (
	ReasonWin     Reason = "win"
	ReasonFailure Reason = "failure"
	ReasonLoss    Reason = "loss"
)

// Change records one weight update.
type Change struct {
	Strategy string
	Old      float64
	New      float64
	Reason   Reason
}

// Config configures a Learner.
type Config struct {
	// Rate is the learning rate α in (0,1].
	// Default: 0.1
	Rate float64

	// NonWinnerDecay is the rate applied to valid results that did not win,
	// in [0,1]. Zero leaves them unchanged.
	// Default: 0
	NonWinnerDecay float64
}

// Learner applies reinforcement updates to a weights.Store.
// It is safe for concurrent use; every update is an atomic read-modify-write.
type Learner struct {
	store  weights.Store
	rate   float64
	decay  float64
	logger *slog.Logger
}

// New creates a Learner over store.
func New(store weights.Store, cfg Config, logger *slog.Logger) (*Learner, error) {
	if store == nil {
		return nil, fmt.Errorf("learning: weight store is required")
	}
	if cfg.Rate == 0 {
		cfg.Rate = DefaultRate
	}
	if cfg.Rate < 0 || cfg.Rate > 1 || math.IsNaN(cfg.Rate) {
		return nil, fmt.Errorf("learning: rate %v outside (0,1]", cfg.Rate)
	}
	if cfg.NonWinnerDecay < 0 || cfg.NonWinnerDecay > 1 || math.IsNaN(cfg.NonWinnerDecay) {
		return nil, fmt.Errorf("learning: non-winner decay %v outside [0,1]", cfg.NonWinnerDecay)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Learner{
		store:  store,
		rate:   cfg.Rate,
		decay:  cfg.NonWinnerDecay,
		logger: logger.With("component", "learning"),
	}, nil
}

// Rate returns the learning rate.
func (l *Learner) Rate() float64 {
	return l.rate
}

// Update applies one decision's observations. winner is empty when the
// decision failed. Only weights that moved are returned.
func (l *Learner) Update(observations []Observation, winner string) []Change {
	var changes []Change

	for _, o := range observations {
		var (
			fn     func(float64) float64
			reason Reason
		)

		switch {
		case o.Strategy == winner && o.Outcome == Valid:
			fn, reason = l.reward, ReasonWin
		case o.Outcome == Failed:
			fn, reason = l.penalise, ReasonFailure
		case o.Outcome == Valid && l.decay > 0:
			fn, reason = l.decayLoser, ReasonLoss
		default:
			continue
		}

		old, updated := l.store.Adjust(o.Strategy, fn)
		if old == updated {
			continue
		}
		changes = append(changes, Change{Strategy: o.Strategy, Old: old, New: updated, Reason: reason})

		l.logger.Debug("strategy weight updated",
			"strategy", o.Strategy,
			"reason", reason,
			"old", old,
			"new", updated,
		)
	}

	return changes
}

func (l *Learner) reward(w float64) float64 {
	return w + l.rate*(1-w)
}

func (l *Learner) penalise(w float64) float64 {
	return math.Max(l.store.Floor(), w-l.rate*w)
}

func (l *Learner) decayLoser(w float64) float64 {
	return math.Max(l.store.Floor(), w-l.decay*w)
}
