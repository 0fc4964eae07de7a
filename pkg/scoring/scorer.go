package scoring

import (
	"math"
	"time"

	"amrikyy/nanoagent/pkg/strategy"
)

// Scorer assigns a confidence in [0,1] to a strategy result.
// Implementations must be pure and safe for concurrent use.
type Scorer interface {
	Score(result any, latency time.Duration, meta strategy.Metadata) float64
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(result any, latency time.Duration, meta strategy.Metadata) float64

// Score calls f and clamps the output to [0,1].
func (f ScorerFunc) Score(result any, latency time.Duration, meta strategy.Metadata) float64 {
	return Clamp(f(result, latency, meta))
}

// Clamp limits s to [0,1]. NaN becomes 0.
func Clamp(s float64) float64 {
	switch {
	case math.IsNaN(s), s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

// LatencyFactor returns max(0, 1 - latency/(2*expected)). It is 1 for an
// instant result, 0.5 at the expected latency, and 0 at twice it.
func LatencyFactor(latency, expected time.Duration) float64 {
	if expected <= 0 {
		expected = strategy.DefaultExpectedLatency
	}
	f := 1 - float64(latency)/(2*float64(expected))
	return math.Max(0, f)
}

// Blend weighs reliability and latency equally:
// reliability*0.5 + LatencyFactor*0.5.
func Blend(latency time.Duration, meta strategy.Metadata) float64 {
	return Clamp(meta.Reliability*0.5 + LatencyFactor(latency, meta.ExpectedLatency)*0.5)
}

// blendAny scores any non-nil result by Blend.
func blendAny(result any, latency time.Duration, meta strategy.Metadata) float64 {
	if result == nil {
		return 0
	}
	return Blend(latency, meta)
}
