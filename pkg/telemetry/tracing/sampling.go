package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	// SamplerAlways samples all traces
	SamplerAlways = "always"

	// SamplerNever samples no traces
	SamplerNever = "never"

	// SamplerRatio samples a fraction of traces by trace ID
	SamplerRatio = "ratio"

	// SamplerParentBased follows the parent span's decision and samples
	// root spans by ratio
	SamplerParentBased = "parent_based"
)

// createSampler creates a sampler based on the strategy and ratio.
//
// TraceIDRatioBased sampling hashes the trace ID, so every span of a
// decision gets the same decision:
//
//	telemetry:
//	  tracing:
//	    sampler: ratio
//	    sample_ratio: 0.1  # Sample 10% of traces
//
// parent_based respects an incoming parent span's sampling decision and
// falls back to the ratio for root spans.
func createSampler(strategy string, ratio float64) (sdktrace.Sampler, error) {
	if ratio < 0.0 || ratio > 1.0 {
		return nil, fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", ratio)
	}

	switch strategy {
	case SamplerAlways:
		return sdktrace.AlwaysSample(), nil
	case SamplerNever:
		return sdktrace.NeverSample(), nil
	case SamplerRatio:
		return sdktrace.TraceIDRatioBased(ratio), nil
	case SamplerParentBased, "":
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio)), nil
	default:
		return nil, fmt.Errorf("unknown sampler strategy: %s (valid: always, never, ratio, parent_based)", strategy)
	}
}
