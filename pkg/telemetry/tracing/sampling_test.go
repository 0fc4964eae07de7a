package tracing

import (
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TestCreateSampler tests sampler creation
func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{"always sampler", SamplerAlways, 0.0, false},
		{"never sampler", SamplerNever, 0.0, false},
		{"ratio sampler - 0%", SamplerRatio, 0.0, false},
		{"ratio sampler - 50%", SamplerRatio, 0.5, false},
		{"ratio sampler - 100%", SamplerRatio, 1.0, false},
		{"parent based", SamplerParentBased, 0.25, false},
		{"empty defaults to parent based", "", 1.0, false},
		{"invalid negative ratio", SamplerRatio, -0.1, true},
		{"invalid ratio above 1", SamplerParentBased, 1.5, true},
		{"unknown strategy", "unknown", 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("createSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && sampler == nil {
				t.Error("expected non-nil sampler")
			}
		})
	}
}

func TestCreateSampler_Decisions(t *testing.T) {
	params := sdktrace.SamplingParameters{
		TraceID: trace.TraceID{0x01},
		Name:    SpanExecute,
	}

	tests := []struct {
		name     string
		strategy string
		ratio    float64
		want     sdktrace.SamplingDecision
	}{
		{"always", SamplerAlways, 0, sdktrace.RecordAndSample},
		{"never", SamplerNever, 1, sdktrace.Drop},
		{"ratio zero", SamplerRatio, 0, sdktrace.Drop},
		{"ratio one", SamplerRatio, 1, sdktrace.RecordAndSample},
		{"parent based root with ratio one", SamplerParentBased, 1, sdktrace.RecordAndSample},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := createSampler(tt.strategy, tt.ratio)
			if err != nil {
				t.Fatalf("createSampler() error = %v", err)
			}
			if got := sampler.ShouldSample(params).Decision; got != tt.want {
				t.Errorf("decision = %v, want %v", got, tt.want)
			}
		})
	}
}
