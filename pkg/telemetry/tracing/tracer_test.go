package tracing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"amrikyy/nanoagent/pkg/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		wantErr bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name:   "disabled tracing",
			config: &config.TracingConfig{Enabled: false},
		},
		{
			name: "otlp exporter",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     SamplerAlways,
				Exporter:    ExporterOTLP,
				Endpoint:    "localhost:4317",
				ServiceName: "test-service",
				Insecure:    true,
				Timeout:     time.Second,
			},
		},
		{
			name: "otlp exporter without endpoint",
			config: &config.TracingConfig{
				Enabled:  true,
				Sampler:  SamplerAlways,
				Exporter: ExporterOTLP,
			},
			wantErr: true,
		},
		{
			name: "unsupported exporter",
			config: &config.TracingConfig{
				Enabled:  true,
				Sampler:  SamplerAlways,
				Exporter: "zipkin",
			},
			wantErr: true,
		},
		{
			name: "invalid sampler",
			config: &config.TracingConfig{
				Enabled:  true,
				Sampler:  "sometimes",
				Exporter: ExporterStdout,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config, WithWriter(&bytes.Buffer{}))
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			if tracer.Enabled() != tt.config.Enabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.config.Enabled)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = tracer.Shutdown(ctx)
		})
	}
}

func TestTracer_Disabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, span := tracer.Start(context.Background(), SpanExecute)
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Error("expected invalid span context from noop tracer")
	}
	if TraceID(ctx) != "" {
		t.Error("expected empty trace ID from noop tracer")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestTracer_StdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	tracer, err := New(&config.TracingConfig{
		Enabled:     true,
		Sampler:     SamplerAlways,
		Exporter:    ExporterStdout,
		ServiceName: "nanoagent-test",
	}, WithWriter(&buf), WithServiceVersion("1.2.3"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, span := tracer.Start(context.Background(), SpanAttempt, AttemptStart("amadeus", "price_check"))
	span.End()

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{SpanAttempt, "amadeus", "nanoagent-test", "1.2.3"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout export missing %q", want)
		}
	}
}

func TestTracer_SpanAttributes(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := New(&config.TracingConfig{
		Enabled: true,
		Sampler: SamplerAlways,
	}, WithExporter(exporter))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx, root := tracer.Start(context.Background(), SpanExecute, DecisionStart("d-1", "t-1", "price_check"))
	if TraceID(ctx) == "" {
		t.Error("expected trace ID in context")
	}

	_, child := tracer.Start(ctx, SpanAttempt, AttemptStart("kiwi", "price_check"))
	SetAttemptAttributes(child, "errored", 150*time.Millisecond)
	SetError(child, errors.New("upstream 503"))
	child.End()

	SetDecisionAttributes(root, true, "amadeus", 0.9, 2, 1)
	SetStatus(root, nil)
	root.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	attempt, decision := spans[0], spans[1]
	if attempt.Parent.SpanID() != decision.SpanContext.SpanID() {
		t.Error("attempt span is not a child of the decision span")
	}
	if attempt.Status.Code != codes.Error {
		t.Errorf("attempt status = %v, want Error", attempt.Status.Code)
	}
	if decision.Status.Code != codes.Ok {
		t.Errorf("decision status = %v, want Ok", decision.Status.Code)
	}

	assertAttr(t, attempt.Attributes, AttrStrategyName, attribute.StringValue("kiwi"))
	assertAttr(t, attempt.Attributes, AttrAttemptOutcome, attribute.StringValue("errored"))
	assertAttr(t, attempt.Attributes, AttrAttemptLatencyMs, attribute.Int64Value(150))
	assertAttr(t, decision.Attributes, AttrDecisionID, attribute.StringValue("d-1"))
	assertAttr(t, decision.Attributes, AttrDecisionStrategy, attribute.StringValue("amadeus"))
	assertAttr(t, decision.Attributes, AttrDecisionTried, attribute.IntValue(2))
}

func TestSetError_Nil(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := New(&config.TracingConfig{Enabled: true, Sampler: SamplerAlways}, WithExporter(exporter))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), SpanAttempt)
	SetError(span, nil)
	span.End()

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Unset {
		t.Errorf("status = %v, want Unset", got.Status.Code)
	}
	if len(got.Events) != 0 {
		t.Errorf("expected no error events, got %d", len(got.Events))
	}
}

func assertAttr(t *testing.T, attrs []attribute.KeyValue, key string, want attribute.Value) {
	t.Helper()
	for _, kv := range attrs {
		if string(kv.Key) == key {
			if kv.Value != want {
				t.Errorf("attribute %s = %v, want %v", key, kv.Value.Emit(), want.Emit())
			}
			return
		}
	}
	t.Errorf("attribute %s not found", key)
}
