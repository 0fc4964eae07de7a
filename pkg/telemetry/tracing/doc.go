// Package tracing provides OpenTelemetry distributed tracing for NanoAgent.
//
// # Overview
//
// Every decision produces a "racer.execute" span with one "racer.attempt"
// child per raced strategy. The attempt spans carry the strategy name,
// outcome and latency; the decision span carries the winner, its confidence
// and how many strategies were tried.
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    exporter: otlp          # otlp or stdout
//	    endpoint: localhost:4317
//	    insecure: true
//	    sampler: parent_based   # always, never, ratio, parent_based
//	    sample_ratio: 0.1
//	    service_name: nanoagent
//
// When tracing is disabled the Tracer hands out noop spans.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithServiceVersion(version))
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	opts := racer.DefaultOptions()
//	opts.Tracer = tracer
package tracing
