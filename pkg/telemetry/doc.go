// Package telemetry wires the observability stack of a NanoAgent process.
//
// # Components
//
//   - logging: slog logger with decision context fields and redaction
//   - metrics: Prometheus collector that observes engine decisions
//   - tracing: OpenTelemetry spans per decision and per attempt
//   - health: liveness and readiness probes
//
// # Usage
//
//	tel, err := telemetry.New(&cfg.Telemetry, health.VersionInfo{Version: "v1.0.0"})
//	if err != nil {
//		return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	opts := racer.DefaultOptions()
//	opts.Logger = tel.Logger()
//	opts.Observer = tel.Metrics()
//	opts.Tracer = tel.Tracer()
//
//	mux := tel.Mux()
//
// Metrics and tracing can be disabled independently; a disabled collector
// ignores events and a disabled tracer hands out noop spans.
package telemetry
