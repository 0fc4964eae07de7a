package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"amrikyy/nanoagent/pkg/config"
	"amrikyy/nanoagent/pkg/telemetry/health"
	"amrikyy/nanoagent/pkg/telemetry/logging"
	"amrikyy/nanoagent/pkg/telemetry/metrics"
	"amrikyy/nanoagent/pkg/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Telemetry bundles the process logger, metrics collector, tracer and
// health checker built from one TelemetryConfig.
type Telemetry struct {
	cfg     *config.TelemetryConfig
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	health  *health.Checker
	version health.VersionInfo
}

// Option customises New.
type Option func(*options)

type options struct {
	logWriter   io.Writer
	traceWriter io.Writer
}

// WithLogWriter sets where logs are written. Default os.Stderr.
func WithLogWriter(w io.Writer) Option {
	return func(o *options) { o.logWriter = w }
}

// WithTraceWriter sets where the stdout trace exporter writes.
func WithTraceWriter(w io.Writer) Option {
	return func(o *options) { o.traceWriter = w }
}

// New builds the telemetry stack. The metrics registry also carries the Go
// runtime and process collectors.
func New(cfg *config.TelemetryConfig, version health.VersionInfo, opts ...Option) (*Telemetry, error) {
	if cfg == nil {
		return nil, errors.New("telemetry config is nil")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
		Redact:    cfg.Logging.Redact,
		Writer:    o.logWriter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tracerOpts := []tracing.Option{tracing.WithServiceVersion(version.Version)}
	if o.traceWriter != nil {
		tracerOpts = append(tracerOpts, tracing.WithWriter(o.traceWriter))
	}
	tracer, err := tracing.New(&cfg.Tracing, tracerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	return &Telemetry{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewCollector(&cfg.Metrics, registry),
		tracer:  tracer,
		health:  health.New(0),
		version: version,
	}, nil
}

// Logger returns the process logger.
func (t *Telemetry) Logger() *slog.Logger { return t.logger }

// Metrics returns the metrics collector.
func (t *Telemetry) Metrics() *metrics.Collector { return t.metrics }

// Tracer returns the tracer.
func (t *Telemetry) Tracer() *tracing.Tracer { return t.tracer }

// Health returns the health checker.
func (t *Telemetry) Health() *health.Checker { return t.health }

// Mux returns a mux serving the metrics endpoint (when enabled) and the
// health endpoints.
func (t *Telemetry) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	if t.cfg.Metrics.Enabled {
		mux.Handle(t.cfg.Metrics.Path, t.metrics.Handler())
	}
	t.health.Register(mux, t.version)
	return mux
}

// Shutdown flushes pending spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if err := t.tracer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down tracer: %w", err)
	}
	return nil
}
