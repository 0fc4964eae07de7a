package config

import "time"

// Config is the root configuration structure for NanoAgent.
// It contains the engine, learning, weight persistence and telemetry sections.
type Config struct {
	// Engine contains the decision engine settings: how many strategies race,
	// their deadline, and the confidence floor.
	Engine EngineConfig `yaml:"engine"`

	// Learning contains the weight learner settings.
	Learning LearningConfig `yaml:"learning"`

	// Weights contains weight persistence settings.
	Weights WeightsConfig `yaml:"weights"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// EngineConfig contains decision engine configuration.
type EngineConfig struct {
	// MaxStrategies caps how many strategies race per decision.
	// Default: 5
	MaxStrategies int `yaml:"max_strategies" validate:"gte=1,lte=64"`

	// Timeout is the per-strategy attempt deadline.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`

	// MinConfidence is the score a result needs to be a candidate.
	// Default: 0.6
	MinConfidence float64 `yaml:"min_confidence" validate:"gte=0,lte=1"`

	// LearningEnabled turns weight updates on.
	// Default: true
	LearningEnabled bool `yaml:"learning_enabled"`

	// MaxConcurrency caps strategy calls in flight across decisions (0 = unlimited).
	// Default: 0
	MaxConcurrency int `yaml:"max_concurrency" validate:"gte=0"`

	// HistorySize is the number of decisions kept for reporting.
	// Default: 1000
	HistorySize int `yaml:"history_size" validate:"gte=1"`
}

// LearningConfig contains weight learner configuration.
type LearningConfig struct {
	// Rate is the learning rate α.
	// Default: 0.1
	Rate float64 `yaml:"rate" validate:"gt=0,lte=1"`

	// Floor is the lowest weight a strategy can reach.
	// Default: 0.1
	Floor float64 `yaml:"floor" validate:"gte=0,lt=1"`

	// NonWinnerDecay is the rate applied to valid results that lost the collapse.
	// Default: 0 (unchanged)
	NonWinnerDecay float64 `yaml:"non_winner_decay" validate:"gte=0,lte=1"`
}

// WeightsConfig contains weight persistence configuration.
type WeightsConfig struct {
	// Backend selects where weights are persisted.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend" validate:"oneof=memory sqlite"`

	// SQLite contains SQLite backend settings.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// CheckpointSchedule is a cron expression for periodic weight snapshots.
	// Empty disables periodic snapshots; weights are still saved on shutdown.
	// Default: "@every 1m"
	CheckpointSchedule string `yaml:"checkpoint_schedule"`
}

// SQLiteConfig contains SQLite backend configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/weights.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout" validate:"gte=0"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format" validate:"oneof=json text console"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// Redact masks credentials and email addresses in log fields.
	// Default: true
	Redact bool `yaml:"redact"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress serves the metrics and health endpoints when set.
	// Example: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address" validate:"omitempty,hostname_port"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path" validate:"startswith=/"`

	// Namespace is the metric name prefix.
	// Default: "nanoagent"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "engine"
	Subsystem string `yaml:"subsystem"`

	// DecisionDurationBuckets defines histogram buckets for decision and
	// attempt latency (seconds).
	// Default: [0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10]
	DecisionDurationBuckets []float64 `yaml:"decision_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio", "parent_based"
	// Default: "parent_based"
	Sampler string `yaml:"sampler" validate:"oneof=always never ratio parent_based"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Used by "ratio" and as the root sampler of "parent_based".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio" validate:"gte=0,lte=1"`

	// Exporter determines the trace exporter to use.
	// Options: "otlp", "stdout"
	// Default: "otlp"
	Exporter string `yaml:"exporter" validate:"oneof=otlp stdout"`

	// Endpoint is the OTLP collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "nanoagent"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each OTLP export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}
