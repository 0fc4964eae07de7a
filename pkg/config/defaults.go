package config

import "time"

// Default values for configuration fields.
const (
	// Engine defaults
	DefaultMaxStrategies   = 5
	DefaultTimeout         = 10 * time.Second
	DefaultMinConfidence   = 0.6
	DefaultLearningEnabled = true
	DefaultHistorySize     = 1000

	// Learning defaults
	DefaultLearningRate   = 0.1
	DefaultWeightFloor    = 0.1
	DefaultNonWinnerDecay = 0.0

	// Weights defaults
	DefaultWeightsBackend     = "memory"
	DefaultSQLitePath         = "data/weights.db"
	DefaultSQLiteBusyTimeout  = 5 * time.Second
	DefaultCheckpointSchedule = "@every 1m"

	// Telemetry defaults
	DefaultLoggingLevel      = "info"
	DefaultLoggingFormat     = "json"
	DefaultLoggingRedact     = true
	DefaultMetricsEnabled    = true
	DefaultPrometheusPath    = "/metrics"
	DefaultMetricsNamespace  = "nanoagent"
	DefaultMetricsSubsystem  = "engine"
	DefaultTracingEnabled    = false
	DefaultTracingSampler    = "parent_based"
	DefaultTracingSampleRate = 1.0
	DefaultTracingExporter   = "otlp"
	DefaultTracingService    = "nanoagent"
	DefaultTracingTimeout    = 10 * time.Second
)

// DefaultDecisionDurationBuckets are histogram buckets in seconds.
var DefaultDecisionDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Defaults returns a Config with every field set to its default. Loading
// decodes YAML on top of it, so booleans and zero-able numbers that are
// absent from the file keep their defaults.
func Defaults() *Config {
	cfg := &Config{
		Engine: EngineConfig{
			MinConfidence:   DefaultMinConfidence,
			LearningEnabled: DefaultLearningEnabled,
		},
		Weights: WeightsConfig{
			CheckpointSchedule: DefaultCheckpointSchedule,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{Redact: DefaultLoggingRedact},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{SampleRatio: DefaultTracingSampleRate},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Engine defaults
	if cfg.Engine.MaxStrategies == 0 {
		cfg.Engine.MaxStrategies = DefaultMaxStrategies
	}
	if cfg.Engine.Timeout == 0 {
		cfg.Engine.Timeout = DefaultTimeout
	}
	if cfg.Engine.HistorySize == 0 {
		cfg.Engine.HistorySize = DefaultHistorySize
	}

	// Learning defaults
	if cfg.Learning.Rate == 0 {
		cfg.Learning.Rate = DefaultLearningRate
	}
	if cfg.Learning.Floor == 0 {
		cfg.Learning.Floor = DefaultWeightFloor
	}

	// Weights defaults
	if cfg.Weights.Backend == "" {
		cfg.Weights.Backend = DefaultWeightsBackend
	}
	if cfg.Weights.SQLite.Path == "" {
		cfg.Weights.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Weights.SQLite.BusyTimeout == 0 {
		cfg.Weights.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}

	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultPrometheusPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if t.Metrics.Subsystem == "" {
		t.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(t.Metrics.DecisionDurationBuckets) == 0 {
		t.Metrics.DecisionDurationBuckets = append([]float64(nil), DefaultDecisionDurationBuckets...)
	}

	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.Exporter == "" {
		t.Tracing.Exporter = DefaultTracingExporter
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingService
	}
	if t.Tracing.Timeout == 0 {
		t.Tracing.Timeout = DefaultTracingTimeout
	}
}
