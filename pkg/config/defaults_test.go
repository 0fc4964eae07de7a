package config

import (
	"reflect"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"engine.max_strategies", cfg.Engine.MaxStrategies, DefaultMaxStrategies},
		{"engine.timeout", cfg.Engine.Timeout, DefaultTimeout},
		{"engine.min_confidence", cfg.Engine.MinConfidence, DefaultMinConfidence},
		{"engine.learning_enabled", cfg.Engine.LearningEnabled, DefaultLearningEnabled},
		{"engine.max_concurrency", cfg.Engine.MaxConcurrency, 0},
		{"engine.history_size", cfg.Engine.HistorySize, DefaultHistorySize},
		{"learning.rate", cfg.Learning.Rate, DefaultLearningRate},
		{"learning.floor", cfg.Learning.Floor, DefaultWeightFloor},
		{"learning.non_winner_decay", cfg.Learning.NonWinnerDecay, DefaultNonWinnerDecay},
		{"weights.backend", cfg.Weights.Backend, DefaultWeightsBackend},
		{"weights.sqlite.path", cfg.Weights.SQLite.Path, DefaultSQLitePath},
		{"weights.checkpoint_schedule", cfg.Weights.CheckpointSchedule, DefaultCheckpointSchedule},
		{"telemetry.logging.level", cfg.Telemetry.Logging.Level, DefaultLoggingLevel},
		{"telemetry.logging.format", cfg.Telemetry.Logging.Format, DefaultLoggingFormat},
		{"telemetry.logging.redact", cfg.Telemetry.Logging.Redact, DefaultLoggingRedact},
		{"telemetry.metrics.enabled", cfg.Telemetry.Metrics.Enabled, DefaultMetricsEnabled},
		{"telemetry.metrics.path", cfg.Telemetry.Metrics.Path, DefaultPrometheusPath},
		{"telemetry.tracing.enabled", cfg.Telemetry.Tracing.Enabled, DefaultTracingEnabled},
		{"telemetry.tracing.sampler", cfg.Telemetry.Tracing.Sampler, DefaultTracingSampler},
		{"telemetry.tracing.exporter", cfg.Telemetry.Tracing.Exporter, DefaultTracingExporter},
		{"telemetry.tracing.sample_ratio", cfg.Telemetry.Tracing.SampleRatio, DefaultTracingSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestApplyDefaults_PreservesSetValues(t *testing.T) {
	cfg := &Config{
		Engine:   EngineConfig{MaxStrategies: 2, Timeout: DefaultTimeout / 2},
		Learning: LearningConfig{Rate: 0.5},
		Weights:  WeightsConfig{Backend: "sqlite"},
	}
	ApplyDefaults(cfg)

	if cfg.Engine.MaxStrategies != 2 {
		t.Errorf("max strategies overwritten: %d", cfg.Engine.MaxStrategies)
	}
	if cfg.Engine.Timeout != DefaultTimeout/2 {
		t.Errorf("timeout overwritten: %v", cfg.Engine.Timeout)
	}
	if cfg.Learning.Rate != 0.5 {
		t.Errorf("rate overwritten: %v", cfg.Learning.Rate)
	}
	if cfg.Weights.Backend != "sqlite" {
		t.Errorf("backend overwritten: %q", cfg.Weights.Backend)
	}
	if cfg.Learning.Floor != DefaultWeightFloor {
		t.Errorf("floor not defaulted: %v", cfg.Learning.Floor)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	first.Telemetry.Metrics.DecisionDurationBuckets = append([]float64(nil), cfg.Telemetry.Metrics.DecisionDurationBuckets...)

	ApplyDefaults(cfg)
	if !reflect.DeepEqual(first, *cfg) {
		t.Errorf("second ApplyDefaults changed config:\n%+v\n%+v", first, *cfg)
	}
}

func TestApplyDefaults_BucketsAreCopied(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Telemetry.Metrics.DecisionDurationBuckets[0] = 42

	if DefaultDecisionDurationBuckets[0] == 42 {
		t.Error("ApplyDefaults shared the default bucket slice")
	}
}
