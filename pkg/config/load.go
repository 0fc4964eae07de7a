package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NANOAGENT_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded over Defaults, so absent keys keep their default
// values, then remaining zero values are defaulted and the result is
// validated. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML over Defaults and applies defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention NANOAGENT_SECTION_FIELD (e.g., NANOAGENT_ENGINE_TIMEOUT).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// DefaultsWithEnvOverrides returns Defaults with environment variable
// overrides applied and validated. It serves processes started without a
// configuration file.
func DefaultsWithEnvOverrides() (*Config, error) {
	cfg := Defaults()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// A variable that is set but cannot be parsed is an error rather than being
// silently ignored.
func applyEnvOverrides(cfg *Config) error {
	e := &envReader{}

	// Engine overrides
	e.int("ENGINE_MAX_STRATEGIES", &cfg.Engine.MaxStrategies)
	e.duration("ENGINE_TIMEOUT", &cfg.Engine.Timeout)
	e.float("ENGINE_MIN_CONFIDENCE", &cfg.Engine.MinConfidence)
	e.bool("ENGINE_LEARNING_ENABLED", &cfg.Engine.LearningEnabled)
	e.int("ENGINE_MAX_CONCURRENCY", &cfg.Engine.MaxConcurrency)
	e.int("ENGINE_HISTORY_SIZE", &cfg.Engine.HistorySize)

	// Learning overrides
	e.float("LEARNING_RATE", &cfg.Learning.Rate)
	e.float("LEARNING_FLOOR", &cfg.Learning.Floor)
	e.float("LEARNING_NON_WINNER_DECAY", &cfg.Learning.NonWinnerDecay)

	// Weights overrides
	e.string("WEIGHTS_BACKEND", &cfg.Weights.Backend)
	e.string("WEIGHTS_SQLITE_PATH", &cfg.Weights.SQLite.Path)
	e.duration("WEIGHTS_SQLITE_BUSY_TIMEOUT", &cfg.Weights.SQLite.BusyTimeout)
	e.string("WEIGHTS_CHECKPOINT_SCHEDULE", &cfg.Weights.CheckpointSchedule)

	// Telemetry overrides
	e.string("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	e.string("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	e.bool("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	e.bool("TELEMETRY_LOGGING_REDACT", &cfg.Telemetry.Logging.Redact)
	e.bool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	e.string("TELEMETRY_METRICS_LISTEN_ADDRESS", &cfg.Telemetry.Metrics.ListenAddress)
	e.string("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	e.string("TELEMETRY_METRICS_NAMESPACE", &cfg.Telemetry.Metrics.Namespace)
	e.bool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	e.string("TELEMETRY_TRACING_EXPORTER", &cfg.Telemetry.Tracing.Exporter)
	e.string("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	e.string("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	e.float("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
	e.string("TELEMETRY_TRACING_SERVICE_NAME", &cfg.Telemetry.Tracing.ServiceName)
	e.bool("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)

	if len(e.errs) > 0 {
		return ValidationError{Errors: e.errs}
	}
	return nil
}

// envReader reads NANOAGENT_ variables into config fields and collects
// parse failures.
type envReader struct {
	errs []FieldError
}

func (e *envReader) lookup(name string) (string, bool) {
	val, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}

func (e *envReader) fail(name, val string, err error) {
	e.errs = append(e.errs, FieldError{
		Field:   EnvPrefix + name,
		Message: fmt.Sprintf("cannot parse %q: %v", val, err),
	})
}

func (e *envReader) string(name string, dst *string) {
	if val, ok := e.lookup(name); ok {
		*dst = val
	}
}

func (e *envReader) int(name string, dst *int) {
	if val, ok := e.lookup(name); ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			e.fail(name, val, err)
			return
		}
		*dst = i
	}
}

func (e *envReader) float(name string, dst *float64) {
	if val, ok := e.lookup(name); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			e.fail(name, val, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) bool(name string, dst *bool) {
	if val, ok := e.lookup(name); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			e.fail(name, val, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(name string, dst *time.Duration) {
	if val, ok := e.lookup(name); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			e.fail(name, val, err)
			return
		}
		*dst = d
	}
}
