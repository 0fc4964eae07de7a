package config

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "engine.timeout").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Has reports whether a field has at least one error.
func (e ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

var structValidator = newStructValidator()

// newStructValidator reports fields by their YAML names.
func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// Struct tag rules run first, then the rules that span fields.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	if cfg == nil {
		return ValidationError{Errors: []FieldError{{Field: "config", Message: "is nil"}}}
	}

	var errs []FieldError
	errs = append(errs, validateTags(cfg)...)
	errs = append(errs, validateWeights(&cfg.Weights)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateTags(cfg *Config) []FieldError {
	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "config", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe.Namespace()), Message: tagMessage(fe)})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "lt":
		return fmt.Sprintf("must be less than %s, got %v", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func validateWeights(cfg *WeightsConfig) []FieldError {
	var errs []FieldError

	if cfg.Backend == "sqlite" && strings.TrimSpace(cfg.SQLite.Path) == "" {
		errs = append(errs, FieldError{
			Field:   "weights.sqlite.path",
			Message: "is required when backend is sqlite",
		})
	}

	if cfg.CheckpointSchedule != "" {
		if _, err := cron.ParseStandard(cfg.CheckpointSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "weights.checkpoint_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if addr := cfg.Metrics.ListenAddress; addr != "" {
		if err := validateListenAddress(addr); err != nil {
			errs = append(errs, FieldError{Field: "telemetry.metrics.listen_address", Message: err.Error()})
		}
	}

	for i := 1; i < len(cfg.Metrics.DecisionDurationBuckets); i++ {
		if cfg.Metrics.DecisionDurationBuckets[i] <= cfg.Metrics.DecisionDurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.decision_duration_buckets",
				Message: "must be strictly increasing",
			})
			break
		}
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Exporter == "otlp" && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "is required when tracing is enabled with the otlp exporter",
		})
	}

	return errs
}

// validateListenAddress accepts "host:port" and ":port".
func validateListenAddress(addr string) error {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address format: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q", portStr)
	}
	return nil
}
