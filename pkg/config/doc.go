// Package config provides configuration management for NanoAgent.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("nanoagent.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("nanoagent.yaml")
//
// The file is decoded over Defaults, so keys missing from the file keep their
// defaults. This matters for engine.learning_enabled and
// engine.min_confidence, whose defaults are not the zero value.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention NANOAGENT_SECTION_FIELD.
// For example:
//
//   - NANOAGENT_ENGINE_TIMEOUT overrides engine.timeout
//   - NANOAGENT_LEARNING_RATE overrides learning.rate
//   - NANOAGENT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
// A variable that does not parse is reported as a validation error.
//
// # Validation
//
// Field rules are declared as go-playground/validator struct tags. Rules that
// span fields, such as an OTLP endpoint being required when tracing is
// enabled, are checked separately. All failures are collected into a single
// ValidationError.
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify, debounces bursts of
// events and hands each successfully reloaded Config to a callback. The
// engine section is the part that can change at runtime.
//
// # Example Configuration
//
//	engine:
//	  max_strategies: 5
//	  timeout: 10s
//	  min_confidence: 0.6
//	  learning_enabled: true
//
//	learning:
//	  rate: 0.1
//	  floor: 0.1
//
//	weights:
//	  backend: sqlite
//	  sqlite:
//	    path: data/weights.db
//	  checkpoint_schedule: "@every 1m"
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  metrics:
//	    enabled: true
//	    listen_address: "127.0.0.1:9090"
//	  tracing:
//	    enabled: false
package config
