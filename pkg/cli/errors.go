package cli

import (
	"errors"
	"fmt"
)

// Exit codes returned by the nanoagent binary.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfigError = 2
	ExitNoDecision  = 3
)

// ErrNoDecision is returned by commands whose every decision failed.
var ErrNoDecision = errors.New("no successful decision")

// ConfigError represents an invalid or unreadable configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config error: %v", e.Err)
	}
	return fmt.Sprintf("config error in %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(path string, err error) *ConfigError {
	return &ConfigError{Path: path, Err: err}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	if errors.Is(err, ErrNoDecision) {
		return ExitNoDecision
	}
	return ExitFailure
}
