package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid JSON config", config: Config{Level: "info", Format: "json"}},
		{name: "valid text config", config: Config{Level: "debug", Format: "text"}},
		{name: "console maps to text", config: Config{Level: "WARN", Format: "console"}},
		{name: "defaults", config: Config{}},
		{name: "invalid log level", config: Config{Level: "invalid"}, wantErr: true},
		{name: "invalid format", config: Config{Format: "invalid"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "ERROR", want: slog.LevelError},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "warn", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn record missing")
	}
}

func TestLogger_ContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithDecisionID(context.Background(), "dec-1")
	ctx = WithTaskType(ctx, "price_check")
	ctx = WithStrategy(ctx, "amadeus")
	logger.With("component", "test").InfoContext(ctx, "quote received")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	for key, want := range map[string]string{
		"decision_id": "dec-1",
		"task_type":   "price_check",
		"strategy":    "amadeus",
		"component":   "test",
	} {
		if entry[key] != want {
			t.Errorf("entry[%q] = %v, want %q", key, entry[key], want)
		}
	}
}

func TestLogger_Redaction(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Redact: true, Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("upstream call",
		"api_key", "abcd1234secret",
		"url", "https://api.example.com/quotes?api_key=XYZ987&from=CAI",
		"error", errors.New("auth failed for traveler@example.com"),
	)

	out := buf.String()
	for _, leaked := range []string{"1234secret", "XYZ987", "traveler@example.com"} {
		if strings.Contains(out, leaked) {
			t.Errorf("output leaks %q: %s", leaked, out)
		}
	}
	if !strings.Contains(out, "from=CAI") {
		t.Errorf("non-sensitive query parameters should survive: %s", out)
	}
}
