package logging

import (
	"errors"
	"log/slog"
	"testing"
)

func TestRedactor_RedactString(t *testing.T) {
	r := NewRedactor()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bearer token", in: "Authorization: Bearer abc.def-123", want: "Authorization: Bearer ***"},
		{name: "query api key", in: "/v1/flights?apikey=s3cr3t&adults=1", want: "/v1/flights?apikey=***&adults=1"},
		{name: "sk key", in: "using sk-abcdefgh12345", want: "using sk-***"},
		{name: "email", in: "booked for a.b@example.org", want: "booked for ***@***"},
		{name: "clean", in: "CAI to DXB", want: "CAI to DXB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RedactString(tt.in); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRedactor_ReplaceAttr(t *testing.T) {
	r := NewRedactor()

	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{name: "sensitive key", attr: slog.String("client_secret", "abcdefgh"), want: "abcd***"},
		{name: "short sensitive value", attr: slog.String("token", "abc"), want: "***"},
		{name: "error value", attr: slog.Any("error", errors.New("Bearer xyz failed")), want: "Bearer *** failed"},
		{name: "plain", attr: slog.String("route", "CAI-DXB"), want: "CAI-DXB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ReplaceAttr(nil, tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("ReplaceAttr() = %q, want %q", got.Value.String(), tt.want)
			}
		})
	}
}
