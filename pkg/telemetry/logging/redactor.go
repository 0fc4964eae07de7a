package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redactor masks credentials and email addresses in log attributes.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
}

var sensitiveKeys = []string{
	"password", "passwd", "secret", "token",
	"api_key", "apikey", "authorization", "private_key",
}

// NewRedactor creates a Redactor with the built-in patterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []redactPattern{
			{regex: regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`), replacement: "Bearer ***"},
			{regex: regexp.MustCompile(`(?i)(api[-_]?key|token)=[^&\s]+`), replacement: "$1=***"},
			{regex: regexp.MustCompile(`sk-[a-zA-Z0-9]{8,}`), replacement: "sk-***"},
			{regex: regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`), replacement: "***@***"},
		},
	}
}

// RedactString scrubs sensitive substrings from value.
func (r *Redactor) RedactString(value string) string {
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, maskValue(a.Value.String()))
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, r.RedactString(err.Error()))
		}
	}
	return a
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// maskValue keeps a four-character prefix of long values.
func maskValue(v string) string {
	if len(v) <= 4 {
		return "***"
	}
	return v[:4] + "***"
}
