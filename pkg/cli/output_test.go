package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"amrikyy/nanoagent/pkg/pricing"
	"amrikyy/nanoagent/pkg/racer"
)

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format  OutputFormat
		want    string
		wantErr bool
	}{
		{format: "", want: "*cli.TextFormatter"},
		{format: FormatText, want: "*cli.TextFormatter"},
		{format: FormatJSON, want: "*cli.JSONFormatter"},
		{format: FormatCSV, want: "*cli.CSVFormatter"},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f, err := NewFormatter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if got := typeName(f); got != tt.want {
					t.Errorf("NewFormatter() = %s, want %s", got, tt.want)
				}
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *TextFormatter:
		return "*cli.TextFormatter"
	case *JSONFormatter:
		return "*cli.JSONFormatter"
	case *CSVFormatter:
		return "*cli.CSVFormatter"
	}
	return "unknown"
}

func TestTextFormatter_Table(t *testing.T) {
	var buf bytes.Buffer
	table := WeightsTable{"kiwi": 0.5, "amadeus": 1}

	if err := (&TextFormatter{}).FormatTo(&buf, table); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "amadeus") || !strings.HasSuffix(lines[1], "1.000") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "kiwi") || !strings.HasSuffix(lines[2], "0.500") {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestTextFormatter_Value(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextFormatter{}).FormatTo(&buf, "hello"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hello\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	table := WeightsTable{"amadeus": 0.9}

	if err := (&JSONFormatter{Indent: true}).FormatTo(&buf, table); err != nil {
		t.Fatal(err)
	}

	var got map[string]float64
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got["amadeus"] != 0.9 {
		t.Errorf("got %v", got)
	}
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&CSVFormatter{}).FormatTo(&buf, WeightsTable{"kiwi": 0.25}); err != nil {
		t.Fatal(err)
	}
	want := "STRATEGY,WEIGHT\nkiwi,0.250\n"
	if buf.String() != want {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), want)
	}

	if err := (&CSVFormatter{}).FormatTo(&buf, "not a table"); err == nil {
		t.Error("expected an error for non-tabular data")
	}
}

func TestNewDecisionRow(t *testing.T) {
	success := &racer.Decision{
		ID:         uuid.New(),
		TaskID:     "round-1",
		Success:    true,
		Strategy:   "amadeus",
		Confidence: 0.93,
		Result:     pricing.Quote{Price: 342.5, Currency: "USD", Available: true},
		Latency:    120 * time.Millisecond,
		Metadata:   racer.DecisionMetadata{StrategiesTried: 3, Candidates: 2},
	}

	row := NewDecisionRow(success)
	if row.Price != "342.50 USD" {
		t.Errorf("Price = %q", row.Price)
	}
	if row.LatencyMs != 120 || row.Tried != 3 || row.Candidates != 2 {
		t.Errorf("row = %+v", row)
	}
	if row.Error != "" {
		t.Errorf("Error = %q, want empty", row.Error)
	}

	failed := NewDecisionRow(&racer.Decision{ID: uuid.New(), TaskID: "round-2", Err: errors.New("no strategies")})
	if failed.Success || failed.Price != "" || failed.Error != "no strategies" {
		t.Errorf("failed row = %+v", failed)
	}

	rows := DecisionsTable{row, failed}.Rows()
	if len(rows) != 2 || rows[0][2] != "amadeus" || rows[1][1] != "false" {
		t.Errorf("Rows() = %v", rows)
	}
}

func TestReportTable(t *testing.T) {
	report := &racer.PerformanceReport{
		Strategies: []racer.StrategyReport{{
			Strategy:       "amadeus",
			Executions:     10,
			Wins:           8,
			WinRate:        0.8,
			AverageLatency: 150,
			Weight:         1,
			Recommendation: racer.RecommendationExcellent,
		}},
	}

	rows := ReportTable{Report: report}.Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0][5] != "150ms" || rows[0][8] != "excellent" {
		t.Errorf("row = %v", rows[0])
	}

	if (ReportTable{}).Rows() != nil {
		t.Error("nil report should yield no rows")
	}
}

func TestRecordsTable(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := RecordsTable{{Strategy: "kiwi", Weight: 0.42, UpdatedAt: at}}.Rows()
	want := []string{"kiwi", "0.420", "2026-03-01T12:00:00Z"}
	if len(rows) != 1 || strings.Join(rows[0], ",") != strings.Join(want, ",") {
		t.Errorf("Rows() = %v, want [%v]", rows, want)
	}
}
