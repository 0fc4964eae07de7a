package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is aligned plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is indented JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output with a header row.
	FormatCSV OutputFormat = "csv"
)

// Table is tabular command output.
type Table interface {
	Headers() []string
	Rows() [][]string
}

// Formatter formats command output.
type Formatter interface {
	FormatTo(w io.Writer, data any) error
}

// TextFormatter renders tables as aligned columns and anything else with %v.
type TextFormatter struct{}

// FormatTo writes data to w in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	t, ok := data.(Table)
	if !ok {
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Headers(), "\t"))
	for _, row := range t.Rows() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatTo writes data to w in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter formats tables as CSV.
type CSVFormatter struct{}

// FormatTo writes data to w in CSV format. data must be a Table.
func (f *CSVFormatter) FormatTo(w io.Writer, data any) error {
	t, ok := data.(Table)
	if !ok {
		return fmt.Errorf("csv output requires tabular data, got %T", data)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers()); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows()); err != nil {
		return err
	}
	return cw.Error()
}

// NewFormatter creates a formatter for the named format.
func NewFormatter(format OutputFormat) (Formatter, error) {
	switch format {
	case FormatText, "":
		return &TextFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{Indent: true}, nil
	case FormatCSV:
		return &CSVFormatter{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want text, json or csv)", format)
}
