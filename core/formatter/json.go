package formatter

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Description returns the formatter description.
func (f *JSONFormatter) Description() string {
	return "JSON output format"
}

// FormatList formats a list of records as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, view View, records []map[string]any, opts FormatOptions) error {
	data := project(records, opts.Columns)
	if data == nil {
		data = []map[string]any{}
	}
	return f.encode(w, envelope(view, data, len(data), true), opts.Compact)
}

// FormatRecord formats a single record as JSON.
func (f *JSONFormatter) FormatRecord(w io.Writer, view View, record map[string]any, opts FormatOptions) error {
	return f.encode(w, envelope(view, projectOne(record, opts.Columns), 0, false), opts.Compact)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return f.encode(w, map[string]any{"error": err.Error()}, false)
}

func (f *JSONFormatter) encode(w io.Writer, data any, compact bool) error {
	encoder := json.NewEncoder(w)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}
