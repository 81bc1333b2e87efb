package formatter

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats output as YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Name returns the formatter name.
func (f *YAMLFormatter) Name() string {
	return "yaml"
}

// Description returns the formatter description.
func (f *YAMLFormatter) Description() string {
	return "YAML output format"
}

// FormatList formats a list of records as YAML.
func (f *YAMLFormatter) FormatList(w io.Writer, view View, records []map[string]any, opts FormatOptions) error {
	data := project(records, opts.Columns)
	if data == nil {
		data = []map[string]any{}
	}
	return f.encode(w, envelope(view, data, len(data), true))
}

// FormatRecord formats a single record as YAML.
func (f *YAMLFormatter) FormatRecord(w io.Writer, view View, record map[string]any, opts FormatOptions) error {
	return f.encode(w, envelope(view, projectOne(record, opts.Columns), 0, false))
}

// FormatError formats an error as YAML.
func (f *YAMLFormatter) FormatError(w io.Writer, err error) error {
	return f.encode(w, map[string]any{"error": err.Error()})
}

func (f *YAMLFormatter) encode(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(data)
}
