package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/artpar/apiquery/pkg/jsonapi"
)

// TableFormatter formats output as aligned text tables.
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Name returns the formatter name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Description returns the formatter description.
func (f *TableFormatter) Description() string {
	return "Aligned text table output"
}

// FormatList formats a list of records as a table, followed by a page line
// when the view carries pagination meta.
func (f *TableFormatter) FormatList(w io.Writer, view View, records []map[string]any, opts FormatOptions) error {
	if len(records) == 0 {
		fmt.Fprintf(w, "No %s found.\n", f.noun(view))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	cols := columns(view, records, opts.Columns)

	if !opts.NoHeader {
		headers := make([]string, len(cols))
		for i, col := range cols {
			headers[i] = strings.ToUpper(col)
		}
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}

	for _, rec := range records {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = f.formatValue(rec[col], opts.MaxWidth)
		}
		fmt.Fprintln(tw, strings.Join(values, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if p := jsonapi.PaginationFromMeta(view.Meta); p != nil {
		fmt.Fprintf(w, "page %d of %d (%d total)\n", p.Page, p.TotalPages(), p.Total)
	}
	return nil
}

// FormatRecord formats a single record as key-value pairs.
func (f *TableFormatter) FormatRecord(w io.Writer, view View, record map[string]any, opts FormatOptions) error {
	if record == nil {
		fmt.Fprintf(w, "No %s found.\n", f.noun(view))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, col := range columns(view, []map[string]any{record}, opts.Columns) {
		fmt.Fprintf(tw, "%s:\t%s\n", f.formatLabel(col), f.formatValue(record[col], 0))
	}
	return tw.Flush()
}

// FormatError formats an error message.
func (f *TableFormatter) FormatError(w io.Writer, err error) error {
	_, werr := fmt.Fprintf(w, "Error: %s\n", err.Error())
	return werr
}

func (f *TableFormatter) noun(view View) string {
	if view.Resource == "" {
		return "records"
	}
	return view.Resource
}

// formatLabel converts snake_case to Title Case.
func (f *TableFormatter) formatLabel(name string) string {
	if name == "id" {
		return "ID"
	}
	words := strings.Split(name, "_")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// formatValue formats a value for display.
func (f *TableFormatter) formatValue(val any, maxWidth int) string {
	if val == nil {
		return "-"
	}

	var str string
	switch v := val.(type) {
	case string:
		str = v
	case bool:
		if v {
			str = "yes"
		} else {
			str = "no"
		}
	case int:
		str = strconv.Itoa(v)
	case float64:
		if v == float64(int64(v)) {
			str = strconv.FormatInt(int64(v), 10)
		} else {
			str = strconv.FormatFloat(v, 'f', 2, 64)
		}
	case time.Time:
		str = v.Format(time.RFC3339)
	case time.Duration:
		str = v.String()
	case []string:
		str = strings.Join(v, ", ")
	case []byte:
		str = "[binary]"
	default:
		b, _ := json.Marshal(v)
		str = string(b)
	}

	if maxWidth > 3 && len(str) > maxWidth {
		str = str[:maxWidth-3] + "..."
	}

	return str
}
