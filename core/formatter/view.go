package formatter

import (
	"sort"

	"github.com/artpar/apiquery/core/schema"
	"github.com/artpar/apiquery/domain/record"
	"github.com/artpar/apiquery/pkg/jsonapi"
)

// View describes what is being rendered.
type View struct {
	// Resource is the JSON:API type of the records.
	Resource string

	// Columns are the default columns, in display order.
	Columns []string

	// Meta is the response meta, rendered alongside lists.
	Meta jsonapi.Meta
}

// ViewOf builds a view whose default columns are id followed by the schema's
// properties in declaration order.
func ViewOf(resourceType string, s *schema.Schema) View {
	return View{
		Resource: resourceType,
		Columns:  append([]string{"id"}, s.Names()...),
	}
}

// WithMeta returns a copy of the view carrying meta.
func (v View) WithMeta(meta jsonapi.Meta) View {
	v.Meta = meta
	return v
}

// Rows flattens records into field maps including id and type.
func Rows(records []*record.Record) []map[string]any {
	rows := make([]map[string]any, len(records))
	for i, r := range records {
		rows[i] = r.Fields()
	}
	return rows
}

// Row flattens one record; nil stays nil.
func Row(r *record.Record) map[string]any {
	if r == nil {
		return nil
	}
	return r.Fields()
}

// columns resolves the columns to render: explicit ones, then the view's,
// then every key found in the records with id first.
func columns(view View, records []map[string]any, requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	if len(view.Columns) > 0 {
		return view.Columns
	}

	seen := map[string]bool{"id": true, "type": true}
	var keys []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return append([]string{"id"}, keys...)
}

// project restricts records to the requested columns. With no explicit
// columns records are returned whole.
func project(records []map[string]any, requested []string) []map[string]any {
	if len(requested) == 0 {
		return records
	}
	out := make([]map[string]any, len(records))
	for i, rec := range records {
		out[i] = projectOne(rec, requested)
	}
	return out
}

func projectOne(rec map[string]any, requested []string) map[string]any {
	if len(requested) == 0 || rec == nil {
		return rec
	}
	out := make(map[string]any, len(requested))
	for _, col := range requested {
		if v, ok := rec[col]; ok {
			out[col] = v
		}
	}
	return out
}

// envelope is the document written by the structured formatters.
func envelope(view View, data any, count int, withCount bool) map[string]any {
	out := map[string]any{
		"resource": view.Resource,
		"data":     data,
	}
	if withCount {
		out["count"] = count
	}
	if len(view.Meta) > 0 {
		out["meta"] = map[string]any(view.Meta)
	}
	return out
}
