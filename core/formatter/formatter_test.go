package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/artpar/apiquery/core/schema"
	"github.com/artpar/apiquery/domain/record"
	"github.com/artpar/apiquery/pkg/jsonapi"
	"gopkg.in/yaml.v3"
)

func articleView() View {
	s := schema.New()
	s.Add("title", schema.Options{Type: schema.TypeString})
	s.Add("views", schema.Options{Type: schema.TypeInteger})
	return ViewOf("articles", s)
}

func articleRows() []map[string]any {
	return []map[string]any{
		{"id": "1", "type": "articles", "title": "Hello", "views": 120},
		{"id": "2", "type": "articles", "title": "World", "views": 340},
	}
}

// ===========================================
// Registry Tests
// ===========================================

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.formatters == nil {
		t.Fatal("formatters map should be initialized")
	}
	if r.defaultFmt != "table" {
		t.Errorf("default format should be 'table', got %q", r.defaultFmt)
	}
	if r.Default() != nil {
		t.Error("empty registry should have no default")
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	f := NewTableFormatter()
	if err := r.Register(f); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err := r.Register(f)
	if err == nil {
		t.Fatal("expected error when registering duplicate formatter")
	}
	if !strings.Contains(err.Error(), "already registered") {
		t.Errorf("error message should mention 'already registered', got: %v", err)
	}
}

func TestRegistry_DefaultAndList(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(NewYAMLFormatter())
	_ = r.Register(NewJSONFormatter())

	// table missing: falls back to the first name
	if got := r.Default().Name(); got != "json" {
		t.Errorf("Default() = %q, want json", got)
	}

	if err := r.SetDefault("yaml"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if got := r.Default().Name(); got != "yaml" {
		t.Errorf("Default() = %q, want yaml", got)
	}
	if err := r.SetDefault("csv"); err == nil {
		t.Error("SetDefault of unknown formatter should fail")
	}

	names := r.List()
	if len(names) != 2 || names[0] != "json" || names[1] != "yaml" {
		t.Errorf("List() = %v", names)
	}
}

func TestDefaultRegistry(t *testing.T) {
	for _, name := range []string{"table", "json", "yaml"} {
		if _, ok := Get(name); !ok {
			t.Errorf("formatter %q not registered", name)
		}
	}
	if Default().Name() != "table" {
		t.Errorf("default formatter = %q", Default().Name())
	}
	if len(List()) != 3 {
		t.Errorf("List() = %v", List())
	}
}

// ===========================================
// View Tests
// ===========================================

func TestViewOf(t *testing.T) {
	v := articleView()
	if v.Resource != "articles" {
		t.Errorf("Resource = %q", v.Resource)
	}
	want := []string{"id", "title", "views"}
	if strings.Join(v.Columns, ",") != strings.Join(want, ",") {
		t.Errorf("Columns = %v, want %v", v.Columns, want)
	}
}

func TestRows(t *testing.T) {
	r, err := record.FromResource(jsonapi.Resource{
		Type:       "articles",
		ID:         "7",
		Attributes: map[string]any{"title": "T"},
	}, nil)
	if err != nil {
		t.Fatalf("FromResource: %v", err)
	}

	rows := Rows([]*record.Record{r})
	if len(rows) != 1 || rows[0]["id"] != "7" || rows[0]["title"] != "T" || rows[0]["type"] != "articles" {
		t.Errorf("Rows() = %v", rows)
	}
	if Row(nil) != nil {
		t.Error("Row(nil) should be nil")
	}
}

func TestColumns_Inferred(t *testing.T) {
	got := columns(View{}, []map[string]any{
		{"id": "1", "type": "x", "b": 1},
		{"id": "2", "a": 2},
	}, nil)
	if strings.Join(got, ",") != "id,a,b" {
		t.Errorf("columns() = %v", got)
	}
}

// ===========================================
// Table Tests
// ===========================================

func TestTableFormatter_FormatList(t *testing.T) {
	f := NewTableFormatter()
	var buf bytes.Buffer

	if err := f.FormatList(&buf, articleView(), articleRows(), FormatOptions{}); err != nil {
		t.Fatalf("FormatList: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[0], "TITLE") || !strings.Contains(lines[0], "VIEWS") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Hello") || !strings.Contains(lines[1], "120") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestTableFormatter_NoHeaderAndColumns(t *testing.T) {
	f := NewTableFormatter()
	var buf bytes.Buffer

	err := f.FormatList(&buf, articleView(), articleRows(), FormatOptions{NoHeader: true, Columns: []string{"title"}})
	if err != nil {
		t.Fatalf("FormatList: %v", err)
	}
	if buf.String() != "Hello\nWorld\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTableFormatter_Empty(t *testing.T) {
	f := NewTableFormatter()
	var buf bytes.Buffer

	_ = f.FormatList(&buf, articleView(), nil, FormatOptions{})
	if buf.String() != "No articles found.\n" {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	_ = f.FormatRecord(&buf, View{}, nil, FormatOptions{})
	if buf.String() != "No records found.\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTableFormatter_PageFooter(t *testing.T) {
	f := NewTableFormatter()
	var buf bytes.Buffer

	view := articleView().WithMeta(jsonapi.Meta{"page": float64(2), "per_page": float64(2), "total": float64(5)})
	_ = f.FormatList(&buf, view, articleRows(), FormatOptions{})

	if !strings.HasSuffix(buf.String(), "page 2 of 3 (5 total)\n") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTableFormatter_FormatRecord(t *testing.T) {
	f := NewTableFormatter()
	var buf bytes.Buffer

	view := View{Columns: []string{"id", "published_at"}}
	rec := map[string]any{"id": "1", "published_at": time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	if err := f.FormatRecord(&buf, view, rec, FormatOptions{}); err != nil {
		t.Fatalf("FormatRecord: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "ID:") || !strings.Contains(out, "Published At:") {
		t.Errorf("labels missing: %q", out)
	}
	if !strings.Contains(out, "2024-01-02T03:04:05Z") {
		t.Errorf("time not formatted: %q", out)
	}
}

func TestTableFormatter_FormatValue(t *testing.T) {
	f := NewTableFormatter()

	tests := []struct {
		name     string
		val      any
		maxWidth int
		want     string
	}{
		{"nil", nil, 0, "-"},
		{"string", "abc", 0, "abc"},
		{"true", true, 0, "yes"},
		{"false", false, 0, "no"},
		{"int", 42, 0, "42"},
		{"whole float", 3.0, 0, "3"},
		{"float", 3.14159, 0, "3.14"},
		{"duration", 90 * time.Second, 0, "1m30s"},
		{"strings", []string{"a", "b"}, 0, "a, b"},
		{"bytes", []byte{1}, 0, "[binary]"},
		{"map", map[string]any{"k": 1}, 0, `{"k":1}`},
		{"truncated", "abcdefghij", 6, "abc..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.formatValue(tt.val, tt.maxWidth); got != tt.want {
				t.Errorf("formatValue(%v) = %q, want %q", tt.val, got, tt.want)
			}
		})
	}
}

func TestTableFormatter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	_ = NewTableFormatter().FormatError(&buf, errors.New("boom"))
	if buf.String() != "Error: boom\n" {
		t.Errorf("output = %q", buf.String())
	}
}

// ===========================================
// JSON Tests
// ===========================================

func TestJSONFormatter_FormatList(t *testing.T) {
	f := NewJSONFormatter()
	var buf bytes.Buffer

	view := articleView().WithMeta(jsonapi.Meta{"total": 2})
	if err := f.FormatList(&buf, view, articleRows(), FormatOptions{Columns: []string{"id", "title"}}); err != nil {
		t.Fatalf("FormatList: %v", err)
	}

	var out struct {
		Resource string           `json:"resource"`
		Count    int              `json:"count"`
		Data     []map[string]any `json:"data"`
		Meta     map[string]any   `json:"meta"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Resource != "articles" || out.Count != 2 || len(out.Data) != 2 {
		t.Errorf("unexpected envelope: %+v", out)
	}
	if _, ok := out.Data[0]["views"]; ok {
		t.Error("views should be projected out")
	}
	if out.Meta["total"] != float64(2) {
		t.Errorf("meta = %v", out.Meta)
	}
}

func TestJSONFormatter_EmptyAndCompact(t *testing.T) {
	f := NewJSONFormatter()
	var buf bytes.Buffer

	_ = f.FormatList(&buf, View{Resource: "tags"}, nil, FormatOptions{Compact: true})
	if buf.String() != `{"count":0,"data":[],"resource":"tags"}`+"\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestJSONFormatter_FormatRecord(t *testing.T) {
	f := NewJSONFormatter()
	var buf bytes.Buffer

	_ = f.FormatRecord(&buf, View{Resource: "articles"}, nil, FormatOptions{Compact: true})
	if buf.String() != `{"data":null,"resource":"articles"}`+"\n" {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	_ = f.FormatError(&buf, errors.New("nope"))
	if !strings.Contains(buf.String(), `"error": "nope"`) {
		t.Errorf("output = %q", buf.String())
	}
}

// ===========================================
// YAML Tests
// ===========================================

func TestYAMLFormatter_FormatList(t *testing.T) {
	f := NewYAMLFormatter()
	var buf bytes.Buffer

	if err := f.FormatList(&buf, articleView(), articleRows(), FormatOptions{}); err != nil {
		t.Fatalf("FormatList: %v", err)
	}

	var out map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if out["resource"] != "articles" || out["count"] != 2 {
		t.Errorf("unexpected envelope: %v", out)
	}
	data, ok := out["data"].([]any)
	if !ok || len(data) != 2 {
		t.Fatalf("data = %v", out["data"])
	}
	if _, hasMeta := out["meta"]; hasMeta {
		t.Error("meta should be omitted when empty")
	}
}

func TestYAMLFormatter_FormatRecordAndError(t *testing.T) {
	f := NewYAMLFormatter()
	var buf bytes.Buffer

	_ = f.FormatRecord(&buf, View{Resource: "people"}, map[string]any{"id": "9", "name": "Dan"}, FormatOptions{Columns: []string{"name"}})
	var out map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	data := out["data"].(map[string]any)
	if data["name"] != "Dan" || data["id"] != nil {
		t.Errorf("data = %v", data)
	}

	buf.Reset()
	_ = f.FormatError(&buf, errors.New("bad"))
	if buf.String() != "error: bad\n" {
		t.Errorf("output = %q", buf.String())
	}
}
