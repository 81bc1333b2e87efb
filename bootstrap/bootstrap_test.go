package bootstrap_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/artpar/apiquery/bootstrap"
	"github.com/artpar/apiquery/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

const fixtures = `articles:
  - id: "1"
    title: Hello
    status: published
    views: "120"
  - id: "2"
    title: Draft
    status: draft
    views: "7"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testConfig(t *testing.T, extra string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	fixturePath := writeFile(t, dir, "fixtures.yaml", fixtures)

	cfg, err := config.Parse([]byte(`
fixtures:
  file: ` + fixturePath + `
logging:
  level: error
resources:
  posts:
    type: articles
    properties:
      views: {type: integer}
` + extra))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func newApp(t *testing.T, cfg *config.Config) *bootstrap.App {
	t.Helper()
	app, err := bootstrap.New(cfg, bootstrap.Options{LogOutput: io.Discard})
	if err != nil {
		t.Fatalf("bootstrap.New: %v", err)
	}
	return app
}

func TestNew_RequiresConfig(t *testing.T) {
	if _, err := bootstrap.New(nil, bootstrap.Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNew_MetricsDisabled(t *testing.T) {
	app := newApp(t, testConfig(t, ""))
	if app.Metrics != nil || app.Registry != nil {
		t.Error("metrics should be nil when disabled")
	}
	if app.MetricsHandler() != nil {
		t.Error("MetricsHandler should be nil when disabled")
	}
}

func TestBaseURL(t *testing.T) {
	cfg := &config.Config{Fixtures: config.FixturesConfig{Addr: ":8089"}}
	if got := bootstrap.BaseURL(cfg); got != "http://localhost:8089" {
		t.Errorf("BaseURL = %s", got)
	}

	cfg.Fixtures.Addr = "127.0.0.1:9000"
	if got := bootstrap.BaseURL(cfg); got != "http://127.0.0.1:9000" {
		t.Errorf("BaseURL = %s", got)
	}

	cfg.API.BaseURL = "https://api.example.com"
	if got := bootstrap.BaseURL(cfg); got != "https://api.example.com" {
		t.Errorf("BaseURL = %s", got)
	}
}

func TestBuildSchemas_KeyedByType(t *testing.T) {
	cfg := testConfig(t, "")
	schemas, err := bootstrap.BuildSchemas(cfg, nil)
	if err != nil {
		t.Fatalf("BuildSchemas: %v", err)
	}

	s, ok := schemas["articles"]
	if !ok {
		t.Fatalf("schemas = %v, want articles key", schemas)
	}
	if names := s.Names(); len(names) != 1 || names[0] != "views" {
		t.Errorf("Names() = %v", names)
	}
}

func TestBuildSchemas_SchemaFile(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "articles.yaml", `properties:
  title: {type: string}
  views: {type: string}
  published_at: {type: time}
`)
	cfg := testConfig(t, "    schema_file: "+schemaPath+"\n")

	schemas, err := bootstrap.BuildSchemas(cfg, nil)
	if err != nil {
		t.Fatalf("BuildSchemas: %v", err)
	}
	s := schemas["articles"]
	if got := strings.Join(s.Names(), ","); got != "published_at,title,views" {
		t.Errorf("Names() = %s", got)
	}
	// The inline integer definition replaces the file's string one.
	if v, err := s.Cast("views", "12"); err != nil || v != 12 {
		t.Errorf("Cast(views) = %v, %v; want 12", v, err)
	}

	cfg = testConfig(t, "    schema_file: "+filepath.Join(dir, "missing.yaml")+"\n")
	if _, err := bootstrap.BuildSchemas(cfg, nil); err == nil {
		t.Fatal("expected error for missing schema file")
	}
	if _, err := bootstrap.New(cfg, bootstrap.Options{LogOutput: io.Discard}); err == nil {
		t.Fatal("New should fail when a schema file cannot be read")
	}
}

func TestQueryOptions(t *testing.T) {
	cfg := testConfig(t, "query:\n  pagination_style: flat\n")
	app := newApp(t, cfg)

	q, err := app.Query("posts")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	params := q.Page(2).Per(5).Params()
	if params["page"] != 2 || params["per_page"] != 5 {
		t.Errorf("Params() = %v, want flat pagination", params)
	}
}

func TestResource_LookupAndCache(t *testing.T) {
	app := newApp(t, testConfig(t, ""))

	byName, err := app.Resource("posts")
	if err != nil {
		t.Fatalf("Resource: %v", err)
	}
	if byName.TableName() != "articles" || byName.Path() != "/articles" {
		t.Errorf("resource = %s %s", byName.TableName(), byName.Path())
	}
	again, _ := app.Resource("posts")
	if again != byName {
		t.Error("resource should be cached")
	}

	untyped, err := app.Resource("tags")
	if err != nil {
		t.Fatalf("Resource: %v", err)
	}
	if untyped.TableName() != "tags" || untyped.Path() != "/tags" {
		t.Errorf("untyped resource = %s %s", untyped.TableName(), untyped.Path())
	}

	if _, err := app.Resource(""); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestView(t *testing.T) {
	app := newApp(t, testConfig(t, ""))

	v := app.View("posts")
	if v.Resource != "articles" || strings.Join(v.Columns, ",") != "id,views" {
		t.Errorf("View(posts) = %+v", v)
	}

	v = app.View("tags")
	if v.Resource != "tags" || v.Columns != nil {
		t.Errorf("View(tags) = %+v", v)
	}
}

func TestFixtureServer_EndToEnd(t *testing.T) {
	cfg := testConfig(t, "metrics:\n  enabled: true\n")

	// Point the client at the fixture server itself.
	srv, _, err := newApp(t, cfg).FixtureServer()
	if err != nil {
		t.Fatalf("FixtureServer: %v", err)
	}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cfg.API.BaseURL = ts.URL
	app := newApp(t, cfg)

	q, _ := app.Query("posts")
	rec, err := q.Where(map[string]any{"status": "published"}).First(context.Background())
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if rec == nil || rec.ID != "1" {
		t.Fatalf("First = %+v", rec)
	}
	if views, _ := rec.Int("views"); views != 120 {
		t.Errorf("views = %v, want cast integer 120", rec.Attributes["views"])
	}

	if got := testutil.ToFloat64(app.Metrics.RecordsDecoded.WithLabelValues("articles")); got != 1 {
		t.Errorf("records decoded = %v, want 1", got)
	}
}

func TestFixtureServer_MetricsEndpoint(t *testing.T) {
	cfg := testConfig(t, "metrics:\n  enabled: true\n  path: /prom\n")
	app := newApp(t, cfg)

	srv, _, err := app.FixtureServer()
	if err != nil {
		t.Fatalf("FixtureServer: %v", err)
	}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	if resp, err := http.Get(ts.URL + "/articles"); err == nil {
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/prom")
	if err != nil {
		t.Fatalf("GET /prom: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !bytes.Contains(body, []byte("apiquery_fixture_requests_total")) {
		t.Errorf("metrics output missing fixture counter:\n%s", body)
	}
}

func TestFixtureServer_RequiresFile(t *testing.T) {
	cfg, err := config.Parse([]byte("api:\n  base_url: http://localhost:3000\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, _, err := newApp(t, cfg).FixtureServer(); err == nil {
		t.Fatal("expected error without fixtures.file")
	}
}

func TestWatchReloads_SwapsFixtures(t *testing.T) {
	dir := t.TempDir()
	fixturePath := writeFile(t, dir, "fixtures.yaml", fixtures)
	configPath := writeFile(t, dir, "apiquery.yaml", "metrics:\n  enabled: true\nfixtures:\n  file: "+fixturePath+"\n")

	holder, err := config.NewHolder(configPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	defer holder.Stop()

	app := newApp(t, holder.Get())
	_, store, err := app.FixtureServer()
	if err != nil {
		t.Fatalf("FixtureServer: %v", err)
	}
	app.WatchReloads(holder, store)

	writeFile(t, dir, "fixtures.yaml", "tags:\n  - id: \"1\"\n    name: go\n")
	if err := holder.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if types := store.Types(); len(types) != 1 || types[0] != "tags" {
		t.Errorf("Types() = %v, want [tags]", types)
	}
	if got := testutil.ToFloat64(app.Metrics.ConfigReloads); got != 1 {
		t.Errorf("config reloads = %v, want 1", got)
	}

	// A broken config keeps the old state and counts an error.
	writeFile(t, dir, "apiquery.yaml", "logging:\n  format: xml\nfixtures:\n  file: "+fixturePath+"\n")
	if err := holder.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if got := testutil.ToFloat64(app.Metrics.ConfigReloadErrors); got != 1 {
		t.Errorf("config reload errors = %v, want 1", got)
	}
	if types := store.Types(); len(types) != 1 || types[0] != "tags" {
		t.Errorf("Types() after failed reload = %v", types)
	}
}

func TestServeFixtures_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Fixtures.Addr = "127.0.0.1:0"
	app := newApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := app.ServeFixtures(ctx, nil); err != nil && err != http.ErrServerClosed {
		t.Fatalf("ServeFixtures: %v", err)
	}
}
