package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/apiquery/config"
	"github.com/artpar/apiquery/core/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("BLOG_TOKEN", "s3cret")

	path := writeConfig(t, `
api:
  base_url: "https://blog.example.com/api"
  api_key: "${BLOG_TOKEN}"
  timeout: 3s
  headers:
    X-Tenant: acme

query:
  pagination_style: flat
  default_page_size: 25

resources:
  articles:
    properties:
      title: {type: string}
      views: {type: integer, default: 0}
      published_at: {type: time}
      tags: {type: custom, caster: csv}
  authors:
    type: people
    path: /v2/people
    properties:
      age: {type: int}

logging:
  level: debug
  format: json

metrics:
  enabled: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://blog.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, "s3cret", cfg.API.APIKey)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "acme", cfg.API.Headers["X-Tenant"])
	assert.Equal(t, "apiquery", cfg.API.UserAgent)

	assert.Equal(t, config.PaginationFlat, cfg.Query.PaginationStyle)
	assert.Equal(t, 25, cfg.Query.DefaultPageSize)

	assert.Equal(t, []string{"articles", "authors"}, cfg.ResourceNames())

	articles, ok := cfg.Resource("articles")
	require.True(t, ok)
	assert.Equal(t, "articles", articles.Type)
	assert.Equal(t, "/articles", articles.Path)
	assert.Equal(t, schema.Definition{Type: "custom", Caster: "csv"}, articles.Properties["tags"])
	assert.Equal(t, 0, articles.Properties["views"].Default)

	people, ok := cfg.Resource("people")
	require.True(t, ok, "lookup by JSON:API type")
	assert.Equal(t, "/v2/people", people.Path)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "apiquery", cfg.Metrics.Namespace)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, ":8089", cfg.Fixtures.Addr)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, validConfig()))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, config.PaginationNested, cfg.Query.PaginationStyle)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no endpoint", "logging: {level: info}\n"},
		{"relative base url", "api: {base_url: /api}\n"},
		{"bad scheme", "api: {base_url: 'ftp://example.com'}\n"},
		{"bad pagination style", "api: {base_url: 'http://x'}\nquery: {pagination_style: sideways}\n"},
		{"negative page size", "api: {base_url: 'http://x'}\nquery: {default_page_size: -1}\n"},
		{"bad log format", "api: {base_url: 'http://x'}\nlogging: {format: xml}\n"},
		{"relative resource path", "api: {base_url: 'http://x'}\nresources: {articles: {path: articles}}\n"},
		{"malformed yaml", "api: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_FixturesOnly(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "fixtures: {file: blog.yaml, addr: ':9000'}\n"))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.API.BaseURL)
	assert.Equal(t, ":9000", cfg.Fixtures.Addr)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APIQUERY_BASE_URL", "http://override:9000")
	t.Setenv("APIQUERY_TIMEOUT", "1m")
	t.Setenv("APIQUERY_PAGINATION_STYLE", "flat")
	t.Setenv("APIQUERY_DEFAULT_PAGE_SIZE", "50")
	t.Setenv("APIQUERY_LOG_LEVEL", "warn")
	t.Setenv("APIQUERY_METRICS_ENABLED", "yes")

	cfg, err := config.Load(writeConfig(t, validConfig()))
	require.NoError(t, err)

	assert.Equal(t, "http://override:9000", cfg.API.BaseURL)
	assert.Equal(t, time.Minute, cfg.API.Timeout)
	assert.Equal(t, config.PaginationFlat, cfg.Query.PaginationStyle)
	assert.Equal(t, 50, cfg.Query.DefaultPageSize)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadWithFallback(t *testing.T) {
	t.Setenv("APIQUERY_BASE_URL", "")
	t.Setenv("APIQUERY_FIXTURES_FILE", "")

	path := writeConfig(t, validConfig())
	cfg, err := config.LoadWithFallback(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.API.BaseURL)

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	_, err = config.LoadWithFallback(missing)
	assert.Error(t, err)
	assert.False(t, config.HasEnvConfig())

	t.Setenv("APIQUERY_BASE_URL", "https://env.example.com")
	assert.True(t, config.HasEnvConfig())
	cfg, err = config.LoadWithFallback(missing)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
}

func TestWarnings(t *testing.T) {
	cfg, err := config.Parse([]byte(`
api: {base_url: "http://localhost"}
resources:
  articles:
    properties:
      body: {type: markdown}
      tags: {type: custom}
      meta: {type: custom, caster: yaml}
      labels: {type: custom, caster: csv}
      title: {type: string}
`))
	require.NoError(t, err)

	assert.Equal(t, []string{
		`resources.articles.properties.body: unknown type "markdown", values pass through`,
		`resources.articles.properties.meta: unknown caster "yaml"`,
		`resources.articles.properties.tags: custom type without caster`,
	}, cfg.Warnings(schema.DefaultCasters()))
}

func TestParse_Env(t *testing.T) {
	t.Setenv("APIQUERY_BASE_URL", "")
	t.Setenv("API_HOST", "api.internal")
	cfg, err := config.Parse([]byte("api: {base_url: 'http://${API_HOST}:8080'}\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://api.internal:8080", cfg.API.BaseURL)
}
