// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/artpar/apiquery/core/schema"
	"gopkg.in/yaml.v3"
)

// Pagination styles accepted by query.pagination_style.
const (
	PaginationNested = "nested"
	PaginationFlat   = "flat"
)

// Config is the root configuration structure.
type Config struct {
	API       APIConfig                 `yaml:"api"`
	Query     QueryConfig               `yaml:"query"`
	Resources map[string]ResourceConfig `yaml:"resources"`
	Logging   LoggingConfig             `yaml:"logging"`
	Metrics   MetricsConfig             `yaml:"metrics"`
	Fixtures  FixturesConfig            `yaml:"fixtures"`
}

// APIConfig configures the remote JSON:API server.
type APIConfig struct {
	BaseURL   string            `yaml:"base_url"`
	APIKey    string            `yaml:"api_key,omitempty"`
	Timeout   time.Duration     `yaml:"timeout"`
	Headers   map[string]string `yaml:"headers,omitempty"`
	UserAgent string            `yaml:"user_agent"`
}

// QueryConfig configures how queries are rendered.
type QueryConfig struct {
	PaginationStyle string `yaml:"pagination_style"` // "nested" or "flat"
	DefaultPageSize int    `yaml:"default_page_size"`
}

// ResourceConfig declares one resource and its typed properties.
type ResourceConfig struct {
	Type       string                       `yaml:"type"` // JSON:API type (default: the resource name)
	Path       string                       `yaml:"path"` // collection path (default: /<type>)
	Properties map[string]schema.Definition `yaml:"properties"`
	SchemaFile string                       `yaml:"schema_file"` // YAML file of properties; inline properties win
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Path      string `yaml:"path"` // served by the fixture server (default: /metrics)
}

// FixturesConfig configures the fixture server.
type FixturesConfig struct {
	Addr     string `yaml:"addr"`
	File     string `yaml:"file"`
	PageSize int    `yaml:"page_size"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse reads configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	APIQUERY_BASE_URL          - API base URL
//	APIQUERY_API_KEY           - Bearer token
//	APIQUERY_TIMEOUT           - Request timeout (default: 10s)
//	APIQUERY_USER_AGENT        - User-Agent header (default: apiquery)
//	APIQUERY_PAGINATION_STYLE  - nested or flat (default: nested)
//	APIQUERY_DEFAULT_PAGE_SIZE - Page size applied when none is given
//	APIQUERY_LOG_LEVEL         - Log level: debug, info, warn, error (default: info)
//	APIQUERY_LOG_FORMAT        - Log format: json or console (default: console)
//	APIQUERY_METRICS_ENABLED   - Enable metrics (default: false)
//	APIQUERY_FIXTURES_ADDR     - Fixture server address (default: :8089)
//	APIQUERY_FIXTURES_FILE     - Fixture file
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment variables.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	if HasEnvConfig() {
		return LoadFromEnv()
	}

	return nil, fmt.Errorf("no configuration found: provide a config file or set APIQUERY_BASE_URL")
}

// HasEnvConfig returns true if essential environment variables are set.
func HasEnvConfig() bool {
	return os.Getenv("APIQUERY_BASE_URL") != "" || os.Getenv("APIQUERY_FIXTURES_FILE") != ""
}

// applyEnvOverrides applies APIQUERY_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// API configuration
	if v := os.Getenv("APIQUERY_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("APIQUERY_API_KEY"); v != "" {
		cfg.API.APIKey = v
	}
	if v := os.Getenv("APIQUERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
		}
	}
	if v := os.Getenv("APIQUERY_USER_AGENT"); v != "" {
		cfg.API.UserAgent = v
	}

	// Query configuration
	if v := os.Getenv("APIQUERY_PAGINATION_STYLE"); v != "" {
		cfg.Query.PaginationStyle = v
	}
	if v := os.Getenv("APIQUERY_DEFAULT_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Query.DefaultPageSize = n
		}
	}

	// Logging configuration
	if v := os.Getenv("APIQUERY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("APIQUERY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("APIQUERY_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("APIQUERY_METRICS_NAMESPACE"); v != "" {
		cfg.Metrics.Namespace = v
	}

	// Fixture configuration
	if v := os.Getenv("APIQUERY_FIXTURES_ADDR"); v != "" {
		cfg.Fixtures.Addr = v
	}
	if v := os.Getenv("APIQUERY_FIXTURES_FILE"); v != "" {
		cfg.Fixtures.File = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 10 * time.Second
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "apiquery"
	}

	if cfg.Query.PaginationStyle == "" {
		cfg.Query.PaginationStyle = PaginationNested
	}

	for name, res := range cfg.Resources {
		if res.Type == "" {
			res.Type = name
		}
		if res.Path == "" {
			res.Path = "/" + res.Type
		}
		cfg.Resources[name] = res
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "apiquery"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Fixtures.Addr == "" {
		cfg.Fixtures.Addr = ":8089"
	}
}

func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" && cfg.Fixtures.File == "" {
		return fmt.Errorf("api.base_url is required unless fixtures.file is set")
	}
	if cfg.API.BaseURL != "" {
		u, err := url.Parse(cfg.API.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", cfg.API.BaseURL)
		}
	}
	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}

	validStyles := map[string]bool{PaginationNested: true, PaginationFlat: true}
	if !validStyles[cfg.Query.PaginationStyle] {
		return fmt.Errorf("query.pagination_style must be 'nested' or 'flat', got %q", cfg.Query.PaginationStyle)
	}
	if cfg.Query.DefaultPageSize < 0 {
		return fmt.Errorf("query.default_page_size must not be negative")
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	for _, name := range cfg.ResourceNames() {
		if !strings.HasPrefix(cfg.Resources[name].Path, "/") {
			return fmt.Errorf("resources.%s.path must start with '/'", name)
		}
	}

	return nil
}

// ResourceNames returns the configured resource names, sorted.
func (c *Config) ResourceNames() []string {
	names := make([]string, 0, len(c.Resources))
	for name := range c.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resource looks up a resource by name, or failing that by JSON:API type.
func (c *Config) Resource(name string) (ResourceConfig, bool) {
	if res, ok := c.Resources[name]; ok {
		return res, true
	}
	for _, n := range c.ResourceNames() {
		if c.Resources[n].Type == name {
			return c.Resources[n], true
		}
	}
	return ResourceConfig{}, false
}

// Warnings reports definitions that load but will not behave as typed:
// unknown type tags pass values through, and custom properties without a
// registered caster fail when cast.
func (c *Config) Warnings(casters schema.CasterRegistry) []string {
	var warnings []string
	for _, name := range c.ResourceNames() {
		props := c.Resources[name].Properties
		propNames := make([]string, 0, len(props))
		for p := range props {
			propNames = append(propNames, p)
		}
		sort.Strings(propNames)

		for _, p := range propNames {
			def := props[p]
			typ := schema.ParseType(def.Type)
			switch {
			case !typ.Known():
				warnings = append(warnings, fmt.Sprintf("resources.%s.properties.%s: unknown type %q, values pass through", name, p, def.Type))
			case typ == schema.TypeCustom && def.Caster == "":
				warnings = append(warnings, fmt.Sprintf("resources.%s.properties.%s: custom type without caster", name, p))
			case typ == schema.TypeCustom && casters[def.Caster] == nil:
				warnings = append(warnings, fmt.Sprintf("resources.%s.properties.%s: unknown caster %q", name, p, def.Caster))
			}
		}
	}
	return warnings
}
