// Package bootstrap wires configuration into a ready client: logger, metrics,
// the JSON:API transport, typed resources and the fixture server.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/artpar/apiquery/adapters/clock"
	"github.com/artpar/apiquery/adapters/fixture"
	"github.com/artpar/apiquery/adapters/idgen"
	"github.com/artpar/apiquery/adapters/metrics"
	"github.com/artpar/apiquery/adapters/remote"
	"github.com/artpar/apiquery/config"
	"github.com/artpar/apiquery/core/formatter"
	"github.com/artpar/apiquery/core/query"
	"github.com/artpar/apiquery/core/schema"
	"github.com/artpar/apiquery/domain/record"
	"github.com/artpar/apiquery/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Options customizes application wiring.
type Options struct {
	// LogOutput receives log lines (default: os.Stderr).
	LogOutput io.Writer

	// Casters resolves named custom casters (default: schema.DefaultCasters).
	Casters schema.CasterRegistry

	// HTTPClient replaces the transport's HTTP client.
	HTTPClient *http.Client

	// Registry receives metrics (default: a fresh registry per App).
	Registry *prometheus.Registry
}

// App is a wired apiquery instance.
type App struct {
	Logger   zerolog.Logger
	Config   *config.Config
	Metrics  *metrics.Collector
	Registry *prometheus.Registry
	Client   *remote.Client
	Casters  schema.CasterRegistry
	Schemas  record.Schemas

	mu        sync.Mutex
	resources map[string]*remote.Resource
}

// New wires an App from cfg.
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.Casters == nil {
		opts.Casters = schema.DefaultCasters()
	}

	logger := logging.New(cfg.Logging, opts.LogOutput)

	schemas, err := BuildSchemas(cfg, opts.Casters)
	if err != nil {
		return nil, err
	}

	a := &App{
		Logger:    logger,
		Config:    cfg,
		Casters:   opts.Casters,
		Schemas:   schemas,
		resources: make(map[string]*remote.Resource),
	}

	if cfg.Metrics.Enabled {
		a.Registry = opts.Registry
		if a.Registry == nil {
			a.Registry = prometheus.NewRegistry()
		}
		a.Metrics = metrics.NewWithRegistry(a.Registry, cfg.Metrics.Namespace)
		logger.Debug().Str("namespace", cfg.Metrics.Namespace).Msg("prometheus metrics enabled")
	}

	for _, w := range cfg.Warnings(opts.Casters) {
		logger.Warn().Msg(w)
	}

	clientOpts := []remote.ClientOption{
		remote.WithLogger(logger),
		remote.WithIDGenerator(idgen.RequestID{}),
		remote.WithClock(clock.Real{}),
	}
	if a.Metrics != nil {
		clientOpts = append(clientOpts, remote.WithMetrics(a.Metrics))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, remote.WithHTTPClient(opts.HTTPClient))
	}

	a.Client = remote.NewClient(remote.ClientConfig{
		BaseURL:   BaseURL(cfg),
		APIKey:    cfg.API.APIKey,
		Timeout:   cfg.API.Timeout,
		Headers:   cfg.API.Headers,
		UserAgent: cfg.API.UserAgent,
	}, clientOpts...)

	logger.Debug().
		Str("base_url", BaseURL(cfg)).
		Int("resources", len(cfg.Resources)).
		Msg("apiquery initialized")

	return a, nil
}

// BaseURL returns the configured API base URL. Without one, requests go to
// the local fixture server.
func BaseURL(cfg *config.Config) string {
	if cfg.API.BaseURL != "" {
		return cfg.API.BaseURL
	}
	addr := cfg.Fixtures.Addr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// BuildSchemas builds one schema per configured resource, keyed by JSON:API type.
// A resource's schema_file is loaded first; inline properties are added on top
// and replace file definitions of the same name.
func BuildSchemas(cfg *config.Config, casters schema.CasterRegistry) (record.Schemas, error) {
	schemas := make(record.Schemas, len(cfg.Resources))
	for _, name := range cfg.ResourceNames() {
		res := cfg.Resources[name]
		inline := schema.FromDefinitions(res.Properties, casters)
		if res.SchemaFile == "" {
			schemas[res.Type] = inline
			continue
		}

		s, err := schema.ParseFile(res.SchemaFile, casters)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", name, err)
		}
		inline.Each(func(p schema.Property) {
			s.Add(p.Name, schema.Options{Type: p.Type, Default: p.Default, Caster: p.Caster})
		})
		schemas[res.Type] = s
	}
	return schemas, nil
}

// QueryOptions maps the configured pagination style to builder options.
func QueryOptions(cfg *config.Config) []query.Option {
	if cfg.Query.PaginationStyle == config.PaginationFlat {
		return []query.Option{query.WithPaginationStyle(query.PaginationFlat)}
	}
	return nil
}

// Resource returns the remote resource for a configured name or type.
// Unconfigured names are served untyped, with the name as type and path.
func (a *App) Resource(name string) (*remote.Resource, error) {
	if name == "" {
		return nil, fmt.Errorf("resource name is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if res, ok := a.resources[name]; ok {
		return res, nil
	}

	rc, ok := a.Config.Resource(name)
	if !ok {
		a.Logger.Debug().Str("resource", name).Msg("resource not configured, using untyped defaults")
		rc = config.ResourceConfig{Type: name, Path: "/" + name}
	}

	res := remote.NewResource(a.Client, remote.ResourceConfig{
		Type:         rc.Type,
		Path:         rc.Path,
		Schemas:      a.Schemas,
		QueryOptions: QueryOptions(a.Config),
	})
	a.resources[name] = res
	return res, nil
}

// Query starts a query against the named resource.
func (a *App) Query(name string) (*query.Builder, error) {
	res, err := a.Resource(name)
	if err != nil {
		return nil, err
	}
	return res.Query(), nil
}

// View returns the output view for a resource.
func (a *App) View(name string) formatter.View {
	res, err := a.Resource(name)
	if err != nil {
		return formatter.View{Resource: name}
	}
	if s := res.Schema(); s.Size() > 0 {
		return formatter.ViewOf(res.TableName(), s)
	}
	return formatter.View{Resource: res.TableName()}
}

// MetricsHandler serves the App's metrics, or nil when metrics are disabled.
func (a *App) MetricsHandler() http.Handler {
	if a.Registry == nil {
		return nil
	}
	return promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})
}

// FixtureServer loads the configured fixture file and builds a server over it.
func (a *App) FixtureServer() (*fixture.Server, *fixture.Store, error) {
	if a.Config.Fixtures.File == "" {
		return nil, nil, fmt.Errorf("fixtures.file is not configured")
	}

	store, err := fixture.LoadFile(a.Config.Fixtures.File)
	if err != nil {
		return nil, nil, err
	}

	srv := fixture.NewServer(store, fixture.Config{
		Logger:          a.Logger.With().Str("component", "fixtures").Logger(),
		Metrics:         a.Metrics,
		MetricsHandler:  a.MetricsHandler(),
		MetricsPath:     a.Config.Metrics.Path,
		DefaultPageSize: a.Config.Fixtures.PageSize,
	})
	return srv, store, nil
}

// WatchReloads hooks a config holder to the running App: each successful
// reload re-applies the log level and reloads the fixture store.
func (a *App) WatchReloads(holder *config.Holder, store *fixture.Store) {
	holder.OnChange(func(cfg *config.Config) {
		logging.SetLevel(cfg.Logging.Level)

		if store != nil && cfg.Fixtures.File != "" {
			next, err := fixture.LoadFile(cfg.Fixtures.File)
			if err != nil {
				a.Logger.Error().Err(err).Str("file", cfg.Fixtures.File).Msg("fixture reload failed, keeping old fixtures")
				a.reloadFailed()
				return
			}
			store.Swap(next)
			a.Logger.Info().Strs("types", store.Types()).Msg("fixtures reloaded")
		}

		if a.Metrics != nil {
			a.Metrics.ConfigReloads.Inc()
			a.Metrics.ConfigLastReload.SetToCurrentTime()
		}
	})
	holder.OnError(func(error) {
		a.reloadFailed()
	})
}

func (a *App) reloadFailed() {
	if a.Metrics != nil {
		a.Metrics.ConfigReloadErrors.Inc()
	}
}

// ServeFixtures runs the fixture server until ctx is canceled. With a holder,
// edits to the config or fixture file are picked up without a restart.
func (a *App) ServeFixtures(ctx context.Context, holder *config.Holder) error {
	srv, store, err := a.FixtureServer()
	if err != nil {
		return err
	}

	if holder != nil {
		a.WatchReloads(holder, store)
		if err := holder.WatchFile(a.Config.Fixtures.File); err != nil {
			return fmt.Errorf("watch files: %w", err)
		}
		holder.WatchSignals()
		defer holder.Stop()
	}

	return srv.Run(ctx, a.Config.Fixtures.Addr)
}
