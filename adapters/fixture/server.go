package fixture

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/artpar/apiquery/adapters/metrics"
	"github.com/artpar/apiquery/pkg/jsonapi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// DefaultPageSize applies when a request names no page size.
const DefaultPageSize = 20

// Config configures a fixture server.
type Config struct {
	Logger          zerolog.Logger
	Metrics         *metrics.Collector
	MetricsHandler  http.Handler
	MetricsPath     string // default: /metrics
	DefaultPageSize int
}

// Server serves a Store as a read-only JSON:API.
type Server struct {
	store    *Store
	logger   zerolog.Logger
	metrics  *metrics.Collector
	pageSize int
	router   chi.Router
}

// NewServer creates a fixture server over store.
func NewServer(store *Store, cfg Config) *Server {
	pageSize := cfg.DefaultPageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	s := &Server{
		store:    store,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		pageSize: pageSize,
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(requestMetrics(cfg.Metrics))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonapi.WriteError(w, jsonapi.ErrNotFound("route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonapi.WriteMethodNotAllowed(w, r.Method, []string{http.MethodGet})
	})

	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsHandler)
	}
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/{type}", s.list)
	r.Get("/{type}/{id}", s.show)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Strs("types", s.store.Types()).Msg("fixture server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info().Msg("fixture server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	resources, ok := s.store.List(typ)
	if !ok {
		jsonapi.WriteError(w, jsonapi.ErrNotFound(typ))
		return
	}

	req := jsonapi.ParseRequest(r.URL.Query(), s.pageSize)

	resources = filter(resources, req.Filters)
	for _, f := range req.Sort {
		if !sortable(resources, f.Field) {
			jsonapi.WriteError(w, jsonapi.ErrInvalidParameter(jsonapi.ParamSort, fmt.Sprintf("unknown sort field %q", f.Field)))
			return
		}
	}
	sortResources(resources, req.Sort)

	pagination := jsonapi.NewPagination(int64(len(resources)), req.Page, req.PerPage, pageBaseURL(r))
	page := paginate(resources, pagination)

	included, err := resolveIncludes(s.store, page, req.Include)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrInvalidParameter(jsonapi.ParamInclude, err.Error()))
		return
	}

	jsonapi.WriteCollection(w, sparse(page, req.Fields), sparse(included, req.Fields), pagination)
}

func (s *Server) show(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	id := chi.URLParam(r, "id")

	res, ok := s.store.Get(typ, id)
	if !ok {
		jsonapi.WriteNotFound(w, typ, id)
		return
	}

	req := jsonapi.ParseRequest(r.URL.Query(), s.pageSize)
	included, err := resolveIncludes(s.store, []jsonapi.Resource{res}, req.Include)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrInvalidParameter(jsonapi.ParamInclude, err.Error()))
		return
	}

	jsonapi.WriteResource(w, http.StatusOK, res.Sparse(req.Fields[typ]), sparse(included, req.Fields))
}

// sortable reports whether field is "id" or an attribute of any resource.
// An empty collection accepts any field.
func sortable(resources []jsonapi.Resource, field string) bool {
	if field == "id" || len(resources) == 0 {
		return true
	}
	for _, r := range resources {
		if _, ok := r.Attributes[field]; ok {
			return true
		}
	}
	return false
}

// pageBaseURL is the request URL without its pagination parameters.
func pageBaseURL(r *http.Request) string {
	u := url.URL{Path: r.URL.Path}
	q := r.URL.Query()
	for _, key := range []string{"page[number]", "page[size]", jsonapi.ParamPage, jsonapi.ParamPerPage} {
		q.Del(key)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func requestLogger(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("fixture request")
		})
	}
}

func requestMetrics(m *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			resource := "other"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if typ := rctx.URLParam("type"); typ != "" {
					resource = typ
				}
			}
			m.FixtureRequests.WithLabelValues(resource, metrics.StatusClass(ww.Status())).Inc()
		})
	}
}
