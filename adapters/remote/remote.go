// Package remote provides the HTTP transport for JSON:API resources.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/artpar/apiquery/adapters/clock"
	"github.com/artpar/apiquery/adapters/idgen"
	"github.com/artpar/apiquery/adapters/metrics"
	"github.com/artpar/apiquery/pkg/jsonapi"
	"github.com/artpar/apiquery/ports"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// Client provides HTTP communication with a JSON:API server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	headers    map[string]string

	logger  zerolog.Logger
	metrics *metrics.Collector
	ids     ports.IDGenerator
	clock   ports.Clock
}

// ClientConfig configures the remote client.
type ClientConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	Headers   map[string]string
	UserAgent string
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics enables request metrics.
func WithMetrics(m *metrics.Collector) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithIDGenerator sets the request ID generator.
func WithIDGenerator(ids ports.IDGenerator) ClientOption {
	return func(c *Client) { c.ids = ids }
}

// WithClock sets the clock used for latency measurement.
func WithClock(clk ports.Clock) ClientOption {
	return func(c *Client) { c.clock = clk }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new remote HTTP client.
func NewClient(cfg ClientConfig, opts ...ClientOption) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		headers:    cfg.Headers,
		logger:     zerolog.Nop(),
		ids:        idgen.RequestID{},
		clock:      clock.Real{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches path with params encoded into the query string and decodes the
// JSON:API document. resource labels logs and metrics.
func (c *Client) Get(ctx context.Context, resource, path string, params jsonapi.Params) (*jsonapi.Response, error) {
	url := c.baseURL + path
	if q := params.Encode(); q != "" {
		url += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := c.ids.New()
	req.Header.Set("Accept", jsonapi.ContentType)
	req.Header.Set(RequestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	log := c.logger.With().
		Str("resource", resource).
		Str("method", req.Method).
		Str("url", url).
		Str("request_id", requestID).
		Logger()

	if c.metrics != nil {
		c.metrics.RequestsInFlight.Inc()
		defer c.metrics.RequestsInFlight.Dec()
	}

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := clock.Since(c.clock, start)
	if err != nil {
		c.observeError(resource, "transport")
		log.Warn().Err(err).Dur("duration", elapsed).Msg("request failed")
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	c.observe(resource, req.Method, resp.StatusCode, elapsed)
	log.Debug().Int("status", resp.StatusCode).Dur("duration", elapsed).Msg("request completed")

	if resp.StatusCode >= 400 {
		rerr := newError(resp.StatusCode, resp.Body)
		c.observeError(resource, "status")
		log.Warn().Int("status", resp.StatusCode).Str("error", rerr.Error()).Msg("request rejected")
		return nil, rerr
	}

	doc, err := jsonapi.DecodeResponse(resp.Body)
	if err != nil {
		c.observeError(resource, "decode")
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return doc, nil
}

func (c *Client) observe(resource, method string, status int, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.RequestsTotal.WithLabelValues(resource, method, metrics.StatusClass(status)).Inc()
	c.metrics.RequestDuration.WithLabelValues(resource, method).Observe(elapsed.Seconds())
}

func (c *Client) observeError(resource, kind string) {
	if c.metrics == nil {
		return
	}
	c.metrics.RequestErrors.WithLabelValues(resource, kind).Inc()
}

// Error is a non-success response from the server.
type Error struct {
	StatusCode int
	Errors     []jsonapi.Error
	Message    string
}

func newError(status int, body io.Reader) *Error {
	data, _ := io.ReadAll(io.LimitReader(body, 1<<20))
	e := &Error{StatusCode: status}

	if doc, err := jsonapi.DecodeResponse(bytes.NewReader(data)); err == nil && len(doc.Errors) > 0 {
		e.Errors = doc.Errors
		return e
	}
	e.Message = strings.TrimSpace(string(data))
	return e
}

func (e *Error) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("remote error %d: %s", e.StatusCode, e.Errors[0].String())
	}
	if e.Message == "" {
		return fmt.Sprintf("remote error %d", e.StatusCode)
	}
	return fmt.Sprintf("remote error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error is a 404.
func IsNotFound(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.StatusCode == http.StatusNotFound
	}
	return false
}
