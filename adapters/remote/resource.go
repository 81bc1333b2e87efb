package remote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/artpar/apiquery/core/query"
	"github.com/artpar/apiquery/core/schema"
	"github.com/artpar/apiquery/domain/record"
	"github.com/artpar/apiquery/pkg/jsonapi"
	"github.com/artpar/apiquery/ports"
)

// ResourceConfig describes one remote resource type.
type ResourceConfig struct {
	// Type is the JSON:API type name.
	Type string
	// Path is the collection path below the base URL. Defaults to "/" + Type.
	Path string
	// Schemas cast attributes by type, for primary and included records.
	Schemas record.Schemas
	// QueryOptions apply to every builder created by Query.
	QueryOptions []query.Option
}

// Resource is a JSON:API collection served over HTTP.
type Resource struct {
	client  *Client
	typ     string
	path    string
	schemas record.Schemas
	opts    []query.Option
}

var _ ports.Resource = (*Resource)(nil)

// NewResource binds a resource type to a client.
func NewResource(client *Client, cfg ResourceConfig) *Resource {
	path := cfg.Path
	if path == "" {
		path = "/" + cfg.Type
	}
	return &Resource{
		client:  client,
		typ:     cfg.Type,
		path:    "/" + strings.Trim(path, "/"),
		schemas: cfg.Schemas,
		opts:    cfg.QueryOptions,
	}
}

// TableName returns the JSON:API type name.
func (r *Resource) TableName() string {
	return r.typ
}

// Path returns the collection path.
func (r *Resource) Path() string {
	return r.path
}

// Schema returns the schema of the resource's own type, or nil.
func (r *Resource) Schema() *schema.Schema {
	return r.schemas[r.typ]
}

// Query starts a new query builder against the resource.
func (r *Resource) Query(opts ...query.Option) *query.Builder {
	return query.New(r, append(append([]query.Option(nil), r.opts...), opts...)...)
}

// Find fetches the collection selected by params.
func (r *Resource) Find(ctx context.Context, params jsonapi.Params) (*record.Collection, error) {
	doc, err := r.client.Get(ctx, r.typ, r.path, params)
	if err != nil {
		return nil, err
	}

	collection, err := record.FromResponse(doc, r.schemas)
	if err != nil {
		r.castFailed(err)
		return nil, fmt.Errorf("find %s: %w", r.typ, err)
	}

	if r.client.metrics != nil {
		r.client.metrics.RecordsDecoded.WithLabelValues(r.typ).Add(float64(collection.Len()))
	}
	return collection, nil
}

// Get fetches a single record by id. included records are ignored.
func (r *Resource) Get(ctx context.Context, id string, params jsonapi.Params) (*record.Record, error) {
	doc, err := r.client.Get(ctx, r.typ, r.path+"/"+url.PathEscape(id), params)
	if err != nil {
		return nil, err
	}

	resources, err := doc.Resources()
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", r.typ, id, err)
	}
	if len(resources) == 0 {
		return nil, &Error{StatusCode: 404, Message: fmt.Sprintf("%s %s not found", r.typ, id)}
	}

	rec, err := record.FromResource(resources[0], r.schemas[resources[0].Type])
	if err != nil {
		r.castFailed(err)
		return nil, err
	}
	return rec, nil
}

// New builds an unsaved record whose attributes are the filter conditions
// of params.
func (r *Resource) New(params jsonapi.Params) (*record.Record, error) {
	attrs := map[string]any{}
	if filters, ok := params[jsonapi.ParamFilter].(map[string]any); ok {
		for k, v := range filters {
			attrs[k] = v
		}
	}
	return record.New(r.typ, attrs, r.Schema())
}

func (r *Resource) castFailed(err error) {
	var parseErr *schema.ParseError
	if r.client.metrics != nil && (errors.As(err, &parseErr) || errors.Is(err, schema.ErrMissingCaster)) {
		r.client.metrics.CastErrors.WithLabelValues(r.typ).Inc()
	}
}
