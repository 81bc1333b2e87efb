package query

import (
	"context"
	"strings"
	"sync"

	"github.com/artpar/apiquery/domain/record"
	"github.com/artpar/apiquery/pkg/jsonapi"
	"github.com/artpar/apiquery/ports"
)

// PaginationStyle selects how page parameters are rendered.
type PaginationStyle int

const (
	// PaginationNested renders page as {number, size}.
	PaginationNested PaginationStyle = iota
	// PaginationFlat renders top-level page and per_page.
	PaginationFlat
)

// Option configures a Builder.
type Option func(*Builder)

// WithPaginationStyle selects the page parameter layout.
func WithPaginationStyle(style PaginationStyle) Option {
	return func(b *Builder) {
		b.style = style
	}
}

type pagination struct {
	number *int
	size   *int
}

// Builder accumulates query clauses for one resource.
type Builder struct {
	resource ports.Resource
	style    PaginationStyle

	filters  map[string]any
	orders   []string
	includes []string
	fields   []string
	page     pagination

	mu     sync.Mutex
	result *record.Collection
}

// New creates an empty builder bound to resource.
func New(resource ports.Resource, opts ...Option) *Builder {
	b := &Builder{
		resource: resource,
		filters:  make(map[string]any),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Resource returns the bound resource.
func (b *Builder) Resource() ports.Resource {
	return b.resource
}

// Where merges conditions into the filters. Later keys overwrite earlier ones.
func (b *Builder) Where(conditions map[string]any) *Builder {
	for k, v := range conditions {
		b.filters[k] = v
	}
	return b
}

// Order appends sort keys. Each argument is one of:
//
//	string               ascending field
//	[]string             ascending fields
//	SortKey, SortKeys    explicit directions, in order
//	map[string]Direction field to direction, read in key order
//	map[string]string    same, directions given as "asc" or "desc"
//
// Any direction other than "desc" sorts ascending.
func (b *Builder) Order(args ...any) *Builder {
	b.orders = append(b.orders, parseOrders(args...)...)
	return b
}

// Includes appends relationship paths. Each argument is one of:
//
//	string, []string     paths taken as given
//	Relation (see Nest)  nested paths joined with "."
//	map[string]any       relation to nested includes, read in key order
//	[]any                any mix of the above
func (b *Builder) Includes(args ...any) *Builder {
	b.includes = append(b.includes, expandIncludes(args...)...)
	return b
}

// Select appends sparse fields for the resource's own type. fields is a
// comma-separated list; whitespace around names is dropped and empty names
// are skipped, so Select("") selects nothing.
func (b *Builder) Select(fields string) *Builder {
	for _, f := range strings.Split(fields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			b.fields = append(b.fields, f)
		}
	}
	return b
}

// Paginate sets the page number from "page" and the page size from
// "per_page". "number" and "size" are accepted as aliases. Other keys are
// ignored and absent keys leave the current values alone.
func (b *Builder) Paginate(conditions map[string]int) *Builder {
	for key, v := range conditions {
		switch key {
		case jsonapi.ParamPage, jsonapi.PageNumber:
			b.Page(v)
		case jsonapi.ParamPerPage, jsonapi.PageSize:
			b.Per(v)
		}
	}
	return b
}

// Page sets the page number.
func (b *Builder) Page(number int) *Builder {
	b.page.number = &number
	return b
}

// Per sets the page size.
func (b *Builder) Per(size int) *Builder {
	b.page.size = &size
	return b
}

// Clone returns an unmaterialized copy of the builder's clauses.
func (b *Builder) Clone() *Builder {
	c := &Builder{
		resource: b.resource,
		style:    b.style,
		filters:  make(map[string]any, len(b.filters)),
		orders:   append([]string(nil), b.orders...),
		includes: append([]string(nil), b.includes...),
		fields:   append([]string(nil), b.fields...),
	}
	for k, v := range b.filters {
		c.filters[k] = v
	}
	if b.page.number != nil {
		n := *b.page.number
		c.page.number = &n
	}
	if b.page.size != nil {
		s := *b.page.size
		c.page.size = &s
	}
	return c
}

// Params renders the accumulated clauses. Only set clauses appear:
//
//	filter   map of filters
//	sort     "+a,-b"
//	include  "a.b,c"
//	fields   {table: "f1,f2"}
//	page     {number, size}, or top-level page and per_page when flat
//
// Params does not modify the builder.
func (b *Builder) Params() jsonapi.Params {
	params := jsonapi.Params{}

	if len(b.filters) > 0 {
		filters := make(map[string]any, len(b.filters))
		for k, v := range b.filters {
			filters[k] = v
		}
		params[jsonapi.ParamFilter] = filters
	}
	if len(b.orders) > 0 {
		params[jsonapi.ParamSort] = strings.Join(b.orders, ",")
	}
	if len(b.includes) > 0 {
		params[jsonapi.ParamInclude] = strings.Join(b.includes, ",")
	}
	if len(b.fields) > 0 {
		params[jsonapi.ParamFields] = map[string]string{
			b.resource.TableName(): strings.Join(b.fields, ","),
		}
	}
	b.renderPage(params)

	return params
}

func (b *Builder) renderPage(params jsonapi.Params) {
	if b.page.number == nil && b.page.size == nil {
		return
	}

	if b.style == PaginationFlat {
		if b.page.number != nil {
			params[jsonapi.ParamPage] = *b.page.number
		}
		if b.page.size != nil {
			params[jsonapi.ParamPerPage] = *b.page.size
		}
		return
	}

	page := make(map[string]int, 2)
	if b.page.number != nil {
		page[jsonapi.PageNumber] = *b.page.number
	}
	if b.page.size != nil {
		page[jsonapi.PageSize] = *b.page.size
	}
	params[jsonapi.ParamPage] = page
}

// ToArray materializes the query. The first successful call runs Find and
// memoizes the collection; later calls return it without refetching. A
// failed Find is returned as is and not memoized.
func (b *Builder) ToArray(ctx context.Context) (*record.Collection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.result != nil {
		return b.result, nil
	}

	collection, err := b.resource.Find(ctx, b.Params())
	if err != nil {
		return nil, err
	}
	if collection == nil {
		collection = &record.Collection{}
	}
	b.result = collection
	return collection, nil
}

// All is an alias for ToArray.
func (b *Builder) All(ctx context.Context) (*record.Collection, error) {
	return b.ToArray(ctx)
}

// Loaded reports whether the builder has materialized.
func (b *Builder) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result != nil
}

// First fetches a single record by forcing page 1 with size 1. It returns
// nil when the result is empty. The page override persists on the builder.
func (b *Builder) First(ctx context.Context) (*record.Record, error) {
	collection, err := b.Page(1).Per(1).ToArray(ctx)
	if err != nil {
		return nil, err
	}
	return collection.First(), nil
}

// Build creates a local record from the current params. It performs no I/O.
func (b *Builder) Build() (*record.Record, error) {
	return b.resource.New(b.Params())
}

// Len materializes and returns the number of primary records.
func (b *Builder) Len(ctx context.Context) (int, error) {
	collection, err := b.ToArray(ctx)
	if err != nil {
		return 0, err
	}
	return collection.Len(), nil
}

// At materializes and returns the record at index i, or nil when out of
// range. Negative indexes count from the end.
func (b *Builder) At(ctx context.Context, i int) (*record.Record, error) {
	collection, err := b.ToArray(ctx)
	if err != nil {
		return nil, err
	}
	return collection.At(i), nil
}

// Each materializes and calls fn for every primary record, stopping at the
// first error fn returns.
func (b *Builder) Each(ctx context.Context, fn func(int, *record.Record) error) error {
	collection, err := b.ToArray(ctx)
	if err != nil {
		return err
	}
	return collection.Each(fn)
}

// Records materializes and returns the primary records.
func (b *Builder) Records(ctx context.Context) ([]*record.Record, error) {
	collection, err := b.ToArray(ctx)
	if err != nil {
		return nil, err
	}
	return collection.Records, nil
}
