package record

import (
	"github.com/artpar/apiquery/core/schema"
	"github.com/artpar/apiquery/pkg/jsonapi"
)

// Schemas maps resource types to their schemas. Types without an entry are
// built untyped.
type Schemas map[string]*schema.Schema

// Collection is the materialized result of a query.
type Collection struct {
	Records  []*Record
	Included []*Record
	Meta     jsonapi.Meta
	Links    *jsonapi.Links
}

// FromResponse builds a collection from a decoded document, casting primary
// and included resources through the schema of their own type.
func FromResponse(resp *jsonapi.Response, schemas Schemas) (*Collection, error) {
	resources, err := resp.Resources()
	if err != nil {
		return nil, err
	}

	c := &Collection{
		Records: make([]*Record, 0, len(resources)),
		Meta:    resp.Meta,
		Links:   resp.Links,
	}

	for _, res := range resources {
		r, err := FromResource(res, schemas[res.Type])
		if err != nil {
			return nil, err
		}
		c.Records = append(c.Records, r)
	}

	for _, res := range resp.Included {
		r, err := FromResource(res, schemas[res.Type])
		if err != nil {
			return nil, err
		}
		c.Included = append(c.Included, r)
	}

	return c, nil
}

// Len returns the number of primary records.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// At returns the record at index i, or nil when i is out of range.
// Negative indexes count from the end.
func (c *Collection) At(i int) *Record {
	n := c.Len()
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil
	}
	return c.Records[i]
}

// First returns the first record, or nil for an empty collection.
func (c *Collection) First() *Record {
	return c.At(0)
}

// Each calls fn for every record in order, stopping at the first error.
func (c *Collection) Each(fn func(i int, r *Record) error) error {
	if c == nil {
		return nil
	}
	for i, r := range c.Records {
		if err := fn(i, r); err != nil {
			return err
		}
	}
	return nil
}

// Pagination returns page information from the response meta, or nil.
func (c *Collection) Pagination() *jsonapi.Pagination {
	if c == nil {
		return nil
	}
	return jsonapi.PaginationFromMeta(c.Meta)
}

// Lookup finds an included record by type and id.
func (c *Collection) Lookup(id jsonapi.ResourceIdentifier) *Record {
	if c == nil {
		return nil
	}
	for _, r := range c.Included {
		if r.Type == id.Type && r.ID == id.ID {
			return r
		}
	}
	return nil
}

// IncludedFor resolves a relationship of r against the included records.
// Linkages without a matching included record are skipped.
func (c *Collection) IncludedFor(r *Record, relationship string) []*Record {
	var out []*Record
	for _, id := range r.Related(relationship) {
		if inc := c.Lookup(id); inc != nil {
			out = append(out, inc)
		}
	}
	return out
}
