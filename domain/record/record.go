// Package record provides the typed values a query materializes into.
// Attributes are cast through the resource's schema when a record is built.
package record

import (
	"fmt"
	"time"

	"github.com/artpar/apiquery/core/schema"
	"github.com/artpar/apiquery/pkg/jsonapi"
)

// Record is a single resource with schema-cast attributes.
type Record struct {
	Type          string
	ID            string
	Attributes    map[string]any
	Relationships map[string]jsonapi.Relationship
	Links         *jsonapi.ResourceLinks
	Meta          jsonapi.Meta

	persisted bool
}

// FromResource builds a persisted record from a decoded resource object.
func FromResource(res jsonapi.Resource, s *schema.Schema) (*Record, error) {
	attrs, err := s.CastAttributes(res.Attributes)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", res.Type, res.ID, err)
	}
	return &Record{
		Type:          res.Type,
		ID:            res.ID,
		Attributes:    attrs,
		Relationships: res.Relationships,
		Links:         res.Links,
		Meta:          res.Meta,
		persisted:     true,
	}, nil
}

// New builds a local, unsaved record. Schema defaults fill missing attributes.
func New(resourceType string, attrs map[string]any, s *schema.Schema) (*Record, error) {
	cast, err := s.CastAttributes(attrs)
	if err != nil {
		return nil, fmt.Errorf("new %s: %w", resourceType, err)
	}
	return &Record{
		Type:       resourceType,
		Attributes: cast,
	}, nil
}

// Persisted reports whether the record was loaded from the server.
func (r *Record) Persisted() bool {
	return r.persisted
}

// Identifier returns the type/id linkage of the record.
func (r *Record) Identifier() jsonapi.ResourceIdentifier {
	return jsonapi.ResourceIdentifier{Type: r.Type, ID: r.ID}
}

// Get returns a raw attribute value.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.Attributes[name]
	return v, ok
}

// Str returns a string attribute.
func (r *Record) Str(name string) (string, bool) {
	v, ok := r.Attributes[name].(string)
	return v, ok
}

// Int returns an integer attribute.
func (r *Record) Int(name string) (int, bool) {
	v, ok := r.Attributes[name].(int)
	return v, ok
}

// Float returns a float attribute.
func (r *Record) Float(name string) (float64, bool) {
	v, ok := r.Attributes[name].(float64)
	return v, ok
}

// Bool returns a boolean attribute.
func (r *Record) Bool(name string) (bool, bool) {
	v, ok := r.Attributes[name].(bool)
	return v, ok
}

// Time returns a time attribute.
func (r *Record) Time(name string) (time.Time, bool) {
	v, ok := r.Attributes[name].(time.Time)
	return v, ok
}

// Related returns the identifiers linked by the named relationship.
func (r *Record) Related(name string) []jsonapi.ResourceIdentifier {
	return jsonapi.Resource{Relationships: r.Relationships}.Related(name)
}

// Fields flattens the record into a single map with "id" and "type" keys,
// the shape used by output formatters.
func (r *Record) Fields() map[string]any {
	out := make(map[string]any, len(r.Attributes)+2)
	for k, v := range r.Attributes {
		out[k] = v
	}
	out["id"] = r.ID
	out["type"] = r.Type
	return out
}
