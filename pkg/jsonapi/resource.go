package jsonapi

import "fmt"

// ResourceBuilder provides a fluent API for building Resource objects.
type ResourceBuilder struct {
	resource Resource
}

// NewResource creates a new ResourceBuilder with the given type and ID.
func NewResource(resourceType, id string) *ResourceBuilder {
	return &ResourceBuilder{
		resource: Resource{
			Type:       resourceType,
			ID:         id,
			Attributes: make(map[string]any),
		},
	}
}

// Attrs adds multiple attributes to the resource.
// The id and type keys are top-level members and are skipped.
func (b *ResourceBuilder) Attrs(attrs map[string]any) *ResourceBuilder {
	for k, v := range attrs {
		if k == "id" || k == "type" {
			continue
		}
		b.resource.Attributes[k] = v
	}
	return b
}

// Relationship adds a relationship to the resource.
func (b *ResourceBuilder) Relationship(name string, rel Relationship) *ResourceBuilder {
	if b.resource.Relationships == nil {
		b.resource.Relationships = make(map[string]Relationship)
	}
	b.resource.Relationships[name] = rel
	return b
}

// BelongsTo adds a to-one relationship. An empty relID adds nothing.
func (b *ResourceBuilder) BelongsTo(name, relType, relID string) *ResourceBuilder {
	if relID == "" {
		return b
	}
	return b.Relationship(name, Relationship{
		Data: ResourceIdentifier{Type: relType, ID: relID},
	})
}

// HasMany adds a to-many relationship.
func (b *ResourceBuilder) HasMany(name string, identifiers []ResourceIdentifier) *ResourceBuilder {
	return b.Relationship(name, Relationship{
		Data: identifiers,
	})
}

// Link sets the self link for the resource.
func (b *ResourceBuilder) Link(self string) *ResourceBuilder {
	b.resource.Links = &ResourceLinks{Self: self}
	return b
}

// Build returns the constructed Resource.
func (b *ResourceBuilder) Build() Resource {
	return b.resource
}

// Sparse returns a copy of the resource restricted to the given attribute and
// relationship names. An empty list keeps everything.
func (r Resource) Sparse(fields []string) Resource {
	if len(fields) == 0 {
		return r
	}
	keep := make(map[string]bool, len(fields))
	for _, f := range fields {
		keep[f] = true
	}

	out := r
	out.Attributes = make(map[string]any)
	for k, v := range r.Attributes {
		if keep[k] {
			out.Attributes[k] = v
		}
	}
	if r.Relationships != nil {
		out.Relationships = make(map[string]Relationship)
		for k, v := range r.Relationships {
			if keep[k] {
				out.Relationships[k] = v
			}
		}
	}
	return out
}

// ResourceFromMap creates a Resource from a map, useful for fixtures and
// other dynamic data. The map's "id" becomes the resource ID and an optional
// "relationships" map of name to linkage ({type, id} or a list of them) becomes
// the resource relationships. Every other key is an attribute.
func ResourceFromMap(resourceType string, data map[string]any) Resource {
	id := ""
	switch v := data["id"].(type) {
	case string:
		id = v
	case nil:
	default:
		id = fmt.Sprint(v)
	}

	rb := NewResource(resourceType, id)

	for k, v := range data {
		if k == "relationships" {
			continue
		}
		rb.Attrs(map[string]any{k: v})
	}

	if rels, ok := data["relationships"].(map[string]any); ok {
		for name, linkage := range rels {
			switch l := linkage.(type) {
			case []any:
				ids := identifiers(l)
				if ids == nil {
					ids = []ResourceIdentifier{}
				}
				rb.HasMany(name, ids)
			default:
				if ids := identifiers(l); len(ids) == 1 {
					rb.BelongsTo(name, ids[0].Type, ids[0].ID)
				}
			}
		}
	}

	return rb.Build()
}

// ResourcesFromMaps creates a slice of Resources from a slice of maps.
func ResourcesFromMaps(resourceType string, data []map[string]any) []Resource {
	resources := make([]Resource, len(data))
	for i, item := range data {
		resources[i] = ResourceFromMap(resourceType, item)
	}
	return resources
}
