// Package jsonapi provides JSON:API document types, query parameter encoding,
// response decoding, and the response builders used by the fixture server.
// See https://jsonapi.org for the full specification.
//
// The wire types in this file are shared by both directions: the client
// decodes server documents into them (DecodeResponse), and the fixture server
// renders them (WriteDocument). Linkage therefore arrives in two shapes, typed
// identifiers built in Go and generic maps decoded from JSON, and the readers
// below accept either.
package jsonapi

import "fmt"

// Document represents a JSON:API top-level document.
// A document MUST contain at least one of: data, errors, or meta.
type Document struct {
	Data     any        `json:"data,omitempty"`
	Errors   []Error    `json:"errors,omitempty"`
	Meta     Meta       `json:"meta,omitempty"`
	Links    *Links     `json:"links,omitempty"`
	Included []Resource `json:"included,omitempty"`
	JSONAPI  *JSONAPI   `json:"jsonapi,omitempty"`
}

// Resource represents a JSON:API resource object.
type Resource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    map[string]any          `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
	Links         *ResourceLinks          `json:"links,omitempty"`
	Meta          Meta                    `json:"meta,omitempty"`
}

// ResourceIdentifier represents a resource linkage (type + id only).
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Meta Meta   `json:"meta,omitempty"`
}

// Relationship represents a relationship to one or more resources.
type Relationship struct {
	Data  any    `json:"data"`            // identifiers when built, map[string]any or []any when decoded
	Links *Links `json:"links,omitempty"` // related, self links
	Meta  Meta   `json:"meta,omitempty"`
}

// Links represents pagination and navigation links.
type Links struct {
	Self    string `json:"self,omitempty"`
	Related string `json:"related,omitempty"`
	First   string `json:"first,omitempty"`
	Last    string `json:"last,omitempty"`
	Prev    string `json:"prev,omitempty"`
	Next    string `json:"next,omitempty"`
}

// ResourceLinks represents links within a resource object.
type ResourceLinks struct {
	Self string `json:"self,omitempty"`
}

// Error represents a JSON:API error object. The client surfaces the first
// one of a failed response as the request error.
type Error struct {
	ID     string       `json:"id,omitempty"`
	Status string       `json:"status"`
	Code   string       `json:"code"`
	Title  string       `json:"title"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
	Meta   Meta         `json:"meta,omitempty"`
}

// ErrorSource indicates the source of an error.
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`   // JSON pointer to offending field
	Parameter string `json:"parameter,omitempty"` // Query parameter that caused error
	Header    string `json:"header,omitempty"`    // Header that caused error
}

// Meta represents arbitrary metadata. Collection responses carry the
// pagination totals here.
type Meta map[string]any

// JSONAPI represents the JSON:API version object.
type JSONAPI struct {
	Version string `json:"version"`
	Meta    Meta   `json:"meta,omitempty"`
}

// ContentType is the JSON:API media type.
const ContentType = "application/vnd.api+json"

// Version is the JSON:API specification version.
const Version = "1.1"

// Identifier returns the type/id linkage of the resource.
func (r Resource) Identifier() ResourceIdentifier {
	return ResourceIdentifier{Type: r.Type, ID: r.ID}
}

// Related returns the identifiers linked by the named relationship.
// Relationship data may be built in Go or decoded from JSON; both forms are read.
func (r Resource) Related(name string) []ResourceIdentifier {
	rel, ok := r.Relationships[name]
	if !ok {
		return nil
	}
	return identifiers(rel.Data)
}

func identifiers(data any) []ResourceIdentifier {
	switch v := data.(type) {
	case ResourceIdentifier:
		return []ResourceIdentifier{v}
	case *ResourceIdentifier:
		if v == nil {
			return nil
		}
		return []ResourceIdentifier{*v}
	case []ResourceIdentifier:
		return v
	case map[string]any:
		id, ok := identifierFromMap(v)
		if !ok {
			return nil
		}
		return []ResourceIdentifier{id}
	case []any:
		var out []ResourceIdentifier
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				if id, ok := identifierFromMap(m); ok {
					out = append(out, id)
				}
			}
		}
		return out
	default:
		return nil
	}
}

func identifierFromMap(m map[string]any) (ResourceIdentifier, bool) {
	typ, _ := m["type"].(string)
	if typ == "" {
		return ResourceIdentifier{}, false
	}
	var id string
	switch v := m["id"].(type) {
	case string:
		id = v
	case nil:
		return ResourceIdentifier{}, false
	default:
		id = fmt.Sprint(v)
	}
	return ResourceIdentifier{Type: typ, ID: id}, true
}
