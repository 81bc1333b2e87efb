package jsonapi

// DocumentBuilder provides a fluent API for building Document objects.
type DocumentBuilder struct {
	doc Document
}

// NewDocument creates a new DocumentBuilder.
func NewDocument() *DocumentBuilder {
	return &DocumentBuilder{}
}

// DataResource sets a single resource as the primary data.
func (b *DocumentBuilder) DataResource(r Resource) *DocumentBuilder {
	b.doc.Data = r
	return b
}

// DataCollection sets a collection of resources as the primary data.
// A nil slice is written as an empty array, never as null.
func (b *DocumentBuilder) DataCollection(resources []Resource) *DocumentBuilder {
	if resources == nil {
		resources = []Resource{}
	}
	b.doc.Data = resources
	return b
}

// Errors sets the errors array. This is mutually exclusive with Data.
func (b *DocumentBuilder) Errors(errors ...Error) *DocumentBuilder {
	b.doc.Errors = errors
	b.doc.Data = nil
	return b
}

// Meta adds a metadata entry to the document.
func (b *DocumentBuilder) Meta(key string, value any) *DocumentBuilder {
	if b.doc.Meta == nil {
		b.doc.Meta = make(Meta)
	}
	b.doc.Meta[key] = value
	return b
}

// Links sets the top-level links.
func (b *DocumentBuilder) Links(links *Links) *DocumentBuilder {
	b.doc.Links = links
	return b
}

// Pagination adds pagination metadata and links. A nil pagination is ignored.
func (b *DocumentBuilder) Pagination(p *Pagination) *DocumentBuilder {
	if p == nil {
		return b
	}
	for k, v := range p.Meta() {
		b.Meta(k, v)
	}
	return b.Links(p.Links())
}

// Include adds resources to the included section of a compound document.
func (b *DocumentBuilder) Include(resources ...Resource) *DocumentBuilder {
	b.doc.Included = append(b.doc.Included, resources...)
	return b
}

// JSONAPI sets the JSON:API version object.
func (b *DocumentBuilder) JSONAPI() *DocumentBuilder {
	b.doc.JSONAPI = &JSONAPI{Version: Version}
	return b
}

// Build returns the constructed Document.
func (b *DocumentBuilder) Build() Document {
	return b.doc
}

// NewErrorDocument is a convenience function for creating an error document.
func NewErrorDocument(errors ...Error) Document {
	return NewDocument().Errors(errors...).Build()
}
