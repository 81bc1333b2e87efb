package jsonapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Response is a JSON:API document as received by a client. Primary data is
// kept raw until the caller asks for it, since it may be a single resource,
// a collection, or null.
type Response struct {
	Data     json.RawMessage `json:"data,omitempty"`
	Errors   []Error         `json:"errors,omitempty"`
	Meta     Meta            `json:"meta,omitempty"`
	Links    *Links          `json:"links,omitempty"`
	Included []Resource      `json:"included,omitempty"`
	JSONAPI  *JSONAPI        `json:"jsonapi,omitempty"`
}

// DecodeResponse reads a JSON:API document.
func DecodeResponse(r io.Reader) (*Response, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &resp, nil
}

// IsCollection reports whether the primary data is an array.
func (r *Response) IsCollection() bool {
	data := bytes.TrimSpace(r.Data)
	return len(data) > 0 && data[0] == '['
}

// Resources returns the primary data as a slice. A single resource yields a
// slice of one; null or absent data yields nil.
func (r *Response) Resources() ([]Resource, error) {
	data := bytes.TrimSpace(r.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	if data[0] == '[' {
		var resources []Resource
		if err := json.Unmarshal(data, &resources); err != nil {
			return nil, fmt.Errorf("decode collection: %w", err)
		}
		return resources, nil
	}

	var resource Resource
	if err := json.Unmarshal(data, &resource); err != nil {
		return nil, fmt.Errorf("decode resource: %w", err)
	}
	return []Resource{resource}, nil
}
