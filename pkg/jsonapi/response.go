package jsonapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

// WriteDocument writes a JSON:API document to the response.
func WriteDocument(w http.ResponseWriter, status int, doc Document) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(doc)
}

// WriteResource writes a single resource response with its included resources.
func WriteResource(w http.ResponseWriter, status int, r Resource, included []Resource) {
	WriteDocument(w, status, NewDocument().DataResource(r).Include(included...).JSONAPI().Build())
}

// WriteCollection writes a collection response with included resources and optional pagination.
func WriteCollection(w http.ResponseWriter, resources []Resource, included []Resource, pagination *Pagination) {
	doc := NewDocument().
		DataCollection(resources).
		Include(included...).
		Pagination(pagination).
		JSONAPI().
		Build()
	WriteDocument(w, http.StatusOK, doc)
}

// WriteError writes an error response with one or more errors.
// The HTTP status is derived from the first error's status field.
func WriteError(w http.ResponseWriter, errs ...Error) {
	if len(errs) == 0 {
		WriteDocument(w, http.StatusInternalServerError, NewErrorDocument(ErrInternal("")))
		return
	}

	status := errs[0].StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}

	WriteDocument(w, status, NewErrorDocument(errs...))
}

// WriteBadRequest is a convenience for 400 errors.
func WriteBadRequest(w http.ResponseWriter, detail string) {
	WriteError(w, ErrBadRequest(detail))
}

// WriteNotFound is a convenience for 404 errors.
func WriteNotFound(w http.ResponseWriter, resourceType, id string) {
	if id == "" {
		WriteError(w, ErrNotFound(resourceType))
		return
	}
	WriteError(w, ErrNotFoundWithID(resourceType, id))
}

// WriteMethodNotAllowed is a convenience for 405 errors. It sets the Allow header.
func WriteMethodNotAllowed(w http.ResponseWriter, method string, allowedMethods []string) {
	if len(allowedMethods) > 0 {
		w.Header().Set("Allow", strings.Join(allowedMethods, ", "))
	}
	WriteError(w, ErrMethodNotAllowed(method))
}
