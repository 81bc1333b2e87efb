package jsonapi

import (
	"fmt"
	"strconv"
)

// ErrorBuilder provides a fluent API for building Error objects.
type ErrorBuilder struct {
	err Error
}

// NewError creates a new ErrorBuilder with the given status, code, and title.
func NewError(status int, code, title string) *ErrorBuilder {
	return &ErrorBuilder{
		err: Error{
			Status: strconv.Itoa(status),
			Code:   code,
			Title:  title,
		},
	}
}

// Detail sets the error detail message.
func (b *ErrorBuilder) Detail(detail string) *ErrorBuilder {
	b.err.Detail = detail
	return b
}

// Detailf sets the error detail message with formatting.
func (b *ErrorBuilder) Detailf(format string, args ...any) *ErrorBuilder {
	b.err.Detail = fmt.Sprintf(format, args...)
	return b
}

// Parameter sets the query parameter that caused the error.
func (b *ErrorBuilder) Parameter(param string) *ErrorBuilder {
	if b.err.Source == nil {
		b.err.Source = &ErrorSource{}
	}
	b.err.Source.Parameter = param
	return b
}

// Build returns the constructed Error.
func (b *ErrorBuilder) Build() Error {
	return b.err
}

// StatusCode returns the HTTP status code as an int.
func (e Error) StatusCode() int {
	code, _ := strconv.Atoi(e.Status)
	return code
}

// String renders the error as "title: detail".
func (e Error) String() string {
	switch {
	case e.Detail == "":
		return e.Title
	case e.Title == "":
		return e.Detail
	default:
		return e.Title + ": " + e.Detail
	}
}

// ErrBadRequest creates a 400 Bad Request error.
func ErrBadRequest(detail string) Error {
	return NewError(400, "bad_request", "Bad Request").Detail(detail).Build()
}

// ErrInvalidParameter creates a 400 error pointing at a query parameter.
func ErrInvalidParameter(param, detail string) Error {
	return NewError(400, "invalid_parameter", "Invalid Query Parameter").
		Detail(detail).
		Parameter(param).
		Build()
}

// ErrNotFound creates a 404 Not Found error.
func ErrNotFound(resourceType string) Error {
	return NewError(404, "not_found", "Not Found").
		Detailf("The requested %s was not found", resourceType).
		Build()
}

// ErrNotFoundWithID creates a 404 Not Found error with resource ID.
func ErrNotFoundWithID(resourceType, id string) Error {
	return NewError(404, "not_found", "Not Found").
		Detailf("The %s with ID '%s' was not found", resourceType, id).
		Build()
}

// ErrMethodNotAllowed creates a 405 Method Not Allowed error.
func ErrMethodNotAllowed(method string) Error {
	return NewError(405, "method_not_allowed", "Method Not Allowed").
		Detailf("The %s method is not allowed for this resource", method).
		Build()
}

// ErrInternal creates a 500 Internal Server Error.
func ErrInternal(detail string) Error {
	if detail == "" {
		detail = "An internal error occurred"
	}
	return NewError(500, "internal_error", "Internal Server Error").Detail(detail).Build()
}
