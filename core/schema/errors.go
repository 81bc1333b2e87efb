package schema

import (
	"errors"
	"fmt"
)

// ErrMissingCaster is returned when a custom property is cast without a Caster.
var ErrMissingCaster = errors.New("custom type requires a caster")

var (
	errNotText           = errors.New("value is not a timestamp or text")
	errNoTimeInformation = errors.New("no time information")
)

// ParseError reports a value that could not be cast to a time.
type ParseError struct {
	Property string
	Value    string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("property %q: cannot parse %q as time: %v", e.Property, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
