// Package idgen provides request ID generators.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/artpar/apiquery/ports"
	"github.com/google/uuid"
)

// RequestID generates UUID v4 request IDs, optionally prefixed.
type RequestID struct {
	Prefix string
}

// New generates a new request ID.
func (g RequestID) New() string {
	return g.Prefix + uuid.NewString()
}

var _ ports.IDGenerator = RequestID{}

// Sequential generates predictable IDs (for testing).
type Sequential struct {
	prefix  string
	counter atomic.Uint64
}

// NewSequential creates a sequential ID generator.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New generates the next ID, starting at 1.
func (s *Sequential) New() string {
	return s.prefix + strconv.FormatUint(s.counter.Add(1), 10)
}

var _ ports.IDGenerator = (*Sequential)(nil)
