// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/artpar/apiquery/domain/record"
	"github.com/artpar/apiquery/pkg/jsonapi"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Resource Ports
// -----------------------------------------------------------------------------

// Resource is a remote resource type that queries materialize against.
type Resource interface {
	// TableName is the JSON:API type name; it keys the fields clause.
	TableName() string

	// Find fetches the collection selected by params.
	Find(ctx context.Context, params jsonapi.Params) (*record.Collection, error)

	// New builds a local, unsaved record from params. It performs no I/O.
	New(params jsonapi.Params) (*record.Record, error)
}
