package ports

import (
	"context"

	"listinglens/domain/table"
)

// DatasetSource loads one static listings dataset into the in-memory table
// abstraction. Implementations coerce numeric fields on the way in; the
// pipeline assumes one dataset per run and never writes back.
type DatasetSource interface {
	// Load reads the full dataset
	Load(ctx context.Context) (*table.Table, error)

	// Name identifies the source for logs and the run manifest
	Name() string
}
