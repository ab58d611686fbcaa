package storage

import (
	"context"

	"github.com/poiesic/datamill/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DatasetCatalog indexes the dataset versions written to disk.
type DatasetCatalog interface {
	Repository

	// AddDatasetRecords upserts records keyed by version name.
	// Sets Id from the name and CreatedAt if not already set.
	// Returns the records with Id and CreatedAt populated.
	AddDatasetRecords(ctx context.Context, records ...*core.DatasetRecord) ([]*core.DatasetRecord, error)

	// GetDatasetRecord retrieves the record for a version name.
	// Returns ErrNotFound if the version is not cataloged.
	GetDatasetRecord(ctx context.Context, name string) (*core.DatasetRecord, error)

	// ListDatasetRecords returns every record ordered by version name.
	ListDatasetRecords(ctx context.Context) ([]*core.DatasetRecord, error)

	// FindByHash returns the records whose content hash equals hash,
	// ordered by version name. Returns an empty slice if none match.
	FindByHash(ctx context.Context, hash string) ([]*core.DatasetRecord, error)

	// DeleteDatasetRecords removes records by version name.
	// Returns ErrNotFound if any name is not cataloged.
	DeleteDatasetRecords(ctx context.Context, names ...string) error
}
