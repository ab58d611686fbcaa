package badger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/datamill/core"
	"github.com/poiesic/datamill/storage"
)

// Backend owns the badger database behind the dataset catalog.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// catalogLog routes badger's own logging into slog. Badger is chatty at
// info level, so info is demoted to debug.
type catalogLog struct {
	logger *slog.Logger
}

var _ badger.Logger = (*catalogLog)(nil)

func (l *catalogLog) Errorf(msg string, items ...any) { l.logger.Error(fmt.Sprintf(msg, items...)) }

func (l *catalogLog) Warningf(msg string, items ...any) { l.logger.Warn(fmt.Sprintf(msg, items...)) }

func (l *catalogLog) Infof(msg string, items ...any) { l.logger.Debug(fmt.Sprintf(msg, items...)) }

func (l *catalogLog) Debugf(msg string, items ...any) { l.logger.Debug(fmt.Sprintf(msg, items...)) }

// OpenBackend opens the catalog database stored under dir, creating dir
// when it is missing. With inMemory set, dir is ignored and nothing touches disk.
func OpenBackend(dir string, inMemory bool) (*Backend, error) {
	logger := slog.Default().With("component", "catalog")

	opts := badger.DefaultOptions("").WithInMemory(true)
	if !inMemory {
		if err := ensureCatalogDir(dir); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.
		WithLogger(&catalogLog{logger: logger}).
		WithCompression(options.None).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", dir, err)
	}
	return &Backend{db: db, logger: logger}, nil
}

func ensureCatalogDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create catalog directory: %w", err)
		}
		return nil
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%w: catalog path %s is not a directory", core.ErrValidation, dir)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}

func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn inside a badger transaction, read-write when isWrite is
// set. The transaction is always discarded afterwards, so fn must commit
// writes itself.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// WithTransaction runs fn in a write transaction and commits when fn
// succeeds. A cancelled ctx aborts before fn runs.
func (b *Backend) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
