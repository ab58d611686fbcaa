package badger

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/datamill/core"
	"github.com/poiesic/datamill/storage"
)

// DatasetCatalog implements storage.DatasetCatalog for BadgerDB.
type DatasetCatalog struct {
	backend     *Backend
	ownsBackend bool
}

var _ storage.DatasetCatalog = (*DatasetCatalog)(nil)

// NewDatasetCatalog creates a catalog on a shared backend. Closing the
// catalog leaves the backend open.
func NewDatasetCatalog(backend *Backend) (*DatasetCatalog, error) {
	return &DatasetCatalog{
		backend: backend,
	}, nil
}

// OpenCatalog opens a catalog database at path. Closing the catalog closes
// the database.
func OpenCatalog(path string) (storage.DatasetCatalog, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &DatasetCatalog{backend: backend, ownsBackend: true}, nil
}

// Close releases the backend if the catalog opened it.
func (r *DatasetCatalog) Close() error {
	if r.ownsBackend {
		return r.backend.Close()
	}
	return nil
}

// WithTransaction delegates to the backend.
func (r *DatasetCatalog) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDatasetRecords upserts records keyed by version name.
func (r *DatasetCatalog) AddDatasetRecords(ctx context.Context, records ...*core.DatasetRecord) ([]*core.DatasetRecord, error) {
	for _, record := range records {
		if err := core.ValidateDatasetRecord(record); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			// Version names are unique, so the name is the identity
			record.Id = core.IDFromContent(record.Name)
			if record.CreatedAt.IsZero() {
				record.CreatedAt = time.Now().UTC()
			}

			key := makeDatasetRecordKey(record.Id)

			// Drop the stale hash index entry of a replaced version
			old, err := readDatasetRecord(tx, key)
			if err != nil {
				return err
			}
			if old != nil && old.Hash != record.Hash {
				if err := tx.Delete(makeDatasetHashKey(old.Hash, old.Id)); err != nil {
					return err
				}
			}

			if err := tx.Set(key, storage.MarshalDatasetRecord(record)); err != nil {
				return err
			}
			if err := tx.Set(makeDatasetHashKey(record.Hash, record.Id), storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// GetDatasetRecord retrieves the record for a version name.
func (r *DatasetCatalog) GetDatasetRecord(ctx context.Context, name string) (*core.DatasetRecord, error) {
	var record *core.DatasetRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = readDatasetRecord(tx, makeDatasetRecordKey(core.IDFromContent(name)))
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListDatasetRecords returns every record ordered by version name.
func (r *DatasetCatalog) ListDatasetRecords(ctx context.Context) ([]*core.DatasetRecord, error) {
	records := make([]*core.DatasetRecord, 0)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(datasetRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				record, err := storage.UnmarshalDatasetRecord(val)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sortByName(records)
	return records, nil
}

// FindByHash returns the records whose content hash equals hash.
func (r *DatasetCatalog) FindByHash(ctx context.Context, hash string) ([]*core.DatasetRecord, error) {
	records := make([]*core.DatasetRecord, 0)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialDatasetHashKey(hash)
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		var ids []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				id, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			})
			if err != nil {
				return err
			}
		}

		for _, id := range ids {
			record, err := readDatasetRecord(tx, makeDatasetRecordKey(id))
			if err != nil {
				return err
			}
			// Skip dangling index entries
			if record != nil {
				records = append(records, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sortByName(records)
	return records, nil
}

// DeleteDatasetRecords removes records by version name.
func (r *DatasetCatalog) DeleteDatasetRecords(ctx context.Context, names ...string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, name := range names {
			key := makeDatasetRecordKey(core.IDFromContent(name))

			record, err := readDatasetRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeDatasetHashKey(record.Hash, record.Id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// readDatasetRecord reads a record within a transaction.
// Returns nil, nil if the key does not exist.
func readDatasetRecord(tx *badger.Txn, key []byte) (*core.DatasetRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.DatasetRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalDatasetRecord(val)
		return err
	})
	return record, err
}

func sortByName(records []*core.DatasetRecord) {
	slices.SortFunc(records, func(a, b *core.DatasetRecord) int {
		return strings.Compare(a.Name, b.Name)
	})
}
