package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/catscan/core"
	"github.com/poiesic/catscan/storage"
)

// DatasetRepository implements storage.DatasetRepository for BadgerDB.
// Metadata and payload are stored under separate keys and written together.
type DatasetRepository struct {
	backend *Backend
}

var _ storage.DatasetRepository = (*DatasetRepository)(nil)

// NewDatasetRepository creates a new DatasetRepository.
func NewDatasetRepository(backend *Backend) *DatasetRepository {
	return &DatasetRepository{backend: backend}
}

// Close is a no-op; the backend is closed by its owner.
func (r *DatasetRepository) Close() error {
	return nil
}

// SaveDataset stores the payload and its metadata, replacing any previous snapshot.
func (r *DatasetRepository) SaveDataset(ctx context.Context, snapshot *core.DatasetSnapshot, payload []byte) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(datasetMetaKey), storage.MarshalDatasetSnapshot(snapshot)); err != nil {
			return err
		}
		if err := tx.Set([]byte(datasetDataKey), payload); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadDataset returns the cached snapshot metadata and payload.
func (r *DatasetRepository) LoadDataset(ctx context.Context) (*core.DatasetSnapshot, []byte, error) {
	var (
		snapshot *core.DatasetSnapshot
		payload  []byte
	)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		snapshot, err = readDatasetInfo(tx)
		if err != nil {
			return err
		}

		item, err := tx.Get([]byte(datasetDataKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	}, false)
	if err != nil {
		return nil, nil, err
	}
	return snapshot, payload, nil
}

// DatasetInfo returns the cached snapshot metadata.
func (r *DatasetRepository) DatasetInfo(ctx context.Context) (*core.DatasetSnapshot, error) {
	var snapshot *core.DatasetSnapshot
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		snapshot, err = readDatasetInfo(tx)
		return err
	}, false)
	return snapshot, err
}

func readDatasetInfo(tx *badger.Txn) (*core.DatasetSnapshot, error) {
	item, err := tx.Get([]byte(datasetMetaKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var snapshot *core.DatasetSnapshot
	err = item.Value(func(val []byte) error {
		var err error
		snapshot, err = storage.UnmarshalDatasetSnapshot(val)
		return err
	})
	return snapshot, err
}
