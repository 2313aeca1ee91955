package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/catscan/core"
	"github.com/poiesic/catscan/storage"
)

// maxUpdateAttempts bounds retries of a read-modify-write that lost a race.
const maxUpdateAttempts = 5

// SuppressionRepository implements storage.SuppressionRepository for BadgerDB.
type SuppressionRepository struct {
	backend *Backend
}

var _ storage.SuppressionRepository = (*SuppressionRepository)(nil)

// NewSuppressionRepository creates a new SuppressionRepository.
func NewSuppressionRepository(backend *Backend) *SuppressionRepository {
	return &SuppressionRepository{backend: backend}
}

// Close is a no-op; the backend is closed by its owner.
func (r *SuppressionRepository) Close() error {
	return nil
}

// GetSuppression retrieves the record for a page.
func (r *SuppressionRepository) GetSuppression(ctx context.Context, pageID core.ID) (*core.Suppression, error) {
	var result *core.Suppression
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readSuppression(tx, pageID)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetSuppressions retrieves records for several pages.
func (r *SuppressionRepository) GetSuppressions(ctx context.Context, pageIDs ...core.ID) (map[core.ID]*core.Suppression, error) {
	result := make(map[core.ID]*core.Suppression, len(pageIDs))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range pageIDs {
			suppression, err := readSuppression(tx, id)
			if err != nil {
				return err
			}
			if suppression != nil {
				result[id] = suppression
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateSuppression performs a read-modify-write of a page's record.
// A write that conflicts with a concurrent one is retried against the newer value.
func (r *SuppressionRepository) UpdateSuppression(
	ctx context.Context,
	pageID core.ID,
	fn func(current *core.Suppression) (*core.Suppression, error),
) error {
	var err error
	for range maxUpdateAttempts {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = r.backend.WithTx(func(tx *badger.Txn) error {
			current, err := readSuppression(tx, pageID)
			if err != nil {
				return err
			}
			next, err := fn(current)
			if err != nil {
				return err
			}
			if next == nil {
				return nil
			}
			if next.PageID != pageID {
				return fmt.Errorf("%w: page id %d does not match %d", core.ErrInvalidSuppression, next.PageID, pageID)
			}
			if err := core.ValidateSuppression(next); err != nil {
				return err
			}
			if err := tx.Set(makeSuppressionKey(pageID), storage.MarshalSuppression(next)); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		r.backend.logger.Debug("suppression update conflicted, retrying", "page_id", pageID)
	}
	return err
}

// DeleteSuppression removes the record for a page.
func (r *SuppressionRepository) DeleteSuppression(ctx context.Context, pageID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSuppressionKey(pageID)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListSuppressions returns every stored record ordered by page ID.
func (r *SuppressionRepository) ListSuppressions(ctx context.Context) ([]*core.Suppression, error) {
	var results []*core.Suppression
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(suppressionPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				suppression, err := storage.UnmarshalSuppression(val)
				if err != nil {
					return err
				}
				results = append(results, suppression)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return results, err
}

// readSuppression loads a record inside tx. Returns nil, nil if absent.
func readSuppression(tx *badger.Txn, pageID core.ID) (*core.Suppression, error) {
	item, err := tx.Get(makeSuppressionKey(pageID))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var suppression *core.Suppression
	err = item.Value(func(val []byte) error {
		var err error
		suppression, err = storage.UnmarshalSuppression(val)
		return err
	})
	return suppression, err
}
