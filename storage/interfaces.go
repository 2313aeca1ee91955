package storage

import (
	"context"

	"github.com/poiesic/catscan/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository.
	// The backend itself is closed separately.
	Close() error
}

// SuppressionRepository persists per-page mute and hide records, keyed by page ID.
// Writes are last-writer-wins.
type SuppressionRepository interface {
	Repository

	// GetSuppression retrieves the record for a page.
	// Returns ErrNotFound if the page was never muted or hidden.
	GetSuppression(ctx context.Context, pageID core.ID) (*core.Suppression, error)

	// GetSuppressions retrieves records for several pages.
	// Returns only the records that exist, keyed by page ID.
	GetSuppressions(ctx context.Context, pageIDs ...core.ID) (map[core.ID]*core.Suppression, error)

	// UpdateSuppression reads the current record for a page (nil if absent),
	// passes it to fn and stores the result in a single transaction.
	// If fn returns an error nothing is written.
	UpdateSuppression(ctx context.Context, pageID core.ID, fn func(current *core.Suppression) (*core.Suppression, error)) error

	// DeleteSuppression removes the record for a page.
	// Returns ErrNotFound if no record exists.
	DeleteSuppression(ctx context.Context, pageID core.ID) error

	// ListSuppressions returns every stored record ordered by page ID.
	ListSuppressions(ctx context.Context) ([]*core.Suppression, error)
}

// DatasetRepository caches the most recently accepted dataset.
type DatasetRepository interface {
	Repository

	// SaveDataset stores the raw dataset payload with its metadata,
	// replacing any previous snapshot.
	SaveDataset(ctx context.Context, snapshot *core.DatasetSnapshot, payload []byte) error

	// LoadDataset returns the cached snapshot metadata and payload.
	// Returns ErrNotFound if nothing has been cached yet.
	LoadDataset(ctx context.Context) (*core.DatasetSnapshot, []byte, error)

	// DatasetInfo returns the cached snapshot metadata without the payload.
	// Returns ErrNotFound if nothing has been cached yet.
	DatasetInfo(ctx context.Context) (*core.DatasetSnapshot, error)
}
