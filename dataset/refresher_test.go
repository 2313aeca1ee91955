package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/catscan/search"
	"github.com/poiesic/catscan/storage"
	"github.com/poiesic/catscan/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticSource serves a fixed payload or error.
type staticSource struct {
	payload []byte
	err     error
	calls   int
}

func (s *staticSource) Fetch(context.Context) ([]byte, error) {
	s.calls++
	return s.payload, s.err
}

func (s *staticSource) URL() string { return "https://example.test/pages_db.json" }

func newTestRefresher(t *testing.T, source Source) (*Refresher, *search.Store, storage.DatasetRepository) {
	t.Helper()
	_, repo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	store, err := search.NewStore()
	require.NoError(t, err)

	r, err := NewRefresher(store, repo, source, WithRefresherClock(func() time.Time {
		return time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return r, store, repo
}

func TestNewRefresher(t *testing.T) {
	_, repo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	store, err := search.NewStore()
	require.NoError(t, err)

	_, err = NewRefresher(nil, repo, nil)
	assert.ErrorIs(t, err, ErrStoreRequired)
	_, err = NewRefresher(store, nil, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
}

func TestRefresher_Bootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("bundled when nothing cached", func(t *testing.T) {
		r, store, _ := newTestRefresher(t, nil)
		result, err := r.Bootstrap(ctx)
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, BundledSource, result.Snapshot.Source)

		bundledPages, err := LoadBundled()
		require.NoError(t, err)
		assert.Equal(t, bundledPages.Len(), store.Len())
	})

	t.Run("cached snapshot preferred", func(t *testing.T) {
		r, store, repo := newTestRefresher(t, nil)
		_, err := r.LoadPayload(ctx, []byte(sampleExport), "https://example.test/old.json")
		require.NoError(t, err)

		// A fresh refresher over the same repository simulates a restart.
		fresh, err := search.NewStore()
		require.NoError(t, err)
		restarted, err := NewRefresher(fresh, repo, nil)
		require.NoError(t, err)

		result, err := restarted.Bootstrap(ctx)
		require.NoError(t, err)
		assert.Equal(t, "https://example.test/old.json", result.Snapshot.Source)
		assert.Equal(t, 5, fresh.Len())
		assert.Equal(t, store.Len(), fresh.Len())
	})
}

func TestRefresher_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("loads and caches new dataset", func(t *testing.T) {
		source := &staticSource{payload: []byte(sampleExport)}
		r, store, repo := newTestRefresher(t, source)

		result, err := r.Refresh(ctx)
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, 5, result.Entries)
		assert.Equal(t, 5, store.Len())
		assert.Equal(t, result.Snapshot.Checksum, r.Checksum())

		info, err := repo.DatasetInfo(ctx)
		require.NoError(t, err)
		assert.Equal(t, source.URL(), info.Source)
		assert.Equal(t, result.Snapshot.Checksum, info.Checksum)
	})

	t.Run("unchanged payload skipped", func(t *testing.T) {
		source := &staticSource{payload: []byte(sampleExport)}
		r, _, _ := newTestRefresher(t, source)

		_, err := r.Refresh(ctx)
		require.NoError(t, err)
		result, err := r.Refresh(ctx)
		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.Equal(t, 5, result.Entries)
		assert.Equal(t, 2, source.calls)
	})

	t.Run("importing the bundled payload caches it", func(t *testing.T) {
		r, store, repo := newTestRefresher(t, nil)
		_, err := r.Bootstrap(ctx)
		require.NoError(t, err)
		_, err = repo.DatasetInfo(ctx)
		require.ErrorIs(t, err, storage.ErrNotFound)

		result, err := r.LoadPayload(ctx, bundled, "local")
		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.Equal(t, store.Len(), result.Entries)
		assert.Positive(t, result.Entries)

		info, err := repo.DatasetInfo(ctx)
		require.NoError(t, err)
		assert.Equal(t, "local", info.Source)
		assert.Equal(t, r.Checksum(), info.Checksum)
	})

	t.Run("invalid payload keeps current contents", func(t *testing.T) {
		source := &staticSource{payload: []byte(`{"Company": [{"PageID": "x"}], "Incident": [], "Product": [], "ProductLine": []}`)}
		r, store, repo := newTestRefresher(t, source)
		_, err := r.Bootstrap(ctx)
		require.NoError(t, err)
		before := store.Len()

		_, err = r.Refresh(ctx)
		assert.ErrorIs(t, err, ErrInvalidDataset)
		assert.Equal(t, before, store.Len())

		_, err = repo.DatasetInfo(ctx)
		assert.ErrorIs(t, err, storage.ErrNotFound, "bundled data and rejected payloads are not cached")
	})

	t.Run("fetch error", func(t *testing.T) {
		boom := errors.New("boom")
		r, _, _ := newTestRefresher(t, &staticSource{err: boom})
		_, err := r.Refresh(ctx)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("no source", func(t *testing.T) {
		r, _, _ := newTestRefresher(t, nil)
		_, err := r.Refresh(ctx)
		assert.ErrorIs(t, err, ErrFetchFailed)
	})
}

func TestRefresher_Schedule(t *testing.T) {
	r, _, _ := newTestRefresher(t, &staticSource{payload: []byte(sampleExport)})

	assert.Error(t, r.Start("not a schedule"))
	require.NoError(t, r.Start("@every 1h"))
	require.NoError(t, r.Start(""))
	r.Stop()
	r.Stop()
}
