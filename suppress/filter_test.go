package suppress

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/catscan/core"
	"github.com/poiesic/catscan/search"
	"github.com/poiesic/catscan/storage"
	"github.com/poiesic/catscan/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable clock for mute window tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestFilter(t *testing.T, clock *fakeClock) (*Filter, storage.SuppressionRepository) {
	t.Helper()
	repo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	filter, err := NewFilter(repo, WithClock(clock.Now))
	require.NoError(t, err)
	return filter, repo
}

func results() *search.ResultSet {
	return search.NewResultSet(
		&core.CompanyPage{Page: core.Page{Id: 1, Name: "Acme"}},
		&core.IncidentPage{Page: core.Page{Id: 2, Name: "Acme recall"}},
		&core.ProductPage{Page: core.Page{Id: 3, Name: "Acme Phone"}},
	)
}

func TestNewFilter(t *testing.T) {
	_, err := NewFilter(nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	repo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewFilter(repo, WithClock(nil))
	assert.Error(t, err)
}

func TestFilter_MuteWindow(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	filter, _ := newTestFilter(t, clock)

	require.NoError(t, filter.Mute(ctx, 2))

	clock.Advance(30 * time.Minute)
	kept, err := filter.Apply(ctx, results(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{1, 3}, kept.IDs())

	state, err := filter.State(ctx, 2, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, StateMuted, state)

	clock.Advance(30 * time.Minute)
	kept, err = filter.Apply(ctx, results(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{1, 3}, kept.IDs(), "boundary is still muted")

	clock.Advance(time.Minute)
	kept, err = filter.Apply(ctx, results(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{1, 2, 3}, kept.IDs())

	state, err = filter.State(ctx, 2, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, StateActive, state)
}

func TestFilter_Hide(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	filter, repo := newTestFilter(t, clock)

	require.NoError(t, filter.Mute(ctx, 3))
	clock.Advance(time.Minute)
	require.NoError(t, filter.Hide(ctx, 3))

	record, err := repo.GetSuppression(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, core.ID(3), record.Revision)
	assert.True(t, record.MutedAt.Equal(time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)))

	clock.Advance(365 * 24 * time.Hour)
	kept, err := filter.Apply(ctx, results(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{1, 2}, kept.IDs())

	t.Run("muting a hidden page keeps it hidden", func(t *testing.T) {
		require.NoError(t, filter.Mute(ctx, 3))
		state, err := filter.State(ctx, 3, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, StateHidden, state)
	})

	t.Run("hidden with zero window", func(t *testing.T) {
		kept, err := filter.Apply(ctx, results(), 0)
		require.NoError(t, err)
		assert.NotContains(t, kept.IDs(), core.ID(3))
	})
}

func TestFilter_HideWithoutMute(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	filter, _ := newTestFilter(t, clock)

	require.NoError(t, filter.Hide(ctx, 1))
	state, err := filter.State(ctx, 1, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, StateHidden, state)
}

func TestFilter_ClockAheadOfWallTime(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now().Add(5 * time.Second)}
	filter, _ := newTestFilter(t, clock)

	require.NoError(t, filter.Mute(ctx, 2))
	state, err := filter.State(ctx, 2, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, StateMuted, state)

	clock.Advance(24 * time.Hour)
	require.NoError(t, filter.Hide(ctx, 2))
	state, err = filter.State(ctx, 2, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, StateHidden, state)
}

func TestFilter_Reset(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	filter, repo := newTestFilter(t, clock)

	require.NoError(t, filter.Mute(ctx, 1))
	require.NoError(t, filter.Hide(ctx, 3))

	require.NoError(t, filter.Reset(ctx, 3))
	_, err := repo.GetSuppression(ctx, 3)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	kept, err := filter.Apply(ctx, results(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{2, 3}, kept.IDs())

	t.Run("active page is a no-op", func(t *testing.T) {
		assert.NoError(t, filter.Reset(ctx, 3))
		assert.NoError(t, filter.Reset(ctx, 42))
	})
}

func TestFilter_Apply(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	filter, _ := newTestFilter(t, clock)

	t.Run("empty results", func(t *testing.T) {
		kept, err := filter.Apply(ctx, nil, time.Hour)
		require.NoError(t, err)
		assert.True(t, kept.Empty())
	})

	t.Run("unknown pages are active", func(t *testing.T) {
		kept, err := filter.Apply(ctx, results(), time.Hour)
		require.NoError(t, err)
		assert.Equal(t, []core.ID{1, 2, 3}, kept.IDs())

		state, err := filter.State(ctx, 99, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, StateActive, state)
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "muted", StateMuted.String())
	assert.Equal(t, "hidden", StateHidden.String())
}
