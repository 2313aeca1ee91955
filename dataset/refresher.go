// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/catscan/core"
	"github.com/poiesic/catscan/storage"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule refreshes the dataset once a day.
const DefaultSchedule = "@every 24h"

// refreshTimeout bounds a single scheduled refresh.
const refreshTimeout = 5 * time.Minute

// Loader receives a validated page set. *search.Store implements it.
type Loader interface {
	SetPages(pages *core.PageSet) error
}

// Source provides raw export payloads. *Fetcher implements it.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	URL() string
}

// Result describes the outcome of a load or refresh.
type Result struct {
	Snapshot *core.DatasetSnapshot
	// Changed is false when the payload matched the current dataset and nothing was reloaded.
	Changed bool
	Entries int
}

// Refresher keeps the store in sync with the remote export and caches the
// last accepted payload so restarts do not fall back to the bundled data.
type Refresher struct {
	store  Loader
	repo   storage.DatasetRepository
	source Source
	now    func() time.Time
	logger *slog.Logger

	mu       sync.Mutex
	checksum string
	entries  int
	cron     *cron.Cron
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher) error

// WithRefresherLogger sets a custom logger.
// Default is slog.Default().
func WithRefresherLogger(logger *slog.Logger) RefresherOption {
	return func(r *Refresher) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithRefresherClock replaces time.Now for snapshot timestamps.
func WithRefresherClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		r.now = now
		return nil
	}
}

// NewRefresher creates a refresher. source may be nil, in which case only
// the cached and bundled datasets are available.
func NewRefresher(store Loader, repo storage.DatasetRepository, source Source, opts ...RefresherOption) (*Refresher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	r := &Refresher{
		store:  store,
		repo:   repo,
		source: source,
		now:    time.Now,
		logger: slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Checksum returns the checksum of the dataset currently loaded, empty if none.
func (r *Refresher) Checksum() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checksum
}

// Bootstrap loads the cached snapshot into the store, falling back to the
// bundled dataset when nothing is cached or the cache is unusable.
func (r *Refresher) Bootstrap(ctx context.Context) (*Result, error) {
	snapshot, payload, err := r.repo.LoadDataset(ctx)
	switch {
	case err == nil:
		result, loadErr := r.load(ctx, payload, snapshot.Source, false)
		if loadErr == nil {
			result.Snapshot = snapshot
			r.logger.Info("loaded cached dataset", "source", snapshot.Source, "fetched_at", snapshot.FetchedAt, "entries", result.Entries)
			return result, nil
		}
		r.logger.Warn("cached dataset unusable, using bundled dataset", "err", loadErr)
	case errors.Is(err, storage.ErrNotFound):
		r.logger.Debug("no cached dataset, using bundled dataset")
	default:
		r.logger.Warn("error reading cached dataset, using bundled dataset", "err", err)
	}

	result, err := r.load(ctx, bundled, BundledSource, false)
	if err != nil {
		return nil, fmt.Errorf("loading bundled dataset: %w", err)
	}
	r.logger.Info("loaded bundled dataset", "entries", result.Entries)
	return result, nil
}

// Refresh fetches the remote export and, if it differs from the loaded
// dataset and passes validation, replaces the store contents and caches it.
// On any failure the current contents stay in place.
func (r *Refresher) Refresh(ctx context.Context) (*Result, error) {
	if r.source == nil {
		return nil, fmt.Errorf("%w: no remote source configured", ErrFetchFailed)
	}

	payload, err := r.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return r.load(ctx, payload, r.source.URL(), true)
}

// LoadPayload validates payload and loads it as if fetched from source.
func (r *Refresher) LoadPayload(ctx context.Context, payload []byte, source string) (*Result, error) {
	return r.load(ctx, payload, source, true)
}

func (r *Refresher) load(ctx context.Context, payload []byte, source string, persist bool) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := &core.DatasetSnapshot{
		Checksum:  core.ChecksumFromContent(payload),
		Source:    source,
		FetchedAt: r.now().UTC(),
		Size:      int64(len(payload)),
	}

	if snapshot.Checksum == r.checksum {
		r.logger.Debug("dataset unchanged, skipping reload", "checksum", snapshot.Checksum)
		// The loaded data may be the bundled copy, which is never cached.
		if persist && !r.cached(ctx, snapshot.Checksum) {
			r.save(ctx, snapshot, payload)
		}
		return &Result{Snapshot: snapshot, Changed: false, Entries: r.entries}, nil
	}

	pages, err := Parse(payload)
	if err != nil {
		return nil, err
	}
	if err := r.store.SetPages(pages); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	if persist {
		r.save(ctx, snapshot, payload)
	}

	r.checksum = snapshot.Checksum
	r.entries = pages.Len()
	r.logger.Info("dataset loaded", "source", source, "checksum", snapshot.Checksum, "entries", pages.Len())
	return &Result{Snapshot: snapshot, Changed: true, Entries: pages.Len()}, nil
}

// cached reports whether the repository already holds the payload with checksum.
func (r *Refresher) cached(ctx context.Context, checksum string) bool {
	info, err := r.repo.DatasetInfo(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("error reading cached dataset info", "err", err)
		}
		return false
	}
	return info.Checksum == checksum
}

func (r *Refresher) save(ctx context.Context, snapshot *core.DatasetSnapshot, payload []byte) {
	if err := r.repo.SaveDataset(ctx, snapshot, payload); err != nil {
		r.logger.Error("error caching dataset", "err", err)
	}
}

// Start schedules periodic refreshes using a cron spec such as "@every 24h"
// or "0 4 * * *". Calling Start again replaces the schedule.
func (r *Refresher) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, r.scheduledRefresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}

	r.Stop()

	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()

	c.Start()
	r.logger.Info("scheduled dataset refresh", "schedule", schedule)
	return nil
}

// Stop cancels scheduled refreshes and waits for a running one to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
}

func (r *Refresher) scheduledRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	result, err := r.Refresh(ctx)
	if err != nil {
		r.logger.Error("scheduled dataset refresh failed", "err", err)
		return
	}
	r.logger.Debug("scheduled dataset refresh complete", "changed", result.Changed)
}
