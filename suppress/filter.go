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

package suppress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/catscan/core"
	"github.com/poiesic/catscan/search"
	"github.com/poiesic/catscan/storage"
)

// DefaultMuteWindow is how long a muted page stays quiet.
const DefaultMuteWindow = time.Hour

// ErrRepositoryRequired is returned when no suppression repository is provided.
var ErrRepositoryRequired = errors.New("suppression repository required")

// State is the suppression state of a single page.
type State int

const (
	StateActive State = iota
	StateMuted
	StateHidden
)

func (s State) String() string {
	switch s {
	case StateMuted:
		return "muted"
	case StateHidden:
		return "hidden"
	default:
		return "active"
	}
}

// Filter applies mute and hide decisions to scan results.
type Filter struct {
	repo   storage.SuppressionRepository
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Filter.
type Option func(*Filter) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(f *Filter) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		f.now = now
		return nil
	}
}

// NewFilter creates a filter backed by repo.
func NewFilter(repo storage.SuppressionRepository, opts ...Option) (*Filter, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	f := &Filter{
		repo:   repo,
		now:    time.Now,
		logger: slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Mute silences a page starting now. Muting a hidden page has no effect.
func (f *Filter) Mute(ctx context.Context, pageID core.ID) error {
	now := f.now().UTC()
	err := f.repo.UpdateSuppression(ctx, pageID, func(current *core.Suppression) (*core.Suppression, error) {
		if current != nil && current.Hidden() {
			return nil, nil
		}
		return &core.Suppression{PageID: pageID, MutedAt: now}, nil
	})
	if err != nil {
		return fmt.Errorf("muting page %d: %w", pageID, err)
	}
	f.logger.Debug("muted page", "page_id", pageID, "at", now)
	return nil
}

// Hide suppresses a page permanently.
func (f *Filter) Hide(ctx context.Context, pageID core.ID) error {
	now := f.now().UTC()
	err := f.repo.UpdateSuppression(ctx, pageID, func(current *core.Suppression) (*core.Suppression, error) {
		next := &core.Suppression{PageID: pageID, MutedAt: now, Revision: pageID}
		if current != nil && !current.MutedAt.IsZero() {
			next.MutedAt = current.MutedAt
		}
		return next, nil
	})
	if err != nil {
		return fmt.Errorf("hiding page %d: %w", pageID, err)
	}
	f.logger.Debug("hid page", "page_id", pageID)
	return nil
}

// Reset clears any mute or hide recorded for a page. Resetting an
// active page is a no-op.
func (f *Filter) Reset(ctx context.Context, pageID core.ID) error {
	err := f.repo.DeleteSuppression(ctx, pageID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("resetting page %d: %w", pageID, err)
	}
	f.logger.Debug("reset page", "page_id", pageID)
	return nil
}

// State reports the current state of a page for the given mute window.
func (f *Filter) State(ctx context.Context, pageID core.ID, muteWindow time.Duration) (State, error) {
	record, err := f.repo.GetSuppression(ctx, pageID)
	if errors.Is(err, storage.ErrNotFound) {
		return StateActive, nil
	}
	if err != nil {
		return StateActive, err
	}
	return stateOf(record, f.now(), muteWindow), nil
}

// Apply returns the entries of results that should be surfaced now.
// Hidden pages are always dropped; muted pages are dropped while
// now <= mutedAt + muteWindow.
func (f *Filter) Apply(ctx context.Context, results *search.ResultSet, muteWindow time.Duration) (*search.ResultSet, error) {
	if results.Empty() {
		return search.NewResultSet(), nil
	}

	records, err := f.repo.GetSuppressions(ctx, results.IDs()...)
	if err != nil {
		return nil, fmt.Errorf("loading suppressions: %w", err)
	}

	now := f.now()
	kept := results.Filter(func(entry core.Entry) bool {
		state := stateOf(records[entry.EntryID()], now, muteWindow)
		if state != StateActive {
			f.logger.Debug("suppressed page", "page_id", entry.EntryID(), "state", state)
			return false
		}
		return true
	})
	return kept, nil
}

// stateOf evaluates a stored record. A nil record is Active.
func stateOf(record *core.Suppression, now time.Time, muteWindow time.Duration) State {
	switch {
	case record == nil:
		return StateActive
	case record.Hidden():
		return StateHidden
	case record.MutedAt.IsZero():
		return StateActive
	case !now.After(record.MutedAt.Add(muteWindow)):
		return StateMuted
	default:
		return StateActive
	}
}
