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

package core

import (
	"fmt"
	"time"
)

// ValidateEntry validates an Entry according to domain rules.
//
// Validation rules:
//   - ID must be positive
//   - Name must not be empty
//
// Category and website lists are not validated; empty lists are legal.
func ValidateEntry(entry Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.EntryID() <= 0 {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidEntry, ErrInvalidID, entry.EntryID())
	}

	if entry.Title() == "" {
		return fmt.Errorf("%w: %w: id %d", ErrInvalidEntry, ErrEmptyName, entry.EntryID())
	}

	return nil
}

// ValidateEntries validates every entry and checks that IDs are unique
// across the whole collection, regardless of kind.
func ValidateEntries(entries []Entry) error {
	seen := make(map[ID]ArticleType, len(entries))
	for _, entry := range entries {
		if err := ValidateEntry(entry); err != nil {
			return err
		}
		if prev, ok := seen[entry.EntryID()]; ok {
			return fmt.Errorf("%w: %d (%s and %s)", ErrDuplicateID, entry.EntryID(), prev, entry.ArticleType())
		}
		seen[entry.EntryID()] = entry.ArticleType()
	}
	return nil
}

// ValidateSuppression validates a Suppression record.
//
// Validation rules:
//   - PageID must be positive
//   - MutedAt must be zero or not before the Unix epoch
//   - Revision must be zero or equal to PageID
func ValidateSuppression(s *Suppression) error {
	if s == nil {
		return fmt.Errorf("%w: suppression is nil", ErrInvalidSuppression)
	}

	if s.PageID <= 0 {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidSuppression, ErrInvalidID, s.PageID)
	}

	if !IsValidTimestamp(s.MutedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidSuppression, ErrInvalidTimestamp)
	}

	if s.Revision != 0 && s.Revision != s.PageID {
		return fmt.Errorf("%w: revision %d does not match page %d", ErrInvalidSuppression, s.Revision, s.PageID)
	}

	return nil
}

// IsValidTimestamp reports whether ts is zero or representable as
// non-negative Unix milliseconds. Future times are allowed; the caller's
// clock decides what "now" is.
func IsValidTimestamp(ts time.Time) bool {
	return ts.IsZero() || ts.UnixMilli() >= 0
}
