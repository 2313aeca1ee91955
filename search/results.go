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

package search

import (
	"iter"

	"github.com/poiesic/catscan/core"
)

// ResultSet is an ordered, append-only collection of matched entries.
// Insertion order is preserved. Duplicates are allowed until Unique is called.
type ResultSet struct {
	entries []core.Entry
}

// NewResultSet creates a result set holding the given entries in order.
func NewResultSet(entries ...core.Entry) *ResultSet {
	r := &ResultSet{}
	r.Add(entries...)
	return r
}

// Add appends entries to the end of the set. Nil entries are ignored.
func (r *ResultSet) Add(entries ...core.Entry) {
	for _, entry := range entries {
		if entry != nil {
			r.entries = append(r.entries, entry)
		}
	}
}

// Merge appends every entry of other, in order.
func (r *ResultSet) Merge(other *ResultSet) {
	if other == nil {
		return
	}
	r.Add(other.entries...)
}

// Len returns the number of entries, counting duplicates.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Empty reports whether the set holds no entries.
func (r *ResultSet) Empty() bool {
	return r.Len() == 0
}

// All iterates the entries in insertion order.
func (r *ResultSet) All() iter.Seq[core.Entry] {
	return func(yield func(core.Entry) bool) {
		if r == nil {
			return
		}
		for _, entry := range r.entries {
			if !yield(entry) {
				return
			}
		}
	}
}

// IDs returns the page IDs in insertion order.
func (r *ResultSet) IDs() []core.ID {
	ids := make([]core.ID, 0, r.Len())
	for entry := range r.All() {
		ids = append(ids, entry.EntryID())
	}
	return ids
}

// Unique returns a new set with duplicate page IDs removed. The first
// occurrence of each ID keeps its position.
func (r *ResultSet) Unique() *ResultSet {
	seen := make(map[core.ID]struct{}, r.Len())
	unique := &ResultSet{}
	for entry := range r.All() {
		if _, ok := seen[entry.EntryID()]; ok {
			continue
		}
		seen[entry.EntryID()] = struct{}{}
		unique.entries = append(unique.entries, entry)
	}
	return unique
}

// Filter returns a new set holding the entries for which keep returns true.
func (r *ResultSet) Filter(keep func(core.Entry) bool) *ResultSet {
	filtered := &ResultSet{}
	for entry := range r.All() {
		if keep(entry) {
			filtered.entries = append(filtered.entries, entry)
		}
	}
	return filtered
}
