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

// Package storage provides the storage abstraction layer for catscan.
//
// Two kinds of state outlive a process: the per-page suppression records
// written when a user mutes or hides a notification, and the last dataset
// accepted by a refresh. Repository interfaces here decouple that state from
// the BadgerDB implementation in storage/badger.
//
// # Usage
//
// Open a backend and create the repositories over it:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	suppressions := badger.NewSuppressionRepository(backend)
//	datasets := badger.NewDatasetRepository(backend)
//
// Use in tests with in-memory storage:
//
//	suppressions, datasets, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines. Suppression writes are
// last-writer-wins; no optimistic concurrency control is applied.
//
// # Context Support
//
// All repository methods accept context.Context. Pass context.Background()
// for operations without specific timeout requirements.
package storage
