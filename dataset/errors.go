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

import "errors"

var (
	// ErrInvalidDataset indicates the export could not be decoded or failed validation.
	ErrInvalidDataset = errors.New("invalid dataset")

	// ErrFetchFailed indicates the remote dataset could not be retrieved.
	ErrFetchFailed = errors.New("dataset fetch failed")

	// ErrInvalidMaxAttempts is returned when maxAttempts is less than 1.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrStoreRequired is returned when a search store is not provided.
	ErrStoreRequired = errors.New("search store required")

	// ErrRepositoryRequired is returned when a dataset repository is not provided.
	ErrRepositoryRequired = errors.New("dataset repository required")
)
