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

import "errors"

// Domain validation errors
var (
	// ErrInvalidEntry indicates an Entry failed validation.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrInvalidID indicates a page ID is zero or negative.
	ErrInvalidID = errors.New("page id must be positive")

	// ErrEmptyName indicates the page name is empty.
	ErrEmptyName = errors.New("page name cannot be empty")

	// ErrDuplicateID indicates two entries share the same page ID.
	ErrDuplicateID = errors.New("duplicate page id")

	// ErrInvalidSuppression indicates a Suppression failed validation.
	ErrInvalidSuppression = errors.New("invalid suppression")

	// ErrInvalidTimestamp indicates a timestamp before the Unix epoch.
	ErrInvalidTimestamp = errors.New("timestamp before unix epoch")
)
