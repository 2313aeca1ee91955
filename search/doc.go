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

// Package search provides the in-memory entry store and its lexical search primitives.
//
// The Store holds every knowledge-base entry and offers five primitives:
//   - SimpleSearch: case-insensitive substring match on the page name
//   - FuzzySearch: whole-word token matching ranked by match count
//   - FindConsecutiveWords: best positional token alignment from the start of the name
//   - PagesForCategory: exact, case-insensitive industry or category match
//   - PagesForDomain: fuzzy search keyed by a domain name
//
// Every primitive returns a ResultSet that preserves the order in which entries
// were matched. The store is replaced wholesale through SetPages; readers always
// see a consistent snapshot.
package search
