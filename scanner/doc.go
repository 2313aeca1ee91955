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

// Package scanner decides which knowledge-base entries are relevant to a visited page.
//
// A Strategy knows whether it can handle a page and which domain key to search
// for; strategies that also implement EntityExtractor pull a brand or product
// name out of the URL. The Scanner runs the fixed multi-step search pipeline
// against a search.Store for one strategy, and the Dispatcher picks the first
// applicable strategy from a static registry, falling back to a default.
package scanner
