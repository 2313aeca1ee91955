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

// Package suppress gates which matched pages are surfaced to the user.
//
// Each page is in one of three states:
//
//   - Active: never muted or hidden, or the mute window has elapsed
//   - Muted: muted at time T and now <= T + window
//   - Hidden: permanently suppressed; terminal
//
// Records are read and written through a storage.SuppressionRepository with
// last-writer-wins semantics.
package suppress
