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

package storage

import (
	"fmt"

	"github.com/poiesic/catscan/core"
)

// MarshalSuppression serializes a Suppression to bytes.
func MarshalSuppression(suppression *core.Suppression) []byte {
	buf := make([]byte, core.SuppressionMUS.Size(*suppression))
	core.SuppressionMUS.Marshal(*suppression, buf)
	return buf
}

// UnmarshalSuppression deserializes a Suppression from bytes.
func UnmarshalSuppression(data []byte) (*core.Suppression, error) {
	suppression, _, err := core.SuppressionMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &suppression, nil
}

// MarshalDatasetSnapshot serializes DatasetSnapshot metadata to bytes.
func MarshalDatasetSnapshot(snapshot *core.DatasetSnapshot) []byte {
	buf := make([]byte, core.DatasetSnapshotMUS.Size(*snapshot))
	core.DatasetSnapshotMUS.Marshal(*snapshot, buf)
	return buf
}

// UnmarshalDatasetSnapshot deserializes DatasetSnapshot metadata from bytes.
func UnmarshalDatasetSnapshot(data []byte) (*core.DatasetSnapshot, error) {
	snapshot, _, err := core.DatasetSnapshotMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &snapshot, nil
}
