package badger

import (
	"encoding/binary"

	"github.com/poiesic/catscan/core"
)

// Key prefixes for different data types
const (
	suppressionPrefix = "suppr:"
	datasetMetaKey    = "dataset:meta"
	datasetDataKey    = "dataset:payload"
)

// makeSuppressionKey generates a key for a page's suppression record.
// Format: prefix + 8 byte big-endian page ID, so iteration is ordered by ID.
func makeSuppressionKey(pageID core.ID) []byte {
	buf := make([]byte, len(suppressionPrefix)+8)
	offset := copy(buf, suppressionPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(pageID))
	return buf
}
