package dataset

import (
	_ "embed"

	"github.com/poiesic/catscan/core"
)

// BundledSource identifies the embedded dataset in snapshot metadata.
const BundledSource = "bundled"

//go:embed pages_db.json
var bundled []byte

// Bundled returns a copy of the embedded default export.
func Bundled() []byte {
	out := make([]byte, len(bundled))
	copy(out, bundled)
	return out
}

// LoadBundled parses the embedded default export.
func LoadBundled() (*core.PageSet, error) {
	return Parse(bundled)
}
