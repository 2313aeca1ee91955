package search

import "errors"

var (
	// ErrUnimplemented is returned by primitives called with argument combinations
	// they do not support. Callers may treat it as a soft failure and continue.
	ErrUnimplemented = errors.New("unimplemented")
)
