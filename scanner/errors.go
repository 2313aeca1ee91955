package scanner

import "errors"

var (
	// ErrStoreRequired is returned when a search store is not provided.
	ErrStoreRequired = errors.New("search store required")

	// ErrScannerRequired is returned when a scanner is not provided.
	ErrScannerRequired = errors.New("scanner required")

	// ErrInvalidURL indicates a page URL has no usable registrable domain.
	ErrInvalidURL = errors.New("invalid page url")

	// ErrStrategyPanic wraps a panic recovered from a strategy.
	ErrStrategyPanic = errors.New("strategy panicked")
)
