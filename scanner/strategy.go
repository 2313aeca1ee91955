package scanner

import "github.com/poiesic/catscan/search"

// Strategy is a site-specific scanning capability.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string
	// AppliesTo reports whether the strategy can handle the page.
	AppliesTo(params Params) bool
	// DomainKey returns the text searched for by the unconditional domain step.
	DomainKey(params Params) string
}

// EntityExtractor is implemented by strategies that can pull a candidate
// entity name out of a page URL. Strategies without it never extract anything.
// A false result means no heuristic fired; it is not an error.
type EntityExtractor interface {
	ExtractEntity(rawURL string) (string, bool)
}

// NotifyFunc receives the deduplicated results of a scan that found something.
type NotifyFunc func(results *search.ResultSet)

// extractEntity runs the strategy's extractor, if any.
func extractEntity(strategy Strategy, rawURL string) (string, bool) {
	extractor, ok := strategy.(EntityExtractor)
	if !ok {
		return "", false
	}
	entity, ok := extractor.ExtractEntity(rawURL)
	if !ok || entity == "" {
		return "", false
	}
	return entity, true
}
