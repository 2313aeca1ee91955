package search

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned by Query for an unrecognised search mode.
var ErrUnknownMode = errors.New("unknown search mode")

// Mode names one of the store's search primitives.
type Mode string

const (
	ModeSimple      Mode = "simple"
	ModeFuzzy       Mode = "fuzzy"
	ModeFuzzyAll    Mode = "fuzzy-all"
	ModeConsecutive Mode = "consecutive"
	ModeCategory    Mode = "category"
	ModeDomain      Mode = "domain"
	ModeWebsite     Mode = "website"
)

// Modes lists every mode accepted by Query.
var Modes = []Mode{ModeSimple, ModeFuzzy, ModeFuzzyAll, ModeConsecutive, ModeCategory, ModeDomain, ModeWebsite}

// ParseMode maps a mode name onto a Mode. Empty means fuzzy.
func ParseMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ModeFuzzy, nil
	}
	for _, mode := range Modes {
		if string(mode) == name {
			return mode, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// Query runs the primitive named by mode.
func (s *Store) Query(mode Mode, query string) (*ResultSet, error) {
	switch mode {
	case ModeSimple:
		return s.SimpleSearch(query), nil
	case ModeFuzzy:
		return s.FuzzySearch(query, false), nil
	case ModeFuzzyAll:
		return s.FuzzySearch(query, true), nil
	case ModeConsecutive:
		return s.FindConsecutiveWords(query, 1, true)
	case ModeCategory:
		return s.PagesForCategory(query), nil
	case ModeDomain:
		return s.PagesForDomain(query), nil
	case ModeWebsite:
		return s.PagesForWebsite(query), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}
