package search

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/catscan/core"
)

// Store holds every knowledge-base entry in memory and answers search queries.
// The contents are replaced wholesale with SetPages; there is no incremental
// mutation API. Searches operate on a consistent snapshot and never block a
// concurrent replacement for longer than a slice header copy.
type Store struct {
	mu        sync.RWMutex
	pages     *core.PageSet
	all       []core.Entry
	companies []*core.CompanyPage
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPages seeds the store with an initial page set.
func WithPages(pages *core.PageSet) Option {
	return func(s *Store) error {
		return s.SetPages(pages)
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{
		pages:  &core.PageSet{},
		logger: slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// SetPages validates pages and, if valid, discards the current contents and
// replaces them with pages. On validation failure the previous contents remain.
func (s *Store) SetPages(pages *core.PageSet) error {
	if pages == nil {
		return fmt.Errorf("%w: page set is nil", core.ErrInvalidEntry)
	}

	all := pages.All()
	if err := core.ValidateEntries(all); err != nil {
		return err
	}

	s.mu.Lock()
	s.pages = pages
	s.all = all
	s.companies = pages.Companies
	s.mu.Unlock()

	s.logger.Info("pages loaded",
		"companies", len(pages.Companies),
		"incidents", len(pages.Incidents),
		"products", len(pages.Products),
		"productLines", len(pages.ProductLines))
	return nil
}

// Pages returns the page set currently held by the store.
func (s *Store) Pages() *core.PageSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pages
}

// Len returns the number of entries in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.all)
}

// Get returns the entry with the given ID, if present.
func (s *Store) Get(id core.ID) (core.Entry, bool) {
	for _, entry := range s.snapshot() {
		if entry.EntryID() == id {
			return entry, true
		}
	}
	return nil, false
}

// snapshot returns the concatenation of all four collections:
// companies, incidents, products, then product lines.
func (s *Store) snapshot() []core.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.all
}

// SimpleSearch returns entries whose name contains query, ignoring case.
// The query is not tokenized.
func (s *Store) SimpleSearch(query string) *ResultSet {
	lowerQuery := strings.ToLower(query)
	results := NewResultSet()
	for _, entry := range s.snapshot() {
		if strings.Contains(strings.ToLower(entry.Title()), lowerQuery) {
			results.Add(entry)
		}
	}
	return results
}

// FuzzySearch splits query on whitespace and counts, for each entry, how many
// query tokens occur as whole words in its name. Entries with at least one
// match are kept, or only those matching every token when matchAllWords is set.
// Results are ordered by match count, highest first; entries with equal counts
// keep their store order.
func (s *Store) FuzzySearch(query string, matchAllWords bool) *ResultSet {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return NewResultSet()
	}
	patterns := wholeWordPatterns(tokens)

	type scored struct {
		entry      core.Entry
		matchCount int
	}

	var hits []scored
	for _, entry := range s.snapshot() {
		matchCount := countWholeWordMatches(patterns, strings.ToLower(entry.Title()))
		if matchAllWords {
			if matchCount != len(tokens) {
				continue
			}
		} else if matchCount == 0 {
			continue
		}
		hits = append(hits, scored{entry: entry, matchCount: matchCount})
	}

	// Stable: ties keep store order.
	slices.SortStableFunc(hits, func(a, b scored) int {
		return cmp.Compare(b.matchCount, a.matchCount)
	})

	results := NewResultSet()
	for _, hit := range hits {
		results.Add(hit.entry)
	}
	return results
}

// FindConsecutiveWords returns the single entry whose name best aligns with
// query token by token from the first word. Ties keep the first entry found.
// Only maxResults == 1 with onlyFromStart == true is supported; any other
// combination returns ErrUnimplemented.
func (s *Store) FindConsecutiveWords(query string, maxResults int, onlyFromStart bool) (*ResultSet, error) {
	if maxResults != 1 {
		return nil, fmt.Errorf("%w: maxResults != 1 (got %d)", ErrUnimplemented, maxResults)
	}
	if !onlyFromStart {
		return nil, fmt.Errorf("%w: onlyFromStart = false", ErrUnimplemented)
	}

	queryTokens := tokenize(query)
	bestCount := 0
	var best core.Entry

	for _, entry := range s.snapshot() {
		count := alignedPrefixCount(queryTokens, tokenize(entry.Title()))
		if count > bestCount {
			bestCount = count
			best = entry
		}
	}

	results := NewResultSet()
	if best != nil {
		results.Add(best)
	}
	return results, nil
}

// PagesForCategory returns companies whose industries, and products or product
// lines whose categories, contain categoryName ignoring case. Incidents never match.
func (s *Store) PagesForCategory(categoryName string) *ResultSet {
	results := NewResultSet()
	for _, entry := range s.snapshot() {
		categorized, ok := entry.(core.Categorized)
		if !ok {
			continue
		}
		for _, term := range categorized.CategoryTerms() {
			if strings.EqualFold(term, categoryName) {
				results.Add(entry)
				break
			}
		}
	}
	return results
}

// PagesForDomain is FuzzySearch keyed by a domain name.
func (s *Store) PagesForDomain(domain string) *ResultSet {
	return s.FuzzySearch(domain, false)
}

// PagesForWebsite returns companies with a website on the same registrable
// domain (eTLD+1) as domain. Websites that cannot be parsed are skipped.
func (s *Store) PagesForWebsite(domain string) *ResultSet {
	results := NewResultSet()
	target, ok := registrableDomain(domain)
	if !ok {
		s.logger.Debug("cannot derive registrable domain", "domain", domain)
		return results
	}

	s.mu.RLock()
	companies := s.companies
	s.mu.RUnlock()

	for _, company := range companies {
		for _, website := range company.Websites {
			site, ok := registrableDomain(website)
			if !ok {
				s.logger.Debug("skipping unparseable website", "page", company.Id, "website", website)
				continue
			}
			if site == target {
				results.Add(company)
				break
			}
		}
	}
	return results
}
