package scanner

import (
	"errors"
	"log/slog"

	"github.com/poiesic/catscan/search"
)

// Index is the set of search primitives the pipeline runs.
// *search.Store implements it.
type Index interface {
	SimpleSearch(query string) *search.ResultSet
	FuzzySearch(query string, matchAllWords bool) *search.ResultSet
	FindConsecutiveWords(query string, maxResults int, onlyFromStart bool) (*search.ResultSet, error)
	PagesForCategory(categoryName string) *search.ResultSet
}

var _ Index = (*search.Store)(nil)

// Scanner runs the multi-step search pipeline for a single strategy.
type Scanner struct {
	store   Index
	monitor ScanMonitor
	logger  *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMonitor installs a monitor that observes every scan.
func WithMonitor(monitor ScanMonitor) Option {
	return func(s *Scanner) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// NewScanner creates a scanner over store.
func NewScanner(store Index, opts ...Option) (*Scanner, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	s := &Scanner{
		store:   store,
		monitor: &noopMonitor{},
		logger:  slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Outcome reports what a scan found.
type Outcome struct {
	// Strategy is the name of the strategy that ran.
	Strategy string
	// Entity is the name extracted from the URL, empty if none.
	Entity string
	// Found is true when any step produced at least one hit.
	Found bool
	// Results holds the matched entries, deduplicated by page ID in first-seen order.
	Results *search.ResultSet
	// Errors collects step failures that did not abort the scan.
	Errors []error
}

// Scan runs the pipeline for strategy against params:
//
//  1. fuzzy search for the strategy's domain key (always)
//  2. if an entity is extracted from the URL: category match, consecutive
//     words match, simple substring match and fuzzy word match, in that order
//
// Hits are merged in step order and deduplicated by page ID. When at least one
// unique entry remains notify is called with them. Unsupported-argument errors
// from the consecutive words step are skipped; other step errors are recorded
// in the outcome and the pipeline continues.
func (s *Scanner) Scan(strategy Strategy, params Params, notify NotifyFunc) *Outcome {
	name := strategy.Name()
	logger := s.logger.With("scanner", name)
	outcome := &Outcome{Strategy: name}
	combined := search.NewResultSet()

	s.monitor.Start(name, params)
	logger.Debug("starting scan", "url", params.URL)

	domainKey := strategy.DomainKey(params)
	if s.performSearch(logger, StepDomainKey, domainKey, combined, outcome, func() (*search.ResultSet, error) {
		return s.store.FuzzySearch(domainKey, false), nil
	}) {
		outcome.Found = true
	}

	entity, ok := extractEntity(strategy, params.URL)
	s.monitor.EntityExtracted(entity, ok)
	if ok {
		outcome.Entity = entity
		logger.Debug("extracted entity", "entity", entity)

		steps := []struct {
			step Step
			run  func() (*search.ResultSet, error)
		}{
			{StepCategory, func() (*search.ResultSet, error) {
				return s.store.PagesForCategory(entity), nil
			}},
			{StepConsecutiveWords, func() (*search.ResultSet, error) {
				return s.store.FindConsecutiveWords(entity, 1, true)
			}},
			{StepSimpleSubstring, func() (*search.ResultSet, error) {
				return s.store.SimpleSearch(entity), nil
			}},
			{StepFuzzyWords, func() (*search.ResultSet, error) {
				return s.store.FuzzySearch(entity, false), nil
			}},
		}
		for _, step := range steps {
			if s.performSearch(logger, step.step, entity, combined, outcome, step.run) {
				outcome.Found = true
			}
		}
	} else {
		logger.Debug("no entity extracted from url, skipping entity searches", "url", params.URL)
	}

	outcome.Results = combined.Unique()
	s.monitor.Finish(outcome.Results)

	if outcome.Results.Empty() {
		logger.Debug("no relevant pages found")
		return outcome
	}

	logger.Info("pages found", "url", params.URL, "unique", outcome.Results.Len(), "total", combined.Len())
	if notify != nil {
		notify(outcome.Results)
	}
	return outcome
}

// performSearch runs one step and merges its hits into combined.
// Returns true if the step found anything.
func (s *Scanner) performSearch(
	logger *slog.Logger,
	step Step,
	query string,
	combined *search.ResultSet,
	outcome *Outcome,
	run func() (*search.ResultSet, error),
) bool {
	results, err := run()
	if err != nil {
		s.monitor.AfterStep(step, query, nil, err)
		if errors.Is(err, search.ErrUnimplemented) {
			logger.Warn("skipped unimplemented search feature", "step", step, "query", query, "err", err)
			return false
		}
		logger.Error("error during search", "step", step, "query", query, "err", err)
		outcome.Errors = append(outcome.Errors, err)
		return false
	}

	s.monitor.AfterStep(step, query, results.IDs(), nil)
	if results.Empty() {
		logger.Debug("no pages found", "step", step, "query", query)
		return false
	}

	logger.Debug("pages found", "step", step, "query", query, "count", results.Len())
	combined.Merge(results)
	return true
}
