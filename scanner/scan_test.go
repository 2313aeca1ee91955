package scanner

import (
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/catscan/core"
	"github.com/poiesic/catscan/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(id core.ID, name string) core.Page {
	return core.Page{Id: id, Name: name}
}

func amazonCorpus() *core.PageSet {
	return &core.PageSet{
		Companies: []*core.CompanyPage{
			{Page: page(1, "Amazon"), Industries: []string{"Retail"}},
			{Page: page(7, "Apple"), Industries: []string{"Consumer Electronics"}},
		},
		Incidents: []*core.IncidentPage{
			{Page: page(2, "Amazon Ring privacy issues")},
			{Page: page(8, "Apple Batterygate")},
		},
		Products: []*core.ProductPage{
			{Page: page(3, "Apple iPhone"), Categories: []string{"Phones"}},
		},
	}
}

func newTestScanner(t *testing.T, pages *core.PageSet, opts ...Option) *Scanner {
	t.Helper()
	store, err := search.NewStore(search.WithPages(pages))
	require.NoError(t, err)
	scanner, err := NewScanner(store, opts...)
	require.NoError(t, err)
	return scanner
}

// recordingMonitor captures every hook call for assertions.
type recordingMonitor struct {
	started  []string
	steps    []Step
	stepErrs []error
	entity   string
	finished *search.ResultSet
}

func (m *recordingMonitor) Start(strategy string, _ Params) { m.started = append(m.started, strategy) }
func (m *recordingMonitor) AfterStep(step Step, _ string, _ []core.ID, err error) {
	m.steps = append(m.steps, step)
	m.stepErrs = append(m.stepErrs, err)
}
func (m *recordingMonitor) EntityExtracted(entity string, _ bool) { m.entity = entity }
func (m *recordingMonitor) Finish(results *search.ResultSet)      { m.finished = results }

// stubStrategy is a configurable Strategy for pipeline tests.
type stubStrategy struct {
	name      string
	applies   bool
	domainKey string
	entity    string
	panicOn   string
}

func (s *stubStrategy) Name() string {
	if s.panicOn == "name" {
		panic("name")
	}
	return s.name
}

func (s *stubStrategy) AppliesTo(Params) bool {
	if s.panicOn == "applies" {
		panic("applies")
	}
	return s.applies
}

func (s *stubStrategy) DomainKey(Params) string {
	if s.panicOn == "domainkey" {
		panic("domainkey")
	}
	return s.domainKey
}

func (s *stubStrategy) ExtractEntity(string) (string, bool) {
	return s.entity, s.entity != ""
}

// failingIndex wraps a store and fails the consecutive words step.
type failingIndex struct {
	*search.Store
	err error
}

func (f *failingIndex) FindConsecutiveWords(string, int, bool) (*search.ResultSet, error) {
	return nil, f.err
}

func TestNewScanner(t *testing.T) {
	_, err := NewScanner(nil)
	assert.ErrorIs(t, err, ErrStoreRequired)

	store, err := search.NewStore()
	require.NoError(t, err)
	scanner, err := NewScanner(store, WithLogger(nil), WithMonitor(nil))
	require.NoError(t, err)
	assert.NotNil(t, scanner.logger)
	assert.NotNil(t, scanner.monitor)
}

func TestScanner_Scan(t *testing.T) {
	t.Run("domain key only", func(t *testing.T) {
		scanner := newTestScanner(t, amazonCorpus())
		var notified *search.ResultSet
		outcome := scanner.Scan(DefaultStrategy{}, Params{Domain: "amazon.com", MainDomain: "amazon"}, func(r *search.ResultSet) {
			notified = r
		})

		assert.True(t, outcome.Found)
		assert.Equal(t, "default", outcome.Strategy)
		assert.Empty(t, outcome.Entity)
		assert.Equal(t, []core.ID{1, 2}, outcome.Results.IDs())
		require.NotNil(t, notified)
		assert.Equal(t, []core.ID{1, 2}, notified.IDs())
	})

	t.Run("entity steps merged in order and deduplicated", func(t *testing.T) {
		monitor := &recordingMonitor{}
		scanner := newTestScanner(t, amazonCorpus(), WithMonitor(monitor))
		strategy := &stubStrategy{name: "stub", domainKey: "amazon", entity: "Apple"}

		calls := 0
		outcome := scanner.Scan(strategy, Params{URL: "https://www.amazon.com/stores/Apple/page/1"}, func(*search.ResultSet) {
			calls++
		})

		assert.True(t, outcome.Found)
		assert.Equal(t, "Apple", outcome.Entity)
		// domain: 1, 2; consecutive: 7; simple: 7, 8, 3; fuzzy: 7, 8, 3
		assert.Equal(t, []core.ID{1, 2, 7, 8, 3}, outcome.Results.IDs())
		assert.Equal(t, 1, calls)
		assert.Empty(t, outcome.Errors)

		assert.Equal(t, []string{"stub"}, monitor.started)
		assert.Equal(t, []Step{
			StepDomainKey,
			StepCategory,
			StepConsecutiveWords,
			StepSimpleSubstring,
			StepFuzzyWords,
		}, monitor.steps)
		assert.Equal(t, "Apple", monitor.entity)
		assert.Equal(t, outcome.Results, monitor.finished)
	})

	t.Run("category step", func(t *testing.T) {
		scanner := newTestScanner(t, amazonCorpus())
		strategy := &stubStrategy{name: "stub", domainKey: "nowhere", entity: "consumer electronics"}
		outcome := scanner.Scan(strategy, Params{}, nil)
		assert.Equal(t, []core.ID{7}, outcome.Results.IDs())
	})

	t.Run("nothing found does not notify", func(t *testing.T) {
		scanner := newTestScanner(t, amazonCorpus())
		strategy := &stubStrategy{name: "stub", domainKey: "walmart", entity: "Samsung"}
		called := false
		outcome := scanner.Scan(strategy, Params{}, func(*search.ResultSet) { called = true })

		assert.False(t, outcome.Found)
		assert.True(t, outcome.Results.Empty())
		assert.False(t, called)
	})

	t.Run("nil notify is allowed", func(t *testing.T) {
		scanner := newTestScanner(t, amazonCorpus())
		outcome := scanner.Scan(DefaultStrategy{}, Params{MainDomain: "amazon"}, nil)
		assert.True(t, outcome.Found)
	})

	t.Run("unimplemented search skipped silently", func(t *testing.T) {
		store, err := search.NewStore(search.WithPages(amazonCorpus()))
		require.NoError(t, err)
		monitor := &recordingMonitor{}
		scanner, err := NewScanner(&failingIndex{
			Store: store,
			err:   fmt.Errorf("%w: maxResults=2", search.ErrUnimplemented),
		}, WithMonitor(monitor))
		require.NoError(t, err)

		outcome := scanner.Scan(&stubStrategy{name: "stub", domainKey: "x", entity: "Apple"}, Params{}, nil)
		assert.Empty(t, outcome.Errors)
		assert.Equal(t, []core.ID{7, 8, 3}, outcome.Results.IDs())
		assert.ErrorIs(t, monitor.stepErrs[2], search.ErrUnimplemented)
	})

	t.Run("other errors recorded and pipeline continues", func(t *testing.T) {
		store, err := search.NewStore(search.WithPages(amazonCorpus()))
		require.NoError(t, err)
		boom := errors.New("boom")
		scanner, err := NewScanner(&failingIndex{Store: store, err: boom})
		require.NoError(t, err)

		outcome := scanner.Scan(&stubStrategy{name: "stub", domainKey: "x", entity: "Apple"}, Params{}, nil)
		require.Len(t, outcome.Errors, 1)
		assert.ErrorIs(t, outcome.Errors[0], boom)
		assert.Equal(t, []core.ID{7, 8, 3}, outcome.Results.IDs())
	})
}
