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

// Package catscan matches the page a user is visiting against the Consumer
// Action Taskforce wiki and decides which matching entries to surface.
//
// An Engine owns every component: the persistent storage backend, the
// in-memory entry store, the strategy dispatcher, the suppression filter and
// the dataset refresher.
//
//	engine, err := catscan.NewEngine(catscan.NewConfig(catscan.WithDBPath(dir)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	report, err := engine.CheckPage(ctx, "https://www.amazon.com/stores/Apple/page/1", func(pages *search.ResultSet) {
//	    for entry := range pages.All() {
//	        fmt.Println(entry.Title(), entry.URL())
//	    }
//	})
package catscan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/catscan/core"
	"github.com/poiesic/catscan/dataset"
	"github.com/poiesic/catscan/scanner"
	"github.com/poiesic/catscan/search"
	"github.com/poiesic/catscan/storage"
	"github.com/poiesic/catscan/storage/badger"
	"github.com/poiesic/catscan/suppress"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// ErrUnknownPage is returned when muting or hiding a page that is not in the dataset.
var ErrUnknownPage = errors.New("unknown page")

// SkipReason explains why a page was not scanned.
type SkipReason string

const (
	SkipNone     SkipReason = ""
	SkipDisabled SkipReason = "disabled"
	SkipExcluded SkipReason = "excluded"
)

// Report describes the result of checking one page.
type Report struct {
	URL     string
	Params  scanner.Params
	Skipped SkipReason
	// Strategy and Entity come from the scan; empty when skipped.
	Strategy string
	Entity   string
	// Matched counts unique entries found before suppression.
	Matched int
	// Suppressed counts matched entries dropped by mute or hide.
	Suppressed int
	// Pages holds the entries to surface. Never nil.
	Pages *search.ResultSet
	// Errors collects non-fatal step failures from the scan.
	Errors []error
}

// Engine wires storage, search, scanning and suppression together.
type Engine struct {
	cfg          *Config
	backend      *badger.Backend
	suppressions storage.SuppressionRepository
	datasets     storage.DatasetRepository
	store        *search.Store
	dispatcher   *scanner.Dispatcher
	filter       *suppress.Filter
	refresher    *dataset.Refresher
	exclusions   map[string]struct{}
	metrics      *engineMetrics
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	logger        *slog.Logger
	monitor       scanner.ScanMonitor
	strategies    []scanner.Strategy
	clock         func() time.Time
	httpClient    *http.Client
	meterProvider metric.MeterProvider
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithScanMonitor installs a monitor that observes every scan.
func WithScanMonitor(monitor scanner.ScanMonitor) EngineOption {
	return func(o *engineOptions) {
		o.monitor = monitor
	}
}

// WithStrategies replaces the registered scanner strategies.
func WithStrategies(strategies ...scanner.Strategy) EngineOption {
	return func(o *engineOptions) {
		o.strategies = strategies
	}
}

// WithClock replaces time.Now for mute and hide decisions.
func WithClock(now func() time.Time) EngineOption {
	return func(o *engineOptions) {
		o.clock = now
	}
}

// WithHTTPClient sets the client used to download the dataset.
func WithHTTPClient(client *http.Client) EngineOption {
	return func(o *engineOptions) {
		o.httpClient = client
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider.
// Default is the global provider.
func WithMeterProvider(provider metric.MeterProvider) EngineOption {
	return func(o *engineOptions) {
		o.meterProvider = provider
	}
}

// NewEngine opens storage, loads the cached or bundled dataset and builds
// the scanning pipeline. An empty cfg.DBPath keeps all state in memory.
func NewEngine(cfg *Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Apply options
	options := &engineOptions{
		logger:        slog.Default(),
		clock:         time.Now,
		meterProvider: otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	// Open backend
	backend, err := badger.OpenBackend(cfg.DBPath, cfg.DBPath == "", badger.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:          cfg,
		backend:      backend,
		suppressions: badger.NewSuppressionRepository(backend),
		datasets:     badger.NewDatasetRepository(backend),
		logger:       logger,
	}

	if err := e.build(options); err != nil {
		backend.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) build(options *engineOptions) error {
	var err error

	e.metrics, err = newEngineMetrics(options.meterProvider)
	if err != nil {
		return err
	}

	e.store, err = search.NewStore(search.WithLogger(e.logger))
	if err != nil {
		return err
	}

	fetcherOpts := []dataset.FetcherOption{
		dataset.WithURL(e.cfg.DatasetURL),
		dataset.WithRetry(e.cfg.FetchAttempts, e.cfg.FetchRetryDelay),
		dataset.WithFetcherLogger(e.logger),
	}
	if options.httpClient != nil {
		fetcherOpts = append(fetcherOpts, dataset.WithHTTPClient(options.httpClient))
	}
	fetcher, err := dataset.NewFetcher(fetcherOpts...)
	if err != nil {
		return err
	}

	e.refresher, err = dataset.NewRefresher(e.store, e.datasets, fetcher, dataset.WithRefresherLogger(e.logger))
	if err != nil {
		return err
	}
	if _, err := e.refresher.Bootstrap(context.Background()); err != nil {
		return err
	}

	scan, err := scanner.NewScanner(e.store, scanner.WithLogger(e.logger), scanner.WithMonitor(options.monitor))
	if err != nil {
		return err
	}
	dispatcherOpts := []scanner.DispatcherOption{scanner.WithDispatcherLogger(e.logger)}
	if options.strategies != nil {
		dispatcherOpts = append(dispatcherOpts, scanner.WithStrategies(options.strategies...))
	}
	e.dispatcher, err = scanner.NewDispatcher(scan, dispatcherOpts...)
	if err != nil {
		return err
	}

	e.filter, err = suppress.NewFilter(e.suppressions, suppress.WithLogger(e.logger), suppress.WithClock(options.clock))
	if err != nil {
		return err
	}

	e.exclusions = make(map[string]struct{}, len(e.cfg.DomainExclusions))
	for _, domain := range e.cfg.DomainExclusions {
		params, err := scanner.ParamsFromURL("https://" + domain)
		if err != nil {
			e.logger.Warn("ignoring invalid domain exclusion", "domain", domain, "err", err)
			continue
		}
		e.exclusions[params.Domain] = struct{}{}
	}

	return nil
}

// Close stops scheduled refreshes and closes storage.
func (e *Engine) Close() error {
	e.refresher.Stop()

	if err := e.suppressions.Close(); err != nil {
		e.logger.Error("error closing suppression repository", "err", err)
	}
	if err := e.datasets.Close(); err != nil {
		e.logger.Error("error closing dataset repository", "err", err)
	}

	// Close backend
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Config returns the validated configuration.
func (e *Engine) Config() *Config {
	return e.cfg
}

// Store returns the entry store.
func (e *Engine) Store() *search.Store {
	return e.store
}

// Strategies returns the registered strategy names in dispatch order.
func (e *Engine) Strategies() []string {
	return e.dispatcher.Strategies()
}

// CheckPage scans the page at rawURL and returns the entries to surface.
// notify is called with those entries only when at least one survives
// suppression. Scan failures are reported in the Report and never returned
// as errors; only an unusable URL or a storage failure is.
func (e *Engine) CheckPage(ctx context.Context, rawURL string, notify scanner.NotifyFunc) (*Report, error) {
	report := &Report{URL: rawURL, Pages: search.NewResultSet()}

	if !e.cfg.Enabled {
		report.Skipped = SkipDisabled
		e.metrics.recordCheck(ctx, report)
		return report, nil
	}

	params, err := scanner.ParamsFromURL(rawURL)
	if err != nil {
		return nil, err
	}
	report.Params = params

	if _, excluded := e.exclusions[params.Domain]; excluded {
		e.logger.Debug("domain excluded, skipping", "domain", params.Domain)
		report.Skipped = SkipExcluded
		e.metrics.recordCheck(ctx, report)
		return report, nil
	}

	outcome := e.dispatcher.Dispatch(params, nil)
	report.Strategy = outcome.Strategy
	report.Entity = outcome.Entity
	report.Errors = outcome.Errors
	report.Matched = outcome.Results.Len()

	surfaced, err := e.filter.Apply(ctx, outcome.Results, e.cfg.MuteWindow)
	if err != nil {
		return report, fmt.Errorf("applying suppressions: %w", err)
	}
	report.Pages = surfaced
	report.Suppressed = report.Matched - surfaced.Len()
	e.metrics.recordCheck(ctx, report)

	if !surfaced.Empty() && notify != nil {
		notify(surfaced)
	}
	return report, nil
}

// Lookup checks rawURL and returns only the entries to surface.
func (e *Engine) Lookup(ctx context.Context, rawURL string) (*search.ResultSet, error) {
	report, err := e.CheckPage(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return report.Pages, nil
}

// Mute silences a page for the configured mute window.
func (e *Engine) Mute(ctx context.Context, pageID core.ID) error {
	if err := e.requirePage(pageID); err != nil {
		return err
	}
	return e.filter.Mute(ctx, pageID)
}

// Hide suppresses a page permanently.
func (e *Engine) Hide(ctx context.Context, pageID core.ID) error {
	if err := e.requirePage(pageID); err != nil {
		return err
	}
	return e.filter.Hide(ctx, pageID)
}

// Reset makes a muted or hidden page active again. Pages missing from the
// dataset are accepted so stale records can be cleared.
func (e *Engine) Reset(ctx context.Context, pageID core.ID) error {
	return e.filter.Reset(ctx, pageID)
}

// State reports whether a page is active, muted or hidden.
func (e *Engine) State(ctx context.Context, pageID core.ID) (suppress.State, error) {
	return e.filter.State(ctx, pageID, e.cfg.MuteWindow)
}

// Suppressions lists every stored mute and hide record.
func (e *Engine) Suppressions(ctx context.Context) ([]*core.Suppression, error) {
	return e.suppressions.ListSuppressions(ctx)
}

// Refresh fetches the remote dataset now.
func (e *Engine) Refresh(ctx context.Context) (*dataset.Result, error) {
	result, err := e.refresher.Refresh(ctx)
	switch {
	case err != nil:
		e.metrics.recordRefresh(ctx, "error")
	case result.Changed:
		e.metrics.recordRefresh(ctx, "changed")
	default:
		e.metrics.recordRefresh(ctx, "unchanged")
	}
	return result, err
}

// LoadDataset replaces the dataset with a local export and caches it.
func (e *Engine) LoadDataset(ctx context.Context, payload []byte, source string) (*dataset.Result, error) {
	return e.refresher.LoadPayload(ctx, payload, source)
}

// StartRefresh schedules periodic refreshes on the configured cron spec.
func (e *Engine) StartRefresh() error {
	return e.refresher.Start(e.cfg.RefreshSchedule)
}

// DatasetInfo describes the dataset currently cached in storage.
// Returns storage.ErrNotFound while only the bundled dataset has been loaded.
func (e *Engine) DatasetInfo(ctx context.Context) (*core.DatasetSnapshot, error) {
	return e.datasets.DatasetInfo(ctx)
}

// DatasetChecksum returns the checksum of the dataset loaded in memory.
func (e *Engine) DatasetChecksum() string {
	return e.refresher.Checksum()
}

// requirePage rejects IDs not present in the loaded dataset.
func (e *Engine) requirePage(pageID core.ID) error {
	if _, ok := e.store.Get(pageID); !ok {
		return fmt.Errorf("%w: page %d", ErrUnknownPage, pageID)
	}
	return nil
}
