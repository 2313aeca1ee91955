package scanner

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/catscan/search"
)

// Dispatcher selects the strategy for a page and runs the scan.
// At most one registered strategy runs per page; the default runs when none
// applies or the chosen one finds nothing.
type Dispatcher struct {
	scanner    *Scanner
	strategies []Strategy
	fallback   Strategy
	logger     *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher) error

// WithStrategies replaces the registered strategies. Order is significant.
func WithStrategies(strategies ...Strategy) DispatcherOption {
	return func(d *Dispatcher) error {
		d.strategies = strategies
		return nil
	}
}

// WithDefault replaces the fallback strategy.
func WithDefault(strategy Strategy) DispatcherOption {
	return func(d *Dispatcher) error {
		if strategy == nil {
			strategy = DefaultStrategy{}
		}
		d.fallback = strategy
		return nil
	}
}

// WithDispatcherLogger sets a custom logger.
// Default is slog.Default().
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// NewDispatcher creates a dispatcher using the strategies from Registry.
func NewDispatcher(scanner *Scanner, opts ...DispatcherOption) (*Dispatcher, error) {
	if scanner == nil {
		return nil, ErrScannerRequired
	}

	d := &Dispatcher{
		scanner:  scanner,
		fallback: DefaultStrategy{},
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.strategies == nil {
		d.strategies = Registry(d.logger)
	}

	return d, nil
}

// Strategies returns the names of the registered strategies in dispatch order.
func (d *Dispatcher) Strategies() []string {
	names := make([]string, len(d.strategies))
	for i, strategy := range d.strategies {
		names[i] = strategy.Name()
	}
	return names
}

// Dispatch scans the page described by params. Strategy failures are logged
// and treated as finding nothing; Dispatch itself never fails.
func (d *Dispatcher) Dispatch(params Params, notify NotifyFunc) *Outcome {
	for _, strategy := range d.strategies {
		applies, err := d.appliesTo(strategy, params)
		if err != nil {
			d.logger.Error("error executing strategy", "strategy", safeName(strategy), "err", err)
			continue
		}
		if !applies {
			continue
		}

		// TODO: allow several strategies per page once results can be ranked across them.
		d.logger.Debug("strategy can handle request", "strategy", strategy.Name(), "domain", params.Domain)
		outcome, err := d.scan(strategy, params, notify)
		if err != nil {
			d.logger.Error("error executing strategy", "strategy", safeName(strategy), "err", err)
			break
		}
		if outcome.Found {
			return outcome
		}
		d.logger.Debug("strategy scanned but found no pages", "strategy", strategy.Name())
		break
	}

	d.logger.Debug("using default strategy", "domain", params.Domain)
	outcome, err := d.scan(d.fallback, params, notify)
	if err != nil {
		d.logger.Error("error executing default strategy", "err", err)
		return &Outcome{
			Strategy: safeName(d.fallback),
			Results:  search.NewResultSet(),
			Errors:   []error{err},
		}
	}
	return outcome
}

// appliesTo calls strategy.AppliesTo, converting a panic into an error.
func (d *Dispatcher) appliesTo(strategy Strategy, params Params) (applies bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrStrategyPanic, r)
		}
	}()
	return strategy.AppliesTo(params), nil
}

// scan runs the pipeline for strategy, converting a panic into an error.
func (d *Dispatcher) scan(strategy Strategy, params Params, notify NotifyFunc) (outcome *Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = nil
			err = fmt.Errorf("%w: %v", ErrStrategyPanic, r)
		}
	}()
	return d.scanner.Scan(strategy, params, notify), nil
}

// safeName returns the strategy name, or "unknown" if Name panics.
func safeName(strategy Strategy) (name string) {
	defer func() {
		if recover() != nil {
			name = "unknown"
		}
	}()
	return strategy.Name()
}
