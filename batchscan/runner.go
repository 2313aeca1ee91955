// Package batchscan checks many page URLs concurrently.
package batchscan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/catscan/search"
)

// ErrCheckFuncRequired is returned when no check function is provided.
var ErrCheckFuncRequired = errors.New("check function required")

// CheckFunc checks one page URL and returns the entries to surface for it.
type CheckFunc func(ctx context.Context, rawURL string) (*search.ResultSet, error)

// Result is the outcome for one URL.
type Result struct {
	URL   string
	Pages *search.ResultSet
	Err   error
}

// Found reports whether the page matched at least one entry.
func (r Result) Found() bool {
	return r.Err == nil && !r.Pages.Empty()
}

// Batch collects the results of a Run in input order.
type Batch struct {
	ID      string
	Results []Result
	Elapsed time.Duration
}

// Found counts pages that matched at least one entry.
func (b *Batch) Found() int {
	n := 0
	for _, r := range b.Results {
		if r.Found() {
			n++
		}
	}
	return n
}

// Failed counts pages whose check returned an error.
func (b *Batch) Failed() int {
	n := 0
	for _, r := range b.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Runner fans page checks out over a worker pool.
type Runner struct {
	check          CheckFunc
	pool           *ants.Pool
	progress       io.Writer
	reportInterval int
	logger         *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner) error

// WithPoolSize sets the worker pool size.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(r *Runner) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if r.pool != nil {
			r.pool.Release()
		}
		r.pool = pool
		return nil
	}
}

// WithProgress writes progress to w every reportInterval pages.
func WithProgress(w io.Writer, reportInterval int) Option {
	return func(r *Runner) error {
		r.progress = w
		r.reportInterval = reportInterval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRunner creates a runner. Call Release when done.
func NewRunner(check CheckFunc, opts ...Option) (*Runner, error) {
	if check == nil {
		return nil, ErrCheckFuncRequired
	}

	pool, err := ants.NewPool(max(runtime.NumCPU(), 1))
	if err != nil {
		return nil, err
	}

	r := &Runner{
		check:          check,
		pool:           pool,
		reportInterval: 10,
		logger:         slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(r); optErr != nil {
			r.Release()
			return nil, optErr
		}
	}

	return r, nil
}

// Release stops the worker pool.
func (r *Runner) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// Run checks every URL and waits for all checks to finish. Per-URL failures
// are recorded in the results; Run only fails if ctx is cancelled before all
// checks were submitted. Results already collected are returned either way.
func (r *Runner) Run(ctx context.Context, urls []string) (*Batch, error) {
	batch := &Batch{
		ID:      uuid.NewString(),
		Results: make([]Result, len(urls)),
	}
	logger := r.logger.With("batch", batch.ID)
	logger.Info("starting batch scan", "urls", len(urls))

	var progress *Progress
	if r.progress != nil {
		progress = NewProgress(r.progress, len(urls), r.reportInterval)
	}

	start := time.Now()
	var wg sync.WaitGroup
	var runErr error
	for i, rawURL := range urls {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			result := r.checkOne(ctx, rawURL)
			batch.Results[i] = result
			if result.Err != nil {
				logger.Warn("page check failed", "url", rawURL, "err", result.Err)
			}
			if progress != nil {
				progress.Add(result)
			}
		})
		if submitErr != nil {
			wg.Done()
			batch.Results[i] = Result{URL: rawURL, Err: submitErr}
			logger.Error("failed to submit page check", "url", rawURL, "err", submitErr)
		}
	}
	wg.Wait()

	// Pages never submitted because of cancellation.
	if runErr != nil {
		for i, result := range batch.Results {
			if result.URL == "" {
				batch.Results[i] = Result{URL: urls[i], Err: runErr}
			}
		}
	}

	if progress != nil {
		progress.Done()
	}
	batch.Elapsed = time.Since(start)
	logger.Info("batch scan complete", "urls", len(urls), "found", batch.Found(), "failed", batch.Failed(), "elapsed", batch.Elapsed)
	return batch, runErr
}

// checkOne runs the check, converting a panic into an error result.
func (r *Runner) checkOne(ctx context.Context, rawURL string) (result Result) {
	result.URL = rawURL
	defer func() {
		if p := recover(); p != nil {
			result.Pages = nil
			result.Err = errors.New("page check panicked")
			r.logger.Error("page check panicked", "url", rawURL, "panic", p)
		}
	}()
	result.Pages, result.Err = r.check(ctx, rawURL)
	return result
}
