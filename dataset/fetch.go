package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultURL is the upstream location of the wiki export.
const DefaultURL = "https://raw.githubusercontent.com/WayneKeenan/ClintonCAT/refs/heads/main/data/pages_db.json"

const (
	defaultFetchAttempts   = 3
	defaultFetchRetryDelay = 2 * time.Second
	defaultFetchTimeout    = 30 * time.Second
	// maxPayloadSize caps the response body read from the remote.
	maxPayloadSize = 64 << 20
)

// Fetcher downloads the export over HTTP with retries.
type Fetcher struct {
	client *http.Client
	url    string
	retry  retryPolicy
	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher) error

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) error {
		if client == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		f.client = client
		return nil
	}
}

// WithURL sets the export location. Default is DefaultURL.
func WithURL(url string) FetcherOption {
	return func(f *Fetcher) error {
		if url == "" {
			return fmt.Errorf("dataset url cannot be empty")
		}
		f.url = url
		return nil
	}
}

// WithRetry sets the attempt count and base delay between attempts.
func WithRetry(attempts int, baseDelay time.Duration) FetcherOption {
	return func(f *Fetcher) error {
		if attempts < 1 {
			return ErrInvalidMaxAttempts
		}
		f.retry = retryPolicy{attempts: attempts, baseDelay: baseDelay, maxDelay: maxRetryDelay}
		return nil
	}
}

// WithFetcherLogger sets a custom logger.
// Default is slog.Default().
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFetcher creates a fetcher for the upstream export.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	f := &Fetcher{
		client: &http.Client{Timeout: defaultFetchTimeout},
		url:    DefaultURL,
		retry: retryPolicy{
			attempts:  defaultFetchAttempts,
			baseDelay: defaultFetchRetryDelay,
			maxDelay:  maxRetryDelay,
		},
		logger: slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// URL returns the export location.
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch downloads the raw export. Transport errors, 5xx, 408 and 429
// responses are retried with exponential backoff; other client errors are not.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := f.retry.run(ctx, f.logger, func(attempt int) error {
		var err error
		payload, err = f.fetchOnce(ctx)
		if err != nil {
			f.logger.Warn("dataset fetch attempt failed", "url", f.url, "attempt", attempt, "err", err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	f.logger.Debug("fetched dataset", "url", f.url, "bytes", len(payload))
	return payload, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("unexpected status %s", resp.Status)
		if !retryableStatus(resp.StatusCode) {
			return nil, permanent(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxPayloadSize {
		return nil, fmt.Errorf("payload exceeds %d bytes", maxPayloadSize)
	}
	return body, nil
}

func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusRequestTimeout || code == http.StatusTooManyRequests
}
