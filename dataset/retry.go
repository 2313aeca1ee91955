package dataset

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// maxRetryDelay caps the wait between download attempts.
const maxRetryDelay = time.Minute

// retryPolicy controls download attempts. The wait starts at baseDelay and
// doubles after each failure, up to maxDelay.
type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
}

// permanentError marks a failure that another attempt cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

// delay returns the wait after the given failed attempt (1-based).
func (p retryPolicy) delay(attempt int) time.Duration {
	d := p.baseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.maxDelay > 0 && d >= p.maxDelay {
			return p.maxDelay
		}
	}
	return d
}

// run calls op until it succeeds, fails permanently, runs out of attempts or
// ctx is done. The last error from op is returned with any permanent marker removed.
func (p retryPolicy) run(ctx context.Context, logger *slog.Logger, op func(attempt int) error) error {
	if p.attempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(attempt)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
		if attempt == p.attempts {
			break
		}

		wait := p.delay(attempt)
		logger.Debug("retrying after failure", "attempt", attempt, "max_attempts", p.attempts, "wait", wait, "err", lastErr)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}
