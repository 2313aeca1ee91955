package dataset

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_Run(t *testing.T) {
	policy := retryPolicy{attempts: 3, baseDelay: time.Millisecond}
	logger := slog.Default()

	t.Run("first attempt succeeds", func(t *testing.T) {
		var seen []int
		err := policy.run(context.Background(), logger, func(attempt int) error {
			seen = append(seen, attempt)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1}, seen)
	})

	t.Run("eventual success", func(t *testing.T) {
		var seen []int
		err := policy.run(context.Background(), logger, func(attempt int) error {
			seen = append(seen, attempt)
			if attempt < 3 {
				return errors.New("temporary error")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, seen)
	})

	t.Run("returns last error", func(t *testing.T) {
		expected := errors.New("persistent error")
		calls := 0
		err := policy.run(context.Background(), logger, func(int) error {
			calls++
			return expected
		})
		assert.Equal(t, expected, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent errors stop immediately", func(t *testing.T) {
		expected := errors.New("not found")
		calls := 0
		err := policy.run(context.Background(), logger, func(int) error {
			calls++
			return permanent(expected)
		})
		assert.Equal(t, expected, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := retryPolicy{attempts: 10, baseDelay: 10 * time.Millisecond}.run(ctx, logger, func(attempt int) error {
			calls++
			if attempt == 2 {
				cancel()
			}
			return errors.New("error")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.LessOrEqual(t, calls, 2)
	})

	t.Run("invalid attempts", func(t *testing.T) {
		err := retryPolicy{}.run(context.Background(), logger, func(int) error { return nil })
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})
}

func TestRetryPolicy_Delay(t *testing.T) {
	policy := retryPolicy{baseDelay: time.Second, maxDelay: 5 * time.Second}
	assert.Equal(t, time.Second, policy.delay(1))
	assert.Equal(t, 2*time.Second, policy.delay(2))
	assert.Equal(t, 4*time.Second, policy.delay(3))
	assert.Equal(t, 5*time.Second, policy.delay(4))
	assert.Equal(t, 5*time.Second, policy.delay(10))
}
