package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFetcher(t *testing.T) {
	f, err := NewFetcher()
	require.NoError(t, err)
	assert.Equal(t, DefaultURL, f.URL())

	_, err = NewFetcher(WithURL(""))
	assert.Error(t, err)
	_, err = NewFetcher(WithRetry(0, time.Second))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	_, err = NewFetcher(WithHTTPClient(nil))
	assert.Error(t, err)
}

func TestFetcher_Fetch(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			w.Write([]byte(sampleExport))
		}))
		defer srv.Close()

		f, err := NewFetcher(WithURL(srv.URL), WithHTTPClient(srv.Client()))
		require.NoError(t, err)

		payload, err := f.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sampleExport, string(payload))
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(sampleExport))
		}))
		defer srv.Close()

		f, err := NewFetcher(WithURL(srv.URL), WithRetry(3, time.Millisecond))
		require.NoError(t, err)

		_, err = f.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "down", http.StatusBadGateway)
		}))
		defer srv.Close()

		f, err := NewFetcher(WithURL(srv.URL), WithRetry(2, time.Millisecond))
		require.NoError(t, err)

		_, err = f.Fetch(context.Background())
		assert.ErrorIs(t, err, ErrFetchFailed)
		assert.Contains(t, err.Error(), "502")
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.NotFound(w, r)
		}))
		defer srv.Close()

		f, err := NewFetcher(WithURL(srv.URL), WithRetry(3, time.Millisecond))
		require.NoError(t, err)

		_, err = f.Fetch(context.Background())
		assert.ErrorIs(t, err, ErrFetchFailed)
		assert.Contains(t, err.Error(), "404")
		assert.Equal(t, int32(1), calls.Load())
	})
}
