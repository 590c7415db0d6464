package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/isolate"
	isolatehttp "github.com/fwojciec/isolate/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time verification that Fetcher implements isolate.Fetcher
var _ isolate.Fetcher = (*isolatehttp.Fetcher)(nil)

// noRetry keeps failing tests fast.
var noRetry = isolatehttp.WithRetryDelays(nil)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns HTML body from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>Hello World</body></html>"))
		}))
		defer server.Close()

		fetcher := isolatehttp.NewFetcher()
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>Hello World</body></html>", html)
	})

	t.Run("sends the user agent", func(t *testing.T) {
		t.Parallel()

		var got atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got.Store(r.UserAgent())
		}))
		defer server.Close()

		fetcher := isolatehttp.NewFetcher(isolatehttp.WithUserAgent("test-agent"))

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "test-agent", got.Load())
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := isolatehttp.NewFetcher(isolatehttp.WithTimeout(10*time.Millisecond), noRetry)

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := isolatehttp.NewFetcher()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.Fetch(ctx, server.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("returns error for non-existent host", func(t *testing.T) {
		t.Parallel()

		fetcher := isolatehttp.NewFetcher(isolatehttp.WithTimeout(100*time.Millisecond), noRetry)

		_, err := fetcher.Fetch(context.Background(), "http://non-existent-host.invalid/page")
		require.Error(t, err)
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("404 Not Found"))
		}))
		defer server.Close()

		fetcher := isolatehttp.NewFetcher(isolatehttp.WithRetryDelays([]time.Duration{0, 0}))

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
		assert.Equal(t, int64(1), hits.Load())
	})

	t.Run("retries server errors until success", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		fetcher := isolatehttp.NewFetcher(
			isolatehttp.WithRetryDelays([]time.Duration{0, 0, 0}),
			isolatehttp.WithRateLimit(0),
		)

		body, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "ok", body)
		assert.Equal(t, int64(3), hits.Load())
	})

	t.Run("gives up after the last retry", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		fetcher := isolatehttp.NewFetcher(
			isolatehttp.WithRetryDelays([]time.Duration{0}),
			isolatehttp.WithRateLimit(0),
		)

		_, err := fetcher.Fetch(context.Background(), server.URL)

		var se *isolatehttp.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusServiceUnavailable, se.Code)
		assert.Equal(t, int64(2), hits.Load())
	})

	t.Run("rejects non-http URLs", func(t *testing.T) {
		t.Parallel()

		_, err := isolatehttp.NewFetcher().Fetch(context.Background(), "file:///etc/passwd")

		assert.Equal(t, isolate.EINVALID, isolate.ErrorCode(err))
	})
}

func TestHostLimiter_Wait(t *testing.T) {
	t.Parallel()

	t.Run("spaces requests to the same host", func(t *testing.T) {
		t.Parallel()

		limiter := isolatehttp.NewHostLimiter(20)
		start := time.Now()
		for i := 0; i < 3; i++ {
			require.NoError(t, limiter.Wait(context.Background(), "example.com"))
		}

		assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	})

	t.Run("does not delay other hosts", func(t *testing.T) {
		t.Parallel()

		limiter := isolatehttp.NewHostLimiter(1)
		require.NoError(t, limiter.Wait(context.Background(), "a.example.com"))

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "b.example.com"))

		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})

	t.Run("returns when the context is cancelled", func(t *testing.T) {
		t.Parallel()

		limiter := isolatehttp.NewHostLimiter(0.1)
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx, "example.com"))
	})
}
