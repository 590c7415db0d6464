//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/isolate"
	"github.com/fwojciec/isolate/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Fetcher implements isolate.Fetcher.
var _ isolate.Fetcher = (*rod.Fetcher)(nil)

func launch(t *testing.T, opts ...rod.LaunchOption) *rod.Browser {
	t.Helper()
	browser, err := rod.Launch(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = browser.Close() })
	return browser
}

func serve(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestFetcher_Fetch_ContextCancellation(t *testing.T) {
	t.Parallel()

	fetcher := rod.NewFetcher(launch(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.Fetch(ctx, "http://example.com")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_Fetch_ReturnsRenderedHTML(t *testing.T) {
	t.Parallel()

	u := serve(t, `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
<div id="content">Loading...</div>
<script>
document.getElementById('content').textContent = 'JavaScript Rendered';
</script>
</body>
</html>`)
	fetcher := rod.NewFetcher(launch(t))

	html, err := fetcher.Fetch(context.Background(), u)

	require.NoError(t, err)
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "JavaScript Rendered")
	assert.NotContains(t, html, "Loading...")
}

func TestFetcher_Fetch_LocalFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(`<html><body><p id="t">from disk</p></body></html>`), 0o644))
	fetcher := rod.NewFetcher(launch(t))

	html, err := fetcher.Fetch(context.Background(), path)

	require.NoError(t, err)
	assert.Contains(t, html, "from disk")
}

func TestFetcher_Fetch_StealthPage(t *testing.T) {
	t.Parallel()

	u := serve(t, `<html><body><p id="wd"></p><script>document.getElementById('wd').textContent = String(navigator.webdriver);</script></body></html>`)
	fetcher := rod.NewFetcher(launch(t), rod.WithStealth(true))

	html, err := fetcher.Fetch(context.Background(), u)

	require.NoError(t, err)
	assert.NotContains(t, html, `<p id="wd">true</p>`)
}

func TestFetcher_Fetch_TimeoutTriggersOnSlowPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>delayed</body></html>`))
	}))
	defer srv.Close()
	fetcher := rod.NewFetcher(launch(t), rod.WithFetchTimeout(100*time.Millisecond))

	_, err := fetcher.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetcher_Fetch_AfterClose_ReturnsError(t *testing.T) {
	t.Parallel()

	browser, err := rod.Launch()
	require.NoError(t, err)
	fetcher := rod.NewFetcher(browser)
	require.NoError(t, browser.Close())
	require.NoError(t, browser.Close())

	_, err = fetcher.Fetch(context.Background(), "http://example.com")

	require.Error(t, err)
	assert.Equal(t, isolate.EINVALID, isolate.ErrorCode(err))
	assert.Contains(t, isolate.ErrorMessage(err), "closed")
}

func TestFetcher_Fetch_RejectsStdin(t *testing.T) {
	t.Parallel()

	fetcher := rod.NewFetcher(launch(t))

	_, err := fetcher.Fetch(context.Background(), "-")

	assert.Equal(t, isolate.EINVALID, isolate.ErrorCode(err))
}
