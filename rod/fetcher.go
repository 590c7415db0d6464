package rod

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/isolate"
)

// DefaultFetchTimeout bounds navigation and load of a single page.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements isolate.Fetcher at compile time.
var _ isolate.Fetcher = (*Fetcher)(nil)

// Fetcher opens documents in Chrome and returns their rendered HTML.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	browser *Browser
	timeout time.Duration
	stealth bool
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchTimeout sets the navigation timeout.
// Defaults to DefaultFetchTimeout if not specified.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithStealth opens pages through go-rod/stealth, which masks the usual
// automation fingerprints.
func WithStealth(enabled bool) FetcherOption {
	return func(f *Fetcher) {
		f.stealth = enabled
	}
}

// NewFetcher creates a new Fetcher on top of browser. The browser stays
// owned by the caller; Close does not close it.
func NewFetcher(browser *Browser, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		browser: browser,
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open navigates a new tab to source, a URL or a local file path, and
// waits for it to load. The caller must Close the returned page.
func (f *Fetcher) Open(ctx context.Context, source string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.browser.Closed() {
		return nil, isolate.Errorf(isolate.EINVALID, "fetcher is closed")
	}
	target, err := pageURL(source)
	if err != nil {
		return nil, err
	}

	page, err := f.browser.newPage(f.stealth)
	if err != nil {
		return nil, err
	}

	navCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(target); err != nil {
		_ = page.Close()
		return nil, err
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		_ = page.Close()
		return nil, err
	}
	return &Page{page: page, url: target}, nil
}

// Fetch returns the rendered HTML of source.
func (f *Fetcher) Fetch(ctx context.Context, source string) (string, error) {
	page, err := f.Open(ctx, source)
	if err != nil {
		return "", err
	}
	defer page.Close()
	return page.HTML(ctx)
}

// Close is a no-op; the Browser belongs to the caller.
func (f *Fetcher) Close() error {
	return nil
}

// pageURL turns a local path into a file URL and passes URLs through.
func pageURL(source string) (string, error) {
	if u, err := url.Parse(source); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			return source, nil
		}
		return "", isolate.Errorf(isolate.EINVALID, "unsupported URL scheme %q", u.Scheme)
	}
	if source == "" || source == "-" {
		return "", isolate.Errorf(isolate.EINVALID, "the browser needs a URL or file path, not stdin")
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", isolate.Errorf(isolate.EINVALID, "invalid path %q: %v", source, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}
