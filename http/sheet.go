package http

import (
	"context"
	"sync"

	"github.com/fwojciec/isolate"
	"golang.org/x/sync/singleflight"
)

// Ensure SheetLoader implements isolate.SheetLoader at compile time.
var _ isolate.SheetLoader = (*SheetLoader)(nil)

// SheetLoader loads stylesheets through a Fetcher. Each URL is downloaded
// once per loader: concurrent requests share one download and later ones
// are served from memory. Failures are not cached.
type SheetLoader struct {
	fetcher isolate.Fetcher
	group   singleflight.Group

	mu    sync.Mutex
	cache map[string]string
}

// NewSheetLoader creates a SheetLoader on top of fetcher.
func NewSheetLoader(fetcher isolate.Fetcher) *SheetLoader {
	return &SheetLoader{
		fetcher: fetcher,
		cache:   make(map[string]string),
	}
}

// LoadSheet returns the text of the stylesheet at href.
func (l *SheetLoader) LoadSheet(ctx context.Context, href string) (string, error) {
	l.mu.Lock()
	text, ok := l.cache[href]
	l.mu.Unlock()
	if ok {
		return text, nil
	}

	v, err, _ := l.group.Do(href, func() (any, error) {
		text, err := l.fetcher.Fetch(ctx, href)
		if err != nil {
			return "", err
		}
		l.mu.Lock()
		l.cache[href] = text
		l.mu.Unlock()
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
