package mock

import (
	"context"

	"github.com/fwojciec/isolate"
)

var _ isolate.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of isolate.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, source string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, source string) (string, error) {
	return f.FetchFn(ctx, source)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}
