// Package fs reads input documents from disk or stdin and writes isolated
// output atomically.
package fs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/fwojciec/isolate"
)

// Ensure Fetcher implements isolate.Fetcher at compile time.
var _ isolate.Fetcher = (*Fetcher)(nil)

// Fetcher reads documents from local files. The source "-" reads Stdin.
type Fetcher struct {
	Stdin io.Reader
}

// NewFetcher creates a Fetcher reading "-" from stdin.
func NewFetcher(stdin io.Reader) *Fetcher {
	return &Fetcher{Stdin: stdin}
}

// Fetch returns the contents of the file at source.
func (f *Fetcher) Fetch(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if source == "-" {
		if f.Stdin == nil {
			return "", isolate.Errorf(isolate.EINVALID, "no stdin available")
		}
		b, err := io.ReadAll(f.Stdin)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	b, err := os.ReadFile(source)
	if errors.Is(err, fs.ErrNotExist) {
		return "", isolate.Errorf(isolate.ENOTFOUND, "file %s does not exist", source)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Close is a no-op.
func (f *Fetcher) Close() error {
	return nil
}
