package isolate

import "context"

// Fetcher retrieves HTML documents.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch retrieves the document at source and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, source string) (html string, err error)

	// Close releases resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
