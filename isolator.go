package isolate

import (
	"context"

	"golang.org/x/net/html"
)

// Result summarizes a completed isolation.
type Result struct {
	Cancel CancelStats
	Prune  PruneStats
	Styles StyleStats

	// CommentsRemoved counts comment nodes stripped from the surviving tree.
	CommentsRemoved int

	// HTML is the rendered document after isolation.
	HTML string
}

// PruneStats reports what the tree pruner did.
type PruneStats struct {
	Iterations int
	Removed    int

	// Converged is false when the iteration cap stopped the pruner before an
	// iteration removed zero elements.
	Converged bool
}

// Isolator reduces a document to a target element and its ancestor chain.
type Isolator interface {
	// Isolate mutates doc in place. The target must be attached to doc.
	Isolate(ctx context.Context, doc, target *html.Node) (*Result, error)
}

// TreePruner removes every element that is not on the keep-path of target.
// The keep-path is the target, its ancestors and its descendants.
type TreePruner interface {
	Prune(ctx context.Context, doc, target *html.Node) (PruneStats, error)
}

// Executor runs functions that touch the document tree. Implementations
// guarantee that no two functions run at the same time.
type Executor interface {
	// Do runs fn and waits for it to return.
	Do(ctx context.Context, fn func()) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, fn func()) error

// Do calls f(ctx, fn).
func (f ExecutorFunc) Do(ctx context.Context, fn func()) error {
	return f(ctx, fn)
}

// DirectExecutor runs functions on the calling goroutine.
var DirectExecutor Executor = ExecutorFunc(func(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn()
	return nil
})
