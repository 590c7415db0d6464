package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/isolate"
	"github.com/fwojciec/isolate/goquery"
	"golang.org/x/net/html"
)

// Ensure Pipeline implements isolate.Isolator at compile time.
var _ isolate.Isolator = (*Pipeline)(nil)

// Pipeline isolates a target element: it cancels pending host callbacks,
// prunes the tree, prunes and commits stylesheets, strips comments and
// renders the result.
//
// Canceller and StyleSheets are optional. Executor defaults to
// isolate.DirectExecutor and must be the executor the Pruner runs on.
type Pipeline struct {
	Canceller   isolate.Canceller
	Pruner      isolate.TreePruner
	StyleSheets isolate.StyleSheetSource
	Styles      isolate.StyleSheetPruner
	Executor    isolate.Executor
	Logger      *slog.Logger
}

// Isolate runs the pipeline against doc. Only a missing or detached target,
// tree pruning failures and context cancellation abort it; everything else
// is logged and the run continues.
func (p *Pipeline) Isolate(ctx context.Context, doc, target *html.Node) (*isolate.Result, error) {
	if doc == nil {
		return nil, isolate.Errorf(isolate.EINVALID, "document required")
	}
	if target == nil {
		return nil, isolate.Errorf(isolate.EINVALID, "target element required")
	}
	exec := p.executor()

	var attached bool
	if err := exec.Do(ctx, func() {
		attached = isAttached(doc, target)
	}); err != nil {
		return nil, err
	}
	if !attached {
		return nil, isolate.Errorf(isolate.EINVALID, "target <%s> is not attached to the document", target.Data)
	}

	result := &isolate.Result{}
	if p.Canceller != nil {
		stats, err := p.Canceller.CancelAll(ctx)
		result.Cancel = stats
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger().Warn("cancel pending callbacks", "err", err)
		}
	}

	stats, err := p.Pruner.Prune(ctx, doc, target)
	result.Prune = stats
	if err != nil {
		return nil, fmt.Errorf("prune tree: %w", err)
	}
	if !stats.Converged {
		p.logger().Warn("pruning stopped at iteration cap", "iterations", stats.Iterations, "removed", stats.Removed)
	}

	var out string
	var renderErr error
	if err := exec.Do(ctx, func() {
		result.Styles = p.pruneStyles(ctx, doc)
		result.CommentsRemoved = goquery.StripComments(doc)
		if again := goquery.StripComments(doc); again > 0 {
			p.logger().Warn("comments survived the first pass", "count", again)
			result.CommentsRemoved += again
		}
		out, renderErr = goquery.Render(doc)
	}); err != nil {
		return nil, err
	}
	if renderErr != nil {
		return nil, fmt.Errorf("render document: %w", renderErr)
	}
	result.HTML = out
	return result, nil
}

// pruneStyles runs on the executor together with comment stripping.
func (p *Pipeline) pruneStyles(ctx context.Context, doc *html.Node) isolate.StyleStats {
	if p.StyleSheets == nil || p.Styles == nil {
		return isolate.StyleStats{}
	}
	set, err := p.StyleSheets.Load(ctx, doc)
	if err != nil {
		p.logger().Warn("load stylesheets", "err", err)
		return isolate.StyleStats{Errors: 1}
	}
	stats := p.Styles.Prune(ctx, doc, set.Containers())
	if err := set.Commit(); err != nil {
		p.logger().Warn("commit stylesheets", "err", err)
		stats.Errors++
	}
	return stats
}

// isAttached reports whether target is doc or one of its descendants.
func isAttached(doc, target *html.Node) bool {
	parents, err := goquery.Ancestors(target, nil)
	if err != nil {
		return false
	}
	if target == doc {
		return true
	}
	for _, n := range parents {
		if n == doc {
			return true
		}
	}
	return false
}

func (p *Pipeline) executor() isolate.Executor {
	if p.Executor == nil {
		return isolate.DirectExecutor
	}
	return p.Executor
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
