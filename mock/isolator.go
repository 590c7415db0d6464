package mock

import (
	"context"

	"github.com/fwojciec/isolate"
	"golang.org/x/net/html"
)

var (
	_ isolate.Isolator   = (*Isolator)(nil)
	_ isolate.TreePruner = (*TreePruner)(nil)
	_ isolate.Canceller  = (*Canceller)(nil)
)

// Isolator is a mock implementation of isolate.Isolator.
type Isolator struct {
	IsolateFn func(ctx context.Context, doc, target *html.Node) (*isolate.Result, error)
}

func (i *Isolator) Isolate(ctx context.Context, doc, target *html.Node) (*isolate.Result, error) {
	return i.IsolateFn(ctx, doc, target)
}

// TreePruner is a mock implementation of isolate.TreePruner.
type TreePruner struct {
	PruneFn func(ctx context.Context, doc, target *html.Node) (isolate.PruneStats, error)
}

func (p *TreePruner) Prune(ctx context.Context, doc, target *html.Node) (isolate.PruneStats, error) {
	return p.PruneFn(ctx, doc, target)
}

// Canceller is a mock implementation of isolate.Canceller.
type Canceller struct {
	CancelAllFn func(ctx context.Context) (isolate.CancelStats, error)
}

func (c *Canceller) CancelAll(ctx context.Context) (isolate.CancelStats, error) {
	return c.CancelAllFn(ctx)
}
