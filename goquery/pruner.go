package goquery

import (
	"context"
	"log/slog"

	"github.com/fwojciec/isolate"
	"golang.org/x/net/html"
)

// DefaultMaxIterations bounds the pruning loop when the host keeps
// inserting nodes.
const DefaultMaxIterations = 100

// Ensure Pruner implements isolate.TreePruner at compile time.
var _ isolate.TreePruner = (*Pruner)(nil)

// Pruner removes elements off the keep-path one leaf layer at a time until
// an iteration removes nothing.
type Pruner struct {
	maxIterations int
	exec          isolate.Executor
	logger        *slog.Logger
}

// PrunerOption configures a Pruner.
type PrunerOption func(*Pruner)

// WithMaxIterations sets the iteration cap.
// Defaults to DefaultMaxIterations (100) if not specified.
func WithMaxIterations(n int) PrunerOption {
	return func(p *Pruner) {
		p.maxIterations = n
	}
}

// WithExecutor sets the executor each iteration runs on. Between iterations
// the executor is free to run other work that may mutate the tree.
// Defaults to isolate.DirectExecutor.
func WithExecutor(exec isolate.Executor) PrunerOption {
	return func(p *Pruner) {
		p.exec = exec
	}
}

// WithLogger sets the logger used for ancestor resolution failures.
func WithLogger(logger *slog.Logger) PrunerOption {
	return func(p *Pruner) {
		p.logger = logger
	}
}

// NewPruner creates a new Pruner.
func NewPruner(opts ...PrunerOption) *Pruner {
	p := &Pruner{
		maxIterations: DefaultMaxIterations,
		exec:          isolate.DirectExecutor,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.maxIterations <= 0 {
		p.maxIterations = DefaultMaxIterations
	}
	return p
}

// Prune detaches every element of doc that is not on the keep-path of
// target, except protected elements. Only leaves are removed in a given
// iteration, so children always go before their parents.
//
// Every iteration takes a fresh snapshot of the connected elements. Hitting
// the iteration cap is not an error; stats.Converged reports it.
func (p *Pruner) Prune(ctx context.Context, doc, target *html.Node) (isolate.PruneStats, error) {
	var stats isolate.PruneStats
	if doc == nil || target == nil {
		return stats, isolate.Errorf(isolate.EINVALID, "document and target are required")
	}

	for stats.Iterations < p.maxIterations {
		var removed int
		if err := p.exec.Do(ctx, func() {
			removed = p.iterate(doc, target)
		}); err != nil {
			return stats, err
		}
		stats.Iterations++
		stats.Removed += removed

		if removed == 0 {
			stats.Converged = true
			break
		}
	}
	return stats, nil
}

// iterate runs a single scan over a snapshot of doc and returns the number
// of detached elements.
func (p *Pruner) iterate(doc, target *html.Node) int {
	keep := make(map[*html.Node]bool)
	if parents, err := Ancestors(target, doc); err != nil {
		p.logger.Warn("resolve target ancestors", "err", err)
	} else {
		for _, n := range parents {
			keep[n] = true
		}
	}

	removed := 0
	for _, el := range Elements(doc) {
		if el == target || keep[el] {
			continue
		}
		if p.isDescendant(el, target, doc) {
			continue
		}
		if hasChildElement(el) {
			continue
		}
		if IsProtected(el) {
			continue
		}
		if el.Parent != nil {
			el.Parent.RemoveChild(el)
			removed++
		}
	}
	return removed
}

func (p *Pruner) isDescendant(el, target, doc *html.Node) bool {
	parents, err := Ancestors(el, doc)
	if err != nil {
		p.logger.Warn("resolve element ancestors", "element", el.Data, "err", err)
		return false
	}
	for _, n := range parents {
		if n == target {
			return true
		}
	}
	return false
}
