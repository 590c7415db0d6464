package mock

import (
	"context"

	"github.com/fwojciec/isolate"
	"golang.org/x/net/html"
)

var (
	_ isolate.SheetLoader      = (*SheetLoader)(nil)
	_ isolate.MediaMatcher     = (*MediaMatcher)(nil)
	_ isolate.SelectorMatcher  = (*SelectorMatcher)(nil)
	_ isolate.StyleSheetSource = (*StyleSheetSource)(nil)
	_ isolate.StyleSheetSet    = (*StyleSheetSet)(nil)
	_ isolate.StyleSheetPruner = (*StyleSheetPruner)(nil)
)

// SheetLoader is a mock implementation of isolate.SheetLoader.
type SheetLoader struct {
	LoadSheetFn func(ctx context.Context, href string) (string, error)
}

func (l *SheetLoader) LoadSheet(ctx context.Context, href string) (string, error) {
	return l.LoadSheetFn(ctx, href)
}

// MediaMatcher is a mock implementation of isolate.MediaMatcher.
type MediaMatcher struct {
	MatchMediaFn func(ctx context.Context, condition string) (bool, error)
}

func (m *MediaMatcher) MatchMedia(ctx context.Context, condition string) (bool, error) {
	return m.MatchMediaFn(ctx, condition)
}

// SelectorMatcher is a mock implementation of isolate.SelectorMatcher.
type SelectorMatcher struct {
	CountFn func(doc *html.Node, selector string) (int, error)
}

func (m *SelectorMatcher) Count(doc *html.Node, selector string) (int, error) {
	return m.CountFn(doc, selector)
}

// StyleSheetSource is a mock implementation of isolate.StyleSheetSource.
type StyleSheetSource struct {
	LoadFn func(ctx context.Context, doc *html.Node) (isolate.StyleSheetSet, error)
}

func (s *StyleSheetSource) Load(ctx context.Context, doc *html.Node) (isolate.StyleSheetSet, error) {
	return s.LoadFn(ctx, doc)
}

// StyleSheetSet is a mock implementation of isolate.StyleSheetSet.
type StyleSheetSet struct {
	ContainersFn func() []isolate.RuleContainer
	CommitFn     func() error
}

func (s *StyleSheetSet) Containers() []isolate.RuleContainer {
	return s.ContainersFn()
}

func (s *StyleSheetSet) Commit() error {
	return s.CommitFn()
}

// StyleSheetPruner is a mock implementation of isolate.StyleSheetPruner.
type StyleSheetPruner struct {
	PruneFn func(ctx context.Context, doc *html.Node, containers []isolate.RuleContainer) isolate.StyleStats
}

func (p *StyleSheetPruner) Prune(ctx context.Context, doc *html.Node, containers []isolate.RuleContainer) isolate.StyleStats {
	return p.PruneFn(ctx, doc, containers)
}
