package douceur

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/fwojciec/isolate"
	"github.com/fwojciec/isolate/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxImportDepth bounds @import recursion.
const DefaultMaxImportDepth = 8

// linkConcurrency limits parallel <link> stylesheet downloads.
const linkConcurrency = 4

// Ensure Source implements isolate.StyleSheetSource at compile time.
var _ isolate.StyleSheetSource = (*Source)(nil)

// Source collects the stylesheets of a document: inline <style> elements
// and, when a SheetLoader is configured, <link rel="stylesheet"> targets
// and @import rules.
type Source struct {
	loader         isolate.SheetLoader
	baseURL        string
	maxImportDepth int
	logger         *slog.Logger
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithSheetLoader sets the loader for linked and imported sheets. Without a
// loader, <link> elements are left untouched and imports are not followed.
func WithSheetLoader(loader isolate.SheetLoader) SourceOption {
	return func(s *Source) {
		s.loader = loader
	}
}

// WithBaseURL sets the URL the document was loaded from.
func WithBaseURL(u string) SourceOption {
	return func(s *Source) {
		s.baseURL = u
	}
}

// WithMaxImportDepth sets the @import recursion limit.
// Defaults to DefaultMaxImportDepth if not specified.
func WithMaxImportDepth(n int) SourceOption {
	return func(s *Source) {
		s.maxImportDepth = n
	}
}

// WithLogger sets the logger for sheets that fail to load or parse.
func WithLogger(logger *slog.Logger) SourceOption {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource creates a new Source.
func NewSource(opts ...SourceOption) *Source {
	s := &Source{
		maxImportDepth: DefaultMaxImportDepth,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load parses every stylesheet of doc in document order. Sheets that fail
// to load or parse are logged and skipped.
func (s *Source) Load(ctx context.Context, doc *html.Node) (isolate.StyleSheetSet, error) {
	if doc == nil {
		return nil, isolate.Errorf(isolate.EINVALID, "document required")
	}
	base := documentBase(doc, s.baseURL)

	var owners []*html.Node
	for _, el := range goquery.Elements(doc) {
		if el.Namespace != "" {
			continue
		}
		if el.DataAtom == atom.Style || (s.loader != nil && goquery.IsStylesheetLink(el)) {
			owners = append(owners, el)
		}
	}

	sheets := make([]*Sheet, len(owners))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(linkConcurrency)
	for i, owner := range owners {
		g.Go(func() error {
			sheet, err := s.loadOwner(gctx, owner, base)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Warn("skip stylesheet", "element", owner.Data, "err", err)
				return nil
			}
			s.loadImports(gctx, sheet, base, map[string]bool{sheet.href: sheet.href != ""}, 1)
			sheets[i] = sheet
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := &sheetSet{}
	for _, sheet := range sheets {
		if sheet != nil {
			set.sheets = append(set.sheets, sheet)
		}
	}
	return set, nil
}

func (s *Source) loadOwner(ctx context.Context, owner *html.Node, base string) (*Sheet, error) {
	if owner.DataAtom == atom.Style {
		sheet, err := Parse(textContent(owner), "")
		if err != nil {
			return nil, err
		}
		sheet.owner = owner
		return sheet, nil
	}

	href, _ := attrValue(owner, "href")
	abs, err := resolve(base, href)
	if err != nil {
		return nil, err
	}
	text, err := s.loader.LoadSheet(ctx, abs)
	if err != nil {
		return nil, err
	}
	sheet, err := Parse(text, abs)
	if err != nil {
		return nil, err
	}
	sheet.owner = owner
	return sheet, nil
}

// loadImports loads the targets of sheet's @import rules, recursively.
// Failures are recorded on the rule and surface when it is resolved.
func (s *Source) loadImports(ctx context.Context, sheet *Sheet, base string, chain map[string]bool, depth int) {
	for _, r := range sheet.css.Rules {
		if r.Kind != css.AtRule || !strings.EqualFold(r.Name, "@import") {
			continue
		}
		sheet.imports[r] = s.loadImport(ctx, sheet, r, base, chain, depth)
	}
}

func (s *Source) loadImport(ctx context.Context, sheet *Sheet, r *css.Rule, base string, chain map[string]bool, depth int) *imported {
	if s.loader == nil {
		return &imported{err: isolate.Errorf(isolate.ENOTFOUND, "no sheet loader configured")}
	}
	if depth > s.maxImportDepth {
		return &imported{err: isolate.Errorf(isolate.EINVALID, "@import nesting exceeds %d levels", s.maxImportDepth)}
	}

	from := sheet.href
	if from == "" {
		from = base
	}
	href, _ := parseImport(r.Prelude)
	abs, err := resolve(from, href)
	if err != nil {
		return &imported{err: err}
	}
	if chain[abs] {
		return &imported{err: isolate.Errorf(isolate.EINVALID, "@import cycle at %s", abs)}
	}

	text, err := s.loader.LoadSheet(ctx, abs)
	if err != nil {
		return &imported{err: err}
	}
	child, err := Parse(text, abs)
	if err != nil {
		return &imported{err: err}
	}

	next := make(map[string]bool, len(chain)+1)
	for k, v := range chain {
		next[k] = v
	}
	next[abs] = true
	s.loadImports(ctx, child, base, next, depth+1)
	return &imported{sheet: child}
}

// sheetSet is the set of sheets loaded from one document.
type sheetSet struct {
	sheets []*Sheet
}

func (s *sheetSet) Containers() []isolate.RuleContainer {
	containers := make([]isolate.RuleContainer, len(s.sheets))
	for i, sheet := range s.sheets {
		containers[i] = sheet
	}
	return containers
}

// Commit rewrites each <style> with its sheet's current rules. Linked
// sheets are inlined: the <link> is replaced by a <style> element.
func (s *sheetSet) Commit() error {
	for _, sheet := range s.sheets {
		owner := sheet.owner
		if owner == nil {
			continue
		}
		text := sheet.String()

		if owner.DataAtom == atom.Style {
			for c := owner.FirstChild; c != nil; c = owner.FirstChild {
				owner.RemoveChild(c)
			}
			owner.AppendChild(&html.Node{Type: html.TextNode, Data: text})
			continue
		}

		// A <link> detached by a concurrent mutation has nowhere to go.
		if owner.Parent == nil {
			continue
		}
		if media, ok := attrValue(owner, "media"); ok && media != "" && !strings.EqualFold(media, "all") {
			text = "@media " + media + " {\n" + text + "\n}"
		}
		style := &html.Node{Type: html.ElementNode, Data: "style", DataAtom: atom.Style}
		style.AppendChild(&html.Node{Type: html.TextNode, Data: text})
		owner.Parent.InsertBefore(style, owner)
		owner.Parent.RemoveChild(owner)
		sheet.owner = style
	}
	return nil
}

// documentBase applies the document's <base href> to baseURL.
func documentBase(doc *html.Node, baseURL string) string {
	for _, el := range goquery.Elements(doc) {
		if el.DataAtom != atom.Base {
			continue
		}
		if href, ok := attrValue(el, "href"); ok && href != "" {
			if abs, err := resolve(baseURL, href); err == nil {
				return abs
			}
		}
		break
	}
	return baseURL
}

func resolve(base, ref string) (string, error) {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", isolate.Errorf(isolate.EINVALID, "invalid stylesheet URL %q: %v", ref, err)
	}
	if base != "" {
		b, err := url.Parse(base)
		if err != nil {
			return "", isolate.Errorf(isolate.EINVALID, "invalid base URL %q: %v", base, err)
		}
		r = b.ResolveReference(r)
	}
	if !r.IsAbs() {
		return "", isolate.Errorf(isolate.EINVALID, "cannot resolve relative stylesheet URL %q without a base URL", ref)
	}
	return r.String(), nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func attrValue(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
