package rod

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fwojciec/isolate"
	"github.com/fwojciec/isolate/goquery"
	"github.com/fwojciec/isolate/picker"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

//go:embed picker.js
var pickerJS string

// TargetAttr marks a clicked element in the page until the Go side has
// located it in the serialized document.
const TargetAttr = "data-isolate-target"

const pickBinding = "__isolatePick"

// pickEvent is a pointer event forwarded from the page. Path holds child
// element indexes from the document element down to the event target.
type pickEvent struct {
	Session string           `json:"session"`
	Type    picker.EventType `json:"type"`
	Path    []int            `json:"path"`
	Mark    string           `json:"mark"`
}

// Pick lets the user choose an element in the page. The page forwards its
// pointer moves and clicks; they are dispatched to a picker.Picker over a
// parsed copy of the document, whose highlight is mirrored back into the
// page. Pick returns once the picker has picked, with the document as of
// the click and the picked node in it.
//
// The page keeps the highlight <style>; nothing matches its rule after the
// pick, so stylesheet pruning removes it.
func (p *Page) Pick(ctx context.Context, logger *slog.Logger) (doc, target *html.Node, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := uuid.NewString()
	if err := (proto.RuntimeAddBinding{Name: pickBinding}).Call(p.page); err != nil {
		return nil, nil, fmt.Errorf("add picker binding: %w", err)
	}

	events := make(chan pickEvent, 16)
	closed := make(chan struct{})
	wait := p.page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) bool {
		if e.Name != pickBinding {
			return false
		}
		var ev pickEvent
		if err := json.Unmarshal([]byte(e.Payload), &ev); err != nil || ev.Session != session {
			return false
		}
		select {
		case events <- ev:
			return false
		case <-ctx.Done():
			return true
		}
	})
	go func() {
		wait()
		close(closed)
	}()

	if _, err := p.page.Context(ctx).Eval(pickerJS, pickBinding, session, TargetAttr, picker.HighlightAttr, picker.HighlightCSS); err != nil {
		return nil, nil, fmt.Errorf("install picker: %w", err)
	}
	if doc, err = p.snapshot(ctx); err != nil {
		return nil, nil, err
	}
	logger.Info("waiting for a click", "url", p.url)

	targets := &picker.EventTarget{}
	pk := &picker.Picker{OnPick: func(n *html.Node) { target = n }}
	pk.Attach(targets)
	defer pk.Detach()

	for target == nil {
		var ev pickEvent
		select {
		case ev = <-events:
		case <-closed:
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			return nil, nil, isolate.Errorf(isolate.EINTERNAL, "page closed before an element was picked")
		}

		switch ev.Type {
		case picker.PointerMove:
			n := elementAt(doc, ev.Path)
			if n == nil {
				// The page changed since the last snapshot.
				if doc, err = p.snapshot(ctx); err != nil {
					return nil, nil, err
				}
				if n = elementAt(doc, ev.Path); n == nil {
					continue
				}
			}
			targets.Dispatch(&picker.Event{Type: picker.PointerMove, Target: n})
			p.mirrorHighlight(ctx, doc, logger)

		case picker.Click:
			fresh, err := p.snapshot(ctx)
			if err != nil {
				return nil, nil, err
			}
			marked, err := goquery.FindByAttr(fresh, TargetAttr, ev.Mark)
			if err != nil {
				logger.Warn("locate clicked element", "err", err)
				continue
			}
			for _, el := range goquery.Elements(fresh) {
				goquery.RemoveAttr(el, TargetAttr)
			}
			doc = fresh
			targets.Dispatch(&picker.Event{Type: picker.Click, Target: marked})
		}
	}

	if targets.Len(picker.PointerMove)+targets.Len(picker.Click) == 0 {
		if _, err := p.page.Context(ctx).Eval(`(b) => window[b + 'Detach']()`, pickBinding); err != nil {
			logger.Warn("detach page picker", "err", err)
		}
	}
	logger.Debug("picked element", "tag", target.Data)
	return doc, target, nil
}

func (p *Page) snapshot(ctx context.Context) (*html.Node, error) {
	src, err := p.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// mirrorHighlight copies the highlighted element of doc into the page.
func (p *Page) mirrorHighlight(ctx context.Context, doc *html.Node, logger *slog.Logger) {
	var path []int
	for _, el := range goquery.Elements(doc) {
		if v := attr(el, picker.HighlightAttr); v == "yes" {
			path = pathOf(el)
			break
		}
	}
	if _, err := p.page.Context(ctx).Eval(`(b, path) => window[b + 'Highlight'](path)`, pickBinding, path); err != nil {
		logger.Debug("mirror highlight", "err", err)
	}
}

// documentElement returns the <html> element of doc.
func documentElement(doc *html.Node) *html.Node {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			return c
		}
	}
	return nil
}

// elementAt follows path down from the document element.
func elementAt(doc *html.Node, path []int) *html.Node {
	n := documentElement(doc)
	for _, i := range path {
		if n == nil {
			return nil
		}
		n = childElement(n, i)
	}
	return n
}

func childElement(n *html.Node, i int) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if i == 0 {
			return c
		}
		i--
	}
	return nil
}

// pathOf is the inverse of elementAt.
func pathOf(n *html.Node) []int {
	var path []int
	for n.Parent != nil && n.DataAtom != atom.Html {
		i := 0
		for c := n.PrevSibling; c != nil; c = c.PrevSibling {
			if c.Type == html.ElementNode {
				i++
			}
		}
		path = append([]int{i}, path...)
		n = n.Parent
	}
	return path
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
