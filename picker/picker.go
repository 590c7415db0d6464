package picker

import (
	"sync"

	"github.com/fwojciec/isolate/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HighlightAttr marks the element under the pointer.
const HighlightAttr = "data-isolate-highlighted"

// HighlightCSS styles the highlighted element. Nothing matches it once a
// pick is made, so stylesheet pruning deletes it with the other unused
// rules.
const HighlightCSS = `[data-isolate-highlighted="yes"] {
    background-color: rgba(144, 238, 145, 0.7) !important;
    color: rgb(17, 17, 17) !important;
    opacity: 0.85 !important;
    fill: red !important;
    outline: red solid 1px !important;
    border-color: orange !important;
}`

// Picker highlights the element under the pointer and picks the element
// that is clicked. It picks at most once per Attach.
type Picker struct {
	// OnPick receives the clicked element.
	OnPick func(target *html.Node)

	mu    sync.Mutex
	move  *Registration
	click *Registration
}

// Attach installs capturing pointer-move and click listeners on t and
// returns their registrations. Any earlier attachment is removed first.
func (p *Picker) Attach(t *EventTarget) (move, click *Registration) {
	p.Detach()

	move = t.AddListener(PointerMove, p.handleMove, true)
	click = t.AddListener(Click, p.handleClick, true)

	p.mu.Lock()
	p.move, p.click = move, click
	p.mu.Unlock()
	return move, click
}

// Detach removes both listeners.
func (p *Picker) Detach() {
	p.mu.Lock()
	move, click := p.move, p.click
	p.move, p.click = nil, nil
	p.mu.Unlock()

	if move != nil {
		move.Remove()
	}
	if click != nil {
		click.Remove()
	}
}

func (p *Picker) handleMove(e *Event) {
	if e.Target == nil || e.Target.Type != html.ElementNode {
		return
	}
	ClearHighlights(e.Target)
	goquery.SetAttr(e.Target, HighlightAttr, "yes")
}

func (p *Picker) handleClick(e *Event) {
	if e.Target == nil {
		return
	}
	ClearHighlights(e.Target)
	p.Detach()
	e.PreventDefault()
	e.StopPropagation()
	if p.OnPick != nil {
		p.OnPick(e.Target)
	}
}

// ClearHighlights removes the highlight attribute from every element of
// the tree n belongs to.
func ClearHighlights(n *html.Node) {
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	if root.Type == html.ElementNode {
		goquery.RemoveAttr(root, HighlightAttr)
	}
	for _, el := range goquery.Elements(root) {
		goquery.RemoveAttr(el, HighlightAttr)
	}
}

// InjectHighlightStyle appends a <style> holding HighlightCSS to the
// document element of doc and returns it.
func InjectHighlightStyle(doc *html.Node) *html.Node {
	parent := doc
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			parent = c
			break
		}
	}
	style := &html.Node{Type: html.ElementNode, Data: "style", DataAtom: atom.Style}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: HighlightCSS})
	parent.AppendChild(style)
	return style
}
