package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/isolate"
	"golang.org/x/net/html"
)

// Find returns the first element of doc, in document order, matching
// selector. Returns EINVALID for a malformed selector and ENOTFOUND when
// nothing matches.
func Find(doc *html.Node, selector string) (*html.Node, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, isolate.Errorf(isolate.EINVALID, "empty selector")
	}
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, isolate.Errorf(isolate.EINVALID, "invalid selector %q: %v", selector, err)
	}

	sel := goquery.NewDocumentFromNode(doc).FindMatcher(m)
	if sel.Length() == 0 {
		return nil, isolate.Errorf(isolate.ENOTFOUND, "no element matches %q", selector)
	}
	return sel.Get(0), nil
}

// FindByAttr returns the first element carrying attribute key with value
// val. Used to locate elements marked by the in-browser picker.
func FindByAttr(doc *html.Node, key, val string) (*html.Node, error) {
	for _, el := range Elements(doc) {
		if v, ok := attr(el, key); ok && v == val {
			return el, nil
		}
	}
	return nil, isolate.Errorf(isolate.ENOTFOUND, "no element has %s=%q", key, val)
}

// RemoveAttr deletes attribute key from n.
func RemoveAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}

// SetAttr sets attribute key on n, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
