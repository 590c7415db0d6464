package goquery

import (
	"github.com/fwojciec/isolate"
	"golang.org/x/net/html"
)

// maxAncestorDepth bounds the parent walk so a corrupted tree with a parent
// cycle fails instead of looping forever.
const maxAncestorDepth = 1 << 14

// Ancestors returns the chain of nodes from n's immediate parent up to and
// including boundary. A nil boundary means the root of n's tree.
//
// The boundary is always appended last, even when the walk runs out of
// parents without reaching it.
func Ancestors(n, boundary *html.Node) ([]*html.Node, error) {
	if n == nil {
		return nil, isolate.Errorf(isolate.EINVALID, "ancestors of nil node")
	}
	if boundary == nil {
		var err error
		if boundary, err = root(n); err != nil {
			return nil, err
		}
	}

	var parents []*html.Node
	for p := n.Parent; p != nil && p != boundary; p = p.Parent {
		if len(parents) >= maxAncestorDepth {
			return nil, isolate.Errorf(isolate.EINTERNAL, "ancestor chain of <%s> exceeds %d nodes", n.Data, maxAncestorDepth)
		}
		parents = append(parents, p)
	}
	return append(parents, boundary), nil
}

// root returns the topmost node of the tree n belongs to.
func root(n *html.Node) (*html.Node, error) {
	depth := 0
	for n.Parent != nil {
		if depth >= maxAncestorDepth {
			return nil, isolate.Errorf(isolate.EINTERNAL, "tree depth exceeds %d nodes", maxAncestorDepth)
		}
		n = n.Parent
		depth++
	}
	return n, nil
}

// Elements returns every element node below n in document order.
func Elements(n *html.Node) []*html.Node {
	var elements []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				elements = append(elements, c)
			}
			walk(c)
		}
	}
	walk(n)
	return elements
}

// hasChildElement reports whether n has at least one element child.
// Text and comment children do not count.
func hasChildElement(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
