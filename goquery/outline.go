package goquery

import (
	"strings"

	"github.com/xlab/treeprint"
	"golang.org/x/net/html"
)

// Outline renders the element structure below n as a tree, one element per
// line, labelled tag#id.class.
func Outline(n *html.Node) string {
	tree := treeprint.New()
	var add func(treeprint.Tree, *html.Node)
	add = func(t treeprint.Tree, n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if hasChildElement(c) {
				add(t.AddBranch(label(c)), c)
			} else {
				t.AddNode(label(c))
			}
		}
	}
	add(tree, n)
	return tree.String()
}

func label(n *html.Node) string {
	var b strings.Builder
	b.WriteString(n.Data)
	if id, ok := attr(n, "id"); ok && id != "" {
		b.WriteString("#")
		b.WriteString(id)
	}
	if class, ok := attr(n, "class"); ok {
		for _, c := range strings.Fields(class) {
			b.WriteString(".")
			b.WriteString(c)
		}
	}
	return b.String()
}
