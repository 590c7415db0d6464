package goquery

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IsProtected reports whether n is exempt from leaf removal: HEAD, BODY,
// STYLE and LINK elements that reference a stylesheet.
// Elements in foreign namespaces (e.g. SVG <style>) are not protected.
func IsProtected(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Namespace != "" {
		return false
	}
	switch n.DataAtom {
	case atom.Head, atom.Body, atom.Style:
		return true
	case atom.Link:
		return IsStylesheetLink(n)
	}
	return false
}

// IsStylesheetLink reports whether n is a <link> whose rel contains the
// "stylesheet" token. "alternate stylesheet" counts.
func IsStylesheetLink(n *html.Node) bool {
	if n.DataAtom != atom.Link {
		return false
	}
	rel, _ := attr(n, "rel")
	for _, tok := range strings.Fields(strings.ToLower(rel)) {
		if tok == "stylesheet" {
			return true
		}
	}
	return false
}
