package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/isolate"
	"golang.org/x/net/html"
)

// Parse parses an HTML document.
func Parse(s string) (*html.Node, error) {
	if strings.TrimSpace(s) == "" {
		return nil, isolate.Errorf(isolate.EINVALID, "empty HTML input")
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return nil, isolate.Errorf(isolate.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

// Render serializes n and its descendants.
func Render(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

// OuterHTML serializes n including its own tag.
func OuterHTML(n *html.Node) (string, error) {
	return goquery.OuterHtml(goquery.NewDocumentFromNode(n).Selection)
}
