package goquery_test

import (
	"testing"

	"github.com/fwojciec/isolate/goquery"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func mustParse(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := goquery.Parse(s)
	require.NoError(t, err)
	return doc
}

func byID(t *testing.T, doc *html.Node, id string) *html.Node {
	t.Helper()
	n, err := goquery.FindByAttr(doc, "id", id)
	require.NoError(t, err)
	return n
}

func hasID(doc *html.Node, id string) bool {
	_, err := goquery.FindByAttr(doc, "id", id)
	return err == nil
}

func tags(doc *html.Node) []string {
	var out []string
	for _, el := range goquery.Elements(doc) {
		out = append(out, el.Data)
	}
	return out
}
