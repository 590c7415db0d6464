package goquery_test

import (
	"testing"

	"github.com/fwojciec/isolate"
	"github.com/fwojciec/isolate/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestAncestors(t *testing.T) {
	t.Parallel()

	t.Run("returns parents up to and including the document", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<div id="a"><div id="b"><span id="c">x</span></div></div>`)
		c := byID(t, doc, "c")

		parents, err := goquery.Ancestors(c, doc)

		require.NoError(t, err)
		require.Len(t, parents, 5)
		assert.Equal(t, "b", attrOf(parents[0], "id"))
		assert.Equal(t, "a", attrOf(parents[1], "id"))
		assert.Equal(t, "body", parents[2].Data)
		assert.Equal(t, "html", parents[3].Data)
		assert.Same(t, doc, parents[4])
	})

	t.Run("defaults boundary to the tree root", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<p id="p">x</p>`)
		p := byID(t, doc, "p")

		parents, err := goquery.Ancestors(p, nil)

		require.NoError(t, err)
		assert.Same(t, doc, parents[len(parents)-1])
	})

	t.Run("stops at a boundary inside the tree", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<div id="a"><div id="b"><span id="c">x</span></div></div>`)
		a := byID(t, doc, "a")
		c := byID(t, doc, "c")

		parents, err := goquery.Ancestors(c, a)

		require.NoError(t, err)
		require.Len(t, parents, 2)
		assert.Equal(t, "b", attrOf(parents[0], "id"))
		assert.Same(t, a, parents[1])
	})

	t.Run("appends an unreached boundary", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<div id="a"><span id="c">x</span></div><div id="d"></div>`)
		c := byID(t, doc, "c")
		d := byID(t, doc, "d")

		parents, err := goquery.Ancestors(c, d)

		require.NoError(t, err)
		assert.Same(t, doc, parents[len(parents)-2])
		assert.Same(t, d, parents[len(parents)-1])
	})

	t.Run("rejects a nil node", func(t *testing.T) {
		t.Parallel()

		parents, err := goquery.Ancestors(nil, nil)

		assert.Nil(t, parents)
		assert.Equal(t, isolate.EINVALID, isolate.ErrorCode(err))
	})

	t.Run("fails on a parent cycle", func(t *testing.T) {
		t.Parallel()

		a := &html.Node{Type: html.ElementNode, Data: "div"}
		b := &html.Node{Type: html.ElementNode, Data: "div"}
		a.Parent = b
		b.Parent = a
		boundary := &html.Node{Type: html.DocumentNode}

		parents, err := goquery.Ancestors(a, boundary)

		assert.Nil(t, parents)
		assert.Equal(t, isolate.EINTERNAL, isolate.ErrorCode(err))
	})
}

func attrOf(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
