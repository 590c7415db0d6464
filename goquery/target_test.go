package goquery_test

import (
	"testing"

	"github.com/fwojciec/isolate"
	"github.com/fwojciec/isolate/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<div class="card" id="first">1</div><div class="card" id="second">2</div>`)

	t.Run("returns the first match in document order", func(t *testing.T) {
		t.Parallel()

		n, err := goquery.Find(doc, ".card")

		require.NoError(t, err)
		assert.Equal(t, "first", attrOf(n, "id"))
	})

	t.Run("returns ENOTFOUND when nothing matches", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.Find(doc, "#missing")

		assert.Equal(t, isolate.ENOTFOUND, isolate.ErrorCode(err))
	})

	t.Run("returns EINVALID for a malformed selector", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.Find(doc, "div[")

		assert.Equal(t, isolate.EINVALID, isolate.ErrorCode(err))
	})

	t.Run("returns EINVALID for an empty selector", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.Find(doc, "  ")

		assert.Equal(t, isolate.EINVALID, isolate.ErrorCode(err))
	})
}

func TestAttrHelpers(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<p id="p" data-mark="yes">x</p>`)
	p := byID(t, doc, "p")

	goquery.SetAttr(p, "data-mark", "no")
	goquery.SetAttr(p, "title", "hello")
	assert.Equal(t, "no", attrOf(p, "data-mark"))
	assert.Equal(t, "hello", attrOf(p, "title"))

	goquery.RemoveAttr(p, "data-mark")
	_, err := goquery.FindByAttr(doc, "data-mark", "no")
	assert.Equal(t, isolate.ENOTFOUND, isolate.ErrorCode(err))
	assert.Equal(t, "hello", attrOf(p, "title"))
}
