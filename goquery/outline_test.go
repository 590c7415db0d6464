package goquery_test

import (
	"testing"

	"github.com/fwojciec/isolate/goquery"
	"github.com/stretchr/testify/assert"
)

func TestOutline(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<div id="a" class="wrap main"><span id="c">x</span></div>`)

	out := goquery.Outline(doc)

	assert.Contains(t, out, "html")
	assert.Contains(t, out, "div#a.wrap.main")
	assert.Contains(t, out, "span#c")
}
