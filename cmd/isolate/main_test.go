package main_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	main "github.com/fwojciec/isolate/cmd/isolate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html><html><head>
<style>.unused { color: red; } #c { color: blue; } @media (max-width: 600px) { #c { color: green; } }</style>
</head><body><!-- nav --><nav>menu</nav><div id="a"><div id="b"><p id="c">Hello <strong>world</strong></p></div><div id="d">y</div></div></body></html>`

func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	m := main.NewMain()
	m.Stdin = strings.NewReader(stdin)
	var out, errOut bytes.Buffer
	err = m.Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, "", "--help")

	require.NoError(t, err)
	assert.Contains(t, stdout, "isolate")
	assert.Contains(t, stdout, "--select")
	assert.Contains(t, stdout, "--pick")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "")

	assert.Error(t, err)
}

func TestMain_Run_Validation(t *testing.T) {
	t.Parallel()

	t.Run("requires a selector or pick", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, page, "-")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "--select or --pick")
	})

	t.Run("rejects select together with pick", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, page, "--select", "#c", "--pick", "page.html")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})

	t.Run("rejects pick from stdin", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, page, "--pick", "-")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "stdin")
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, page, "-s", "#c", "-f", "pdf", "-")

		assert.Error(t, err)
	})
}

func TestMain_Run_Isolate(t *testing.T) {
	t.Parallel()

	t.Run("isolates from stdin to stdout", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, page, "-s", "#c", "-")

		require.NoError(t, err)
		assert.Contains(t, stdout, `<div id="a"><div id="b"><p id="c">Hello <strong>world</strong></p></div></div>`)
		assert.NotContains(t, stdout, "menu")
		assert.NotContains(t, stdout, `id="d"`)
		assert.NotContains(t, stdout, ".unused")
		assert.NotContains(t, stdout, "<!--")
		assert.Contains(t, stdout, "#c {")
	})

	t.Run("evaluates media queries against the viewport", func(t *testing.T) {
		t.Parallel()

		wide, _, err := run(t, page, "-s", "#c", "-")
		require.NoError(t, err)
		narrow, _, err := run(t, page, "-s", "#c", "--width", "375", "-")
		require.NoError(t, err)

		assert.NotContains(t, wide, "max-width")
		assert.Contains(t, narrow, "max-width: 600px")
	})

	t.Run("reports a selector with no match", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, page, "-s", "#missing", "-")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "#missing")
	})

	t.Run("reports a missing file", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, "", "-s", "#c", filepath.Join(t.TempDir(), "missing.html"))

		assert.Error(t, err)
	})

	t.Run("writes markdown to a file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := filepath.Join(dir, "page.html")
		out := filepath.Join(dir, "out", "page.md")
		require.NoError(t, os.WriteFile(in, []byte(page), 0o644))

		stdout, _, err := run(t, "", "-s", "#c", "-f", "markdown", "-o", out, in)

		require.NoError(t, err)
		assert.Empty(t, stdout)
		got, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(got), "Hello **world**")
		assert.NotContains(t, string(got), "menu")
	})

	t.Run("prints the tree outline to stderr", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := run(t, page, "-s", "#c", "--tree", "-")

		require.NoError(t, err)
		assert.Contains(t, stderr, "div#a")
		assert.Contains(t, stderr, "p#c")
		assert.NotContains(t, stderr, "nav")
	})

	t.Run("logs the run when verbose", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := run(t, page, "-s", "#c", "-v", "-")

		require.NoError(t, err)
		assert.Contains(t, stderr, "msg=isolate")
		assert.Contains(t, stderr, "rules_removed=")
	})

	t.Run("fetches URLs and inlines linked stylesheets", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html><head><link rel="stylesheet" href="/site.css"></head>` +
				`<body><main><article id="post">text</article><aside>ad</aside></main></body></html>`))
		})
		mux.HandleFunc("/site.css", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/css")
			_, _ = w.Write([]byte(`#post { margin: 0; } aside { float: right; }`))
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		stdout, _, err := run(t, "", "-s", "#post", srv.URL+"/page")

		require.NoError(t, err)
		assert.Contains(t, stdout, `<article id="post">text</article>`)
		assert.Contains(t, stdout, "#post {")
		assert.NotContains(t, stdout, "float: right")
		assert.NotContains(t, stdout, "<link")
	})
}
