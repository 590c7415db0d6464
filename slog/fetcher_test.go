package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/isolate"
	isolatefs "github.com/fwojciec/isolate/fs"
	"github.com/fwojciec/isolate/mock"
	isolateslog "github.com/fwojciec/isolate/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTextLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs stdin as the source", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		stdin := strings.NewReader(`<html><body><p id="x">hi</p></body></html>`)
		fetcher := isolateslog.NewLoggingFetcher(isolatefs.NewFetcher(stdin), newTextLogger(&buf))

		doc, err := fetcher.Fetch(context.Background(), "-")

		require.NoError(t, err)
		assert.Contains(t, doc, `<p id="x">hi</p>`)
		output := buf.String()
		assert.Contains(t, output, "msg=fetch")
		assert.Contains(t, output, "url=-")
		assert.Contains(t, output, "bytes=42")
		assert.NotContains(t, output, "err=")
	})

	t.Run("logs a file source and its size in bytes", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "page.html")
		// "é" and "—" are two and three bytes long.
		require.NoError(t, os.WriteFile(path, []byte("<p>é—</p>"), 0o600))
		var buf bytes.Buffer
		fetcher := isolateslog.NewLoggingFetcher(isolatefs.NewFetcher(nil), newTextLogger(&buf))

		_, err := fetcher.Fetch(context.Background(), path)

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "url="+path)
		assert.Contains(t, output, "bytes=12")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs a missing file with its error code", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing.html")
		var buf bytes.Buffer
		fetcher := isolateslog.NewLoggingFetcher(isolatefs.NewFetcher(nil), newTextLogger(&buf))

		_, err := fetcher.Fetch(context.Background(), path)

		require.Error(t, err)
		assert.Equal(t, isolate.ENOTFOUND, isolate.ErrorCode(err))
		output := buf.String()
		assert.Contains(t, output, "level=INFO")
		assert.Contains(t, output, "bytes=0")
		assert.Contains(t, output, "code=not_found")
	})

	t.Run("logs stdin that is not available", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		fetcher := isolateslog.NewLoggingFetcher(isolatefs.NewFetcher(nil), newTextLogger(&buf))

		_, err := fetcher.Fetch(context.Background(), "-")

		require.Error(t, err)
		assert.Equal(t, isolate.EINVALID, isolate.ErrorCode(err))
		assert.Contains(t, buf.String(), "no stdin available")
	})

	t.Run("passes the context through to the wrapped fetcher", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var buf bytes.Buffer
		fetcher := isolateslog.NewLoggingFetcher(isolatefs.NewFetcher(strings.NewReader("<p></p>")), newTextLogger(&buf))

		_, err := fetcher.Fetch(ctx, "-")

		require.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, buf.String(), `err="context canceled"`)
	})
}

func TestLoggingFetcher_Close(t *testing.T) {
	t.Parallel()

	closed := false
	inner := &mock.Fetcher{
		CloseFn: func() error {
			closed = true
			return nil
		},
	}
	var buf bytes.Buffer

	err := isolateslog.NewLoggingFetcher(inner, newTextLogger(&buf)).Close()

	require.NoError(t, err)
	assert.True(t, closed)
	assert.Empty(t, buf.String())
}
