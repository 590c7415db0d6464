package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/isolate/mock"
	isolateslog "github.com/fwojciec/isolate/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSheetLoader_LoadSheet(t *testing.T) {
	t.Parallel()

	t.Run("logs at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.SheetLoader{
			LoadSheetFn: func(ctx context.Context, href string) (string, error) {
				return "p{}", nil
			},
		}

		css, err := isolateslog.NewLoggingSheetLoader(inner, logger).LoadSheet(context.Background(), "https://example.com/a.css")

		require.NoError(t, err)
		assert.Equal(t, "p{}", css)
		output := buf.String()
		assert.Contains(t, output, "level=DEBUG")
		assert.Contains(t, output, "href=https://example.com/a.css")
		assert.Contains(t, output, "bytes=3")
	})

	t.Run("is silent above debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SheetLoader{
			LoadSheetFn: func(ctx context.Context, href string) (string, error) {
				return "", errors.New("gone")
			},
		}

		_, err := isolateslog.NewLoggingSheetLoader(inner, logger).LoadSheet(context.Background(), "https://example.com/a.css")

		require.Error(t, err)
		assert.Empty(t, buf.String())
	})
}
