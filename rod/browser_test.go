//go:build integration

package rod_test

import (
	"testing"

	"github.com/fwojciec/isolate/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowser_Close(t *testing.T) {
	t.Parallel()

	t.Run("reports closed after close", func(t *testing.T) {
		t.Parallel()

		browser, err := rod.Launch()
		require.NoError(t, err)
		assert.False(t, browser.Closed())
		require.NotZero(t, browser.LauncherPID())

		require.NoError(t, browser.Close())

		assert.True(t, browser.Closed())
		assert.Zero(t, browser.LauncherPID())
	})
}
