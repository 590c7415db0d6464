//go:build integration && !windows

package rod_test

import (
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/isolate/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowser_Close_KillsLauncherProcess(t *testing.T) {
	t.Parallel()

	browser, err := rod.Launch()
	require.NoError(t, err)
	pid := browser.LauncherPID()
	require.NotZero(t, pid)

	// Signal 0 only checks that the process exists.
	require.NoError(t, syscall.Kill(pid, syscall.Signal(0)))

	require.NoError(t, browser.Close())
	time.Sleep(100 * time.Millisecond)

	assert.Error(t, syscall.Kill(pid, syscall.Signal(0)))
}
