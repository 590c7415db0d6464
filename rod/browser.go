// Package rod drives Chrome over the DevTools protocol with go-rod: it
// renders pages, cancels their timers and frames, evaluates media queries
// and runs the interactive element picker.
package rod

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/isolate"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Browser is one Chrome process, launched for a single run.
type Browser struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	headless bool
	closed   atomic.Bool
}

// LaunchOption configures Launch.
type LaunchOption func(*Browser)

// WithHeadless controls whether Chrome runs without a window. The picker
// needs a visible window. Defaults to true.
func WithHeadless(headless bool) LaunchOption {
	return func(b *Browser) {
		b.headless = headless
	}
}

// Launch starts Chrome and connects to it.
// Close must be called when the Browser is no longer needed.
func Launch(opts ...LaunchOption) (*Browser, error) {
	b := &Browser{headless: true}
	for _, opt := range opts {
		opt(b)
	}

	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Leakless(true).
		Headless(b.headless)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	b.browser = browser
	b.launcher = l
	return b, nil
}

// newPage opens a blank tab, through go-rod/stealth when hide is set.
func (b *Browser) newPage(hide bool) (*rod.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil, isolate.Errorf(isolate.EINVALID, "browser is closed")
	}
	if hide {
		return stealth.Page(b.browser)
	}
	return b.browser.Page(proto.TargetCreateTarget{})
}

// Closed reports whether Close has been called.
func (b *Browser) Closed() bool {
	return b.closed.Load()
}

// Close shuts Chrome down. Close is safe to call multiple times.
func (b *Browser) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.browser.Close()
	b.browser = nil
	b.launcher.Kill()
	return err
}

// LauncherPID returns the process ID of the Chrome launcher, or 0 once
// closed.
func (b *Browser) LauncherPID() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return 0
	}
	return b.launcher.PID()
}
