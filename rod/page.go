package rod

import (
	"context"
	"fmt"

	"github.com/fwojciec/isolate"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Page is a loaded browser tab.
type Page struct {
	page *rod.Page
	url  string
}

// URL returns the address the page was opened at.
func (p *Page) URL() string {
	return p.url
}

// HTML returns the serialized live document, including its doctype.
func (p *Page) HTML(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(`() => {
		const doctype = document.doctype ? new XMLSerializer().serializeToString(document.doctype) : '';
		return doctype + document.documentElement.outerHTML;
	}`)
	if err != nil {
		return "", fmt.Errorf("serialize page: %w", err)
	}
	return res.Value.Str(), nil
}

// Close closes the tab.
func (p *Page) Close() error {
	return p.page.Close()
}

// Ensure the schedulers and matcher implement the isolate interfaces at
// compile time.
var (
	_ isolate.Scheduler      = (*scheduler)(nil)
	_ isolate.RangeCanceller = (*scheduler)(nil)
	_ isolate.MediaMatcher   = (*MediaMatcher)(nil)
)

// scheduler cancels page callbacks through a pair of window functions.
type scheduler struct {
	page     *rod.Page
	schedule string
	cancel   string
}

// Timers returns the page's timeouts and intervals as a scheduler. Pages
// cannot enumerate pending timers, so it implements isolate.RangeCanceller
// instead of isolate.PendingLister.
func (p *Page) Timers() isolate.Scheduler {
	return &scheduler{page: p.page, schedule: "setTimeout", cancel: "clearTimeout"}
}

// Frames returns the page's animation frames as a scheduler.
func (p *Page) Frames() isolate.Scheduler {
	return &scheduler{page: p.page, schedule: "requestAnimationFrame", cancel: "cancelAnimationFrame"}
}

func (s *scheduler) ScheduleNoop(ctx context.Context) (int, error) {
	res, err := s.page.Context(ctx).Eval(`(fn) => window[fn](function () {}, 0)`, s.schedule)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s.schedule, err)
	}
	return res.Value.Int(), nil
}

func (s *scheduler) Cancel(ctx context.Context, id int) error {
	if _, err := s.page.Context(ctx).Eval(`(fn, id) => window[fn](id)`, s.cancel, id); err != nil {
		return fmt.Errorf("%s(%d): %w", s.cancel, id, err)
	}
	return nil
}

// CancelUpTo cancels ids upper down to zero in a single round trip.
func (s *scheduler) CancelUpTo(ctx context.Context, upper int) error {
	_, err := s.page.Context(ctx).Eval(`(fn, upper) => {
		for (let id = upper; id >= 0; id--) {
			window[fn](id);
		}
	}`, s.cancel, upper)
	if err != nil {
		return fmt.Errorf("%s up to %d: %w", s.cancel, upper, err)
	}
	return nil
}

// MediaMatcher evaluates media queries with the page's matchMedia.
type MediaMatcher struct {
	page *rod.Page
}

// Media returns a matcher bound to the page's viewport.
func (p *Page) Media() *MediaMatcher {
	return &MediaMatcher{page: p.page}
}

// MatchMedia reports whether condition currently matches in the page.
func (m *MediaMatcher) MatchMedia(ctx context.Context, condition string) (bool, error) {
	res, err := m.page.Context(ctx).Eval(`(q) => window.matchMedia(q).matches`, condition)
	if err != nil {
		return false, fmt.Errorf("matchMedia(%q): %w", condition, err)
	}
	return res.Value.Bool(), nil
}

// Viewport resizes the page's viewport. Zero dimensions leave it alone.
func (p *Page) Viewport(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	return p.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
}

// EmulateMedia overrides the page's media type and preferred color scheme.
// Empty values keep the browser defaults.
func (p *Page) EmulateMedia(mediaType, colorScheme string) error {
	req := proto.EmulationSetEmulatedMedia{Media: mediaType}
	if colorScheme != "" {
		req.Features = []*proto.EmulationMediaFeature{{Name: "prefers-color-scheme", Value: colorScheme}}
	}
	if req.Media == "" && req.Features == nil {
		return nil
	}
	return req.Call(p.page)
}
