// Package loop provides a single-goroutine cooperative event loop with a
// timer and animation-frame registry. It plays the role of a page's event
// loop for documents processed without a browser: every task runs on the
// loop goroutine, so tasks never run concurrently and need no locking of
// the document tree.
package loop

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fwojciec/isolate"
)

// DefaultFrameInterval is the delay between animation frames (~60Hz).
const DefaultFrameInterval = 16 * time.Millisecond

// Ensure Loop implements isolate.Executor at compile time.
var _ isolate.Executor = (*Loop)(nil)

// Loop runs posted tasks one at a time on a dedicated goroutine.
// Loop is safe for concurrent use; Do must not be called from a task.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}

	nextTimerID int
	timers      map[int]*timer

	nextFrameID    int
	frames         map[int]func()
	frameScheduled bool
	frameInterval  time.Duration

	logger *slog.Logger
}

type timer struct {
	fn       func()
	interval time.Duration
	t        *time.Timer
}

// Option configures a Loop.
type Option func(*Loop)

// WithFrameInterval sets the delay between animation frames.
// Defaults to DefaultFrameInterval if not specified.
func WithFrameInterval(d time.Duration) Option {
	return func(l *Loop) {
		l.frameInterval = d
	}
}

// WithLogger sets the logger used to report panicking tasks.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// New creates a Loop and starts its goroutine.
// Close must be called when the Loop is no longer needed.
func New(opts ...Option) *Loop {
	l := &Loop{
		wake:          make(chan struct{}, 1),
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
		timers:        make(map[int]*timer),
		frames:        make(map[int]func()),
		frameInterval: DefaultFrameInterval,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	go l.run()
	return l
}

// Post enqueues fn without waiting for it to run.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return isolate.Errorf(isolate.EINVALID, "event loop closed")
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Do runs fn on the loop and waits for it to return. If ctx is done before
// the task starts, fn is skipped and the context error is returned.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ran := make(chan struct{})
	skipped := false
	if err := l.Post(func() {
		defer close(ran)
		if ctx.Err() != nil {
			skipped = true
			return
		}
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-ran:
		if skipped {
			return ctx.Err()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return isolate.Errorf(isolate.EINVALID, "event loop closed")
	}
}

// Close stops the loop, cancels every pending timer and frame, and waits
// for the running task to finish. Queued tasks are dropped.
// Close is safe to call multiple times.
func (l *Loop) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return nil
	}
	l.closed = true
	for id, t := range l.timers {
		t.t.Stop()
		delete(l.timers, id)
	}
	clear(l.frames)
	l.queue = nil
	l.mu.Unlock()

	close(l.quit)
	<-l.done
	return nil
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case <-l.wake:
		}

		for {
			select {
			case <-l.quit:
				return
			default:
			}
			fn := l.pop()
			if fn == nil {
				break
			}
			l.exec(fn)
		}
	}
}

func (l *Loop) pop() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn
}

// exec runs a task, reporting a panic instead of killing the loop, the way
// a browser reports an exception thrown by a callback.
func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panicked", "panic", r)
		}
	}()
	fn()
}

func sortedKeys[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
