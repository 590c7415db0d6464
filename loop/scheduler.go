package loop

import (
	"context"

	"github.com/fwojciec/isolate"
)

// Ensure Timers and Frames implement the scheduler interfaces at compile time.
var (
	_ isolate.Scheduler     = (*Timers)(nil)
	_ isolate.PendingLister = (*Timers)(nil)
	_ isolate.Scheduler     = (*Frames)(nil)
	_ isolate.PendingLister = (*Frames)(nil)
)

// Timers exposes the loop's timeouts and intervals as an isolate.Scheduler.
type Timers struct {
	loop *Loop
}

// Timers returns the timeout scheduler of l.
func (l *Loop) Timers() *Timers {
	return &Timers{loop: l}
}

// ScheduleNoop registers an empty timeout.
func (t *Timers) ScheduleNoop(ctx context.Context) (int, error) {
	return t.loop.SetTimeout(func() {}, 0), nil
}

// Cancel clears the timeout or interval with the given id.
func (t *Timers) Cancel(ctx context.Context, id int) error {
	t.loop.ClearTimeout(id)
	return nil
}

// Pending lists the ids of scheduled timeouts and intervals.
func (t *Timers) Pending(ctx context.Context) ([]int, error) {
	return t.loop.PendingTimers(), nil
}

// Frames exposes the loop's animation frames as an isolate.Scheduler.
type Frames struct {
	loop *Loop
}

// Frames returns the animation-frame scheduler of l.
func (l *Loop) Frames() *Frames {
	return &Frames{loop: l}
}

// ScheduleNoop requests an empty animation frame.
func (f *Frames) ScheduleNoop(ctx context.Context) (int, error) {
	return f.loop.RequestAnimationFrame(func() {}), nil
}

// Cancel cancels the frame with the given id.
func (f *Frames) Cancel(ctx context.Context, id int) error {
	f.loop.CancelAnimationFrame(id)
	return nil
}

// Pending lists the ids of frame callbacks that have not run yet.
func (f *Frames) Pending(ctx context.Context) ([]int, error) {
	return f.loop.PendingFrames(), nil
}
