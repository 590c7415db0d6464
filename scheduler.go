package isolate

import "context"

// CancelStats reports how many scheduler ids were cancelled.
type CancelStats struct {
	Timers int
	Frames int
}

// Scheduler is a registry of pending callbacks that only exposes creation
// and cancellation by id. Timeouts, intervals and animation frames are all
// schedulers.
type Scheduler interface {
	// ScheduleNoop registers a callback that does nothing and returns the
	// id assigned to it.
	ScheduleNoop(ctx context.Context) (int, error)

	// Cancel cancels the callback with the given id. Unknown ids are ignored.
	Cancel(ctx context.Context, id int) error
}

// PendingLister is implemented by schedulers that can enumerate the ids of
// callbacks that have not run yet.
type PendingLister interface {
	Pending(ctx context.Context) ([]int, error)
}

// RangeCanceller is implemented by schedulers that can cancel every id from
// upper down to zero in a single call.
type RangeCanceller interface {
	CancelUpTo(ctx context.Context, upper int) error
}

// Canceller cancels all outstanding timers and animation frames.
type Canceller interface {
	CancelAll(ctx context.Context) (CancelStats, error)
}
