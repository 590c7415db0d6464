// Package extract composes the isolation pipeline: it cancels the host's
// pending callbacks, prunes the tree, prunes stylesheets and strips
// comments.
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/isolate"
)

// Ensure Canceller implements isolate.Canceller at compile time.
var _ isolate.Canceller = (*Canceller)(nil)

// Canceller cancels every pending timeout, interval and animation frame of
// a host, including callbacks it did not create.
//
// Schedulers that implement isolate.PendingLister have exactly their
// pending ids cancelled. Otherwise the canceller samples two fresh ids to
// estimate the highest id in use and cancels every id from there down to
// zero. The estimate assumes ids are allocated monotonically.
type Canceller struct {
	Timers isolate.Scheduler
	Frames isolate.Scheduler
	Logger *slog.Logger
}

// CancelAll cancels timers first, then frames. A nil scheduler is skipped.
func (c *Canceller) CancelAll(ctx context.Context) (isolate.CancelStats, error) {
	var stats isolate.CancelStats
	if c.Timers != nil {
		n, err := c.cancel(ctx, c.Timers)
		stats.Timers = n
		if err != nil {
			return stats, fmt.Errorf("cancel timers: %w", err)
		}
	}
	if c.Frames != nil {
		n, err := c.cancel(ctx, c.Frames)
		stats.Frames = n
		if err != nil {
			return stats, fmt.Errorf("cancel frames: %w", err)
		}
	}
	return stats, nil
}

// cancel returns the number of ids it issued cancellations for.
func (c *Canceller) cancel(ctx context.Context, s isolate.Scheduler) (int, error) {
	if lister, ok := s.(isolate.PendingLister); ok {
		ids, err := lister.Pending(ctx)
		if err == nil {
			for i, id := range ids {
				if err := s.Cancel(ctx, id); err != nil {
					return i, err
				}
			}
			return len(ids), nil
		}
		c.logger().Warn("list pending callbacks, falling back to id sampling", "err", err)
	}

	upper, err := UpperBound(ctx, s)
	if err != nil {
		return 0, err
	}
	if rc, ok := s.(isolate.RangeCanceller); ok {
		if err := rc.CancelUpTo(ctx, upper); err != nil {
			return 0, err
		}
		return upper + 1, nil
	}
	for id := upper; id >= 0; id-- {
		if err := ctx.Err(); err != nil {
			return upper - id, err
		}
		if err := s.Cancel(ctx, id); err != nil {
			return upper - id, err
		}
	}
	return upper + 1, nil
}

// UpperBound schedules two no-op callbacks and extrapolates from their ids
// an id no lower than any callback scheduled before. The gap between the
// two samples covers ids allocated concurrently by the host.
func UpperBound(ctx context.Context, s isolate.Scheduler) (int, error) {
	id1, err := s.ScheduleNoop(ctx)
	if err != nil {
		return 0, err
	}
	id2, err := s.ScheduleNoop(ctx)
	if err != nil {
		return 0, err
	}
	if id2 < id1 {
		return 0, isolate.Errorf(isolate.EINTERNAL, "scheduler ids are not monotonic: %d then %d", id1, id2)
	}
	return id2 + (id2 - id1 - 1), nil
}

func (c *Canceller) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
