package mock

import (
	"context"

	"github.com/fwojciec/isolate"
)

var (
	_ isolate.Scheduler      = (*Scheduler)(nil)
	_ isolate.PendingLister  = (*ListingScheduler)(nil)
	_ isolate.RangeCanceller = (*RangeScheduler)(nil)
)

// Scheduler is a mock implementation of isolate.Scheduler.
type Scheduler struct {
	ScheduleNoopFn func(ctx context.Context) (int, error)
	CancelFn       func(ctx context.Context, id int) error
}

func (s *Scheduler) ScheduleNoop(ctx context.Context) (int, error) {
	return s.ScheduleNoopFn(ctx)
}

func (s *Scheduler) Cancel(ctx context.Context, id int) error {
	return s.CancelFn(ctx, id)
}

// ListingScheduler is a Scheduler that can enumerate pending ids.
type ListingScheduler struct {
	Scheduler
	PendingFn func(ctx context.Context) ([]int, error)
}

func (s *ListingScheduler) Pending(ctx context.Context) ([]int, error) {
	return s.PendingFn(ctx)
}

// RangeScheduler is a Scheduler that cancels id ranges in one call.
type RangeScheduler struct {
	Scheduler
	CancelUpToFn func(ctx context.Context, upper int) error
}

func (s *RangeScheduler) CancelUpTo(ctx context.Context, upper int) error {
	return s.CancelUpToFn(ctx, upper)
}
