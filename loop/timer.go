package loop

import "time"

// SetTimeout schedules fn to run once on the loop after d and returns its
// id. Ids are assigned in increasing order starting at 1.
func (l *Loop) SetTimeout(fn func(), d time.Duration) int {
	return l.addTimer(fn, d, 0)
}

// SetInterval schedules fn to run on the loop every d until cleared.
// Intervals share the id space of timeouts.
func (l *Loop) SetInterval(fn func(), d time.Duration) int {
	if d <= 0 {
		d = time.Millisecond
	}
	return l.addTimer(fn, d, d)
}

// ClearTimeout cancels the timeout or interval with the given id.
// Unknown or already fired ids are ignored.
func (l *Loop) ClearTimeout(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.timers[id]; ok {
		t.t.Stop()
		delete(l.timers, id)
	}
}

// PendingTimers returns the ids of timeouts and intervals that are still
// scheduled, in increasing order.
func (l *Loop) PendingTimers() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedKeys(l.timers)
}

func (l *Loop) addTimer(fn func(), d, interval time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextTimerID++
	id := l.nextTimerID
	if l.closed {
		return id
	}
	l.timers[id] = &timer{
		fn:       fn,
		interval: interval,
		t:        time.AfterFunc(d, func() { l.fire(id) }),
	}
	return id
}

// fire hands timer id to the loop. The registry is checked again on the
// loop so a timer cleared after expiry but before running never runs.
func (l *Loop) fire(id int) {
	_ = l.Post(func() {
		l.mu.Lock()
		t, ok := l.timers[id]
		if !ok {
			l.mu.Unlock()
			return
		}
		if t.interval > 0 {
			t.t = time.AfterFunc(t.interval, func() { l.fire(id) })
		} else {
			delete(l.timers, id)
		}
		l.mu.Unlock()

		t.fn()
	})
}
