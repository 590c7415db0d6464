package loop

import "time"

// RequestAnimationFrame schedules fn to run on the loop at the next frame
// and returns its id. Ids are assigned in increasing order starting at 1.
func (l *Loop) RequestAnimationFrame(fn func()) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextFrameID++
	id := l.nextFrameID
	if l.closed {
		return id
	}
	l.frames[id] = fn
	if !l.frameScheduled {
		l.frameScheduled = true
		time.AfterFunc(l.frameInterval, func() { _ = l.Post(l.flushFrames) })
	}
	return id
}

// CancelAnimationFrame cancels the frame callback with the given id.
// Unknown or already run ids are ignored.
func (l *Loop) CancelAnimationFrame(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.frames, id)
}

// PendingFrames returns the ids of frame callbacks that have not run yet,
// in increasing order.
func (l *Loop) PendingFrames() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedKeys(l.frames)
}

// flushFrames runs every callback registered before the frame started.
// Callbacks requested while flushing wait for the next frame.
func (l *Loop) flushFrames() {
	l.mu.Lock()
	ids := sortedKeys(l.frames)
	l.frameScheduled = false
	l.mu.Unlock()

	for _, id := range ids {
		l.mu.Lock()
		fn, ok := l.frames[id]
		delete(l.frames, id)
		l.mu.Unlock()
		if ok {
			l.exec(fn)
		}
	}
}
