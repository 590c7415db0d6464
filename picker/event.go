// Package picker lets a user choose the element to isolate by pointing at
// it. The pointer highlights the element underneath; a click picks it.
package picker

import (
	"slices"
	"sync"

	"golang.org/x/net/html"
)

// EventType names a pointer event.
type EventType string

// Event types the picker listens for.
const (
	PointerMove EventType = "pointermove"
	Click       EventType = "click"
)

// Event is a pointer event aimed at an element.
type Event struct {
	Type   EventType
	Target *html.Node

	defaultPrevented bool
	stopped          bool
}

// PreventDefault marks the event's default action as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether a listener called PreventDefault.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation keeps the event from reaching listeners registered in a
// later phase.
func (e *Event) StopPropagation() { e.stopped = true }

// Listener handles an event.
type Listener func(*Event)

// EventTarget dispatches events to registered listeners. Capturing
// listeners run before bubbling ones, each group in registration order.
// It is safe for concurrent use.
type EventTarget struct {
	mu        sync.Mutex
	listeners []*Registration
}

// Registration is the handle returned by AddListener.
type Registration struct {
	target  *EventTarget
	typ     EventType
	fn      Listener
	capture bool
}

// AddListener registers fn for events of type typ.
func (t *EventTarget) AddListener(typ EventType, fn Listener, capture bool) *Registration {
	r := &Registration{target: t, typ: typ, fn: fn, capture: capture}
	t.mu.Lock()
	t.listeners = append(t.listeners, r)
	t.mu.Unlock()
	return r
}

// Remove unregisters the listener. A listener removed while an event is
// being dispatched does not run for that event. Removing twice is a no-op.
func (r *Registration) Remove() {
	t := r.target
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = slices.DeleteFunc(t.listeners, func(l *Registration) bool { return l == r })
}

// Active reports whether the listener is still registered.
func (r *Registration) Active() bool {
	t := r.target
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Contains(t.listeners, r)
}

// Len returns the number of listeners registered for typ.
func (t *EventTarget) Len(typ EventType) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, l := range t.listeners {
		if l.typ == typ {
			n++
		}
	}
	return n
}

// Dispatch delivers e to the listeners registered for its type.
func (t *EventTarget) Dispatch(e *Event) {
	t.mu.Lock()
	snapshot := slices.Clone(t.listeners)
	t.mu.Unlock()

	for _, capture := range []bool{true, false} {
		for _, r := range snapshot {
			if r.capture != capture || r.typ != e.Type || !r.Active() {
				continue
			}
			r.fn(e)
		}
		if e.stopped {
			return
		}
	}
}
