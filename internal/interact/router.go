// Package interact routes pointer events to per-object handlers.
package interact

import "github.com/litescript/ls-globe/internal/scene"

// EventType is the kind of pointer event.
type EventType int

const (
	Click EventType = iota
	MouseMove
	TouchStart
)

func (t EventType) String() string {
	switch t {
	case Click:
		return "click"
	case MouseMove:
		return "mousemove"
	case TouchStart:
		return "touchstart"
	default:
		return "unknown"
	}
}

// Event is a pointer event in viewport cells. Target is the struck object,
// or zero when the pointer is over empty space.
type Event struct {
	Type   EventType
	X, Y   int
	Target scene.ID
	Locked bool // set by the router from its lock source
	Raw    any
}

// Handler handles an event and reports whether propagation should stop.
type Handler func(Event) bool

// Handlers is the handler set of one object. Touch starts use Click.
type Handlers struct {
	Click     Handler
	MouseMove Handler
}

func (h Handlers) forType(t EventType) Handler {
	switch t {
	case Click, TouchStart:
		return h.Click
	case MouseMove:
		return h.MouseMove
	default:
		return nil
	}
}

// Router maps object IDs to handler sets. Events not handled by the struck
// object fall through to the background handlers.
type Router struct {
	table      map[scene.ID]Handlers
	background Handlers
	locked     func() bool
}

// NewRouter creates a router. locked reports whether a camera animation
// currently holds the lock; it may be nil.
func NewRouter(locked func() bool) *Router {
	return &Router{table: make(map[scene.ID]Handlers), locked: locked}
}

// Register sets the handlers for an object, replacing any previous set.
func (r *Router) Register(id scene.ID, h Handlers) {
	r.table[id] = h
}

// Unregister removes an object's handlers.
func (r *Router) Unregister(id scene.ID) {
	delete(r.table, id)
}

// SetBackground sets the handlers for events over empty space.
func (r *Router) SetBackground(h Handlers) {
	r.background = h
}

// Len returns the number of registered objects.
func (r *Router) Len() int {
	return len(r.table)
}

// Reset drops every handler.
func (r *Router) Reset() {
	r.table = make(map[scene.ID]Handlers)
	r.background = Handlers{}
}

// Dispatch delivers ev and reports whether a handler consumed it.
func (r *Router) Dispatch(ev Event) bool {
	if r.locked != nil {
		ev.Locked = r.locked()
	}
	if ev.Target != 0 {
		if h, ok := r.table[ev.Target]; ok {
			if fn := h.forType(ev.Type); fn != nil && fn(ev) {
				return true
			}
		}
	}
	if fn := r.background.forType(ev.Type); fn != nil {
		return fn(ev)
	}
	return false
}
