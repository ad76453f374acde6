package fbcomp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/fbcomp/internal/queue"
	"github.com/gogpu/fbcomp/region"
)

// EventType identifies an event. Types are bits so that a window can
// subscribe to a set of them.
type EventType uint32

const (
	// EventRefresh asks a direct window to repaint X, Y, W, H.
	EventRefresh EventType = 1 << iota
	// EventNewSize reports the new W and H after a resize.
	EventNewSize
	// EventMouseMove reports the pointer position.
	EventMouseMove
	// EventMouseButton reports a button change in Code.
	EventMouseButton
	// EventKeyDown reports a pressed key in Code.
	EventKeyDown
	// EventKeyUp reports a released key in Code.
	EventKeyUp
	// EventInterval is sent on every interval tick.
	EventInterval
	// EventFocus reports a focus change; Code is 1 when gained.
	EventFocus
	// EventClose asks the window to close.
	EventClose

	// EventAll subscribes to every event type.
	EventAll = EventRefresh | EventNewSize | EventMouseMove | EventMouseButton |
		EventKeyDown | EventKeyUp | EventInterval | EventFocus | EventClose
)

var eventNames = map[EventType]string{
	EventRefresh:     "REFRESH",
	EventNewSize:     "NEWSIZE",
	EventMouseMove:   "MOUSEMOVE",
	EventMouseButton: "MOUSEBUTTON",
	EventKeyDown:     "KEYDOWN",
	EventKeyUp:       "KEYUP",
	EventInterval:    "INTERVAL",
	EventFocus:       "FOCUS",
	EventClose:       "CLOSE",
}

func (t EventType) String() string {
	if s, ok := eventNames[t]; ok {
		return s
	}
	return fmt.Sprintf("EventType(%#x)", uint32(t))
}

// Event is a notification delivered to a window's queue.
//
// Rectangles (REFRESH) and sizes (NEWSIZE) use X, Y, W, H in window
// coordinates. Pointer events carry the position in MouseX, MouseY, also
// in window coordinates.
type Event struct {
	Type      EventType
	Window    WindowID
	X, Y      int
	W, H      int
	Code      uint32
	Qualifier uint32
	MouseX    int
	MouseY    int
	Time      time.Time
}

// Rect returns X, Y, W, H as an inclusive rectangle.
func (e Event) Rect() region.Rect {
	return region.XYWH(e.X, e.Y, e.W, e.H)
}

// EventQueue is the receive side of a window's events. It is unbounded and
// safe for concurrent use.
type EventQueue struct {
	q *queue.Queue[Event]
}

func newEventQueue() *EventQueue {
	return &EventQueue{q: queue.New[Event]()}
}

// Poll returns the next event without blocking.
func (e *EventQueue) Poll() (Event, bool) {
	return e.q.Pop()
}

// Wait blocks until an event arrives, ctx is done or the window is closed
// and all its events have been read. The last case returns ErrWindowClosed.
func (e *EventQueue) Wait(ctx context.Context) (Event, error) {
	ev, err := e.q.Wait(ctx)
	if errors.Is(err, queue.ErrClosed) {
		return ev, ErrWindowClosed
	}
	return ev, err
}

// Ready returns a channel signaled when new events may be available.
func (e *EventQueue) Ready() <-chan struct{} {
	return e.q.Ready()
}

// Len returns the number of pending events.
func (e *EventQueue) Len() int {
	return e.q.Len()
}

// Drain removes and returns all pending events.
func (e *EventQueue) Drain() []Event {
	return e.q.Drain()
}
