package fbcomp

import (
	"github.com/gogpu/fbcomp/pixel"
	"github.com/gogpu/fbcomp/region"
)

// WindowID is a stable handle of an open window. Zero is never used.
type WindowID uint32

// PenID names a color allocated in one window. Zero is never used.
type PenID uint32

// Flags describe window behavior.
type Flags uint32

const (
	// FlagRoot marks the root window. It covers the screen, stays at the
	// bottom of the stack and there is at most one.
	FlagRoot Flags = 1 << iota
	// FlagPopup keeps the window above all non-popup windows.
	FlagPopup
	// FlagBackBuffer gives the window a private pixel buffer composited
	// into the screen on flush. Such windows are never occluded while
	// drawing and never receive REFRESH.
	FlagBackBuffer
	// FlagBorderless is carried for clients that draw decorations.
	FlagBorderless
	// FlagFullscreen forces the window to the screen bounds.
	FlagFullscreen
	// FlagDirty is set by the compositor while a back buffer holds
	// changes not yet composited.
	FlagDirty
)

// offscreen is the cached clip of a window with nothing to draw on.
var offscreen = region.Rect{X0: -1, Y0: -1, X1: -2, Y1: -2}

// Window is one entry of the window stack.
//
// All fields are owned by the goroutine running the Display, except
// screen, which is also read by WindowAt under Display.mu.
type Window struct {
	id    WindowID
	title string
	flags Flags

	// screen is the window rectangle in screen coordinates.
	screen region.Rect
	// draw is the window rectangle in buffer coordinates: the screen
	// rectangle for direct windows, the origin based rectangle for back
	// buffered ones.
	draw region.Rect
	// userClip is the client clip in window coordinates.
	userClip    region.Rect
	hasUserClip bool
	// clip is draw ∩ userClip (∩ screen for direct windows) in buffer
	// coordinates, or offscreen.
	clip region.Rect

	buf   *pixel.Buffer // back buffer, nil for direct windows
	dirty *region.Region

	pens    map[PenID]uint32
	nextPen PenID

	minW, minH int
	maxW, maxH int

	mask   EventType
	events *EventQueue
}

// ID returns the window handle.
func (w *Window) ID() WindowID { return w.id }

// Title returns the window title.
func (w *Window) Title() string { return w.title }

// Flags returns the window flags.
func (w *Window) Flags() Flags { return w.flags }

// Rect returns the window rectangle in screen coordinates.
func (w *Window) Rect() region.Rect { return w.screen }

// Events returns the window's event queue.
func (w *Window) Events() *EventQueue { return w.events }

// Buffer returns the back buffer, or nil for direct windows.
func (w *Window) Buffer() *pixel.Buffer { return w.buf }

func (w *Window) backBuffered() bool { return w.flags&FlagBackBuffer != 0 }

// toBuffer converts window coordinates to buffer coordinates.
func (w *Window) toBuffer(r region.Rect) region.Rect {
	return r.Add(w.draw.X0, w.draw.Y0)
}

// toLocal converts buffer coordinates to window coordinates.
func (w *Window) toLocal(r region.Rect) region.Rect {
	return r.Add(-w.draw.X0, -w.draw.Y0)
}

// updateClip recomputes the cached clip rectangle.
func (w *Window) updateClip(screen region.Rect) {
	c := w.draw
	if w.hasUserClip {
		c = c.Intersect(w.toBuffer(w.userClip))
	}
	if !w.backBuffered() {
		c = c.Intersect(screen)
	}
	if c.Empty() {
		c = offscreen
	}
	w.clip = c
}

// constrain applies the size limits to a requested size.
func (w *Window) constrain(width, height int) (int, int) {
	width = max(width, w.minW, 1)
	height = max(height, w.minH, 1)
	if w.maxW > 0 {
		width = min(width, w.maxW)
	}
	if w.maxH > 0 {
		height = min(height, w.maxH)
	}
	return width, height
}

// pen resolves a pen of the window.
func (w *Window) pen(id PenID) (uint32, error) {
	rgb, ok := w.pens[id]
	if !ok {
		return 0, ErrNoPen
	}
	return rgb, nil
}

// allocPen stores rgb under a fresh pen ID.
func (w *Window) allocPen(rgb uint32) PenID {
	w.nextPen++
	w.pens[w.nextPen] = rgb & 0xffffff
	return w.nextPen
}

// freePen releases a pen.
func (w *Window) freePen(id PenID) error {
	if _, ok := w.pens[id]; !ok {
		return ErrNoPen
	}
	delete(w.pens, id)
	return nil
}

// post delivers ev when the window subscribed to its type.
func (w *Window) post(ev Event) {
	if w.mask&ev.Type == 0 {
		return
	}
	ev.Window = w.id
	w.events.q.Push(ev)
}
