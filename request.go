package fbcomp

import (
	"fmt"

	"github.com/gogpu/fbcomp/region"
)

// Request is one compositor command. The concrete types below are the
// complete set; a Dispatcher executes them one at a time.
type Request interface {
	isRequest()
}

// Reply carries the results of a request. Only the fields relevant to the
// request are set.
type Reply struct {
	// Window is the ID of a window created by OpenWindow.
	Window WindowID
	// Events is the event queue of a window created by OpenWindow.
	Events *EventQueue
	// Pen is the pen created by AllocPen.
	Pen PenID
}

type (
	// OpenWindow creates a window.
	OpenWindow struct {
		Spec WindowSpec
	}

	// CloseWindow destroys a window.
	CloseWindow struct {
		Window WindowID
	}

	// MoveResize changes the screen rectangle of a window.
	MoveResize struct {
		Window WindowID
		Rect   region.Rect
	}

	// SetAttrs changes the attributes selected by Mask.
	SetAttrs struct {
		Window WindowID
		Mask   AttrMask
		Attrs  Attrs
	}

	// AllocPen creates a pen of color RGB (0xRRGGBB).
	AllocPen struct {
		Window WindowID
		RGB    uint32
	}

	// FreePen releases a pen.
	FreePen struct {
		Window WindowID
		Pen    PenID
	}

	// SetClip restricts drawing to a window-local rectangle.
	SetClip struct {
		Window WindowID
		Rect   region.Rect
	}

	// UnsetClip removes the drawing restriction.
	UnsetClip struct {
		Window WindowID
	}

	// DrawRect draws the outline of Rect, or fills it when Fill is set.
	DrawRect struct {
		Window WindowID
		Rect   region.Rect
		Pen    PenID
		Fill   bool
	}

	// DrawLine draws a line between two inclusive end points.
	DrawLine struct {
		Window         WindowID
		X0, Y0, X1, Y1 int
		Pen            PenID
	}

	// DrawPoint sets one pixel.
	DrawPoint struct {
		Window WindowID
		X, Y   int
		Pen    PenID
	}

	// DrawTriangle fills a triangle.
	DrawTriangle struct {
		Window  WindowID
		A, B, C Point
		Pen     PenID
	}

	// DrawBuffer copies a client buffer into a window.
	DrawBuffer struct {
		Window WindowID
		Blit   BufferBlit
	}

	// CopyArea moves pixels inside a window. Expose, if set, is called on
	// the dispatcher goroutine.
	CopyArea struct {
		Window WindowID
		Rect   region.Rect
		DX, DY int
		Expose ExposeFunc
	}

	// Flush pushes pending changes to the sinks.
	Flush struct{}

	// InvalidatePixmaps drops the cached conversions of a blit key.
	InvalidatePixmaps struct {
		Key uint64
	}

	// Raise moves a window to the top of its stacking group.
	Raise struct {
		Window WindowID
	}

	// Lower moves a window to the bottom of its stacking group.
	Lower struct {
		Window WindowID
	}
)

func (OpenWindow) isRequest()        {}
func (CloseWindow) isRequest()       {}
func (MoveResize) isRequest()        {}
func (SetAttrs) isRequest()          {}
func (AllocPen) isRequest()          {}
func (FreePen) isRequest()           {}
func (SetClip) isRequest()           {}
func (UnsetClip) isRequest()         {}
func (DrawRect) isRequest()          {}
func (DrawLine) isRequest()          {}
func (DrawPoint) isRequest()         {}
func (DrawTriangle) isRequest()      {}
func (DrawBuffer) isRequest()        {}
func (CopyArea) isRequest()          {}
func (Flush) isRequest()             {}
func (InvalidatePixmaps) isRequest() {}
func (Raise) isRequest()             {}
func (Lower) isRequest()             {}

// Apply executes req on the display. It is what a Dispatcher does for each
// queued request and may be called directly by the goroutine owning d.
func (d *Display) Apply(req Request) (Reply, error) {
	if d.closed {
		return Reply{}, ErrDisplayClosed
	}
	if r, ok := req.(OpenWindow); ok {
		w, err := d.OpenWindow(r.Spec)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Window: w.id, Events: w.events}, nil
	}
	switch r := req.(type) {
	case Flush:
		d.Flush()
		return Reply{}, nil
	case InvalidatePixmaps:
		d.InvalidatePixmaps(r.Key)
		return Reply{}, nil
	}

	id, ok := windowOf(req)
	if !ok {
		return Reply{}, fmt.Errorf("%T: %w", req, ErrUnknownRequest)
	}
	w, err := d.lookup(id)
	if err != nil {
		return Reply{}, err
	}
	switch r := req.(type) {
	case CloseWindow:
		d.CloseWindow(w)
	case MoveResize:
		err = d.MoveResize(w, r.Rect)
	case SetAttrs:
		err = d.SetAttrs(w, r.Mask, r.Attrs)
	case AllocPen:
		return Reply{Pen: d.AllocPen(w, r.RGB)}, nil
	case FreePen:
		err = d.FreePen(w, r.Pen)
	case SetClip:
		d.SetClip(w, r.Rect)
	case UnsetClip:
		d.UnsetClip(w)
	case DrawRect:
		if r.Fill {
			err = d.FillRect(w, r.Rect, r.Pen)
		} else {
			err = d.DrawRect(w, r.Rect, r.Pen)
		}
	case DrawLine:
		err = d.DrawLine(w, r.X0, r.Y0, r.X1, r.Y1, r.Pen)
	case DrawPoint:
		err = d.DrawPoint(w, r.X, r.Y, r.Pen)
	case DrawTriangle:
		err = d.FillTriangle(w, r.A, r.B, r.C, r.Pen)
	case DrawBuffer:
		err = d.DrawBuffer(w, r.Blit)
	case CopyArea:
		d.CopyArea(w, r.Rect, r.DX, r.DY, r.Expose)
	case Raise:
		d.Raise(w)
	case Lower:
		d.Lower(w)
	}
	return Reply{}, err
}

// windowOf returns the window a request addresses, or false for request
// types that do not address one.
func windowOf(req Request) (WindowID, bool) {
	switch r := req.(type) {
	case CloseWindow:
		return r.Window, true
	case MoveResize:
		return r.Window, true
	case SetAttrs:
		return r.Window, true
	case AllocPen:
		return r.Window, true
	case FreePen:
		return r.Window, true
	case SetClip:
		return r.Window, true
	case UnsetClip:
		return r.Window, true
	case DrawRect:
		return r.Window, true
	case DrawLine:
		return r.Window, true
	case DrawPoint:
		return r.Window, true
	case DrawTriangle:
		return r.Window, true
	case DrawBuffer:
		return r.Window, true
	case CopyArea:
		return r.Window, true
	case Raise:
		return r.Window, true
	case Lower:
		return r.Window, true
	}
	return 0, false
}
