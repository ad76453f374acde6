package fbcomp

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/fbcomp/internal/cache"
	"github.com/gogpu/fbcomp/internal/parallel"
	"github.com/gogpu/fbcomp/pixel"
	"github.com/gogpu/fbcomp/region"
	"github.com/gogpu/fbcomp/surface"
)

// Display is one compositor instance: a screen buffer, the z-ordered
// window stack and the regions describing what needs to reach the sinks.
//
// A Display is not safe for concurrent use. Exactly one goroutine, normally
// a Dispatcher, calls its mutating methods. Other goroutines may call
// WindowAt, Focus, Pointer and Stack, which read the shared fields under
// mu.
type Display struct {
	// mu guards stack, the screen rectangles of windows, focus and the
	// pointer state against readers on other goroutines. The owning
	// goroutine takes it only to write them.
	mu sync.Mutex

	bounds region.Rect
	screen *pixel.Buffer
	device *pixel.Buffer

	pool  *region.Pool
	dirty *region.Region

	// stack lists windows front to back: index 0 is the topmost.
	stack   []WindowID
	windows map[WindowID]*Window
	nextID  WindowID
	root    *Window

	focus     WindowID
	mouseX    int
	mouseY    int
	qualifier uint32

	sinks   []surface.Sink
	convert pixel.ConvertFunc
	pixmaps *cache.Cache
	buffers *pixel.Pool
	workers *parallel.Pool
	opts    displayOptions
	closed  bool
}

// NewDisplay creates a display with a width x height screen buffer and
// attaches every configured sink. Any failure aborts creation.
func NewDisplay(width, height int, opts ...DisplayOption) (*Display, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	screen, err := pixel.New(width, height, o.format)
	if err != nil {
		return nil, fmt.Errorf("fbcomp: screen buffer: %w", err)
	}
	device := screen
	if o.device != nil {
		if o.device.Width != width || o.device.Height != height {
			return nil, fmt.Errorf("fbcomp: device buffer %dx%d for %dx%d screen: %w",
				o.device.Width, o.device.Height, width, height, ErrInvalidGeometry)
		}
		device = o.device
	}

	pool := region.NewPool(region.WithMaxNodes(o.poolLimit), region.WithMergePolicy(o.policy))
	d := &Display{
		bounds:  screen.Bounds(),
		screen:  screen,
		device:  device,
		pool:    pool,
		dirty:   region.New(pool),
		windows: make(map[WindowID]*Window),
		convert: o.convert,
		buffers: pixel.NewPool(o.buffersKept),
		opts:    o,
	}
	if o.cacheBytes > 0 {
		d.pixmaps = cache.New(o.cacheBytes)
	}
	if o.workers > 0 {
		d.workers = parallel.NewPool(o.workers)
	}

	for i, s := range o.sinks {
		if err := s.Attach(width, height, device.Format); err != nil {
			for _, prev := range o.sinks[:i] {
				_ = prev.Close()
			}
			d.workers.Close()
			return nil, fmt.Errorf("fbcomp: attach sink: %w", err)
		}
		d.sinks = append(d.sinks, s)
	}

	Logger().Info("fbcomp: display open", "width", width, "height", height,
		"format", o.format.String(), "sinks", len(d.sinks))
	return d, nil
}

// Close closes every window and sink. The display must not be used
// afterwards.
func (d *Display) Close() error {
	if d.closed {
		return nil
	}
	for len(d.stack) > 0 {
		d.CloseWindow(d.windows[d.stack[0]])
	}
	d.dirty.Free()
	d.workers.Close()
	var firstErr error
	for _, s := range d.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	d.closed = true
	Logger().Info("fbcomp: display closed")
	return firstErr
}

// Bounds returns the screen rectangle.
func (d *Display) Bounds() region.Rect { return d.bounds }

// Screen returns the shared screen buffer.
func (d *Display) Screen() *pixel.Buffer { return d.screen }

// Pool returns the rectangle pool shared by all regions of the display.
func (d *Display) Pool() *region.Pool { return d.pool }

// PixmapStats returns the pixmap cache statistics.
func (d *Display) PixmapStats() cache.Stats {
	if d.pixmaps == nil {
		return cache.Stats{}
	}
	return d.pixmaps.Stats()
}

// InvalidatePixmaps drops every cached conversion made for the blit key.
// Callers use it after changing a source buffer whose key they keep. It
// returns the number of entries removed.
func (d *Display) InvalidatePixmaps(key uint64) int {
	if d.pixmaps == nil || key == 0 {
		return 0
	}
	return d.pixmaps.Invalidate(key)
}

// DirtyRects returns the screen rectangles waiting for the next flush.
func (d *Display) DirtyRects() []region.Rect { return d.dirty.Rects() }

// Window returns the open window with the given ID.
func (d *Display) Window(id WindowID) (*Window, bool) {
	w, ok := d.windows[id]
	return w, ok
}

// lookup is Window with an error for request handlers.
func (d *Display) lookup(id WindowID) (*Window, error) {
	w, ok := d.windows[id]
	if !ok {
		return nil, fmt.Errorf("window %d: %w", id, ErrNoWindow)
	}
	return w, nil
}

// Stack returns the window IDs front to back. Safe for concurrent use.
func (d *Display) Stack() []WindowID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.stack)
}

// WindowAt returns the topmost window containing screen point (x, y).
// Safe for concurrent use.
func (d *Display) WindowAt(x, y int) (WindowID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.windowAtLocked(x, y)
}

func (d *Display) windowAtLocked(x, y int) (WindowID, bool) {
	for _, id := range d.stack {
		if d.windows[id].screen.ContainsPoint(x, y) {
			return id, true
		}
	}
	return 0, false
}

// Focus returns the focused window, zero when none. Safe for concurrent use.
func (d *Display) Focus() WindowID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focus
}

// Pointer returns the last pointer position and qualifier state.
// Safe for concurrent use.
func (d *Display) Pointer() (x, y int, qualifier uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mouseX, d.mouseY, d.qualifier
}

// indexOf returns the stack position of w, or -1.
func (d *Display) indexOf(w *Window) int {
	return slices.Index(d.stack, w.id)
}

// insertAt places w at stack position i. Caller must hold d.mu.
func (d *Display) insertAt(w *Window, i int) {
	d.stack = slices.Insert(d.stack, i, w.id)
}

// placement returns where a new or raised window goes: popups on top,
// other windows below the popups, the root at the bottom.
func (d *Display) placement(w *Window) int {
	switch {
	case w.flags&FlagRoot != 0:
		return len(d.stack)
	case w.flags&FlagPopup != 0:
		return 0
	}
	i := 0
	for i < len(d.stack) && d.windows[d.stack[i]].flags&FlagPopup != 0 {
		i++
	}
	return i
}

// lowest returns the lowest stack position w may take. w must not be in
// the stack.
func (d *Display) lowest(w *Window) int {
	if w.flags&FlagPopup != 0 {
		// Popups stay above every non-popup window.
		i := 0
		for i < len(d.stack) && d.windows[d.stack[i]].flags&FlagPopup != 0 {
			i++
		}
		return i
	}
	n := len(d.stack)
	if d.root != nil && d.root != w {
		n--
	}
	return max(n, 0)
}

// WindowSpec describes a window to open.
type WindowSpec struct {
	// X, Y, W, H give the screen rectangle. Ignored for root and
	// fullscreen windows, which cover the screen.
	X, Y, W, H int

	Flags     Flags
	Title     string
	EventMask EventType

	// Size limits; zero means unconstrained.
	MinW, MinH int
	MaxW, MaxH int
}

// OpenWindow creates a window, places it in the stack and damages its
// area so that it gets painted.
func (d *Display) OpenWindow(spec WindowSpec) (*Window, error) {
	if d.closed {
		return nil, ErrDisplayClosed
	}
	flags := spec.Flags &^ FlagDirty
	if flags&FlagRoot != 0 {
		if d.root != nil {
			return nil, ErrRootExists
		}
		flags &^= FlagPopup
	}
	rect := region.XYWH(spec.X, spec.Y, spec.W, spec.H)
	if flags&(FlagRoot|FlagFullscreen) != 0 {
		rect = d.bounds
	} else if spec.W <= 0 || spec.H <= 0 {
		return nil, fmt.Errorf("open %dx%d: %w", spec.W, spec.H, ErrInvalidGeometry)
	}

	d.nextID++
	w := &Window{
		id:     d.nextID,
		title:  spec.Title,
		flags:  flags,
		pens:   make(map[PenID]uint32),
		minW:   spec.MinW,
		minH:   spec.MinH,
		maxW:   spec.MaxW,
		maxH:   spec.MaxH,
		mask:   spec.EventMask,
		events: newEventQueue(),
	}
	if flags&(FlagRoot|FlagFullscreen) == 0 {
		width, height := w.constrain(rect.Dx(), rect.Dy())
		rect = region.XYWH(rect.X0, rect.Y0, width, height)
	}
	if err := d.setGeometry(w, rect); err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.windows[w.id] = w
	d.insertAt(w, d.placement(w))
	if w.flags&FlagRoot != 0 {
		d.root = w
	}
	d.mu.Unlock()

	d.Damage(w.screen, w)
	Logger().Info("fbcomp: window open", "id", w.id, "title", w.title, "rect", w.screen.String())
	return w, nil
}

// setGeometry assigns the screen rectangle and (re)allocates the back
// buffer when the size changed.
func (d *Display) setGeometry(w *Window, r region.Rect) error {
	if w.backBuffered() && (w.buf == nil || w.buf.Width != r.Dx() || w.buf.Height != r.Dy()) {
		buf, err := d.buffers.Get(r.Dx(), r.Dy(), d.screen.Format)
		if err != nil {
			return fmt.Errorf("fbcomp: back buffer: %w", err)
		}
		if w.buf != nil {
			d.buffers.Put(w.buf)
		}
		w.buf = buf
		if w.dirty == nil {
			w.dirty = region.New(d.pool)
		}
		w.dirty.Clear()
	}

	d.mu.Lock()
	w.screen = r
	d.mu.Unlock()

	if w.backBuffered() {
		w.draw = region.R(0, 0, r.Dx()-1, r.Dy()-1)
	} else {
		w.draw = r
	}
	w.updateClip(d.bounds)
	return nil
}

// CloseWindow removes w and damages what it uncovered.
func (d *Display) CloseWindow(w *Window) {
	i := d.indexOf(w)
	if i < 0 {
		return
	}
	d.mu.Lock()
	d.stack = slices.Delete(d.stack, i, i+1)
	delete(d.windows, w.id)
	if d.focus == w.id {
		d.focus = 0
	}
	if d.root == w {
		d.root = nil
	}
	d.mu.Unlock()

	if i < len(d.stack) {
		d.Damage(w.screen, d.windows[d.stack[i]])
	}
	if w.dirty != nil {
		w.dirty.Free()
	}
	if w.buf != nil {
		d.buffers.Put(w.buf)
		w.buf = nil
	}
	w.events.q.Close()
	Logger().Info("fbcomp: window closed", "id", w.id)
}
