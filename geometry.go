package fbcomp

import (
	"fmt"
	"slices"

	"github.com/gogpu/fbcomp/region"
)

// MoveResize gives w the screen rectangle r, after applying its size
// limits, and repaints what changed.
//
// A pure translation of a direct window scrolls the still valid pixels on
// screen and only asks for the rest. Otherwise the whole new rectangle is
// damaged. Areas uncovered by the move are damaged in the windows below.
// A size change posts NEWSIZE.
func (d *Display) MoveResize(w *Window, r region.Rect) error {
	if w.flags&(FlagRoot|FlagFullscreen) != 0 {
		return nil
	}
	if r.Empty() {
		return fmt.Errorf("move %s: %w", r, ErrInvalidGeometry)
	}
	width, height := w.constrain(r.Dx(), r.Dy())
	r = region.XYWH(r.X0, r.Y0, width, height)
	old := w.screen
	if r == old {
		return nil
	}
	resized := r.Dx() != old.Dx() || r.Dy() != old.Dy()
	dx, dy := r.X0-old.X0, r.Y0-old.Y0

	if !resized && !w.backBuffered() {
		if err := d.setGeometry(w, r); err != nil {
			return err
		}
		d.scrollWindow(w, dx, dy)
	} else {
		if err := d.setGeometry(w, r); err != nil {
			return err
		}
		d.Damage(r, w)
	}
	d.damageUncovered(old, w)

	if resized {
		w.post(Event{Type: EventNewSize, W: r.Dx(), H: r.Dy()})
	}
	return nil
}

// scrollWindow moves the on-screen pixels of a direct window that was just
// translated by (dx, dy) and damages the part it could not move.
func (d *Display) scrollWindow(w *Window, dx, dy int) {
	vis := w.screen.Intersect(d.bounds)
	if vis.Empty() {
		return
	}
	moved, err := region.NewRect(d.pool, vis)
	if err != nil {
		d.allocFailed("move", err)
		d.Damage(vis, w)
		return
	}
	defer moved.Free()
	// The source must have been on screen and not covered before the move,
	// the destination must not be covered after it.
	moved.AndRect(d.bounds, dx, dy)
	l, err := d.layers(w, 0, 0)
	if err == nil {
		err = moved.SubRegion(l)
		if err == nil {
			l.Shift(dx, dy)
			err = moved.SubRegion(l)
		}
		l.Free()
	}
	if err != nil {
		d.allocFailed("move", err)
		d.Damage(vis, w)
		return
	}

	scrollRegion(d.screen, moved, dx, dy)
	for _, m := range moved.Rects() {
		d.markDirty(w, m)
	}

	rest, err := region.NewRect(d.pool, vis)
	if err == nil {
		err = rest.SubRegion(moved)
	}
	if err != nil {
		d.allocFailed("move", err)
		if rest != nil {
			rest.Free()
		}
		d.Damage(vis, w)
		return
	}
	for _, e := range rest.Rects() {
		d.Damage(e, w)
	}
	rest.Free()
}

// damageUncovered damages the windows below w where old is no longer
// covered by w.
func (d *Display) damageUncovered(old region.Rect, w *Window) {
	strips, err := region.NewRect(d.pool, old)
	if err != nil {
		d.allocFailed("move", err)
		return
	}
	defer strips.Free()
	if err := strips.SubRect(w.screen); err != nil {
		d.allocFailed("move", err)
		d.Damage(old, w)
		return
	}
	for _, s := range strips.Rects() {
		d.Damage(s, w)
	}
}

// Raise moves w to the top of its stacking group and repaints the parts
// that were covered.
func (d *Display) Raise(w *Window) {
	i := d.indexOf(w)
	if i < 0 || w.flags&FlagRoot != 0 {
		return
	}
	covered, err := d.layers(w, 0, 0)
	if err != nil {
		d.allocFailed("raise", err)
		return
	}
	defer covered.Free()

	d.mu.Lock()
	d.stack = slices.Delete(d.stack, i, i+1)
	j := d.placement(w)
	d.insertAt(w, j)
	d.mu.Unlock()
	if j == i {
		return
	}
	covered.AndRect(w.screen, 0, 0)
	for _, c := range covered.Rects() {
		d.Damage(c, w)
	}
}

// Lower moves w to the bottom of its stacking group, above the root, and
// repaints the windows it no longer covers.
func (d *Display) Lower(w *Window) {
	i := d.indexOf(w)
	if i < 0 || w.flags&FlagRoot != 0 {
		return
	}
	d.mu.Lock()
	d.stack = slices.Delete(d.stack, i, i+1)
	j := d.lowest(w)
	d.insertAt(w, j)
	d.mu.Unlock()

	// Windows that moved above w now show where they overlap it.
	for _, id := range d.stack[i:j] {
		o := d.windows[id]
		if r := o.screen.Intersect(w.screen); !r.Empty() {
			d.Damage(r, o)
		}
	}
}

// SetClip restricts drawing in w to local rectangle r.
func (d *Display) SetClip(w *Window, r region.Rect) {
	w.userClip = r
	w.hasUserClip = true
	w.updateClip(d.bounds)
}

// UnsetClip removes the drawing restriction of w.
func (d *Display) UnsetClip(w *Window) {
	w.hasUserClip = false
	w.updateClip(d.bounds)
}

// AttrMask selects the fields of Attrs applied by SetAttrs.
type AttrMask uint32

const (
	AttrTitle AttrMask = 1 << iota
	AttrEventMask
	AttrSizeLimits
	AttrBorderless
)

// Attrs carries changeable window attributes.
type Attrs struct {
	Title      string
	EventMask  EventType
	MinW, MinH int
	MaxW, MaxH int
	Borderless bool
}

// SetAttrs applies the attributes selected by mask. New size limits are
// enforced immediately.
func (d *Display) SetAttrs(w *Window, mask AttrMask, a Attrs) error {
	if mask&AttrTitle != 0 {
		w.title = a.Title
	}
	if mask&AttrEventMask != 0 {
		w.mask = a.EventMask
	}
	if mask&AttrBorderless != 0 {
		if a.Borderless {
			w.flags |= FlagBorderless
		} else {
			w.flags &^= FlagBorderless
		}
	}
	if mask&AttrSizeLimits != 0 {
		w.minW, w.minH, w.maxW, w.maxH = a.MinW, a.MinH, a.MaxW, a.MaxH
		return d.MoveResize(w, w.screen)
	}
	return nil
}

// AllocPen creates a pen of color rgb (0xRRGGBB) in w.
func (d *Display) AllocPen(w *Window, rgb uint32) PenID {
	return w.allocPen(rgb)
}

// FreePen releases a pen of w.
func (d *Display) FreePen(w *Window, pen PenID) error {
	return w.freePen(pen)
}
