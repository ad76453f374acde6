package fbcomp

import (
	"github.com/gogpu/fbcomp/region"
)

// Damage marks screen rectangle r as needing redisplay in below and every
// window beneath it. Parts of r covered by windows above below are charged
// to those windows and dropped; nil below walks the whole stack.
//
// Back-buffered windows record the fragment in their dirty region, to be
// composited on the next flush. Direct windows subscribed to EventRefresh
// receive one REFRESH per fragment rectangle in window coordinates.
func (d *Display) Damage(r region.Rect, below *Window) {
	r = r.Intersect(d.bounds)
	if r.Empty() {
		return
	}
	rem, err := region.NewRect(d.pool, r)
	if err != nil {
		d.allocFailed("damage", err)
		return
	}
	defer rem.Free()

	reached := below == nil
	for _, id := range d.stack {
		w := d.windows[id]
		if !reached && id == below.id {
			reached = true
		}
		if reached {
			d.damageWindow(w, rem)
		}
		if err := rem.SubRect(w.screen); err != nil {
			d.allocFailed("damage", err)
			return
		}
		if rem.IsEmpty() {
			return
		}
	}
}

// damageWindow hands the part of rem on w to the window.
func (d *Display) damageWindow(w *Window, rem *region.Region) {
	vis := w.screen.Intersect(d.bounds)
	if vis.Empty() || !rem.CheckIntersect(vis) {
		return
	}
	frag, err := rem.Clone()
	if err != nil {
		d.allocFailed("damage", err)
		return
	}
	defer frag.Free()
	frag.AndRect(vis, 0, 0)
	frag.Shift(-w.screen.X0, -w.screen.Y0)

	if w.backBuffered() {
		for _, f := range frag.Rects() {
			if err := w.dirty.MergeRect(f); err != nil {
				d.allocFailed("window dirty", err)
				break
			}
		}
		w.flags |= FlagDirty
		return
	}
	if w.mask&EventRefresh == 0 {
		return
	}
	for _, f := range frag.Rects() {
		w.post(Event{Type: EventRefresh, X: f.X0, Y: f.Y0, W: f.Dx(), H: f.Dy()})
	}
}
