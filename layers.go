package fbcomp

import (
	"github.com/gogpu/fbcomp/region"
)

// layers returns the region covered by every window strictly above w,
// translated by (dx, dy). The caller frees it.
func (d *Display) layers(w *Window, dx, dy int) (*region.Region, error) {
	l := region.New(d.pool)
	for _, id := range d.stack {
		if id == w.id {
			break
		}
		if err := l.OrRect(d.windows[id].screen.Add(dx, dy)); err != nil {
			l.Free()
			return nil, err
		}
	}
	return l, nil
}

// layerMask returns the part of clip (buffer coordinates) that w may draw
// to when shifted by (dx, dy): clip ∩ the window clip, minus the windows
// above unless w is back-buffered. ok is false when nothing is left. The
// caller frees the region when ok.
//
// clip may start at negative coordinates: lines and blits are allowed to
// begin outside the window and are cut here. Only the window clip uses the
// negative offscreen sentinel.
func (d *Display) layerMask(clip region.Rect, w *Window, dx, dy int) (*region.Region, bool) {
	if w.clip.X0 < 0 {
		return nil, false
	}
	c := clip.Add(dx, dy).Intersect(w.clip)
	if c.Empty() {
		return nil, false
	}
	mask, err := region.NewRect(d.pool, c)
	if err != nil {
		d.allocFailed("layer mask", err)
		return nil, false
	}
	if !w.backBuffered() {
		l, err := d.layers(w, 0, 0)
		if err == nil {
			err = mask.SubRegion(l)
			l.Free()
		}
		if err != nil {
			mask.Free()
			d.allocFailed("layer mask", err)
			return nil, false
		}
	}
	if mask.IsEmpty() {
		mask.Free()
		return nil, false
	}
	return mask, true
}

func (d *Display) allocFailed(op string, err error) {
	Logger().Debug("fbcomp: region allocation failed", "op", op, "err", err)
}
