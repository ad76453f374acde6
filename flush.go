package fbcomp

import (
	"github.com/gogpu/fbcomp/region"
)

// Flush composites the dirty parts of back buffers into the screen buffer
// and hands every changed screen rectangle to the sinks.
//
// Windows are visited top to bottom. A back buffer only contributes where
// no window above it covers the screen.
func (d *Display) Flush() {
	if d.closed {
		return
	}
	mask, err := region.NewRect(d.pool, d.bounds)
	if err != nil {
		d.allocFailed("flush", err)
		return
	}
	defer mask.Free()

	for _, id := range d.stack {
		w := d.windows[id]
		if w.flags&FlagDirty != 0 {
			d.composite(w, mask)
		}
		if err := mask.SubRect(w.screen); err != nil {
			d.allocFailed("flush", err)
			break
		}
	}
	d.present()
}

// composite copies the dirty region of back-buffered w, restricted to the
// still uncovered mask, into the screen buffer.
func (d *Display) composite(w *Window, mask *region.Region) {
	defer func() {
		w.dirty.Clear()
		w.flags &^= FlagDirty
	}()
	g, err := w.dirty.Clone()
	if err != nil {
		d.allocFailed("flush", err)
		return
	}
	defer g.Free()
	g.Shift(w.screen.X0, w.screen.Y0)
	if err := g.AndRegion(mask, 0, 0); err != nil {
		d.allocFailed("flush", err)
		return
	}
	g.AndRect(w.screen.Intersect(d.bounds), 0, 0)

	rects := g.Rects()
	ok := make([]bool, len(rects))
	d.workers.Each(rects, func(i int, r region.Rect) {
		ok[i] = d.convert(w.buf, d.screen, r, r.X0-w.screen.X0, r.Y0-w.screen.Y0, false, false)
	})
	for i, r := range rects {
		if !ok[i] {
			Logger().Debug("fbcomp: composite failed", "window", w.id, "rect", r.String())
			continue
		}
		if err := d.dirty.MergeRect(r); err != nil {
			d.allocFailed("display dirty", err)
		}
	}
}

// present forwards the global dirty region to the device buffer and sinks
// and clears it.
func (d *Display) present() {
	if d.dirty.IsEmpty() {
		return
	}
	rects := d.dirty.Rects()
	if d.device != d.screen {
		d.workers.Each(rects, func(_ int, r region.Rect) {
			if !d.convert(d.screen, d.device, r, r.X0, r.Y0, false, false) {
				Logger().Debug("fbcomp: device copy failed", "rect", r.String())
			}
		})
	}
	for _, s := range d.sinks {
		if err := s.Update(d.device, rects); err != nil {
			Logger().Warn("fbcomp: sink update failed", "err", err)
		}
	}
	d.dirty.Clear()
}
