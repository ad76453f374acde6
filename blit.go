package fbcomp

import (
	"slices"

	"github.com/gogpu/fbcomp/pixel"
	"github.com/gogpu/fbcomp/region"
)

// ExposeFunc receives a rectangle, in window coordinates, whose contents a
// copy could not provide.
type ExposeFunc func(r region.Rect)

// CopyArea moves the pixels of local rectangle r by (dx, dy) inside w.
//
// Only destination pixels that are visible and whose source was visible
// are copied. Every other visible destination rectangle is reported to
// expose; with a nil expose, direct windows subscribed to EventRefresh get
// REFRESH events instead.
func (d *Display) CopyArea(w *Window, r region.Rect, dx, dy int, expose ExposeFunc) {
	if r.Empty() {
		return
	}
	src := w.toBuffer(r)
	dst, ok := d.layerMask(src, w, dx, dy)
	if !ok {
		Logger().Debug("fbcomp: copy skipped", "window", w.id, "rect", src.String())
		return
	}
	defer dst.Free()

	copied, err := dst.Clone()
	if err != nil {
		d.allocFailed("copy", err)
		return
	}
	defer copied.Free()
	copied.AndRect(w.clip, dx, dy)
	if !w.backBuffered() {
		l, err := d.layers(w, dx, dy)
		if err == nil {
			err = copied.SubRegion(l)
			l.Free()
		}
		if err != nil {
			d.allocFailed("copy", err)
			return
		}
	}

	buf := d.target(w)
	scrollRegion(buf, copied, dx, dy)
	for _, c := range copied.Rects() {
		d.markDirty(w, c)
	}

	if err := dst.SubRegion(copied); err != nil {
		d.allocFailed("copy", err)
		return
	}
	for _, e := range dst.Rects() {
		e = w.toLocal(e)
		switch {
		case expose != nil:
			expose(e)
		case !w.backBuffered():
			w.post(Event{Type: EventRefresh, X: e.X0, Y: e.Y0, W: e.Dx(), H: e.Dy()})
		}
	}
}

// scrollRegion copies every pixel of g from its position shifted by
// (-dx, -dy). A single rectangle is scrolled directly. Otherwise rows are
// swept from the far edge of the move, and within a row the disjoint spans
// are merged when adjacent and copied starting with the far one.
func scrollRegion(buf *pixel.Buffer, g *region.Region, dx, dy int) {
	if g.IsEmpty() || dx == 0 && dy == 0 {
		return
	}
	rects := g.Rects()
	if len(rects) == 1 {
		buf.Scroll(rects[0], dx, dy)
		return
	}

	slices.SortFunc(rects, func(a, b region.Rect) int {
		if dx > 0 {
			return b.X0 - a.X0
		}
		return a.X0 - b.X0
	})
	bb, _ := g.MinMax()
	y, end, step := bb.Y0, bb.Y1+1, 1
	if dy > 0 {
		y, end, step = bb.Y1, bb.Y0-1, -1
	}
	spans := make([][2]int, 0, len(rects))
	for ; y != end; y += step {
		spans = spans[:0]
		for _, r := range rects {
			if y < r.Y0 || y > r.Y1 {
				continue
			}
			if n := len(spans); n > 0 {
				last := &spans[n-1]
				if dx > 0 && r.X1+1 == last[0] {
					last[0] = r.X0
					continue
				}
				if dx <= 0 && last[1]+1 == r.X0 {
					last[1] = r.X1
					continue
				}
			}
			spans = append(spans, [2]int{r.X0, r.X1})
		}
		for _, s := range spans {
			buf.CopySpan(s[0], y, s[0]-dx, y-dy, s[1]-s[0]+1)
		}
	}
}
