package fbcomp

import (
	"github.com/gogpu/fbcomp/internal/cache"
	"github.com/gogpu/fbcomp/internal/raster"
	"github.com/gogpu/fbcomp/pixel"
	"github.com/gogpu/fbcomp/region"
)

// Drawing primitives. Coordinates are window-local. A primitive whose
// visible mask is empty, or whose mask cannot be allocated, is skipped
// without error; only an unknown pen is reported.

// target returns the pixel buffer w draws into.
func (d *Display) target(w *Window) *pixel.Buffer {
	if w.buf != nil {
		return w.buf
	}
	return d.screen
}

// markDirty records buffer rectangle r of w as changed.
func (d *Display) markDirty(w *Window, r region.Rect) {
	if w.backBuffered() {
		if err := w.dirty.MergeRect(r); err != nil {
			d.allocFailed("window dirty", err)
		}
		w.flags |= FlagDirty
		return
	}
	if err := d.dirty.MergeRect(r); err != nil {
		d.allocFailed("display dirty", err)
	}
}

// visibleRects returns the drawable rectangles of clip (buffer
// coordinates). ok is false when the draw must be skipped.
func (d *Display) visibleRects(w *Window, clip region.Rect, op string) ([]region.Rect, bool) {
	mask, ok := d.layerMask(clip, w, 0, 0)
	if !ok {
		Logger().Debug("fbcomp: draw skipped", "op", op, "window", w.id, "rect", clip.String())
		return nil, false
	}
	rects := mask.Rects()
	mask.Free()
	return rects, true
}

// FillRect fills local rectangle r with pen.
func (d *Display) FillRect(w *Window, r region.Rect, pen PenID) error {
	rgb, err := w.pen(pen)
	if err != nil {
		return err
	}
	if r.Empty() {
		return nil
	}
	rects, ok := d.visibleRects(w, w.toBuffer(r), "fill")
	if !ok {
		return nil
	}
	buf := d.target(w)
	for _, m := range rects {
		buf.FillRect(m, rgb)
		d.markDirty(w, m)
	}
	return nil
}

// DrawRect draws the one pixel outline of local rectangle r with pen.
func (d *Display) DrawRect(w *Window, r region.Rect, pen PenID) error {
	rgb, err := w.pen(pen)
	if err != nil {
		return err
	}
	if r.Empty() {
		return nil
	}
	br := w.toBuffer(r)
	rects, ok := d.visibleRects(w, br, "rect")
	if !ok {
		return nil
	}
	edges := []region.Rect{
		region.R(br.X0, br.Y0, br.X1, br.Y0),
		region.R(br.X0, br.Y1, br.X1, br.Y1),
		region.R(br.X0, br.Y0, br.X0, br.Y1),
		region.R(br.X1, br.Y0, br.X1, br.Y1),
	}
	buf := d.target(w)
	for _, m := range rects {
		for _, e := range edges {
			e = e.Intersect(m)
			if e.Empty() {
				continue
			}
			buf.FillRect(e, rgb)
			d.markDirty(w, e)
		}
	}
	return nil
}

// DrawLine draws a one pixel line from (x0, y0) to (x1, y1), both ends
// included.
func (d *Display) DrawLine(w *Window, x0, y0, x1, y1 int, pen PenID) error {
	rgb, err := w.pen(pen)
	if err != nil {
		return err
	}
	ox, oy := w.draw.X0, w.draw.Y0
	x0, y0, x1, y1 = x0+ox, y0+oy, x1+ox, y1+oy
	bb := region.R(min(x0, x1), min(y0, y1), max(x0, x1), max(y0, y1))
	rects, ok := d.visibleRects(w, bb, "line")
	if !ok {
		return nil
	}
	buf := d.target(w)
	for _, m := range rects {
		cx0, cy0, cx1, cy1, ok := raster.ClipLine(m, x0, y0, x1, y1)
		if !ok {
			continue
		}
		raster.Line(cx0, cy0, cx1, cy1, raster.ClipSpan(m, func(sx0, sx1, y int) {
			buf.FillSpan(sx0, sx1, y, rgb)
		}))
		d.markDirty(w, region.R(min(cx0, cx1), min(cy0, cy1), max(cx0, cx1), max(cy0, cy1)))
	}
	return nil
}

// DrawPoint sets one pixel.
func (d *Display) DrawPoint(w *Window, x, y int, pen PenID) error {
	rgb, err := w.pen(pen)
	if err != nil {
		return err
	}
	p := w.toBuffer(region.R(x, y, x, y))
	if _, ok := d.visibleRects(w, p, "point"); !ok {
		return nil
	}
	d.target(w).SetRGB(p.X0, p.Y0, rgb)
	d.markDirty(w, p)
	return nil
}

// Point is a window-local pixel position.
type Point struct {
	X, Y int
}

// FillTriangle fills the triangle a, b, c with pen.
func (d *Display) FillTriangle(w *Window, a, b, c Point, pen PenID) error {
	rgb, err := w.pen(pen)
	if err != nil {
		return err
	}
	ox, oy := w.draw.X0, w.draw.Y0
	tri := []raster.Point{
		{X: a.X + ox, Y: a.Y + oy},
		{X: b.X + ox, Y: b.Y + oy},
		{X: c.X + ox, Y: c.Y + oy},
	}
	bb := region.R(tri[0].X, tri[0].Y, tri[0].X, tri[0].Y)
	for _, p := range tri[1:] {
		bb = bb.Union(region.R(p.X, p.Y, p.X, p.Y))
	}
	rects, ok := d.visibleRects(w, bb, "triangle")
	if !ok {
		return nil
	}
	buf := d.target(w)
	var scratch [raster.MaxClipVertices]raster.Point
	for _, m := range rects {
		poly := raster.ClipPolygon(scratch[:0], m, tri)
		if len(poly) == 0 {
			continue
		}
		raster.FillPolygon(poly, raster.ClipSpan(m, func(x0, x1, y int) {
			buf.FillSpan(x0, x1, y, rgb)
		}))
		pb := region.R(poly[0].X, poly[0].Y, poly[0].X, poly[0].Y)
		for _, p := range poly[1:] {
			pb = pb.Union(region.R(p.X, p.Y, p.X, p.Y))
		}
		d.markDirty(w, pb.Intersect(m))
	}
	return nil
}

// BufferBlit describes a client buffer copy into a window.
type BufferBlit struct {
	// Src holds the source pixels.
	Src *pixel.Buffer
	// X, Y is the local destination position.
	X, Y int
	// SrcX, SrcY, W, H select the source rectangle. A zero W or H selects
	// the rest of the buffer.
	SrcX, SrcY int
	W, H       int
	// Alpha composites the source over the window instead of replacing.
	Alpha bool
	// ByteSwap reverses the bytes of every source pixel.
	ByteSwap bool
	// Key, when non-zero, names the source contents so that the converted
	// pixels can be reused by later blits with the same key. Callers must
	// use a new key after changing the source.
	Key uint64
}

// DrawBuffer copies a client buffer into w through the converter.
func (d *Display) DrawBuffer(w *Window, b BufferBlit) error {
	if b.Src == nil {
		return ErrInvalidGeometry
	}
	width, height := b.W, b.H
	if width <= 0 {
		width = b.Src.Width - b.SrcX
	}
	if height <= 0 {
		height = b.Src.Height - b.SrcY
	}
	srcRect := region.XYWH(b.SrcX, b.SrcY, width, height)
	if srcRect.Empty() || !b.Src.Bounds().Contains(srcRect) {
		return ErrInvalidGeometry
	}
	dst := w.toBuffer(region.XYWH(b.X, b.Y, width, height))
	rects, ok := d.visibleRects(w, dst, "buffer")
	if !ok {
		return nil
	}

	buf := d.target(w)
	src, sx, sy := b.Src, b.SrcX, b.SrcY
	if cached := d.cachedPixmap(b, srcRect, buf.Format); cached != nil {
		src, sx, sy = cached, 0, 0
	}
	converted := src != b.Src
	for _, m := range rects {
		msx := sx + m.X0 - dst.X0
		msy := sy + m.Y0 - dst.Y0
		var ok bool
		if converted {
			ok = pixel.Convert(src, buf, m, msx, msy, false, false)
		} else {
			ok = d.convert(src, buf, m, msx, msy, b.Alpha, b.ByteSwap)
		}
		if !ok {
			Logger().Debug("fbcomp: convert failed", "window", w.id, "rect", m.String(),
				"src", src.Format.String(), "dst", buf.Format.String())
			continue
		}
		d.markDirty(w, m)
	}
	return nil
}

// cachedPixmap returns the source rectangle of b converted to format,
// converting and caching it on a miss. It returns nil when the cache does
// not apply.
func (d *Display) cachedPixmap(b BufferBlit, srcRect region.Rect, format pixel.Format) *pixel.Buffer {
	if d.pixmaps == nil || b.Key == 0 || b.Alpha {
		return nil
	}
	key := cache.Key{ID: b.Key, Rect: srcRect, Format: format, Swap: b.ByteSwap}
	if pm, ok := d.pixmaps.Get(key); ok {
		return pm.Buffer()
	}
	pm := &cache.Pixmap{
		Data:   make([]byte, format.RowBytes(srcRect.Dx())*srcRect.Dy()),
		Width:  srcRect.Dx(),
		Height: srcRect.Dy(),
		Format: format,
	}
	out := pm.Buffer()
	if !d.convert(b.Src, out, out.Bounds(), srcRect.X0, srcRect.Y0, false, b.ByteSwap) {
		return nil
	}
	d.pixmaps.Put(key, pm)
	return out
}
