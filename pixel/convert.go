package pixel

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/fbcomp/region"
)

// ConvertFunc copies the pixels of src into the inclusive rectangle r of
// dst. Pixel (x, y) of dst receives src pixel (x-r.X0+sx, y-r.Y0+sy).
// When alpha is true and src has an alpha channel, src is composited over
// dst; otherwise it replaces dst. byteSwap reverses the bytes of every src
// pixel word. It returns false when the request cannot be served.
type ConvertFunc func(src, dst *Buffer, r region.Rect, sx, sy int, alpha, byteSwap bool) bool

// Convert is the default ConvertFunc. Identical formats without blending
// or swapping are copied row by row; everything else goes through
// golang.org/x/image/draw.
func Convert(src, dst *Buffer, r region.Rect, sx, sy int, alpha, byteSwap bool) bool {
	if src == nil || dst == nil || r.Empty() {
		return false
	}
	if !dst.Bounds().Contains(r) {
		return false
	}
	sr := region.XYWH(sx, sy, r.Dx(), r.Dy())
	if !src.Bounds().Contains(sr) {
		return false
	}
	blend := alpha && src.Format.HasAlpha()
	if src.Format == dst.Format && !byteSwap && !blend {
		for y := 0; y < r.Dy(); y++ {
			copy(dst.Row(r.X0, r.X1, r.Y0+y), src.Row(sr.X0, sr.X1, sr.Y0+y))
		}
		return true
	}
	op := draw.Src
	if blend {
		op = draw.Over
	}
	draw.Draw(NewView(dst, false), image.Rect(r.X0, r.Y0, r.X1+1, r.Y1+1),
		NewView(src, byteSwap), image.Pt(sx, sy), op)
	return true
}
