// Package raster implements integer clipping and scan conversion of lines
// and triangles into horizontal pixel spans.
//
// Nothing in this package touches pixels: every primitive reports its
// coverage through a SpanFunc, which the caller maps onto a buffer.
package raster

import "github.com/gogpu/fbcomp/region"

// SpanFunc receives the inclusive horizontal span x0..x1 of row y.
type SpanFunc func(x0, x1, y int)

// Outcode bits for Cohen-Sutherland clipping.
const (
	outcodeInside = 0
	outcodeLeft   = 1
	outcodeRight  = 2
	outcodeTop    = 4
	outcodeBottom = 8
)

func outcode(r region.Rect, x, y int) int {
	code := outcodeInside
	if x < r.X0 {
		code |= outcodeLeft
	} else if x > r.X1 {
		code |= outcodeRight
	}
	if y < r.Y0 {
		code |= outcodeTop
	} else if y > r.Y1 {
		code |= outcodeBottom
	}
	return code
}

// floorDiv returns floor(n / d) for d > 0.
func floorDiv(n, d int) int {
	q := n / d
	if n%d != 0 && n < 0 {
		q--
	}
	return q
}

// divRound returns n / d rounded to the nearest integer, halves rounding
// up. d must be non-zero.
func divRound(n, d int) int {
	if d < 0 {
		n, d = -n, -d
	}
	return floorDiv(2*n+d, 2*d)
}

// ClipLine clips the segment (x0,y0)-(x1,y1) against the inclusive
// rectangle r. Crossing points are computed from the original endpoints as
// exact fractions rounded once, so repeated clipping does not drift.
// ok is false when no part of the segment lies inside r.
func ClipLine(r region.Rect, x0, y0, x1, y1 int) (cx0, cy0, cx1, cy1 int, ok bool) {
	if r.Empty() {
		return 0, 0, 0, 0, false
	}
	ox0, oy0, dx, dy := x0, y0, x1-x0, y1-y0
	code0 := outcode(r, x0, y0)
	code1 := outcode(r, x1, y1)

	// Each endpoint moves onto at most two edges; the cap guards the loop.
	for range 8 {
		if code0|code1 == 0 {
			return x0, y0, x1, y1, true
		}
		if code0&code1 != 0 {
			return 0, 0, 0, 0, false
		}
		code := code0
		if code == 0 {
			code = code1
		}
		var x, y int
		switch {
		case code&outcodeTop != 0:
			y = r.Y0
			x = ox0 + divRound(dx*(y-oy0), dy)
		case code&outcodeBottom != 0:
			y = r.Y1
			x = ox0 + divRound(dx*(y-oy0), dy)
		case code&outcodeRight != 0:
			x = r.X1
			y = oy0 + divRound(dy*(x-ox0), dx)
		default:
			x = r.X0
			y = oy0 + divRound(dy*(x-ox0), dx)
		}
		if code == code0 {
			x0, y0 = x, y
			code0 = outcode(r, x0, y0)
		} else {
			x1, y1 = x, y
			code1 = outcode(r, x1, y1)
		}
	}
	return 0, 0, 0, 0, false
}

// Line rasterizes the segment (x0,y0)-(x1,y1) with Bresenham's algorithm.
// X-major lines are walked left to right and emit one run per row; y-major
// lines are walked top to bottom and emit one pixel per row.
func Line(x0, y0, x1, y1 int, span SpanFunc) {
	dx := x1 - x0
	dy := y1 - y0
	if abs(dx) >= abs(dy) {
		if dx < 0 {
			x0, y0, x1, y1 = x1, y1, x0, y0
			dx, dy = -dx, -dy
		}
		if dy >= 0 {
			lineXMajor(x0, y0, dx, dy, 1, span)
		} else {
			lineXMajor(x0, y0, dx, -dy, -1, span)
		}
		return
	}
	if dy < 0 {
		x0, y0, x1, y1 = x1, y1, x0, y0
		dx, dy = -dx, -dy
	}
	if dx >= 0 {
		lineYMajor(x0, y0, dx, dy, 1, span)
	} else {
		lineYMajor(x0, y0, -dx, dy, -1, span)
	}
}

// lineXMajor walks dx+1 columns, stepping y by sy; dx >= dy >= 0.
func lineXMajor(x, y, dx, dy, sy int, span SpanFunc) {
	err := dx / 2
	start := x
	for i := 0; i <= dx; i++ {
		err -= dy
		if err < 0 && i < dx {
			span(start, x, y)
			y += sy
			err += dx
			start = x + 1
		}
		x++
	}
	span(start, x-1, y)
}

// lineYMajor walks dy+1 rows, stepping x by sx; dy > dx >= 0.
func lineYMajor(x, y, dx, dy, sx int, span SpanFunc) {
	err := dy / 2
	for i := 0; i <= dy; i++ {
		span(x, x, y)
		err -= dx
		if err < 0 {
			x += sx
			err += dy
		}
		y++
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
