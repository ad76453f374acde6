package raster

import "github.com/gogpu/fbcomp/region"

// Point is an integer vertex.
type Point struct {
	X, Y int
}

// MaxClipVertices is the largest vertex count ClipPolygon can produce from
// a triangle: every clip edge adds at most one vertex.
const MaxClipVertices = 3 + 4

// clipEdge selects one side of the clip rectangle.
type clipEdge int

const (
	edgeRight clipEdge = iota
	edgeBottom
	edgeLeft
	edgeTop
)

func (e clipEdge) inside(r region.Rect, p Point) bool {
	switch e {
	case edgeRight:
		return p.X <= r.X1
	case edgeBottom:
		return p.Y <= r.Y1
	case edgeLeft:
		return p.X >= r.X0
	default:
		return p.Y >= r.Y0
	}
}

// cross returns the intersection of segment a-b with the edge line. The
// caller guarantees a and b lie on opposite sides.
func (e clipEdge) cross(r region.Rect, a, b Point) Point {
	switch e {
	case edgeRight, edgeLeft:
		x := r.X1
		if e == edgeLeft {
			x = r.X0
		}
		return Point{X: x, Y: a.Y + divRound((b.Y-a.Y)*(x-a.X), b.X-a.X)}
	default:
		y := r.Y1
		if e == edgeTop {
			y = r.Y0
		}
		return Point{X: a.X + divRound((b.X-a.X)*(y-a.Y), b.Y-a.Y), Y: y}
	}
}

// ClipPolygon clips the convex polygon in against r with one
// Sutherland-Hodgman pass per edge, in the order right, bottom, left, top.
// The result is appended to dst[:0]; consecutive duplicate vertices
// produced by rounding are dropped.
func ClipPolygon(dst []Point, r region.Rect, in []Point) []Point {
	cur := append(make([]Point, 0, MaxClipVertices), in...)
	next := make([]Point, 0, MaxClipVertices)
	for e := edgeRight; e <= edgeTop && len(cur) > 0; e++ {
		next = next[:0]
		prev := cur[len(cur)-1]
		prevIn := e.inside(r, prev)
		for _, p := range cur {
			pIn := e.inside(r, p)
			switch {
			case pIn && prevIn:
				next = appendVertex(next, p)
			case pIn:
				next = appendVertex(next, e.cross(r, prev, p))
				next = appendVertex(next, p)
			case prevIn:
				next = appendVertex(next, e.cross(r, prev, p))
			}
			prev, prevIn = p, pIn
		}
		if n := len(next); n > 1 && next[0] == next[n-1] {
			next = next[:n-1]
		}
		cur, next = next, cur
	}
	return append(dst[:0], cur...)
}

func appendVertex(v []Point, p Point) []Point {
	if n := len(v); n > 0 && v[n-1] == p {
		return v
	}
	return append(v, p)
}

// edgeTracker interpolates x along an edge, one scanline at a time, as the
// exact fraction x0 + dx*t/dy rounded to the nearest pixel.
type edgeTracker struct {
	x0, dx, dy int
	num        int
}

func newEdgeTracker(a, b Point, y int) edgeTracker {
	t := edgeTracker{x0: a.X, dx: b.X - a.X, dy: b.Y - a.Y}
	t.num = t.dx * (y - a.Y)
	return t
}

func (t *edgeTracker) x() int {
	if t.dy == 0 {
		return t.x0
	}
	return t.x0 + divRound(t.num, t.dy)
}

func (t *edgeTracker) step() {
	t.num += t.dx
}

// FillTriangle scan-converts the triangle a, b, c. Two edge trackers walk
// from the topmost to the bottommost vertex; the short side switches edges
// at the middle vertex's row.
func FillTriangle(a, b, c Point, span SpanFunc) {
	if a.Y > b.Y {
		a, b = b, a
	}
	if b.Y > c.Y {
		b, c = c, b
	}
	if a.Y > b.Y {
		a, b = b, a
	}
	if a.Y == c.Y {
		lo, hi := min(a.X, b.X, c.X), max(a.X, b.X, c.X)
		span(lo, hi, a.Y)
		return
	}

	long := newEdgeTracker(a, c, a.Y)
	short := newEdgeTracker(a, b, a.Y)
	upper := true
	for y := a.Y; y <= c.Y; y++ {
		if upper && y >= b.Y {
			short = newEdgeTracker(b, c, y)
			upper = false
		}
		xa, xb := long.x(), short.x()
		if xa > xb {
			xa, xb = xb, xa
		}
		span(xa, xb, y)
		long.step()
		short.step()
	}
}

// FillPolygon fills a convex polygon as a fan of triangles around its
// first vertex. One and two vertex inputs draw a point and a line.
func FillPolygon(pts []Point, span SpanFunc) {
	switch len(pts) {
	case 0:
		return
	case 1:
		span(pts[0].X, pts[0].X, pts[0].Y)
	case 2:
		Line(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, span)
	default:
		for i := 1; i+1 < len(pts); i++ {
			FillTriangle(pts[0], pts[i], pts[i+1], span)
		}
	}
}

// ClipSpan restricts span so that it never reaches outside r.
func ClipSpan(r region.Rect, span SpanFunc) SpanFunc {
	return func(x0, x1, y int) {
		if y < r.Y0 || y > r.Y1 {
			return
		}
		x0, x1 = max(x0, r.X0), min(x1, r.X1)
		if x0 <= x1 {
			span(x0, x1, y)
		}
	}
}
