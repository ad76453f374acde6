// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package region

import "fmt"

// Rect is an integer rectangle with inclusive bounds on both axes.
// A Rect with X0 > X1 or Y0 > Y1 is degenerate and covers no pixels.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// R is shorthand for Rect{x0, y0, x1, y1}.
func R(x0, y0, x1, y1 int) Rect {
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// XYWH builds a Rect from a position and a size.
func XYWH(x, y, w, h int) Rect {
	return Rect{X0: x, Y0: y, X1: x + w - 1, Y1: y + h - 1}
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool {
	return r.X0 > r.X1 || r.Y0 > r.Y1
}

// Dx returns the width of r in pixels.
func (r Rect) Dx() int {
	if r.Empty() {
		return 0
	}
	return r.X1 - r.X0 + 1
}

// Dy returns the height of r in pixels.
func (r Rect) Dy() int {
	if r.Empty() {
		return 0
	}
	return r.Y1 - r.Y0 + 1
}

// Area returns the number of pixels covered by r.
func (r Rect) Area() int {
	return r.Dx() * r.Dy()
}

// Add translates r by (dx, dy).
func (r Rect) Add(dx, dy int) Rect {
	return Rect{X0: r.X0 + dx, Y0: r.Y0 + dy, X1: r.X1 + dx, Y1: r.Y1 + dy}
}

// Intersect returns the common part of r and s. The result is degenerate
// when they do not overlap.
func (r Rect) Intersect(s Rect) Rect {
	return Rect{
		X0: max(r.X0, s.X0),
		Y0: max(r.Y0, s.Y0),
		X1: min(r.X1, s.X1),
		Y1: min(r.Y1, s.Y1),
	}
}

// Union returns the bounding box of r and s.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	return Rect{
		X0: min(r.X0, s.X0),
		Y0: min(r.Y0, s.Y0),
		X1: max(r.X1, s.X1),
		Y1: max(r.Y1, s.Y1),
	}
}

// Contains reports whether s lies entirely inside r.
func (r Rect) Contains(s Rect) bool {
	return s.X0 >= r.X0 && s.X1 <= r.X1 && s.Y0 >= r.Y0 && s.Y1 <= r.Y1
}

// ContainsPoint reports whether (x, y) lies inside r.
func (r Rect) ContainsPoint(x, y int) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X0, r.Y0, r.X1, r.Y1)
}

// Overlap reports whether a and b share at least one pixel.
func Overlap(a, b Rect) bool {
	return a.X0 <= b.X1 && a.X1 >= b.X0 && a.Y0 <= b.Y1 && a.Y1 >= b.Y0
}

// cut appends to dst the parts of a not covered by b, in the fixed order
// right, bottom, left, top. a and b must overlap.
func cut(dst []Rect, a, b Rect) []Rect {
	if a.X1 > b.X1 {
		dst = append(dst, Rect{X0: b.X1 + 1, Y0: a.Y0, X1: a.X1, Y1: a.Y1})
		a.X1 = b.X1
	}
	if a.Y1 > b.Y1 {
		dst = append(dst, Rect{X0: a.X0, Y0: b.Y1 + 1, X1: a.X1, Y1: a.Y1})
		a.Y1 = b.Y1
	}
	if a.X0 < b.X0 {
		dst = append(dst, Rect{X0: a.X0, Y0: a.Y0, X1: b.X0 - 1, Y1: a.Y1})
		a.X0 = b.X0
	}
	if a.Y0 < b.Y0 {
		dst = append(dst, Rect{X0: a.X0, Y0: a.Y0, X1: a.X1, Y1: b.Y0 - 1})
	}
	return dst
}
