// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package region

// MergeLookback is the number of most recently inserted rectangles checked
// for exact edge adjacency when a new rectangle is inserted.
const MergeLookback = 5

// Region is a set of pairwise disjoint rectangles allocated from a Pool.
//
// Every completed mutating operation leaves the rectangles disjoint. When an
// operation fails with ErrNoMemory the region may be missing fragments; it
// is still safe to Free, but its content must not be trusted.
//
// A Region must be released with Free when it is no longer needed so that
// its nodes return to the pool.
type Region struct {
	pool *Pool
	idx  []int32
}

// New returns an empty region drawing nodes from pool.
func New(pool *Pool) *Region {
	return &Region{pool: pool}
}

// NewRect returns a region covering r. A degenerate r yields an empty region.
func NewRect(pool *Pool, r Rect) (*Region, error) {
	g := New(pool)
	if r.Empty() {
		return g, nil
	}
	if err := g.insert(r); err != nil {
		return g, err
	}
	return g, nil
}

// Free returns all nodes to the pool and leaves the region empty.
func (g *Region) Free() {
	g.Clear()
}

// Clear removes every rectangle from the region.
func (g *Region) Clear() {
	for _, idx := range g.idx {
		g.pool.release(idx)
	}
	g.idx = g.idx[:0]
}

// Pool returns the pool the region allocates from.
func (g *Region) Pool() *Pool {
	return g.pool
}

// insert adds r, which must not overlap any rectangle of g. A handful of the
// most recent nodes are checked for an exact shared edge first; on a match
// the node grows instead of allocating a new one.
func (g *Region) insert(r Rect) error {
	nodes := g.pool.nodes
	for i, n := len(g.idx)-1, 0; i >= 0 && n < MergeLookback; i, n = i-1, n+1 {
		e := &nodes[g.idx[i]]
		if e.Y0 == r.Y0 && e.Y1 == r.Y1 {
			if e.X1+1 == r.X0 {
				e.X1 = r.X1
				return nil
			}
			if r.X1+1 == e.X0 {
				e.X0 = r.X0
				return nil
			}
		} else if e.X0 == r.X0 && e.X1 == r.X1 {
			if e.Y1+1 == r.Y0 {
				e.Y1 = r.Y1
				return nil
			}
			if r.Y1+1 == e.Y0 {
				e.Y0 = r.Y0
				return nil
			}
		}
	}
	idx, err := g.pool.alloc(r)
	if err != nil {
		return err
	}
	g.idx = append(g.idx, idx)
	return nil
}

// uncovered returns the parts of r not covered by any rectangle of g.
func (g *Region) uncovered(r Rect) []Rect {
	frags := []Rect{r}
	var next []Rect
	for _, idx := range g.idx {
		e := g.pool.nodes[idx]
		next = next[:0]
		for _, f := range frags {
			if Overlap(f, e) {
				next = cut(next, f, e)
			} else {
				next = append(next, f)
			}
		}
		frags, next = next, frags
		if len(frags) == 0 {
			return nil
		}
	}
	return frags
}

// OrRect adds r to the region.
func (g *Region) OrRect(r Rect) error {
	if r.Empty() {
		return nil
	}
	for _, f := range g.uncovered(r) {
		if err := g.insert(f); err != nil {
			return err
		}
	}
	return nil
}

// OrRegion adds every rectangle of o to the region.
func (g *Region) OrRegion(o *Region) error {
	if o == g {
		return nil
	}
	for _, r := range o.Rects() {
		if err := g.OrRect(r); err != nil {
			return err
		}
	}
	return nil
}

// MergeRect adds r like OrRect, then collapses the whole region into its
// bounding box when it has grown too fragmented and the box wastes little
// area according to the pool's MergePolicy. The result may cover more than
// the union; use it only for regions where over-coverage is harmless, such
// as dirty regions.
func (g *Region) MergeRect(r Rect) error {
	if err := g.OrRect(r); err != nil {
		return err
	}
	mp := g.pool.policy
	if mp.MinRects <= 0 || len(g.idx) <= mp.MinRects {
		return nil
	}
	bb, _ := g.MinMax()
	total := bb.Area()
	waste := total - g.Area()
	if waste <= mp.MaxWastePixels || waste*100 <= total*mp.MaxWastePercent {
		for _, idx := range g.idx[1:] {
			g.pool.release(idx)
		}
		g.pool.nodes[g.idx[0]] = bb
		g.idx = g.idx[:1]
	}
	return nil
}

// AndRect intersects the region with r translated by (dx, dy).
// It never allocates and cannot fail.
func (g *Region) AndRect(r Rect, dx, dy int) {
	s := r.Add(dx, dy)
	keep := g.idx[:0]
	for _, idx := range g.idx {
		e := g.pool.nodes[idx]
		if Overlap(e, s) {
			g.pool.nodes[idx] = e.Intersect(s)
			keep = append(keep, idx)
		} else {
			g.pool.release(idx)
		}
	}
	g.idx = keep
}

// AndRegion intersects the region with o translated by (dx, dy). On failure
// the region keeps its previous content.
func (g *Region) AndRegion(o *Region, dx, dy int) error {
	others := o.Rects()
	if len(others) == 1 {
		g.AndRect(others[0], dx, dy)
		return nil
	}
	var out []int32
	for _, idx := range g.idx {
		e := g.pool.nodes[idx]
		for _, s := range others {
			s = s.Add(dx, dy)
			if !Overlap(e, s) {
				continue
			}
			n, err := g.pool.alloc(e.Intersect(s))
			if err != nil {
				for _, n := range out {
					g.pool.release(n)
				}
				return err
			}
			out = append(out, n)
		}
	}
	g.Clear()
	g.idx = out
	return nil
}

// SubRect removes r from the region. Each rectangle touched by r is cut into
// at most four fragments which are reinserted.
func (g *Region) SubRect(r Rect) error {
	if r.Empty() {
		return nil
	}
	var frags []Rect
	keep := make([]int32, 0, len(g.idx))
	for _, idx := range g.idx {
		e := g.pool.nodes[idx]
		if Overlap(e, r) {
			frags = cut(frags, e, r)
			g.pool.release(idx)
		} else {
			keep = append(keep, idx)
		}
	}
	g.idx = keep
	for _, f := range frags {
		if err := g.insert(f); err != nil {
			return err
		}
	}
	return nil
}

// SubRegion removes every rectangle of o from the region.
func (g *Region) SubRegion(o *Region) error {
	if o == g {
		g.Clear()
		return nil
	}
	for _, r := range o.Rects() {
		if err := g.SubRect(r); err != nil {
			return err
		}
	}
	return nil
}

// XorRect replaces the region with its symmetric difference with r.
func (g *Region) XorRect(r Rect) error {
	if r.Empty() {
		return nil
	}
	frags := g.uncovered(r)
	if err := g.SubRect(r); err != nil {
		return err
	}
	for _, f := range frags {
		if err := g.insert(f); err != nil {
			return err
		}
	}
	return nil
}

// Shift translates every rectangle by (dx, dy).
func (g *Region) Shift(dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	for _, idx := range g.idx {
		g.pool.nodes[idx] = g.pool.nodes[idx].Add(dx, dy)
	}
}

// IsEmpty reports whether the region covers no pixels.
func (g *Region) IsEmpty() bool {
	return len(g.idx) == 0
}

// Count returns the number of rectangles in the region.
func (g *Region) Count() int {
	return len(g.idx)
}

// Area returns the number of pixels covered.
func (g *Region) Area() int {
	a := 0
	for _, idx := range g.idx {
		a += g.pool.nodes[idx].Area()
	}
	return a
}

// MinMax returns the bounding box of the region. ok is false when the
// region is empty.
func (g *Region) MinMax() (bb Rect, ok bool) {
	if len(g.idx) == 0 {
		return Rect{X0: 0, Y0: 0, X1: -1, Y1: -1}, false
	}
	bb = g.pool.nodes[g.idx[0]]
	for _, idx := range g.idx[1:] {
		bb = bb.Union(g.pool.nodes[idx])
	}
	return bb, true
}

// CheckIntersect reports whether any rectangle of the region overlaps r.
func (g *Region) CheckIntersect(r Rect) bool {
	for _, idx := range g.idx {
		if Overlap(g.pool.nodes[idx], r) {
			return true
		}
	}
	return false
}

// Rects returns a copy of the rectangles of the region.
func (g *Region) Rects() []Rect {
	out := make([]Rect, len(g.idx))
	for i, idx := range g.idx {
		out[i] = g.pool.nodes[idx]
	}
	return out
}

// ForEach calls fn for every rectangle. fn must not modify the region.
func (g *Region) ForEach(fn func(r Rect)) {
	for _, idx := range g.idx {
		fn(g.pool.nodes[idx])
	}
}

// Clone returns an independent copy of the region on the same pool.
func (g *Region) Clone() (*Region, error) {
	c := &Region{pool: g.pool, idx: make([]int32, 0, len(g.idx))}
	for _, idx := range g.idx {
		n, err := g.pool.alloc(g.pool.nodes[idx])
		if err != nil {
			c.Free()
			return nil, err
		}
		c.idx = append(c.idx, n)
	}
	return c, nil
}
