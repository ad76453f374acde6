// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package region

import (
	"errors"
	"math/rand"
	"testing"
)

// =============================================================================
// Helpers
// =============================================================================

const modelSize = 48

// bitmap is a brute force model of a region on a small grid.
type bitmap [modelSize][modelSize]bool

func (b *bitmap) apply(r Rect, fn func(old bool) bool) {
	for y := 0; y < modelSize; y++ {
		for x := 0; x < modelSize; x++ {
			in := r.ContainsPoint(x, y)
			switch {
			case fn == nil:
				b[y][x] = b[y][x] && in
			case in:
				b[y][x] = fn(b[y][x])
			}
		}
	}
}

func (b *bitmap) count() int {
	n := 0
	for y := range b {
		for x := range b[y] {
			if b[y][x] {
				n++
			}
		}
	}
	return n
}

func rasterize(g *Region) bitmap {
	var b bitmap
	g.ForEach(func(r Rect) {
		for y := r.Y0; y <= r.Y1; y++ {
			for x := r.X0; x <= r.X1; x++ {
				b[y][x] = true
			}
		}
	})
	return b
}

func assertDisjoint(t *testing.T, g *Region) {
	t.Helper()
	rects := g.Rects()
	for i := range rects {
		if rects[i].Empty() {
			t.Fatalf("degenerate rectangle %v stored in region", rects[i])
		}
		for j := i + 1; j < len(rects); j++ {
			if Overlap(rects[i], rects[j]) {
				t.Fatalf("rectangles %v and %v overlap", rects[i], rects[j])
			}
		}
	}
}

func sameCoverage(t *testing.T, a, b *Region) bool {
	t.Helper()
	if a.Area() != b.Area() {
		return false
	}
	c, err := a.Clone()
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	defer c.Free()
	if err := c.SubRegion(b); err != nil {
		t.Fatalf("SubRegion() error = %v", err)
	}
	return c.IsEmpty()
}

func randRect(rng *rand.Rand) Rect {
	x0 := rng.Intn(modelSize)
	y0 := rng.Intn(modelSize)
	x1 := x0 + rng.Intn(modelSize-x0)
	y1 := y0 + rng.Intn(modelSize-y0)
	return R(x0, y0, x1, y1)
}

// =============================================================================
// Rect
// =============================================================================

func TestRect_Basics(t *testing.T) {
	r := R(10, 20, 19, 24)
	if r.Dx() != 10 || r.Dy() != 5 || r.Area() != 50 {
		t.Errorf("size = %dx%d area %d, want 10x5 area 50", r.Dx(), r.Dy(), r.Area())
	}
	if got := XYWH(10, 20, 10, 5); got != r {
		t.Errorf("XYWH() = %v, want %v", got, r)
	}
	if !R(5, 5, 4, 9).Empty() || R(5, 5, 5, 5).Empty() {
		t.Error("Empty() misclassified a rectangle")
	}
	if got := r.Intersect(R(15, 0, 100, 21)); got != R(15, 20, 19, 21) {
		t.Errorf("Intersect() = %v", got)
	}
	if !r.Intersect(R(100, 100, 101, 101)).Empty() {
		t.Error("disjoint Intersect() should be empty")
	}
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"identical", R(0, 0, 9, 9), R(0, 0, 9, 9), true},
		{"shared corner pixel", R(0, 0, 9, 9), R(9, 9, 20, 20), true},
		{"touching edge", R(0, 0, 9, 9), R(10, 0, 19, 9), false},
		{"contained", R(0, 0, 9, 9), R(2, 2, 3, 3), true},
		{"far apart", R(0, 0, 1, 1), R(50, 50, 60, 60), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlap(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlap(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Overlap(tt.b, tt.a); got != tt.want {
				t.Errorf("Overlap is not symmetric for %v, %v", tt.a, tt.b)
			}
		})
	}
}

func TestCut_Order(t *testing.T) {
	got := cut(nil, R(0, 0, 9, 9), R(3, 3, 5, 5))
	want := []Rect{
		R(6, 0, 9, 9), // right
		R(0, 6, 5, 9), // bottom
		R(0, 0, 2, 5), // left
		R(3, 0, 5, 2), // top
	}
	if len(got) != len(want) {
		t.Fatalf("cut() returned %d fragments, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fragment %d = %v, want %v", i, got[i], want[i])
		}
	}
}

// =============================================================================
// Region operations
// =============================================================================

func TestRegion_OrRectIdempotent(t *testing.T) {
	pool := NewPool()
	g := New(pool)
	defer g.Free()

	r := R(4, 4, 20, 12)
	if err := g.OrRect(R(0, 0, 8, 8)); err != nil {
		t.Fatal(err)
	}
	if err := g.OrRect(r); err != nil {
		t.Fatal(err)
	}
	count, area := g.Count(), g.Area()
	if err := g.OrRect(r); err != nil {
		t.Fatal(err)
	}
	if g.Count() != count || g.Area() != area {
		t.Errorf("second OrRect changed region: count %d->%d area %d->%d", count, g.Count(), area, g.Area())
	}
	assertDisjoint(t, g)
	for _, sub := range []Rect{r, R(4, 4, 4, 4), R(20, 12, 20, 12), R(10, 5, 15, 11)} {
		if !g.CheckIntersect(sub) {
			t.Errorf("CheckIntersect(%v) = false after OrRect(%v)", sub, r)
		}
	}
}

func TestRegion_LookbackMerge(t *testing.T) {
	tests := []struct {
		name      string
		rects     []Rect
		wantCount int
	}{
		{"horizontal neighbours", []Rect{R(0, 0, 9, 9), R(10, 0, 19, 9)}, 1},
		{"vertical neighbours", []Rect{R(0, 0, 9, 9), R(0, 10, 9, 19)}, 1},
		{"left neighbour", []Rect{R(10, 0, 19, 9), R(0, 0, 9, 9)}, 1},
		{"different heights", []Rect{R(0, 0, 9, 9), R(10, 0, 19, 8)}, 2},
		{"gap", []Rect{R(0, 0, 9, 9), R(11, 0, 19, 9)}, 2},
		{
			"beyond lookback",
			[]Rect{
				R(0, 0, 0, 0), R(2, 10, 2, 10), R(4, 20, 4, 20), R(6, 30, 6, 30),
				R(8, 40, 8, 40), R(10, 50, 10, 50), R(1, 0, 1, 0),
			},
			7,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(NewPool())
			defer g.Free()
			for _, r := range tt.rects {
				if err := g.OrRect(r); err != nil {
					t.Fatal(err)
				}
			}
			if g.Count() != tt.wantCount {
				t.Errorf("Count() = %d, want %d (%v)", g.Count(), tt.wantCount, g.Rects())
			}
			assertDisjoint(t, g)
		})
	}
}

func TestRegion_SubOrAreaLaw(t *testing.T) {
	pool := NewPool()
	g := New(pool)
	defer g.Free()
	for _, r := range []Rect{R(0, 0, 29, 29), R(40, 0, 47, 47)} {
		if err := g.OrRect(r); err != nil {
			t.Fatal(err)
		}
	}
	orig, err := g.Clone()
	if err != nil {
		t.Fatal(err)
	}
	defer orig.Free()

	inner := R(5, 7, 20, 11)
	if err := g.SubRect(inner); err != nil {
		t.Fatal(err)
	}
	if g.Area() != orig.Area()-inner.Area() {
		t.Errorf("area after SubRect = %d, want %d", g.Area(), orig.Area()-inner.Area())
	}
	if g.CheckIntersect(inner) {
		t.Error("region still intersects subtracted rectangle")
	}
	if err := g.OrRect(inner); err != nil {
		t.Fatal(err)
	}
	assertDisjoint(t, g)
	if !sameCoverage(t, g, orig) {
		t.Errorf("coverage differs after sub+or: %v vs %v", g.Rects(), orig.Rects())
	}
}

func TestRegion_ShiftRoundTrip(t *testing.T) {
	g := New(NewPool())
	defer g.Free()
	for _, r := range []Rect{R(0, 0, 3, 3), R(10, 0, 12, 40), R(-5, 20, 2, 22)} {
		if err := g.OrRect(r); err != nil {
			t.Fatal(err)
		}
	}
	before := g.Rects()
	area := g.Area()
	g.Shift(17, -9)
	if g.Area() != area || !g.CheckIntersect(R(17, -9, 20, -6)) {
		t.Fatalf("Shift() moved region to %v", g.Rects())
	}
	g.Shift(-17, 9)
	after := g.Rects()
	set := make(map[Rect]int)
	for _, r := range before {
		set[r]++
	}
	for _, r := range after {
		set[r]--
	}
	for r, n := range set {
		if n != 0 {
			t.Errorf("rectangle %v count differs by %d after round trip", r, n)
		}
	}
}

func TestRegion_AndRect(t *testing.T) {
	g := New(NewPool())
	defer g.Free()
	_ = g.OrRect(R(0, 0, 9, 9))
	_ = g.OrRect(R(20, 0, 29, 9))

	g.AndRect(R(0, 0, 9, 9), 5, 2)
	want := R(5, 2, 9, 9)
	if g.Count() != 1 || g.Rects()[0] != want {
		t.Errorf("AndRect() = %v, want [%v]", g.Rects(), want)
	}
	if g.Pool().InUse() != 1 {
		t.Errorf("pool InUse() = %d, want 1", g.Pool().InUse())
	}
}

func TestRegion_AndRegion(t *testing.T) {
	pool := NewPool()
	a := New(pool)
	b := New(pool)
	defer a.Free()
	defer b.Free()
	_ = a.OrRect(R(0, 0, 19, 19))
	_ = b.OrRect(R(0, 0, 4, 4))
	_ = b.OrRect(R(10, 10, 14, 30))

	if err := a.AndRegion(b, 2, 0); err != nil {
		t.Fatal(err)
	}
	assertDisjoint(t, a)
	if a.Area() != 25+5*10 {
		t.Errorf("Area() = %d, want %d (%v)", a.Area(), 75, a.Rects())
	}
	if !a.CheckIntersect(R(12, 19, 12, 19)) || a.CheckIntersect(R(0, 0, 1, 19)) {
		t.Errorf("AndRegion() produced wrong coverage %v", a.Rects())
	}
}

func TestRegion_XorRect(t *testing.T) {
	g := New(NewPool())
	defer g.Free()
	_ = g.OrRect(R(0, 0, 9, 9))
	if err := g.XorRect(R(5, 5, 14, 14)); err != nil {
		t.Fatal(err)
	}
	assertDisjoint(t, g)
	if g.Area() != 100+100-2*25 {
		t.Errorf("Area() = %d, want 150", g.Area())
	}
	if g.CheckIntersect(R(5, 5, 9, 9)) {
		t.Error("xor kept the shared part")
	}
	if err := g.XorRect(R(5, 5, 14, 14)); err != nil {
		t.Fatal(err)
	}
	want, _ := NewRect(g.Pool(), R(0, 0, 9, 9))
	defer want.Free()
	if !sameCoverage(t, g, want) {
		t.Errorf("double xor = %v, want %v", g.Rects(), want.Rects())
	}
}

func TestRegion_MinMax(t *testing.T) {
	g := New(NewPool())
	defer g.Free()
	if _, ok := g.MinMax(); ok {
		t.Error("MinMax() ok on empty region")
	}
	_ = g.OrRect(R(3, 8, 5, 9))
	_ = g.OrRect(R(-2, 20, 0, 21))
	bb, ok := g.MinMax()
	if !ok || bb != R(-2, 8, 5, 21) {
		t.Errorf("MinMax() = %v, %v", bb, ok)
	}
}

func TestRegion_DegenerateRejected(t *testing.T) {
	g := New(NewPool())
	defer g.Free()
	if err := g.OrRect(R(5, 5, 4, 10)); err != nil {
		t.Fatal(err)
	}
	if !g.IsEmpty() {
		t.Errorf("degenerate rectangle inserted: %v", g.Rects())
	}
	r, err := NewRect(g.Pool(), R(0, 3, 10, 2))
	if err != nil || !r.IsEmpty() {
		t.Errorf("NewRect(degenerate) = %v, %v", r.Rects(), err)
	}
}

func TestRegion_MergeRect(t *testing.T) {
	pool := NewPool(WithMergePolicy(MergePolicy{MinRects: 1, MaxWastePixels: 0, MaxWastePercent: 50}))
	g := New(pool)
	defer g.Free()

	// A checkerboard row: every other pixel, wasting about half the box.
	for x := 0; x < 20; x += 2 {
		if err := g.MergeRect(R(x, 0, x, 3)); err != nil {
			t.Fatal(err)
		}
	}
	if g.Count() != 1 {
		t.Fatalf("Count() = %d, want collapse to 1", g.Count())
	}
	if bb := g.Rects()[0]; bb != R(0, 0, 18, 3) {
		t.Errorf("collapsed to %v, want %v", bb, R(0, 0, 18, 3))
	}
	if pool.InUse() != 1 {
		t.Errorf("pool InUse() = %d, want 1", pool.InUse())
	}

	sparse := New(pool)
	defer sparse.Free()
	for x := 0; x < 60; x += 10 {
		_ = sparse.MergeRect(R(x, 0, x, 0))
	}
	if sparse.Count() != 6 {
		t.Errorf("sparse region collapsed: %v", sparse.Rects())
	}
}

// =============================================================================
// Allocation failure
// =============================================================================

func TestRegion_PoolExhaustion(t *testing.T) {
	pool := NewPool(WithMaxNodes(2))
	g, err := NewRect(pool, R(0, 0, 9, 9))
	if err != nil {
		t.Fatal(err)
	}
	err = g.SubRect(R(3, 3, 5, 5))
	if !errors.Is(err, ErrNoMemory) {
		t.Fatalf("SubRect() error = %v, want ErrNoMemory", err)
	}
	assertDisjoint(t, g)
	g.Free()
	if pool.InUse() != 0 {
		t.Errorf("InUse() = %d after Free, want 0 (leak)", pool.InUse())
	}
	if pool.Cap() > 2 {
		t.Errorf("Cap() = %d exceeds limit", pool.Cap())
	}

	c, err := NewRect(pool, R(0, 0, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	_ = c.OrRect(R(5, 5, 6, 6))
	if _, err := c.Clone(); !errors.Is(err, ErrNoMemory) {
		t.Errorf("Clone() error = %v, want ErrNoMemory", err)
	}
	c.Free()
	if pool.InUse() != 0 {
		t.Errorf("InUse() = %d after failed Clone, want 0", pool.InUse())
	}
}

// =============================================================================
// Randomized model check
// =============================================================================

func TestRegion_MatchesBitmapModel(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := NewPool()

	for round := 0; round < 40; round++ {
		g := New(pool)
		var model bitmap
		for step := 0; step < 30; step++ {
			r := randRect(rng)
			var err error
			switch rng.Intn(4) {
			case 0:
				err = g.OrRect(r)
				model.apply(r, func(bool) bool { return true })
			case 1:
				err = g.SubRect(r)
				model.apply(r, func(bool) bool { return false })
			case 2:
				err = g.XorRect(r)
				model.apply(r, func(old bool) bool { return !old })
			case 3:
				g.AndRect(r, 0, 0)
				model.apply(r, nil)
			}
			if err != nil {
				t.Fatalf("round %d step %d: %v", round, step, err)
			}
			assertDisjoint(t, g)
			if got := rasterize(g); got != model {
				t.Fatalf("round %d step %d: region %v diverged from model (area %d vs %d)",
					round, step, g.Rects(), g.Area(), model.count())
			}
		}
		g.Free()
		if pool.InUse() != 0 {
			t.Fatalf("round %d: %d nodes leaked", round, pool.InUse())
		}
	}
}
