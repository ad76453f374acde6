package fbcomp

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/fbcomp/pixel"
	"github.com/gogpu/fbcomp/region"
	"github.com/gogpu/fbcomp/surface"
)

// fakeSink records calls and fails on demand.
type fakeSink struct {
	attachErr error
	updateErr error
	updates   [][]region.Rect
	closed    bool
}

func (s *fakeSink) Attach(int, int, pixel.Format) error { return s.attachErr }

func (s *fakeSink) Update(_ *pixel.Buffer, rects []region.Rect) error {
	s.updates = append(s.updates, rects)
	return s.updateErr
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

// =============================================================================
// Sinks
// =============================================================================

func TestNewDisplaySinkAttachFailure(t *testing.T) {
	first := &fakeSink{}
	errBroken := errors.New("broken")
	_, err := NewDisplay(10, 10, WithSink(first), WithSink(&fakeSink{attachErr: errBroken}))
	if !errors.Is(err, errBroken) {
		t.Fatalf("NewDisplay error = %v, want attach error", err)
	}
	if !first.closed {
		t.Error("attached sink not closed after a later attach failed")
	}
}

func TestNewDisplayDeviceSizeMismatch(t *testing.T) {
	dev, err := pixel.New(5, 5, pixel.FormatXRGB32)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewDisplay(10, 10, WithDeviceBuffer(dev)); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("NewDisplay error = %v, want ErrInvalidGeometry", err)
	}
}

func TestFlushToImageSink(t *testing.T) {
	img := surface.NewImageSink("")
	d := newTestDisplay(t, 32, 32, WithSink(img))
	root := openWindow(t, d, WindowSpec{Flags: FlagRoot | FlagBackBuffer})
	w := openWindow(t, d, WindowSpec{X: 4, Y: 4, W: 8, H: 8})

	bg := d.AllocPen(root, 0x204060)
	if err := d.FillRect(root, region.R(0, 0, 31, 31), bg); err != nil {
		t.Fatal(err)
	}
	fg := d.AllocPen(w, 0xff8000)
	if err := d.FillRect(w, region.R(0, 0, 7, 7), fg); err != nil {
		t.Fatal(err)
	}
	d.Flush()

	snap := img.Snapshot()
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, color.RGBA{0x20, 0x40, 0x60, 0xff}},
		{31, 31, color.RGBA{0x20, 0x40, 0x60, 0xff}},
		{4, 4, color.RGBA{0xff, 0x80, 0x00, 0xff}},
		{11, 11, color.RGBA{0xff, 0x80, 0x00, 0xff}},
	}
	for _, tt := range tests {
		if got := snap.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	if calls, _ := img.Updates(); calls != 1 {
		t.Errorf("sink updates = %d, want 1", calls)
	}
	if len(d.DirtyRects()) != 0 {
		t.Errorf("dirty after flush = %v", d.DirtyRects())
	}

	// Nothing changed: no further update.
	d.Flush()
	if calls, _ := img.Updates(); calls != 1 {
		t.Errorf("idle flush updated the sink: %d calls", calls)
	}
}

func TestFlushSinkErrorKeepsGoing(t *testing.T) {
	bad := &fakeSink{updateErr: errors.New("gone")}
	good := &fakeSink{}
	d := newTestDisplay(t, 8, 8, WithSink(bad), WithSink(good))
	w := openWindow(t, d, WindowSpec{W: 8, H: 8})
	pen := d.AllocPen(w, 1)
	if err := d.DrawPoint(w, 1, 1, pen); err != nil {
		t.Fatal(err)
	}
	d.Flush()

	if len(good.updates) != 1 || len(bad.updates) != 1 {
		t.Fatalf("updates bad=%d good=%d, want 1 each", len(bad.updates), len(good.updates))
	}
	if want := region.R(1, 1, 1, 1); len(good.updates[0]) != 1 || good.updates[0][0] != want {
		t.Errorf("update rects = %v, want [%v]", good.updates[0], want)
	}
}

func TestFlushDeviceBuffer(t *testing.T) {
	dev, err := pixel.New(16, 16, pixel.FormatXRGB32)
	if err != nil {
		t.Fatal(err)
	}
	d := newTestDisplay(t, 16, 16, WithDeviceBuffer(dev))
	w := openWindow(t, d, WindowSpec{X: 2, Y: 2, W: 4, H: 4})
	pen := d.AllocPen(w, 0x00ffff)
	if err := d.FillRect(w, region.R(0, 0, 3, 3), pen); err != nil {
		t.Fatal(err)
	}
	if got := dev.RGBAt(3, 3); got != 0 {
		t.Errorf("device written before flush: %#06x", got)
	}
	d.Flush()
	if got := dev.RGBAt(3, 3); got != 0x00ffff {
		t.Errorf("device pixel = %#06x, want 00ffff", got)
	}
}

func TestFlushParallelWorkers(t *testing.T) {
	const size = 512
	sink := &fakeSink{}
	d := newTestDisplay(t, size, size, WithSink(sink), WithWorkers(4),
		WithMergePolicy(region.MergePolicy{}))
	root := openWindow(t, d, WindowSpec{Flags: FlagRoot | FlagBackBuffer})
	for i := range 8 {
		openWindow(t, d, WindowSpec{X: i * 64, Y: i * 64, W: 16, H: 16})
	}
	pen := d.AllocPen(root, 0x336699)
	if err := d.FillRect(root, region.R(0, 0, size-1, size-1), pen); err != nil {
		t.Fatal(err)
	}
	d.Flush()

	for y := 0; y < size; y += 7 {
		for x := 0; x < size; x += 7 {
			want := uint32(0x336699)
			if id, _ := d.WindowAt(x, y); id != root.ID() {
				want = 0
			}
			if got := d.Screen().RGBAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %#06x, want %#06x", x, y, got, want)
			}
		}
	}
}

// =============================================================================
// Buffers
// =============================================================================

func TestDrawBufferPixmapCache(t *testing.T) {
	d := newTestDisplay(t, 32, 32)
	w := openWindow(t, d, WindowSpec{W: 32, H: 32})

	src, err := pixel.New(4, 4, pixel.FormatXRGB32)
	if err != nil {
		t.Fatal(err)
	}
	src.FillRect(src.Bounds(), 0x445566)
	blit := BufferBlit{Src: src, X: 2, Y: 2, Key: 7}

	if err := d.DrawBuffer(w, blit); err != nil {
		t.Fatalf("DrawBuffer: %v", err)
	}
	blit.X = 20
	if err := d.DrawBuffer(w, blit); err != nil {
		t.Fatalf("DrawBuffer: %v", err)
	}

	st := d.PixmapStats()
	if st.Misses != 1 || st.Hits != 1 || st.Len != 1 {
		t.Errorf("cache stats = %+v, want 1 miss, 1 hit, 1 entry", st)
	}
	for _, x := range []int{2, 5, 20, 23} {
		if got := d.Screen().RGBAt(x, 3); got != 0x445566 {
			t.Errorf("pixel (%d,3) = %#06x, want 445566", x, got)
		}
	}

	// Alpha blits never use the cache.
	blit.Alpha = true
	if err := d.DrawBuffer(w, blit); err != nil {
		t.Fatal(err)
	}
	if got := d.PixmapStats(); got.Hits != 1 || got.Misses != 1 {
		t.Errorf("alpha blit touched the cache: %+v", got)
	}

	// Same key, swapped bytes: converted separately.
	blit.Alpha = false
	blit.ByteSwap = true
	blit.X = 2
	if err := d.DrawBuffer(w, blit); err != nil {
		t.Fatal(err)
	}
	if got := d.Screen().RGBAt(3, 3); got != 0x554400 {
		t.Errorf("swapped blit pixel = %#06x, want 554400", got)
	}
	if got := d.PixmapStats(); got.Misses != 2 || got.Len != 2 {
		t.Errorf("cache stats after swapped blit = %+v, want 2 misses, 2 entries", got)
	}

	if n := d.InvalidatePixmaps(7); n != 2 {
		t.Errorf("InvalidatePixmaps removed %d entries, want 2", n)
	}
	if got := d.PixmapStats(); got.Len != 0 {
		t.Errorf("entries after invalidate = %d, want 0", got.Len)
	}
}

func TestDrawBufferSwapMatchesUncached(t *testing.T) {
	src, err := pixel.New(4, 4, pixel.FormatXRGB32)
	if err != nil {
		t.Fatal(err)
	}
	src.FillRect(src.Bounds(), 0x445566)

	draw := func(d *Display) uint32 {
		w := openWindow(t, d, WindowSpec{W: 8, H: 8})
		for _, swap := range []bool{false, true} {
			if err := d.DrawBuffer(w, BufferBlit{Src: src, Key: 7, ByteSwap: swap}); err != nil {
				t.Fatal(err)
			}
		}
		return d.Screen().RGBAt(1, 1)
	}
	cached := draw(newTestDisplay(t, 8, 8))
	uncached := draw(newTestDisplay(t, 8, 8, WithPixmapCache(0)))
	if cached != uncached {
		t.Errorf("swapped blit with cache = %#06x, without cache = %#06x", cached, uncached)
	}
}

func TestInvalidatePixmapsRequest(t *testing.T) {
	d := newTestDisplay(t, 16, 16)
	w := openWindow(t, d, WindowSpec{W: 16, H: 16})
	src, err := pixel.New(4, 4, pixel.FormatXRGB32)
	if err != nil {
		t.Fatal(err)
	}
	src.FillRect(src.Bounds(), 0x010203)
	if _, err := d.Apply(DrawBuffer{Window: w.ID(), Blit: BufferBlit{Src: src, Key: 3}}); err != nil {
		t.Fatal(err)
	}

	// The caller rewrites the source and keeps its key.
	src.FillRect(src.Bounds(), 0x0a0b0c)
	if _, err := d.Apply(InvalidatePixmaps{Key: 3}); err != nil {
		t.Fatalf("InvalidatePixmaps: %v", err)
	}
	if _, err := d.Apply(DrawBuffer{Window: w.ID(), Blit: BufferBlit{Src: src, Key: 3}}); err != nil {
		t.Fatal(err)
	}
	if got := d.Screen().RGBAt(0, 0); got != 0x0a0b0c {
		t.Errorf("pixel after invalidate = %#06x, want 0a0b0c", got)
	}
	if n := d.InvalidatePixmaps(0); n != 0 {
		t.Errorf("InvalidatePixmaps(0) = %d, want 0", n)
	}
}

func TestDrawBufferInvalid(t *testing.T) {
	d := newTestDisplay(t, 16, 16, WithPixmapCache(0))
	w := openWindow(t, d, WindowSpec{W: 16, H: 16})
	src, err := pixel.New(4, 4, pixel.FormatXRGB32)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		blit BufferBlit
	}{
		{"nil source", BufferBlit{}},
		{"source overflow", BufferBlit{Src: src, SrcX: 2, W: 4, H: 4}},
		{"negative origin", BufferBlit{Src: src, SrcX: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.DrawBuffer(w, tt.blit); !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("DrawBuffer = %v, want ErrInvalidGeometry", err)
			}
		})
	}
	if st := d.PixmapStats(); st.Len != 0 || st.Hits != 0 || st.Misses != 0 {
		t.Errorf("disabled cache has stats %+v", st)
	}
}

func TestDrawBufferAlpha(t *testing.T) {
	d := newTestDisplay(t, 8, 8)
	w := openWindow(t, d, WindowSpec{W: 8, H: 8})
	pen := d.AllocPen(w, 0x0000ff)
	if err := d.FillRect(w, region.R(0, 0, 7, 7), pen); err != nil {
		t.Fatal(err)
	}

	src, err := pixel.New(2, 1, pixel.FormatRGBAPremul)
	if err != nil {
		t.Fatal(err)
	}
	copy(src.Row(0, 1, 0), []byte{0xff, 0, 0, 0xff, 0, 0, 0, 0})
	if err := d.DrawBuffer(w, BufferBlit{Src: src, Alpha: true}); err != nil {
		t.Fatal(err)
	}
	if got := d.Screen().RGBAt(0, 0); got != 0xff0000 {
		t.Errorf("opaque source pixel = %#06x, want ff0000", got)
	}
	if got := d.Screen().RGBAt(1, 0); got != 0x0000ff {
		t.Errorf("transparent source pixel = %#06x, want 0000ff", got)
	}
}

// =============================================================================
// SubDeviceSink
// =============================================================================

func TestSubDeviceSink(t *testing.T) {
	host := newTestDisplay(t, 64, 64)
	hostDisp, _ := startDispatcher(t, host)
	ctx := t.Context()

	rep, err := hostDisp.Do(ctx, OpenWindow{Spec: WindowSpec{X: 10, Y: 10, W: 20, H: 20}})
	if err != nil {
		t.Fatal(err)
	}

	nested := newTestDisplay(t, 20, 20, WithSink(NewSubDeviceSink(hostDisp, rep.Window)))
	w := openWindow(t, nested, WindowSpec{X: 5, Y: 5, W: 5, H: 5})
	pen := nested.AllocPen(w, 0xc0ffee)
	if err := nested.FillRect(w, region.R(0, 0, 4, 4), pen); err != nil {
		t.Fatal(err)
	}
	nested.Flush()

	// Requests run in order: once this returns, the mirrored draws are done.
	if _, err := hostDisp.Do(ctx, Flush{}); err != nil {
		t.Fatal(err)
	}
	if got := host.Screen().RGBAt(15, 15); got != 0xc0ffee {
		t.Errorf("host pixel = %#06x, want c0ffee", got)
	}
	if got := host.Screen().RGBAt(14, 14); got != 0 {
		t.Errorf("host pixel outside the nested window = %#06x, want 0", got)
	}
}
