package fbcomp

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/fbcomp/region"
	"github.com/gogpu/fbcomp/surface"
)

type bogusRequest struct{}

func (bogusRequest) isRequest() {}

// startDispatcher runs a dispatcher for d until the test ends.
func startDispatcher(t *testing.T, d *Display) (*Dispatcher, <-chan error) {
	t.Helper()
	disp := NewDispatcher(d)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- disp.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("dispatcher did not stop")
		}
	})
	return disp, done
}

func TestDispatcherRequests(t *testing.T) {
	sink := &surface.DiscardSink{}
	d := newTestDisplay(t, 64, 64, WithSink(sink))
	disp, done := startDispatcher(t, d)
	ctx := t.Context()

	rep, err := disp.Do(ctx, OpenWindow{Spec: WindowSpec{W: 10, H: 10, EventMask: EventRefresh}})
	if err != nil {
		t.Fatalf("OpenWindow: %v", err)
	}
	if rep.Window == 0 || rep.Events == nil {
		t.Fatalf("reply = %+v, want window and events", rep)
	}
	ev, err := rep.Events.Wait(ctx)
	if err != nil || ev.Type != EventRefresh || ev.Rect() != region.R(0, 0, 9, 9) {
		t.Errorf("first event = %+v, %v, want REFRESH of the window", ev, err)
	}

	pen, err := disp.Do(ctx, AllocPen{Window: rep.Window, RGB: 0xff00ff})
	if err != nil || pen.Pen == 0 {
		t.Fatalf("AllocPen = %+v, %v", pen, err)
	}
	if _, err := disp.Do(ctx, DrawRect{Window: rep.Window, Rect: region.R(0, 0, 9, 9), Pen: pen.Pen, Fill: true}); err != nil {
		t.Fatalf("DrawRect: %v", err)
	}
	if _, err := disp.Do(ctx, Flush{}); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if calls, rects := sink.Updates(); calls != 1 || rects == 0 {
		t.Errorf("sink updates = %d calls, %d rects, want 1 call", calls, rects)
	}

	if _, err := disp.Do(ctx, DrawPoint{Window: 999, Pen: pen.Pen}); !errors.Is(err, ErrNoWindow) {
		t.Errorf("unknown window error = %v, want ErrNoWindow", err)
	}
	if _, err := disp.Do(ctx, bogusRequest{}); !errors.Is(err, ErrUnknownRequest) {
		t.Errorf("unknown request error = %v, want ErrUnknownRequest", err)
	}
	if _, err := disp.Do(ctx, DrawPoint{Window: rep.Window, Pen: 42}); !errors.Is(err, ErrNoPen) {
		t.Errorf("unknown pen error = %v, want ErrNoPen", err)
	}

	// A failing posted request is only logged.
	if err := disp.Post(DrawPoint{Window: 999}); err != nil {
		t.Errorf("Post: %v", err)
	}

	if _, err := disp.Do(ctx, CloseWindow{Window: rep.Window}); err != nil {
		t.Fatalf("CloseWindow: %v", err)
	}
	if _, err := rep.Events.Wait(ctx); !errors.Is(err, ErrWindowClosed) {
		t.Errorf("Wait after close = %v, want ErrWindowClosed", err)
	}

	disp.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run after Close = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
	if err := disp.Post(Flush{}); !errors.Is(err, ErrDisplayClosed) {
		t.Errorf("Post after Close = %v, want ErrDisplayClosed", err)
	}
	if _, err := disp.Do(ctx, Flush{}); !errors.Is(err, ErrDisplayClosed) {
		t.Errorf("Do after Close = %v, want ErrDisplayClosed", err)
	}
}

func TestDispatcherCancel(t *testing.T) {
	d := newTestDisplay(t, 16, 16)
	disp := NewDispatcher(d)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- disp.Run(ctx) }()

	if _, err := disp.Do(ctx, OpenWindow{Spec: WindowSpec{W: 4, H: 4}}); err != nil {
		t.Fatal(err)
	}
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if err := disp.Post(Flush{}); !errors.Is(err, ErrDisplayClosed) {
		t.Errorf("Post after cancel = %v, want ErrDisplayClosed", err)
	}
}

func TestDispatcherInput(t *testing.T) {
	d := newTestDisplay(t, 32, 32)
	disp, _ := startDispatcher(t, d)
	ctx := t.Context()

	rep, err := disp.Do(ctx, OpenWindow{Spec: WindowSpec{W: 8, H: 8, EventMask: EventMouseButton}})
	if err != nil {
		t.Fatal(err)
	}
	disp.PostInput(surface.Input{Kind: surface.InputMouseButton, X: 3, Y: 4, Code: surface.ButtonRight})

	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ev, err := rep.Events.Wait(wctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if ev.Type != EventMouseButton || ev.Code != surface.ButtonRight || ev.MouseX != 3 || ev.MouseY != 4 {
		t.Errorf("event = %+v", ev)
	}
	if d.Focus() != rep.Window {
		t.Errorf("focus = %d, want %d", d.Focus(), rep.Window)
	}
}

func TestDispatcherInputNotStarved(t *testing.T) {
	d := newTestDisplay(t, 32, 32)
	disp, _ := startDispatcher(t, d)
	ctx := t.Context()

	rep, err := disp.Do(ctx, OpenWindow{Spec: WindowSpec{W: 20, H: 20, EventMask: EventMouseButton}})
	if err != nil {
		t.Fatal(err)
	}

	// Every copy exposes part of the window and queues the next copy, so the
	// request queue never runs empty until stop is set.
	var stop atomic.Bool
	var again ExposeFunc
	again = func(region.Rect) {
		if !stop.Load() {
			_ = disp.Post(CopyArea{Window: rep.Window, Rect: region.R(-5, 0, 4, 9), DX: 10, Expose: again})
		}
	}
	defer stop.Store(true)
	if err := disp.Post(CopyArea{Window: rep.Window, Rect: region.R(-5, 0, 4, 9), DX: 10, Expose: again}); err != nil {
		t.Fatal(err)
	}
	disp.PostInput(surface.Input{Kind: surface.InputMouseButton, X: 1, Y: 1, Code: surface.ButtonLeft})

	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ev, err := rep.Events.Wait(wctx)
	if err != nil {
		t.Fatalf("input not delivered while requests kept arriving: %v", err)
	}
	if ev.Type != EventMouseButton {
		t.Errorf("event = %+v, want MOUSEBUTTON", ev)
	}
}

func TestDispatcherInterval(t *testing.T) {
	d := newTestDisplay(t, 16, 16, WithInterval(5*time.Millisecond))
	disp, _ := startDispatcher(t, d)

	rep, err := disp.Do(t.Context(), OpenWindow{Spec: WindowSpec{W: 4, H: 4, EventMask: EventInterval}})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	ev, err := rep.Events.Wait(ctx)
	if err != nil || ev.Type != EventInterval {
		t.Errorf("event = %+v, %v, want INTERVAL", ev, err)
	}
}

func TestDispatcherIdleFlush(t *testing.T) {
	sink := &surface.DiscardSink{}
	d := newTestDisplay(t, 16, 16, WithSink(sink), WithIdleFlush(time.Millisecond))
	disp, _ := startDispatcher(t, d)
	ctx := t.Context()

	rep, err := disp.Do(ctx, OpenWindow{Spec: WindowSpec{W: 4, H: 4}})
	if err != nil {
		t.Fatal(err)
	}
	pen, err := disp.Do(ctx, AllocPen{Window: rep.Window, RGB: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := disp.Post(DrawRect{Window: rep.Window, Rect: region.R(0, 0, 3, 3), Pen: pen.Pen, Fill: true}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if calls, _ := sink.Updates(); calls > 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Error("idle flush never reached the sink")
}
