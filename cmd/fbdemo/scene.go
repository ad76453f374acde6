package main

import (
	"context"
	"fmt"

	"golang.org/x/image/font"

	"github.com/gogpu/fbcomp"
	"github.com/gogpu/fbcomp/glyph"
	"github.com/gogpu/fbcomp/region"
)

// scene tracks the windows opened from the config so that they can be
// repainted on REFRESH.
type scene struct {
	disp    *fbcomp.Dispatcher
	face    font.Face
	windows map[fbcomp.WindowID]*sceneWindow
	// textKey names rendered labels for the pixmap cache.
	textKey uint64
}

type sceneWindow struct {
	cfg    WindowConfig
	id     fbcomp.WindowID
	events *fbcomp.EventQueue
	bg     fbcomp.PenID
	border fbcomp.PenID
	label  fbcomp.BufferBlit
}

func newScene(disp *fbcomp.Dispatcher, face font.Face) *scene {
	return &scene{disp: disp, face: face, windows: make(map[fbcomp.WindowID]*sceneWindow)}
}

// open creates every configured window and paints it.
func (s *scene) open(ctx context.Context, cfgs []WindowConfig) error {
	for _, c := range cfgs {
		spec := fbcomp.WindowSpec{
			X: c.X, Y: c.Y, W: c.W, H: c.H,
			Title:     c.Title,
			EventMask: fbcomp.EventAll,
		}
		if c.Root {
			spec.Flags |= fbcomp.FlagRoot
		}
		if c.Popup {
			spec.Flags |= fbcomp.FlagPopup
		}
		if c.BackBuffer {
			spec.Flags |= fbcomp.FlagBackBuffer
		}
		rep, err := s.disp.Do(ctx, fbcomp.OpenWindow{Spec: spec})
		if err != nil {
			return fmt.Errorf("open %q: %w", c.Title, err)
		}
		w := &sceneWindow{cfg: c, id: rep.Window, events: rep.Events}
		if w.bg, err = s.pen(ctx, w.id, c.Background); err != nil {
			return err
		}
		if w.border, err = s.pen(ctx, w.id, c.Border); err != nil {
			return err
		}
		if c.Text != "" {
			buf, err := glyph.Render(s.face, c.Text, c.TextColor)
			if err != nil {
				return fmt.Errorf("label %q: %w", c.Text, err)
			}
			s.textKey++
			w.label = fbcomp.BufferBlit{Src: buf, X: 4, Y: 4, Alpha: true, Key: s.textKey}
		}
		s.windows[w.id] = w
		if err := s.paint(ctx, w, region.R(0, 0, 1<<20, 1<<20)); err != nil {
			return err
		}
	}
	_, err := s.disp.Do(ctx, fbcomp.Flush{})
	return err
}

func (s *scene) pen(ctx context.Context, id fbcomp.WindowID, rgb uint32) (fbcomp.PenID, error) {
	rep, err := s.disp.Do(ctx, fbcomp.AllocPen{Window: id, RGB: rgb})
	return rep.Pen, err
}

// paint redraws the part r (window coordinates) of w.
func (s *scene) paint(ctx context.Context, w *sceneWindow, r region.Rect) error {
	reqs := []fbcomp.Request{
		fbcomp.SetClip{Window: w.id, Rect: r},
		fbcomp.DrawRect{Window: w.id, Rect: region.R(0, 0, 1<<20, 1<<20), Pen: w.bg, Fill: true},
	}
	if !w.cfg.Root {
		reqs = append(reqs, fbcomp.DrawRect{Window: w.id, Rect: region.XYWH(0, 0, w.cfg.W, w.cfg.H), Pen: w.border})
	}
	if w.label.Src != nil {
		reqs = append(reqs, fbcomp.DrawBuffer{Window: w.id, Blit: w.label})
	}
	reqs = append(reqs, fbcomp.UnsetClip{Window: w.id})
	for _, req := range reqs {
		if _, err := s.disp.Do(ctx, req); err != nil {
			return fmt.Errorf("paint %q: %T: %w", w.cfg.Title, req, err)
		}
	}
	return nil
}

// serve handles the events of one window until ctx is done or the window
// asks to close, in which case quit is called.
func (s *scene) serve(ctx context.Context, w *sceneWindow, quit func()) {
	for {
		ev, err := w.events.Wait(ctx)
		if err != nil {
			return
		}
		switch ev.Type {
		case fbcomp.EventRefresh:
			if err := s.paint(ctx, w, ev.Rect()); err != nil {
				fbcomp.Logger().Warn("fbdemo: repaint failed", "err", err)
			}
			_ = s.disp.Post(fbcomp.Flush{})
		case fbcomp.EventMouseButton:
			if !w.cfg.Root {
				_ = s.disp.Post(fbcomp.Raise{Window: w.id})
				_ = s.disp.Post(fbcomp.Flush{})
			}
		case fbcomp.EventKeyDown:
			if ev.Code == 'q' {
				quit()
				return
			}
		case fbcomp.EventClose:
			quit()
			return
		}
	}
}
