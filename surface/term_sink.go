// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/fbcomp/pixel"
	"github.com/gogpu/fbcomp/region"
)

// upperHalf draws the top pixel of a cell as foreground and the bottom
// pixel as background.
const upperHalf = '▀'

// TermSink renders the screen into a terminal. Every cell shows two
// vertically stacked pixels; the framebuffer is downsampled by an integer
// factor so that it fits the terminal.
//
// TermSink is also an InputSource: mouse and key events of the terminal are
// reported in framebuffer coordinates.
type TermSink struct {
	mu     sync.Mutex
	screen tcell.Screen
	own    bool
	width  int
	height int
	scale  int

	buttons tcell.ButtonMask
}

// NewTermSink wraps screen. A nil screen makes Attach open the controlling
// terminal and Close release it.
func NewTermSink(screen tcell.Screen) *TermSink {
	return &TermSink{screen: screen}
}

// Attach initializes the terminal and computes the downsampling factor.
func (t *TermSink) Attach(width, height int, _ pixel.Format) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("surface: open terminal: %w", err)
		}
		if err := s.Init(); err != nil {
			return fmt.Errorf("surface: init terminal: %w", err)
		}
		t.screen, t.own = s, true
	}
	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset))
	t.screen.HideCursor()
	t.screen.EnableMouse()
	t.screen.Clear()

	t.width, t.height = width, height
	t.rescale()
	return nil
}

// rescale picks the smallest factor that fits the framebuffer into the
// terminal. Caller must hold t.mu.
func (t *TermSink) rescale() {
	cols, rows := t.screen.Size()
	t.scale = 1
	if cols > 0 && rows > 0 {
		t.scale = max(1, ceilDiv(t.width, cols), ceilDiv(t.height, 2*rows))
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// cellRect returns the terminal cells covering framebuffer rect r.
func (t *TermSink) cellRect(r region.Rect) region.Rect {
	return region.R(r.X0/t.scale, r.Y0/(2*t.scale), r.X1/t.scale, r.Y1/(2*t.scale))
}

// Update redraws the cells touched by rects and shows the result.
func (t *TermSink) Update(screen *pixel.Buffer, rects []region.Rect) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.screen == nil || t.scale == 0 {
		return ErrNotAttached
	}
	cols, rows := t.screen.Size()
	cells := region.R(0, 0, cols-1, rows-1)
	for _, r := range rects {
		c := t.cellRect(r).Intersect(cells)
		for cy := c.Y0; cy <= c.Y1; cy++ {
			for cx := c.X0; cx <= c.X1; cx++ {
				x := cx * t.scale
				top := t.sample(screen, x, 2*cy*t.scale)
				bottom := t.sample(screen, x, (2*cy+1)*t.scale)
				style := tcell.StyleDefault.Foreground(top).Background(bottom)
				t.screen.SetContent(cx, cy, upperHalf, nil, style)
			}
		}
	}
	t.screen.Show()
	return nil
}

func (t *TermSink) sample(screen *pixel.Buffer, x, y int) tcell.Color {
	if x >= screen.Width || y >= screen.Height {
		return tcell.ColorBlack
	}
	rgb := screen.RGBAt(x, y)
	return tcell.NewRGBColor(int32(rgb>>16&0xff), int32(rgb>>8&0xff), int32(rgb&0xff))
}

// Close releases a terminal opened by Attach.
func (t *TermSink) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.own && t.screen != nil {
		t.screen.Fini()
		t.screen = nil
	}
	return nil
}

// Run polls terminal events until ctx is done and reports them through
// post. Ctrl-C is reported as InputClose.
func (t *TermSink) Run(ctx context.Context, post func(Input)) error {
	t.mu.Lock()
	screen := t.screen
	t.mu.Unlock()
	if screen == nil {
		return ErrNotAttached
	}

	stop := context.AfterFunc(ctx, func() {
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		ev := screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		t.translate(ev, post)
	}
}

func (t *TermSink) translate(ev tcell.Event, post func(Input)) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.mu.Lock()
		t.rescale()
		t.mu.Unlock()
	case *tcell.EventKey:
		in := Input{Code: keyCode(ev), Qualifier: qualifiers(ev.Modifiers()), Time: ev.When()}
		if ev.Key() == tcell.KeyCtrlC {
			in.Kind = InputClose
			post(in)
			return
		}
		// Terminals only report presses.
		in.Kind = InputKeyDown
		post(in)
		in.Kind = InputKeyUp
		post(in)
	case *tcell.EventMouse:
		t.mu.Lock()
		cx, cy := ev.Position()
		x, y := cx*t.scale, cy*2*t.scale
		prev := t.buttons
		t.buttons = ev.Buttons() & (tcell.Button1 | tcell.Button2 | tcell.Button3)
		cur := t.buttons
		t.mu.Unlock()

		base := Input{X: x, Y: y, Qualifier: qualifiers(ev.Modifiers()), Time: ev.When()}
		move := base
		move.Kind = InputMouseMove
		post(move)
		for _, b := range []struct {
			mask tcell.ButtonMask
			code uint32
		}{
			{tcell.Button1, ButtonLeft},
			{tcell.Button3, ButtonMiddle},
			{tcell.Button2, ButtonRight},
		} {
			was, is := prev&b.mask != 0, cur&b.mask != 0
			if was == is {
				continue
			}
			in := base
			in.Kind = InputMouseButton
			in.Code = b.code
			if was {
				in.Code |= ButtonRelease
			}
			post(in)
		}
	}
}

func keyCode(ev *tcell.EventKey) uint32 {
	if ev.Key() == tcell.KeyRune {
		return uint32(ev.Rune())
	}
	return 0x10000 + uint32(ev.Key())
}

func qualifiers(m tcell.ModMask) uint32 {
	var q uint32
	if m&tcell.ModShift != 0 {
		q |= QualShift
	}
	if m&tcell.ModCtrl != 0 {
		q |= QualCtrl
	}
	if m&tcell.ModAlt != 0 {
		q |= QualAlt
	}
	if m&tcell.ModMeta != 0 {
		q |= QualMeta
	}
	return q
}

// Interface checks.
var (
	_ Sink        = (*TermSink)(nil)
	_ InputSource = (*TermSink)(nil)
	_ Sink        = (*ImageSink)(nil)
	_ Sink        = (*DiscardSink)(nil)
)
