package fbcomp

import (
	"time"

	"github.com/gogpu/fbcomp/surface"
)

var inputEvents = map[surface.InputKind]EventType{
	surface.InputMouseMove:   EventMouseMove,
	surface.InputMouseButton: EventMouseButton,
	surface.InputKeyDown:     EventKeyDown,
	surface.InputKeyUp:       EventKeyUp,
	surface.InputClose:       EventClose,
}

// HandleInput routes one input report to the windows.
//
// Pointer reports go to the topmost window under the pointer; pressing a
// button there moves the focus to it. Key and close reports go to the
// focused window. Pointer positions in events are window-local.
func (d *Display) HandleInput(in surface.Input) {
	typ, ok := inputEvents[in.Kind]
	if !ok {
		return
	}
	if in.Time.IsZero() {
		in.Time = time.Now()
	}

	var target, lost *Window
	gained := false

	d.mu.Lock()
	d.qualifier = in.Qualifier
	pointer := in.Kind == surface.InputMouseMove || in.Kind == surface.InputMouseButton
	if pointer {
		d.mouseX, d.mouseY = in.X, in.Y
		if id, ok := d.windowAtLocked(in.X, in.Y); ok {
			target = d.windows[id]
		}
		press := in.Kind == surface.InputMouseButton && in.Code&surface.ButtonRelease == 0
		if press && target != nil && target.id != d.focus {
			lost = d.windows[d.focus]
			d.focus = target.id
			gained = true
		}
	} else {
		target = d.windows[d.focus]
	}
	x, y := d.mouseX, d.mouseY
	d.mu.Unlock()

	if lost != nil {
		lost.post(Event{Type: EventFocus, Code: 0, Time: in.Time})
	}
	if target == nil {
		return
	}
	if gained {
		target.post(Event{Type: EventFocus, Code: 1, Time: in.Time})
	}
	target.post(Event{
		Type:      typ,
		Code:      in.Code,
		Qualifier: in.Qualifier,
		MouseX:    x - target.screen.X0,
		MouseY:    y - target.screen.Y0,
		Time:      in.Time,
	})
}

// Tick posts EventInterval to every subscribed window.
func (d *Display) Tick(now time.Time) {
	for _, id := range d.stack {
		d.windows[id].post(Event{Type: EventInterval, Time: now})
	}
}
