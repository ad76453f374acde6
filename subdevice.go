package fbcomp

import (
	"fmt"

	"github.com/gogpu/fbcomp/pixel"
	"github.com/gogpu/fbcomp/region"
)

// SubDeviceSink mirrors a display into a window of another display. Every
// update becomes DrawBuffer requests followed by a Flush, posted to the
// other display's dispatcher.
//
// Changed rectangles are copied out of the screen buffer before posting,
// so the two dispatchers never share pixels.
type SubDeviceSink struct {
	target *Dispatcher
	window WindowID
	format pixel.Format
}

// NewSubDeviceSink returns a sink drawing into window of target.
func NewSubDeviceSink(target *Dispatcher, window WindowID) *SubDeviceSink {
	return &SubDeviceSink{target: target, window: window}
}

// Attach records the source format.
func (s *SubDeviceSink) Attach(width, height int, format pixel.Format) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("sub-device %dx%d: %w", width, height, ErrInvalidGeometry)
	}
	s.format = format
	return nil
}

// Update posts one DrawBuffer per rectangle and a Flush.
func (s *SubDeviceSink) Update(screen *pixel.Buffer, rects []region.Rect) error {
	for _, r := range rects {
		snap, err := pixel.New(r.Dx(), r.Dy(), screen.Format)
		if err != nil {
			return err
		}
		if !pixel.Convert(screen, snap, snap.Bounds(), r.X0, r.Y0, false, false) {
			continue
		}
		if err := s.target.Post(DrawBuffer{
			Window: s.window,
			Blit:   BufferBlit{Src: snap, X: r.X0, Y: r.Y0},
		}); err != nil {
			return err
		}
	}
	return s.target.Post(Flush{})
}

// Close does nothing; the target display outlives the sink.
func (s *SubDeviceSink) Close() error { return nil }
