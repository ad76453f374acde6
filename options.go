package fbcomp

import (
	"time"

	"github.com/gogpu/fbcomp/pixel"
	"github.com/gogpu/fbcomp/region"
	"github.com/gogpu/fbcomp/surface"
)

// DisplayOption configures a Display during creation.
//
// Example:
//
//	// 640x480 XRGB32 screen mirrored into a PNG on close
//	d, err := fbcomp.NewDisplay(640, 480,
//	    fbcomp.WithSink(surface.NewImageSink("screen.png")))
type DisplayOption func(*displayOptions)

// displayOptions holds optional configuration for Display creation.
type displayOptions struct {
	format      pixel.Format
	device      *pixel.Buffer
	convert     pixel.ConvertFunc
	sinks       []surface.Sink
	poolLimit   int
	policy      region.MergePolicy
	cacheBytes  int
	buffersKept int
	interval    time.Duration
	idleFlush   time.Duration
	workers     int
}

// defaultOptions returns the default display options.
func defaultOptions() displayOptions {
	return displayOptions{
		format:      pixel.FormatXRGB32,
		convert:     pixel.Convert,
		policy:      region.DefaultMergePolicy(),
		cacheBytes:  16 << 20,
		buffersKept: 2,
	}
}

// WithFormat sets the pixel format of the screen buffer and of every back
// buffer. The default is XRGB32.
func WithFormat(f pixel.Format) DisplayOption {
	return func(o *displayOptions) {
		o.format = f
	}
}

// WithDeviceBuffer makes flush copy changed rectangles from the screen
// buffer into dev, typically a mapped framebuffer. dev must have the
// screen's size; it may use another format.
func WithDeviceBuffer(dev *pixel.Buffer) DisplayOption {
	return func(o *displayOptions) {
		o.device = dev
	}
}

// WithConverter replaces the pixel conversion function used for blits,
// flushes and device copies.
func WithConverter(fn pixel.ConvertFunc) DisplayOption {
	return func(o *displayOptions) {
		if fn != nil {
			o.convert = fn
		}
	}
}

// WithSink adds a sink that receives every flush. May be repeated.
func WithSink(s surface.Sink) DisplayOption {
	return func(o *displayOptions) {
		if s != nil {
			o.sinks = append(o.sinks, s)
		}
	}
}

// WithPoolLimit caps the number of rectangle nodes all regions of the
// display may hold. Zero means unlimited.
func WithPoolLimit(n int) DisplayOption {
	return func(o *displayOptions) {
		o.poolLimit = n
	}
}

// WithMergePolicy tunes when dirty regions collapse into their bounding box.
func WithMergePolicy(mp region.MergePolicy) DisplayOption {
	return func(o *displayOptions) {
		o.policy = mp
	}
}

// WithPixmapCache sets the byte budget of the converted pixmap cache used
// by keyed buffer blits. Zero disables the cache.
func WithPixmapCache(bytes int) DisplayOption {
	return func(o *displayOptions) {
		o.cacheBytes = bytes
	}
}

// WithInterval makes the dispatcher send EventInterval at the given period.
func WithInterval(d time.Duration) DisplayOption {
	return func(o *displayOptions) {
		o.interval = d
	}
}

// WithIdleFlush makes the dispatcher flush pending changes after d passes
// without any request or input. Zero leaves flushing to Flush requests.
func WithIdleFlush(d time.Duration) DisplayOption {
	return func(o *displayOptions) {
		o.idleFlush = d
	}
}

// WithWorkers composites large flushes on n goroutines. Zero, the default,
// keeps all pixel work on the dispatcher goroutine. With n > 0 the
// converter must be safe for concurrent calls on disjoint rectangles.
func WithWorkers(n int) DisplayOption {
	return func(o *displayOptions) {
		o.workers = n
	}
}
