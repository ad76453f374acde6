// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"context"
	"time"

	"github.com/gogpu/fbcomp/pixel"
	"github.com/gogpu/fbcomp/region"
)

// Sink mirrors the compositor's screen buffer.
//
// Attach is called once before the first Update. Update receives the whole
// screen buffer and the rectangles, in screen coordinates, that changed;
// pixels outside them are unchanged since the previous call. Update is only
// called from the goroutine that owns the compositor.
type Sink interface {
	Attach(width, height int, format pixel.Format) error
	Update(screen *pixel.Buffer, rects []region.Rect) error
	Close() error
}

// InputKind classifies an Input.
type InputKind uint8

const (
	// InputMouseMove reports a new pointer position.
	InputMouseMove InputKind = iota + 1
	// InputMouseButton reports a button press or release in Code.
	InputMouseButton
	// InputKeyDown reports a pressed key in Code.
	InputKeyDown
	// InputKeyUp reports a released key in Code.
	InputKeyUp
	// InputClose asks the focused window to close.
	InputClose
)

// Mouse button codes. A release carries ButtonRelease in addition to the
// button number.
const (
	ButtonLeft uint32 = iota + 1
	ButtonMiddle
	ButtonRight

	ButtonRelease uint32 = 0x80
)

// Qualifier bits.
const (
	QualShift uint32 = 1 << iota
	QualCtrl
	QualAlt
	QualMeta
)

// Input is one raw input report in screen pixel coordinates.
type Input struct {
	Kind      InputKind
	X, Y      int
	Code      uint32
	Qualifier uint32
	Time      time.Time
}

// InputSource produces input until ctx is done or the device goes away.
// post may be called from any goroutine.
type InputSource interface {
	Run(ctx context.Context, post func(Input)) error
}

// Options configures sinks created through the registry.
type Options struct {
	// Path is the output file of sinks that write images. The extension
	// selects the encoding (.png or .bmp).
	Path string
}
