// Package fbcomp is a software window compositor for raw framebuffers.
//
// # Overview
//
// A Display owns a screen buffer and a z-ordered stack of windows. Windows
// either draw straight into the screen buffer, clipped against the windows
// above them, or into a private back buffer that is composited on Flush.
// Every change is tracked as a set of dirty rectangles (package region) and
// only those rectangles are handed to the output sinks (package surface).
//
// # Quick Start
//
//	d, err := fbcomp.NewDisplay(640, 480,
//	    fbcomp.WithSink(surface.NewImageSink("out.png")))
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
//
//	root, _ := d.OpenWindow(fbcomp.WindowSpec{Flags: fbcomp.FlagRoot | fbcomp.FlagBackBuffer})
//	pen := d.AllocPen(root, 0x336699)
//	d.FillRect(root, region.R(0, 0, 639, 479), pen)
//	d.Flush()
//
// # Concurrency
//
// A Display is driven by one goroutine. Programs with several clients wrap
// it in a Dispatcher, which queues Request values and input reports from
// any goroutine and executes them in order. WindowAt, Focus, Pointer and
// Stack may be called concurrently with the dispatcher.
//
// # Coordinates
//
// Rectangles are inclusive on both ends: region.R(0, 0, 9, 9) is 10x10
// pixels. Drawing requests and events use window-local coordinates with the
// origin at the window's top-left corner.
//
// # Errors
//
// Drawing is best effort. A primitive that is fully clipped or occluded,
// or whose clip region cannot be allocated, is skipped silently and
// logged at debug level. Only invalid arguments, such as an unknown pen or
// window, are reported.
package fbcomp

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
