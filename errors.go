package fbcomp

import "errors"

// Errors returned by Display and Dispatcher operations.
var (
	// ErrInvalidGeometry is returned for degenerate sizes or rectangles.
	ErrInvalidGeometry = errors.New("fbcomp: invalid geometry")

	// ErrNoWindow is returned when a request names an unknown window.
	ErrNoWindow = errors.New("fbcomp: no such window")

	// ErrNoPen is returned when a draw request names an unknown pen.
	ErrNoPen = errors.New("fbcomp: no such pen")

	// ErrRootExists is returned when a second root window is opened.
	ErrRootExists = errors.New("fbcomp: root window already open")

	// ErrWindowClosed is returned by EventQueue.Wait after the window was
	// closed and its queue drained.
	ErrWindowClosed = errors.New("fbcomp: window closed")

	// ErrDisplayClosed is returned for requests after Close.
	ErrDisplayClosed = errors.New("fbcomp: display closed")

	// ErrUnknownRequest is returned for request types the dispatcher does
	// not handle.
	ErrUnknownRequest = errors.New("fbcomp: unknown request")
)
