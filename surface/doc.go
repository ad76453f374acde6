// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface provides the output sinks and input sources a compositor
// is attached to.
//
// A [Sink] receives the composited screen buffer together with the list of
// rectangles that changed since the previous flush. Sinks never see window
// structure; they only mirror pixels.
//
// # Sink Types
//
//   - ImageSink: keeps an *image.RGBA copy, written out as PNG or BMP
//   - TermSink: renders into a terminal through tcell, two pixels per cell
//   - DiscardSink: counts updates and drops them
//
// # Input
//
// An [InputSource] runs on its own goroutine and reports pointer and key
// activity as [Input] values through a callback. The compositor turns them
// into per-window events.
//
// # Registry
//
// Sinks are created by name through the registry, which lets a command
// line tool select an output without importing every backend:
//
//	s, err := surface.NewSinkByName("term", surface.Options{})
//	// or the best available one:
//	s, err := surface.NewSink(surface.Options{Path: "out.png"})
package surface
