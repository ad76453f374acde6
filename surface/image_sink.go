// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/bmp"

	"github.com/gogpu/fbcomp/pixel"
	"github.com/gogpu/fbcomp/region"
)

// Errors returned by ImageSink.
var (
	// ErrNotAttached is returned by Update before Attach.
	ErrNotAttached = errors.New("surface: sink not attached")

	// ErrUnknownEncoding is returned for an unsupported image encoding.
	ErrUnknownEncoding = errors.New("surface: unknown image encoding")
)

// ImageSink keeps an RGBA copy of the screen.
//
// ImageSink is safe for concurrent use: Snapshot and Encode may be called
// while the compositor updates it.
type ImageSink struct {
	mu      sync.Mutex
	img     *image.RGBA
	buf     *pixel.Buffer
	path    string
	updates int
	pixels  int
}

// NewImageSink creates an image sink. When path is not empty, Close writes
// the final image to it.
func NewImageSink(path string) *ImageSink {
	return &ImageSink{path: path}
}

// Attach allocates the mirror image.
func (s *ImageSink) Attach(width, height int, _ pixel.Format) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	buf, err := pixel.FromImage(img)
	if err != nil {
		return fmt.Errorf("surface: attach image sink: %w", err)
	}
	s.mu.Lock()
	s.img, s.buf = img, buf
	s.mu.Unlock()
	return nil
}

// Update copies rects from screen into the mirror image.
func (s *ImageSink) Update(screen *pixel.Buffer, rects []region.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return ErrNotAttached
	}
	bounds := s.buf.Bounds()
	for _, r := range rects {
		r = r.Intersect(bounds)
		if r.Empty() {
			continue
		}
		if !pixel.Convert(screen, s.buf, r, r.X0, r.Y0, false, false) {
			return fmt.Errorf("surface: convert %v from %v", r, screen.Format)
		}
		s.pixels += r.Area()
	}
	s.updates++
	return nil
}

// Snapshot returns a copy of the current image, or nil before Attach.
func (s *ImageSink) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.img == nil {
		return nil
	}
	c := image.NewRGBA(s.img.Rect)
	copy(c.Pix, s.img.Pix)
	return c
}

// Updates returns the number of Update calls and the total number of
// pixels they copied.
func (s *ImageSink) Updates() (calls, pixels int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates, s.pixels
}

// Encode writes the current image as "png" or "bmp".
func (s *ImageSink) Encode(w io.Writer, encoding string) error {
	img := s.Snapshot()
	if img == nil {
		return ErrNotAttached
	}
	switch strings.ToLower(encoding) {
	case "png":
		return png.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
}

// Save writes the current image to path, choosing the encoding from the
// file extension.
func (s *ImageSink) Save(path string) (err error) {
	encoding := strings.TrimPrefix(filepath.Ext(path), ".")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return s.Encode(f, encoding)
}

// Close writes the image to the configured path, if any.
func (s *ImageSink) Close() error {
	if s.path == "" || s.Snapshot() == nil {
		return nil
	}
	return s.Save(s.path)
}

// DiscardSink drops every update. It is useful for benchmarks and for
// running the compositor headless.
type DiscardSink struct {
	mu      sync.Mutex
	updates int
	rects   int
}

// Attach does nothing.
func (d *DiscardSink) Attach(int, int, pixel.Format) error { return nil }

// Update counts the call and discards it.
func (d *DiscardSink) Update(_ *pixel.Buffer, rects []region.Rect) error {
	d.mu.Lock()
	d.updates++
	d.rects += len(rects)
	d.mu.Unlock()
	return nil
}

// Close does nothing.
func (d *DiscardSink) Close() error { return nil }

// Updates returns the number of Update calls and rectangles seen.
func (d *DiscardSink) Updates() (calls, rects int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updates, d.rects
}
