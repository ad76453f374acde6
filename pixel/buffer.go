package pixel

import (
	"errors"

	"github.com/gogpu/fbcomp/region"
)

// Common errors for buffer operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("pixel: invalid dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("pixel: invalid format")

	// ErrInvalidStride is returned when stride is less than a row.
	ErrInvalidStride = errors.New("pixel: stride too small for width")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("pixel: data buffer too small")
)

// Buffer describes a block of pixel memory: its data, size, row stride and
// format. A Buffer does not synchronize access.
type Buffer struct {
	Data   []byte
	Width  int
	Height int
	Stride int
	Format Format
}

// New allocates a zeroed buffer with tightly packed rows.
func New(width, height int, format Format) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	stride := format.RowBytes(width)
	return &Buffer{
		Data:   make([]byte, stride*height),
		Width:  width,
		Height: height,
		Stride: stride,
		Format: format,
	}, nil
}

// FromRaw wraps existing memory without copying.
func FromRaw(data []byte, width, height int, format Format, stride int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	if stride < format.RowBytes(width) {
		return nil, ErrInvalidStride
	}
	if len(data) < stride*(height-1)+format.RowBytes(width) {
		return nil, ErrDataTooSmall
	}
	return &Buffer{Data: data, Width: width, Height: height, Stride: stride, Format: format}, nil
}

// Bounds returns the buffer area as an inclusive rectangle.
func (b *Buffer) Bounds() region.Rect {
	return region.R(0, 0, b.Width-1, b.Height-1)
}

// offset returns the byte offset of pixel (x, y).
func (b *Buffer) offset(x, y int) int {
	return y*b.Stride + x*b.Format.BytesPerPixel()
}

// Clear zeroes all pixel data.
func (b *Buffer) Clear() {
	clear(b.Data)
}

// RGBAt returns the 0xRRGGBB value of pixel (x, y), or 0 out of bounds.
func (b *Buffer) RGBAt(x, y int) uint32 {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return 0
	}
	rgb, _ := b.Format.decode(b.Data[b.offset(x, y):])
	return rgb
}

// SetRGB writes the opaque color rgb at (x, y). Out of bounds writes are
// ignored.
func (b *Buffer) SetRGB(x, y int, rgb uint32) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	b.Format.encode(b.Data[b.offset(x, y):], rgb)
}

// FillSpan writes rgb to pixels x0..x1 of row y. The span must lie inside
// the buffer.
func (b *Buffer) FillSpan(x0, x1, y int, rgb uint32) {
	if x1 < x0 {
		return
	}
	bpp := b.Format.BytesPerPixel()
	row := b.Data[b.offset(x0, y) : b.offset(x1, y)+bpp]
	b.Format.encode(row, rgb)
	// Double the filled prefix until the span is complete.
	for n := bpp; n < len(row); n *= 2 {
		copy(row[n:], row[:n])
	}
}

// FillRect fills the inclusive rectangle r, which must lie inside the buffer.
func (b *Buffer) FillRect(r region.Rect, rgb uint32) {
	for y := r.Y0; y <= r.Y1; y++ {
		b.FillSpan(r.X0, r.X1, y, rgb)
	}
}

// CopySpan moves n pixels of row sy starting at sx to row dy at dx. Source
// and destination may overlap.
func (b *Buffer) CopySpan(dx, dy, sx, sy, n int) {
	if n <= 0 {
		return
	}
	nb := n * b.Format.BytesPerPixel()
	d := b.offset(dx, dy)
	s := b.offset(sx, sy)
	copy(b.Data[d:d+nb], b.Data[s:s+nb])
}

// Scroll moves the pixels of the inclusive destination rectangle r from
// r shifted by (-dx, -dy). Rows are visited starting at the far edge in the
// direction of the move, so overlapping source and destination are safe.
func (b *Buffer) Scroll(r region.Rect, dx, dy int) {
	n := r.Dx()
	if dy > 0 {
		for y := r.Y1; y >= r.Y0; y-- {
			b.CopySpan(r.X0, y, r.X0-dx, y-dy, n)
		}
		return
	}
	for y := r.Y0; y <= r.Y1; y++ {
		b.CopySpan(r.X0, y, r.X0-dx, y-dy, n)
	}
}

// Row returns the bytes of pixels x0..x1 of row y.
func (b *Buffer) Row(x0, x1, y int) []byte {
	return b.Data[b.offset(x0, y) : b.offset(x1, y)+b.Format.BytesPerPixel()]
}
