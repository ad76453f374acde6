// Package pixel provides pixel buffers, format-dispatched span writers and
// format conversion for the compositor.
package pixel

// Format represents a pixel storage format.
type Format uint8

const (
	// FormatXRGB32 is 0x00RRGGBB stored as a little-endian 32-bit word
	// (bytes B, G, R, X). This is the usual framebuffer layout.
	FormatXRGB32 Format = iota

	// FormatARGB32 is 0xAARRGGBB stored little-endian (bytes B, G, R, A)
	// with straight alpha.
	FormatARGB32

	// FormatRGBA8 is bytes R, G, B, A with straight alpha.
	FormatRGBA8

	// FormatRGBAPremul is bytes R, G, B, A with premultiplied alpha.
	FormatRGBAPremul

	// FormatRGB565 is a little-endian 16-bit word with 5/6/5 bits.
	FormatRGB565

	// FormatRGB8 is packed bytes R, G, B.
	FormatRGB8

	// FormatGray8 is 8-bit luminance.
	FormatGray8

	formatCount
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	BytesPerPixel   int
	HasAlpha        bool
	IsPremultiplied bool
	Name            string
}

var formatInfoTable = [formatCount]FormatInfo{
	FormatXRGB32:     {BytesPerPixel: 4, Name: "XRGB32"},
	FormatARGB32:     {BytesPerPixel: 4, HasAlpha: true, Name: "ARGB32"},
	FormatRGBA8:      {BytesPerPixel: 4, HasAlpha: true, Name: "RGBA8"},
	FormatRGBAPremul: {BytesPerPixel: 4, HasAlpha: true, IsPremultiplied: true, Name: "RGBAPremul"},
	FormatRGB565:     {BytesPerPixel: 2, Name: "RGB565"},
	FormatRGB8:       {BytesPerPixel: 3, Name: "RGB8"},
	FormatGray8:      {BytesPerPixel: 1, Name: "Gray8"},
}

// Info returns the FormatInfo for this format.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// BytesPerPixel returns the number of bytes per pixel.
func (f Format) BytesPerPixel() int {
	return f.Info().BytesPerPixel
}

// HasAlpha reports whether the format carries an alpha channel.
func (f Format) HasAlpha() bool {
	return f.Info().HasAlpha
}

// IsValid returns true if the format is a known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// RowBytes returns the number of bytes of a row of the given width.
func (f Format) RowBytes(width int) int {
	return width * f.BytesPerPixel()
}

func (f Format) String() string {
	if !f.IsValid() {
		return "Unknown"
	}
	return formatInfoTable[f].Name
}

// ParseFormat returns the format with the given name.
func ParseFormat(name string) (Format, bool) {
	for f := Format(0); f < formatCount; f++ {
		if formatInfoTable[f].Name == name {
			return f, true
		}
	}
	return 0, false
}

// encode writes the pixel value of the opaque color rgb (0xRRGGBB) into p,
// which must hold at least BytesPerPixel bytes.
func (f Format) encode(p []byte, rgb uint32) {
	r := byte(rgb >> 16)
	g := byte(rgb >> 8)
	b := byte(rgb)
	switch f {
	case FormatXRGB32:
		p[0], p[1], p[2], p[3] = b, g, r, 0
	case FormatARGB32:
		p[0], p[1], p[2], p[3] = b, g, r, 0xff
	case FormatRGBA8, FormatRGBAPremul:
		p[0], p[1], p[2], p[3] = r, g, b, 0xff
	case FormatRGB565:
		v := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
		p[0], p[1] = byte(v), byte(v>>8)
	case FormatRGB8:
		p[0], p[1], p[2] = r, g, b
	case FormatGray8:
		p[0] = byte((299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000)
	}
}

// encodeAlpha writes rgb with straight alpha a. Formats without an alpha
// channel drop a.
func (f Format) encodeAlpha(p []byte, rgb uint32, a byte) {
	f.encode(p, rgb)
	switch f {
	case FormatARGB32, FormatRGBA8:
		p[3] = a
	case FormatRGBAPremul:
		pm := func(c byte) byte { return byte((uint32(c)*uint32(a) + 127) / 255) }
		p[0], p[1], p[2], p[3] = pm(p[0]), pm(p[1]), pm(p[2]), a
	}
}

// decode returns the 0xRRGGBB value and the straight alpha of the pixel in p.
func (f Format) decode(p []byte) (rgb uint32, a byte) {
	switch f {
	case FormatXRGB32:
		return uint32(p[2])<<16 | uint32(p[1])<<8 | uint32(p[0]), 0xff
	case FormatARGB32:
		return uint32(p[2])<<16 | uint32(p[1])<<8 | uint32(p[0]), p[3]
	case FormatRGBA8:
		return uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2]), p[3]
	case FormatRGBAPremul:
		a = p[3]
		if a == 0 {
			return 0, 0
		}
		un := func(c byte) uint32 { return min((uint32(c)*255+uint32(a)/2)/uint32(a), 255) }
		return un(p[0])<<16 | un(p[1])<<8 | un(p[2]), a
	case FormatRGB565:
		v := uint16(p[0]) | uint16(p[1])<<8
		r := uint32(v>>11) & 0x1f
		g := uint32(v>>5) & 0x3f
		b := uint32(v) & 0x1f
		return (r<<3|r>>2)<<16 | (g<<2|g>>4)<<8 | (b<<3 | b>>2), 0xff
	case FormatRGB8:
		return uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2]), 0xff
	case FormatGray8:
		return uint32(p[0])*0x010101, 0xff
	}
	return 0, 0
}
