// Package glyph renders text into pixel buffers for DrawBuffer requests.
//
// It stands in for the font collaborator of the compositor: the result is
// an RGBAPremul buffer, transparent outside the glyphs, meant to be blitted
// with alpha blending.
package glyph

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/fbcomp/pixel"
)

// ErrEmpty is returned when the text has no visible extent.
var ErrEmpty = errors.New("glyph: empty text")

// Default returns the built-in 7x13 bitmap face.
func Default() font.Face {
	return basicfont.Face7x13
}

// ParseFace loads a TrueType or OpenType font at size points and dpi.
func ParseFace(data []byte, size, dpi float64) (font.Face, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("glyph: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("glyph: new face: %w", err)
	}
	return face, nil
}

// Size returns the pixel size Render would produce for text.
func Size(face font.Face, text string) (width, height int) {
	m := face.Metrics()
	return font.MeasureString(face, text).Ceil(), (m.Ascent + m.Descent).Ceil()
}

// Render draws text in color rgb (0xRRGGBB) on a transparent buffer just
// large enough for one line. The baseline sits at the face ascent.
func Render(face font.Face, text string, rgb uint32) (*pixel.Buffer, error) {
	w, h := Size(face, text)
	if w <= 0 || h <= 0 {
		return nil, ErrEmpty
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	src := image.NewUniform(color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 0xff})
	d := &font.Drawer{
		Dst:  img,
		Src:  src,
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: face.Metrics().Ascent},
	}
	d.DrawString(text)
	return pixel.FromImage(img)
}
