package pixel

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// View adapts a Buffer to draw.Image so that buffers can be used with the
// golang.org/x/image/draw compositing routines.
type View struct {
	buf  *Buffer
	swap bool
	px   [4]byte
}

var _ draw.Image = (*View)(nil)

// NewView returns a draw.Image over b. When swap is true every pixel word is
// read with its bytes reversed, for sources produced on a machine of the
// opposite byte order.
func NewView(b *Buffer, swap bool) *View {
	return &View{buf: b, swap: swap}
}

// ColorModel implements image.Image.
func (v *View) ColorModel() color.Model {
	switch v.buf.Format {
	case FormatRGBAPremul:
		return color.RGBAModel
	case FormatARGB32, FormatRGBA8:
		return color.NRGBAModel
	case FormatGray8:
		return color.GrayModel
	default:
		return color.RGBAModel
	}
}

// Bounds implements image.Image.
func (v *View) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.buf.Width, v.buf.Height)
}

func (v *View) pixel(x, y int) []byte {
	bpp := v.buf.Format.BytesPerPixel()
	p := v.buf.Data[v.buf.offset(x, y):][:bpp]
	if !v.swap || bpp == 1 {
		return p
	}
	q := v.px[:bpp]
	for i := range q {
		q[i] = p[bpp-1-i]
	}
	return q
}

// At implements image.Image.
func (v *View) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(v.Bounds())) {
		return color.RGBA{}
	}
	p := v.pixel(x, y)
	switch v.buf.Format {
	case FormatRGBAPremul:
		return color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	case FormatGray8:
		return color.Gray{Y: p[0]}
	}
	rgb, a := v.buf.Format.decode(p)
	return color.NRGBA{R: byte(rgb >> 16), G: byte(rgb >> 8), B: byte(rgb), A: a}
}

// Set implements draw.Image.
func (v *View) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(v.Bounds())) {
		return
	}
	p := v.buf.Data[v.buf.offset(x, y):]
	if v.buf.Format == FormatRGBAPremul {
		rc := color.RGBAModel.Convert(c).(color.RGBA)
		p[0], p[1], p[2], p[3] = rc.R, rc.G, rc.B, rc.A
		return
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	v.buf.Format.encodeAlpha(p, uint32(n.R)<<16|uint32(n.G)<<8|uint32(n.B), n.A)
}

// FromImage wraps a decoded image as a Buffer. RGBA, NRGBA and Gray images
// are shared without copying; other images are converted to RGBAPremul.
func FromImage(img image.Image) (*Buffer, error) {
	b := img.Bounds()
	switch m := img.(type) {
	case *image.RGBA:
		return FromRaw(m.Pix[m.PixOffset(b.Min.X, b.Min.Y):], b.Dx(), b.Dy(), FormatRGBAPremul, m.Stride)
	case *image.NRGBA:
		return FromRaw(m.Pix[m.PixOffset(b.Min.X, b.Min.Y):], b.Dx(), b.Dy(), FormatRGBA8, m.Stride)
	case *image.Gray:
		return FromRaw(m.Pix[m.PixOffset(b.Min.X, b.Min.Y):], b.Dx(), b.Dy(), FormatGray8, m.Stride)
	}
	buf, err := New(b.Dx(), b.Dy(), FormatRGBAPremul)
	if err != nil {
		return nil, err
	}
	draw.Draw(NewView(buf, false), buf.viewRect(), img, b.Min, draw.Src)
	return buf, nil
}

// ToImage copies the buffer into a new RGBA image.
func ToImage(b *Buffer) *image.RGBA {
	img := image.NewRGBA(b.viewRect())
	draw.Draw(img, img.Bounds(), NewView(b, false), image.Point{}, draw.Src)
	return img
}

func (b *Buffer) viewRect() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}
