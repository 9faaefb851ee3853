package image1bit

import (
	"image"
	"image/color"
)

// Bit is a 1-bit monochrome color: On is black ink, Off is blank paper.
type Bit bool

// Possible bit values.
const (
	On  Bit = true
	Off Bit = false
)

// RGBA converts the bit to standard RGBA.
// It implements the color.Color interface.
func (b Bit) RGBA() (r, g, bl, a uint32) {
	if b {
		return 0, 0, 0, 0xFFFF
	}
	return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
}

// String returns "On" or "Off".
func (b Bit) String() string {
	if b {
		return "On"
	}
	return "Off"
}

// toBit converts any color.Color to a Bit using 50% luminance thresholding.
func toBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, _ := c.RGBA()
	// Standard grayscale conversion: 0.299R + 0.587G + 0.114B
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Bit(y < 0x8000)
}

// BitModel converts colors to Bit.
var BitModel = color.ModelFunc(toBit)

// Horizontal is a 1-bit image with pixels packed 8 per byte, MSB first.
// Bit 7 of each byte is the leftmost pixel of the group. Rows whose width
// is not a multiple of 8 are padded; padding bits are kept cleared.
type Horizontal struct {
	Pix    []byte          // Pixel data (8 pixels per byte, MSB first)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewHorizontal creates a new Horizontal image with the specified bounds.
func NewHorizontal(r image.Rectangle) *Horizontal {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Horizontal{Rect: r}
	}

	stride := (w + 7) / 8
	return &Horizontal{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Horizontal) ColorModel() color.Model {
	return BitModel
}

// Bounds returns the image bounds.
func (p *Horizontal) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (p *Horizontal) At(x, y int) color.Color {
	return p.BitAt(x, y)
}

// BitAt returns the Bit value of the pixel at (x, y).
func (p *Horizontal) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Off
	}
	offset, mask := p.pixOffset(x, y)
	return Bit(p.Pix[offset]&mask != 0)
}

// Set sets the color of the pixel at (x, y).
func (p *Horizontal) Set(x, y int, c color.Color) {
	p.SetBit(x, y, BitModel.Convert(c).(Bit))
}

// SetBit sets the Bit value of the pixel at (x, y).
// This is faster than Set() as it doesn't require color conversion.
func (p *Horizontal) SetBit(x, y int, b Bit) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	offset, mask := p.pixOffset(x, y)
	if b {
		p.Pix[offset] |= mask
	} else {
		p.Pix[offset] &^= mask
	}
}

// pixOffset returns the byte offset and bit mask for the pixel at (x, y).
// Memory layout: each byte holds 8 pixels horizontally, leftmost pixel in
// the most significant bit.
func (p *Horizontal) pixOffset(x, y int) (offset int, mask byte) {
	x -= p.Rect.Min.X
	offset = (y-p.Rect.Min.Y)*p.Stride + x/8
	mask = 0x80 >> uint(x&7)
	return
}
