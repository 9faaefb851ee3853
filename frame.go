package epaper

import (
	"errors"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/alchemist-s/e-paper-simulation/image1bit"
)

// Frame is one full rendered monochrome image matching the panel
// dimensions. A Frame is treated as immutable once handed to the Planner;
// the planner keeps the last displayed Frame as its diff baseline and
// never mutates it in place.
type Frame struct {
	*image1bit.Horizontal
}

// NewFrame creates a blank (all paper-white) frame of the given size.
func NewFrame(w, h int) (*Frame, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.New("epaper: frame dimensions must be positive")
	}
	return &Frame{image1bit.NewHorizontal(image.Rect(0, 0, w, h))}, nil
}

// FrameFromImage converts an arbitrary image into a w×h frame. Images of a
// different size are rescaled with Catmull-Rom resampling before the 1-bit
// threshold, mirroring how uploads are normalized to panel geometry.
func FrameFromImage(src image.Image, w, h int) (*Frame, error) {
	f, err := NewFrame(w, h)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	if b.Dx() != w || b.Dy() != h {
		// Rescale through 8-bit gray so thresholding happens after
		// resampling, not before.
		gray := image.NewGray(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(gray, gray.Bounds(), src, b, xdraw.Src, nil)
		src = gray
		b = gray.Bounds()
	}

	draw.Draw(f.Horizontal, f.Bounds(), src, b.Min, draw.Src)
	return f, nil
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := image1bit.NewHorizontal(f.Rect)
	copy(c.Pix, f.Pix)
	return &Frame{c}
}

// Size returns the frame dimensions in pixels.
func (f *Frame) Size() (w, h int) {
	return f.Rect.Dx(), f.Rect.Dy()
}
