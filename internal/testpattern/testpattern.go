// Package testpattern generates the demo animation: a circle sweeping a
// sine path with a frame counter and a cycling message, so partial
// updates have localized, predictable change to chew on.
package testpattern

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	epaper "github.com/alchemist-s/e-paper-simulation"
)

var messages = []string{"Hello", "World", "E-Paper", "Smart", "Updates"}

const circleRadius = 30

// Generator renders successive demo frames at panel dimensions.
type Generator struct {
	w, h int
	face font.Face
}

// New creates a generator for a w×h panel.
func New(w, h int) *Generator {
	return &Generator{w: w, h: h, face: basicfont.Face7x13}
}

// Frame renders frame number n.
func (g *Generator) Frame(n int) (*epaper.Frame, error) {
	img := image.NewGray(image.Rect(0, 0, g.w, g.h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}

	// The circle advances 20px per frame and bobs on a sine wave.
	cx := g.w/4 + (n*20)%(g.w/2)
	cy := g.h/2 + int(50*math.Sin(float64(n)*0.5))
	drawCircle(img, cx, cy, circleRadius)

	g.drawText(img, 50, 50, fmt.Sprintf("Frame: %d", n))
	g.drawText(img, 50, 100, messages[n%len(messages)])

	return epaper.FrameFromImage(img, g.w, g.h)
}

// drawCircle fills a disc, clipped to the image.
func drawCircle(img *image.Gray, cx, cy, r int) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
}

func (g *Generator) drawText(img *image.Gray, x, y int, s string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Gray{Y: 0}),
		Face: g.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
