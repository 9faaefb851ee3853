package epaper

import (
	"image"

	"github.com/alchemist-s/e-paper-simulation/image1bit"
)

// clusterRegions groups changed mask pixels into padded bounding boxes,
// one per 4-connected component. Every set mask bit ends up inside exactly
// one returned region; boxes never extend outside the mask bounds.
//
// The horizontal extent of each box is additionally quantized outward to
// the 8-pixel addressing grid. Looser boxes are fine (downstream merging
// coarsens the geometry anyway) and it keeps every window the pipeline
// produces on byte boundaries from the start.
//
// The mask is consumed: visited bits are cleared during labeling.
func clusterRegions(mask *image1bit.Horizontal, padding int) []image.Rectangle {
	if mask == nil {
		return nil
	}

	bounds := mask.Rect
	var regions []image.Rectangle
	var stack []image.Point

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := (y - bounds.Min.Y) * mask.Stride
		for bx := 0; bx < mask.Stride; bx++ {
			if mask.Pix[row+bx] == 0 {
				continue
			}
			for bit := 0; bit < 8; bit++ {
				if mask.Pix[row+bx]&(0x80>>uint(bit)) == 0 {
					continue
				}
				x := bounds.Min.X + bx*8 + bit
				if x >= bounds.Max.X {
					break
				}
				box := floodFill(mask, image.Point{X: x, Y: y}, &stack)
				regions = append(regions, padRegion(box, padding, bounds))
			}
		}
	}
	return regions
}

// floodFill clears the 4-connected component containing start and returns
// its bounding box. The caller-provided stack is reused across components
// to avoid reallocating it per cluster.
func floodFill(mask *image1bit.Horizontal, start image.Point, stack *[]image.Point) image.Rectangle {
	box := image.Rectangle{Min: start, Max: start.Add(image.Point{X: 1, Y: 1})}

	s := (*stack)[:0]
	mask.SetBit(start.X, start.Y, image1bit.Off)
	s = append(s, start)

	for len(s) > 0 {
		p := s[len(s)-1]
		s = s[:len(s)-1]

		if p.X < box.Min.X {
			box.Min.X = p.X
		}
		if p.Y < box.Min.Y {
			box.Min.Y = p.Y
		}
		if p.X+1 > box.Max.X {
			box.Max.X = p.X + 1
		}
		if p.Y+1 > box.Max.Y {
			box.Max.Y = p.Y + 1
		}

		for _, n := range [4]image.Point{
			{X: p.X - 1, Y: p.Y},
			{X: p.X + 1, Y: p.Y},
			{X: p.X, Y: p.Y - 1},
			{X: p.X, Y: p.Y + 1},
		} {
			if mask.BitAt(n.X, n.Y) {
				mask.SetBit(n.X, n.Y, image1bit.Off)
				s = append(s, n)
			}
		}
	}

	*stack = s
	return box
}

// padRegion expands box symmetrically, snaps its x extent outward to the
// byte grid, and clamps to the panel bounds.
func padRegion(box image.Rectangle, padding int, bounds image.Rectangle) image.Rectangle {
	box = box.Inset(-padding)

	box.Min.X = box.Min.X / 8 * 8
	if box.Max.X%8 != 0 {
		box.Max.X = box.Max.X/8*8 + 8
	}

	return box.Intersect(bounds)
}
