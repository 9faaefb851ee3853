package epaper

import "image"

// alignRegion snaps a region's horizontal bounds to the panel's 8-pixel
// addressing grid. This is the only alignment call site in the module;
// mis-aligned window addressing corrupts adjacent unchanged pixels on the
// panel, so every emitted window passes through here.
//
// The case analysis reproduces the panel driver's partial-window rule.
// With a = x0 mod 8 and b = x1 mod 8, both bounds snap down when
// (a+b == 8 and a > b), or a+b == 0, or the width is already a multiple
// of 8; otherwise x0 snaps down and x1 snaps up to the next multiple of 8.
// y bounds pass through untouched: the panel addresses full pixel rows.
//
// Inputs whose x extent already sits on the byte grid (everything the
// clusterer produces) hit the a+b == 0 case and come through unchanged.
func alignRegion(r image.Rectangle, panelWidth int) image.Rectangle {
	a := r.Min.X % 8
	b := r.Max.X % 8

	x0 := r.Min.X / 8 * 8
	x1 := r.Max.X / 8 * 8
	if !((a+b == 8 && a > b) || a+b == 0 || (r.Max.X-r.Min.X)%8 == 0) && b != 0 {
		x1 += 8
	}

	if x1 > panelWidth {
		x1 = panelWidth
	}

	return image.Rect(x0, r.Min.Y, x1, r.Max.Y)
}
