package epaper

import (
	"image"
	"testing"

	"github.com/alchemist-s/e-paper-simulation/image1bit"
)

func newMask(w, h int, pts ...image.Point) *image1bit.Horizontal {
	m := image1bit.NewHorizontal(image.Rect(0, 0, w, h))
	for _, p := range pts {
		m.SetBit(p.X, p.Y, image1bit.On)
	}
	return m
}

func TestClusterEmptyMask(t *testing.T) {
	if got := clusterRegions(newMask(64, 64), 8); got != nil {
		t.Errorf("empty mask: got %v, want nil", got)
	}
	if got := clusterRegions(nil, 8); got != nil {
		t.Errorf("nil mask: got %v, want nil", got)
	}
}

func TestClusterSinglePixel(t *testing.T) {
	regions := clusterRegions(newMask(800, 480, image.Pt(100, 100)), 8)

	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
	r := regions[0]
	if !image.Pt(100, 100).In(r) {
		t.Errorf("region %v does not contain the changed pixel", r)
	}
	if !r.In(image.Rect(0, 0, 800, 480)) {
		t.Errorf("region %v escapes panel bounds", r)
	}
	if r.Min.X%8 != 0 || r.Max.X%8 != 0 {
		t.Errorf("region %v x extent not on the byte grid", r)
	}
}

func TestClusterConnectedLineIsOneRegion(t *testing.T) {
	pts := make([]image.Point, 0, 20)
	for x := 10; x < 30; x++ {
		pts = append(pts, image.Pt(x, 5))
	}
	regions := clusterRegions(newMask(64, 16, pts...), 0)

	if len(regions) != 1 {
		t.Fatalf("horizontal run split into %d regions, want 1", len(regions))
	}
	want := image.Rect(8, 5, 32, 6) // x extent quantized outward to bytes
	if regions[0] != want {
		t.Errorf("region = %v, want %v", regions[0], want)
	}
}

func TestClusterDiagonalPixelsAreSeparate(t *testing.T) {
	// 4-connectivity: a diagonal neighbor is a different component.
	regions := clusterRegions(newMask(64, 64, image.Pt(10, 10), image.Pt(11, 11)), 0)
	if len(regions) != 2 {
		t.Errorf("diagonal pixels produced %d regions, want 2", len(regions))
	}
}

func TestClusterDistantPixels(t *testing.T) {
	regions := clusterRegions(newMask(800, 480, image.Pt(50, 50), image.Pt(700, 400)), 8)
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}
	for _, p := range []image.Point{image.Pt(50, 50), image.Pt(700, 400)} {
		found := false
		for _, r := range regions {
			if p.In(r) {
				found = true
			}
		}
		if !found {
			t.Errorf("pixel %v not covered by any region", p)
		}
	}
}

func TestClusterPaddingClampsToBounds(t *testing.T) {
	regions := clusterRegions(newMask(64, 64, image.Pt(0, 0), image.Pt(63, 63)), 8)
	bounds := image.Rect(0, 0, 64, 64)
	for _, r := range regions {
		if !r.In(bounds) {
			t.Errorf("region %v escapes bounds %v", r, bounds)
		}
	}
}

func TestClusterConsumesMask(t *testing.T) {
	m := newMask(64, 64, image.Pt(1, 1), image.Pt(2, 1), image.Pt(40, 40))
	clusterRegions(m, 4)
	for i, b := range m.Pix {
		if b != 0 {
			t.Fatalf("mask byte %d not cleared after clustering: %#02x", i, b)
		}
	}
}

func TestClusterEveryChangedPixelCovered(t *testing.T) {
	// Scattered pseudo-random pixels; every one must land in a region.
	var pts []image.Point
	seed := uint32(1)
	for i := 0; i < 200; i++ {
		seed = seed*1664525 + 1013904223
		pts = append(pts, image.Pt(int(seed>>16)%800, int(seed>>4)%480))
	}

	regions := clusterRegions(newMask(800, 480, pts...), 8)
	for _, p := range pts {
		covered := false
		for _, r := range regions {
			if p.In(r) {
				covered = true
				break
			}
		}
		if !covered {
			t.Fatalf("pixel %v not covered", p)
		}
	}
}
