package epaper

import (
	"fmt"
	"image"
)

// packRegion crops frame to region and returns the packed wire buffer:
// row-major, 8 horizontal pixels per byte, MSB first. The region must be
// byte-aligned and inside the frame; width/8 bytes are emitted per row,
// (x1-x0)/8 * (y1-y0) bytes in total.
func packRegion(f *Frame, region image.Rectangle, polarity Polarity) ([]byte, error) {
	if region.Min.X%8 != 0 || region.Dx()%8 != 0 {
		return nil, fmt.Errorf("epaper: region %v is not byte-aligned", region)
	}
	if !region.In(f.Rect) {
		return nil, fmt.Errorf("epaper: region %v outside frame %v", region, f.Rect)
	}
	if region.Empty() {
		return nil, fmt.Errorf("epaper: empty region %v", region)
	}

	byteWidth := region.Dx() / 8
	buf := make([]byte, byteWidth*region.Dy())

	for y := region.Min.Y; y < region.Max.Y; y++ {
		src := (y-f.Rect.Min.Y)*f.Stride + (region.Min.X-f.Rect.Min.X)/8
		dst := (y - region.Min.Y) * byteWidth
		copy(buf[dst:dst+byteWidth], f.Pix[src:src+byteWidth])
	}

	if polarity == PolarityInverted {
		invertBytes(buf)
	}
	return buf, nil
}

// invertBytes is the single polarity-conversion step. The Frame convention
// is 1 = black ink; the inverted wire convention is 1 = white. Keeping the
// flip in exactly one named place guards against the classic
// double-inversion bug, so no caller may XOR buffers on its own.
func invertBytes(buf []byte) {
	for i := range buf {
		buf[i] ^= 0xFF
	}
}
