package image1bit

import (
	"image"
	"image/color"
	"testing"
)

func TestBitRGBA(t *testing.T) {
	r, g, b, a := On.RGBA()
	if r != 0 || g != 0 || b != 0 || a != 0xFFFF {
		t.Errorf("On.RGBA() = (%d,%d,%d,%d), want (0,0,0,65535)", r, g, b, a)
	}

	r, g, b, a = Off.RGBA()
	if r != 0xFFFF || g != 0xFFFF || b != 0xFFFF || a != 0xFFFF {
		t.Errorf("Off.RGBA() = (%d,%d,%d,%d), want all 65535", r, g, b, a)
	}
}

func TestBitString(t *testing.T) {
	if On.String() != "On" || Off.String() != "Off" {
		t.Errorf("String() = %q/%q, want On/Off", On.String(), Off.String())
	}
}

func TestBitModelConversion(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want Bit
	}{
		{"black", color.Black, On},
		{"white", color.White, Off},
		{"dark gray", color.Gray{Y: 0x20}, On},
		{"light gray", color.Gray{Y: 0xE0}, Off},
		{"bit passthrough", On, On},
		{"red (dark-ish)", color.RGBA{R: 0xFF, A: 0xFF}, On},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BitModel.Convert(tt.c).(Bit); got != tt.want {
				t.Errorf("Convert(%v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestNewHorizontal(t *testing.T) {
	tests := []struct {
		name       string
		r          image.Rectangle
		wantStride int
		wantLen    int
	}{
		{"800x480 panel", image.Rect(0, 0, 800, 480), 100, 48000},
		{"8x1 single byte", image.Rect(0, 0, 8, 1), 1, 1},
		{"ragged width 10", image.Rect(0, 0, 10, 2), 2, 4},
		{"empty", image.Rect(0, 0, 0, 0), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewHorizontal(tt.r)
			if img.Stride != tt.wantStride {
				t.Errorf("Stride = %d, want %d", img.Stride, tt.wantStride)
			}
			if len(img.Pix) != tt.wantLen {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), tt.wantLen)
			}
			if img.Bounds() != tt.r {
				t.Errorf("Bounds() = %v, want %v", img.Bounds(), tt.r)
			}
		})
	}
}

func TestSetBitBitAt(t *testing.T) {
	img := NewHorizontal(image.Rect(0, 0, 16, 4))

	img.SetBit(0, 0, On)
	img.SetBit(7, 0, On)
	img.SetBit(8, 2, On)
	img.SetBit(15, 3, On)

	if img.Pix[0] != 0x81 {
		t.Errorf("Pix[0] = %#02x, want 0x81 (MSB-first packing)", img.Pix[0])
	}
	if img.Pix[2*2+1] != 0x80 {
		t.Errorf("Pix[5] = %#02x, want 0x80", img.Pix[5])
	}

	for _, p := range []image.Point{{0, 0}, {7, 0}, {8, 2}, {15, 3}} {
		if !img.BitAt(p.X, p.Y) {
			t.Errorf("BitAt(%d,%d) = Off, want On", p.X, p.Y)
		}
	}
	if img.BitAt(1, 0) {
		t.Error("BitAt(1,0) = On, want Off")
	}

	// Clearing a bit must not disturb its neighbors.
	img.SetBit(0, 0, Off)
	if img.Pix[0] != 0x01 {
		t.Errorf("Pix[0] after clear = %#02x, want 0x01", img.Pix[0])
	}
}

func TestSetOutOfBounds(t *testing.T) {
	img := NewHorizontal(image.Rect(0, 0, 8, 1))
	img.SetBit(-1, 0, On)
	img.SetBit(8, 0, On)
	img.SetBit(0, 1, On)

	if img.Pix[0] != 0 {
		t.Errorf("out-of-bounds SetBit modified Pix: %#02x", img.Pix[0])
	}
	if img.BitAt(100, 100) != Off {
		t.Error("out-of-bounds BitAt should return Off")
	}
}

func TestSetViaColorModel(t *testing.T) {
	img := NewHorizontal(image.Rect(0, 0, 8, 1))
	img.Set(3, 0, color.Black)

	if !img.BitAt(3, 0) {
		t.Error("Set(color.Black) should turn the pixel On")
	}

	img.Set(3, 0, color.White)
	if img.BitAt(3, 0) {
		t.Error("Set(color.White) should turn the pixel Off")
	}
}

func TestNonZeroOriginBounds(t *testing.T) {
	img := NewHorizontal(image.Rect(4, 2, 12, 4))

	img.SetBit(4, 2, On)
	if img.Pix[0]&0x80 == 0 {
		t.Error("pixel at Rect.Min should map to bit 7 of Pix[0]")
	}
	if !img.BitAt(4, 2) {
		t.Error("BitAt(Rect.Min) = Off, want On")
	}
}
