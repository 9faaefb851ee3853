package epd7in5

import (
	"bytes"
	"context"
	"image"
	"testing"
)

func TestOptsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Opts
		wantErr bool
	}{
		{"nil options (uses defaults)", nil, false},
		{"valid 800x480", &Opts{W: 800, H: 480}, false},
		{"valid 640x384", &Opts{W: 640, H: 384}, false},
		{"width not byte multiple", &Opts{W: 801, H: 480}, true},
		{"width zero", &Opts{W: 0, H: 480}, true},
		{"height zero", &Opts{W: 800, H: 0}, true},
		{"negative height", &Opts{W: 800, H: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if opts == nil {
				opts = &Opts{W: Width, H: Height}
			}

			err := validateOpts(opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("got err %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDevBounds(t *testing.T) {
	dev := &Dev{rect: image.Rect(0, 0, 800, 480)}
	want := image.Rect(0, 0, 800, 480)
	if got := dev.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
}

func TestDevString(t *testing.T) {
	dev := &Dev{rect: image.Rect(0, 0, 800, 480)}
	want := "epd7in5.Dev{800x480}"
	if got := dev.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestApplyFullBufferSizeValidation(t *testing.T) {
	dev := &Dev{rect: image.Rect(0, 0, 800, 480)}

	// Validation runs before any SPI traffic, so no connection is needed.
	if err := dev.ApplyFull(context.Background(), make([]byte, 100)); err == nil {
		t.Error("ApplyFull should fail with wrong buffer size")
	}
	if err := dev.ApplyFull(context.Background(), make([]byte, 800/8*480+1)); err == nil {
		t.Error("ApplyFull should fail with oversized buffer")
	}
}

func TestApplyPartialRegionValidation(t *testing.T) {
	dev := &Dev{rect: image.Rect(0, 0, 800, 480)}
	ctx := context.Background()

	tests := []struct {
		name   string
		region image.Rectangle
		buf    []byte
	}{
		{"misaligned min", image.Rect(3, 0, 11, 10), make([]byte, 10)},
		{"misaligned width", image.Rect(0, 0, 12, 10), nil},
		{"outside panel", image.Rect(792, 0, 808, 10), make([]byte, 20)},
		{"empty region", image.Rect(8, 8, 8, 8), nil},
		{"wrong buffer size", image.Rect(0, 0, 16, 10), make([]byte, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := dev.ApplyPartial(ctx, tt.region, tt.buf); err == nil {
				t.Errorf("ApplyPartial(%v) should fail", tt.region)
			}
		})
	}
}

func TestHaltedRejectsOperations(t *testing.T) {
	dev := &Dev{
		rect:   image.Rect(0, 0, 800, 480),
		halted: true,
	}
	ctx := context.Background()

	if err := dev.ApplyFull(ctx, make([]byte, 800/8*480)); err == nil {
		t.Error("ApplyFull should fail when halted")
	}
	if err := dev.ApplyPartial(ctx, image.Rect(0, 0, 16, 16), make([]byte, 32)); err == nil {
		t.Error("ApplyPartial should fail when halted")
	}
	if err := dev.Sleep(ctx); err == nil {
		t.Error("Sleep should fail when halted")
	}
	// Halt on an already halted device is a no-op.
	if err := dev.Halt(); err != nil {
		t.Errorf("Halt on halted device = %v, want nil", err)
	}
}

func TestPartialWindowEncoding(t *testing.T) {
	tests := []struct {
		name   string
		region image.Rectangle
		want   []byte
	}{
		{
			"origin window",
			image.Rect(0, 0, 16, 16),
			[]byte{0x00, 0x00, 0x00, 0x0F, 0x00, 0x00, 0x00, 0x0F, 0x01},
		},
		{
			"offset window",
			image.Rect(88, 92, 112, 109),
			[]byte{0x00, 0x58, 0x00, 0x6F, 0x00, 0x5C, 0x00, 0x6C, 0x01},
		},
		{
			"right edge",
			image.Rect(784, 0, 800, 10),
			[]byte{0x03, 0x10, 0x03, 0x1F, 0x00, 0x00, 0x00, 0x09, 0x01},
		},
		{
			"bottom edge",
			image.Rect(0, 464, 800, 480),
			[]byte{0x00, 0x00, 0x03, 0x1F, 0x01, 0xD0, 0x01, 0xDF, 0x01},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := partialWindow(tt.region); !bytes.Equal(got, tt.want) {
				t.Errorf("partialWindow(%v) = % X, want % X", tt.region, got, tt.want)
			}
		})
	}
}

func TestResolutionData(t *testing.T) {
	got := resolutionData(image.Rect(0, 0, 800, 480))
	want := []byte{0x03, 0x20, 0x01, 0xE0}
	if !bytes.Equal(got, want) {
		t.Errorf("resolutionData = % X, want % X", got, want)
	}
}
