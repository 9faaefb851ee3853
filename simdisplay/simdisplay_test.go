package simdisplay

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
)

func newDisplay(t *testing.T, w, h int) *Display {
	t.Helper()
	d, err := New(&Opts{W: w, H: h, OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestNewValidation(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		opts    *Opts
		wantErr bool
	}{
		{"defaults", nil, false},
		{"valid", &Opts{W: 64, H: 32, OutputDir: dir}, false},
		{"misaligned width", &Opts{W: 63, H: 32, OutputDir: dir}, true},
		{"zero width", &Opts{W: 0, H: 32, OutputDir: dir}, true},
		{"zero height", &Opts{W: 64, H: 0, OutputDir: dir}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.opts == nil {
				// Default output dir lands in the working directory;
				// redirect it into the test dir.
				tt.opts = &Opts{W: 800, H: 480, OutputDir: filepath.Join(dir, "default")}
			}
			_, err := New(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPanelStartsWhite(t *testing.T) {
	d := newDisplay(t, 32, 16)
	for _, p := range []image.Point{{0, 0}, {15, 7}, {31, 15}} {
		if c := d.ColorAt(p.X, p.Y); c.Y != 0xFF {
			t.Errorf("pixel %v = %d, want white", p, c.Y)
		}
	}
}

func TestApplyFullUpdatesPanelAndSavesSnapshot(t *testing.T) {
	dir := t.TempDir()
	d, err := New(&Opts{W: 16, H: 2, OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}

	// First byte 0x7F: leftmost pixel black, next seven white.
	buf := []byte{0x7F, 0xFF, 0xFF, 0xFF}
	if err := d.ApplyFull(context.Background(), buf); err != nil {
		t.Fatalf("ApplyFull: %v", err)
	}

	if c := d.ColorAt(0, 0); c.Y != 0x00 {
		t.Errorf("pixel (0,0) = %d, want black", c.Y)
	}
	if c := d.ColorAt(1, 0); c.Y != 0xFF {
		t.Errorf("pixel (1,0) = %d, want white", c.Y)
	}

	if _, err := os.Stat(filepath.Join(dir, "full_1.png")); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}
}

func TestApplyPartialOnlyTouchesWindow(t *testing.T) {
	d := newDisplay(t, 32, 16)
	ctx := context.Background()

	// Blacken an 8x4 window at (8,4).
	win := image.Rect(8, 4, 16, 8)
	buf := make([]byte, 4) // all zero = all black
	if err := d.ApplyPartial(ctx, win, buf); err != nil {
		t.Fatalf("ApplyPartial: %v", err)
	}

	if c := d.ColorAt(10, 5); c.Y != 0x00 {
		t.Error("pixel inside window should be black")
	}
	if c := d.ColorAt(0, 0); c.Y != 0xFF {
		t.Error("pixel outside window should stay white")
	}
	if c := d.ColorAt(16, 4); c.Y != 0xFF {
		t.Error("pixel right of window should stay white")
	}
}

func TestApplyPartialValidation(t *testing.T) {
	d := newDisplay(t, 32, 16)
	ctx := context.Background()

	tests := []struct {
		name   string
		region image.Rectangle
		buf    []byte
	}{
		{"misaligned min", image.Rect(3, 0, 11, 4), make([]byte, 4)},
		{"misaligned width", image.Rect(0, 0, 12, 4), nil},
		{"outside panel", image.Rect(24, 0, 40, 4), make([]byte, 8)},
		{"wrong buffer size", image.Rect(0, 0, 16, 4), make([]byte, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.ApplyPartial(ctx, tt.region, tt.buf); err == nil {
				t.Errorf("ApplyPartial(%v) should fail", tt.region)
			}
		})
	}
}

func TestSnapshotCounterIncrements(t *testing.T) {
	dir := t.TempDir()
	d, err := New(&Opts{W: 16, H: 2, OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := d.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if err := d.ApplyPartial(ctx, image.Rect(0, 0, 8, 1), []byte{0x00}); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"full_1.png", "partial_2.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected snapshot %s: %v", name, err)
		}
	}
}

func TestCancelledContext(t *testing.T) {
	d := newDisplay(t, 16, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.ApplyFull(ctx, make([]byte, 4)); err == nil {
		t.Error("cancelled context should fail")
	}
	// Panel must be untouched.
	if c := d.ColorAt(0, 0); c.Y != 0xFF {
		t.Error("panel changed after cancelled apply")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	d := newDisplay(t, 16, 2)
	snap := d.Snapshot()
	snap.Pix[0] = 0x00
	if c := d.ColorAt(0, 0); c.Y != 0xFF {
		t.Error("mutating a snapshot must not touch the panel")
	}
}
