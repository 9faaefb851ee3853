// Package simdisplay is a file-backed stand-in for the e-paper panel.
//
// It accepts the same packed buffers as the hardware driver, keeps the
// panel state in memory and writes a numbered PNG snapshot after every
// refresh, so update behavior can be inspected without a panel attached.
package simdisplay

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

// Opts configures the simulated display.
type Opts struct {
	// Display dimensions in pixels. Width must be a multiple of 8.
	W int
	H int

	// OutputDir receives the PNG snapshots. Defaults to
	// "simulation_output".
	OutputDir string

	// Logger for per-refresh records. Nil disables logging.
	Logger *log.Logger
}

// Display is a simulated panel. Unlike the hardware driver it is safe
// for concurrent use, since tests drive it from multiple goroutines.
type Display struct {
	mu      sync.Mutex
	rect    image.Rectangle
	panel   *image.Gray
	dir     string
	counter int
	logger  *log.Logger
}

// New creates a simulated display and its snapshot directory.
func New(opts *Opts) (*Display, error) {
	if opts == nil {
		opts = &Opts{W: 800, H: 480}
	}
	if opts.W <= 0 || opts.W%8 != 0 {
		return nil, fmt.Errorf("simdisplay: width %d must be a positive multiple of 8", opts.W)
	}
	if opts.H <= 0 {
		return nil, fmt.Errorf("simdisplay: height %d must be positive", opts.H)
	}
	dir := opts.OutputDir
	if dir == "" {
		dir = "simulation_output"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("simdisplay: %w", err)
	}

	d := &Display{
		rect:   image.Rect(0, 0, opts.W, opts.H),
		panel:  image.NewGray(image.Rect(0, 0, opts.W, opts.H)),
		dir:    dir,
		logger: opts.Logger,
	}
	// Panels come up white.
	for i := range d.panel.Pix {
		d.panel.Pix[i] = 0xFF
	}
	return d, nil
}

// Bounds returns the simulated panel dimensions.
func (d *Display) Bounds() image.Rectangle {
	return d.rect
}

// ApplyFull replaces the whole panel from a packed full-frame buffer and
// writes a snapshot.
func (d *Display) ApplyFull(ctx context.Context, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	want := d.rect.Dx() / 8 * d.rect.Dy()
	if len(buf) != want {
		return fmt.Errorf("simdisplay: invalid buffer size %d, want %d", len(buf), want)
	}
	d.blit(d.rect, buf)
	if d.logger != nil {
		d.logger.Debug("full refresh", "bounds", d.rect)
	}
	return d.snapshot("full")
}

// ApplyPartial replaces one byte-aligned window and writes a snapshot.
func (d *Display) ApplyPartial(ctx context.Context, region image.Rectangle, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if region.Min.X%8 != 0 || region.Dx()%8 != 0 {
		return fmt.Errorf("simdisplay: window %v is not byte-aligned", region)
	}
	if !region.In(d.rect) || region.Empty() {
		return fmt.Errorf("simdisplay: window %v outside panel %v", region, d.rect)
	}
	want := region.Dx() / 8 * region.Dy()
	if len(buf) != want {
		return fmt.Errorf("simdisplay: invalid buffer size %d for window %v, want %d", len(buf), region, want)
	}
	d.blit(region, buf)
	if d.logger != nil {
		d.logger.Debug("partial refresh", "window", region)
	}
	return d.snapshot("partial")
}

// Clear whitens the panel, matching what the hardware clear does.
func (d *Display) Clear(ctx context.Context) error {
	blank := make([]byte, d.rect.Dx()/8*d.rect.Dy())
	for i := range blank {
		blank[i] = 0xFF
	}
	return d.ApplyFull(ctx, blank)
}

// Snapshot returns a copy of the current panel state.
func (d *Display) Snapshot() *image.Gray {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := image.NewGray(d.rect)
	copy(out.Pix, d.panel.Pix)
	return out
}

// ColorAt reports the displayed color of one pixel.
func (d *Display) ColorAt(x, y int) color.Gray {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.panel.GrayAt(x, y)
}

// blit unpacks a wire-polarity buffer (1 = white, MSB first) into the
// panel image. Caller holds the lock.
func (d *Display) blit(region image.Rectangle, buf []byte) {
	stride := region.Dx() / 8
	for y := region.Min.Y; y < region.Max.Y; y++ {
		row := buf[(y-region.Min.Y)*stride:]
		for x := region.Min.X; x < region.Max.X; x++ {
			b := row[(x-region.Min.X)/8]
			white := b&(0x80>>uint(x&7)) != 0
			if white {
				d.panel.SetGray(x, y, color.Gray{Y: 0xFF})
			} else {
				d.panel.SetGray(x, y, color.Gray{Y: 0x00})
			}
		}
	}
}

// snapshot writes the current panel state as a numbered PNG. Caller
// holds the lock.
func (d *Display) snapshot(prefix string) error {
	d.counter++
	name := filepath.Join(d.dir, fmt.Sprintf("%s_%d.png", prefix, d.counter))

	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("simdisplay: %w", err)
	}
	if err := png.Encode(f, d.panel); err != nil {
		f.Close()
		return fmt.Errorf("simdisplay: encode %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("simdisplay: %w", err)
	}
	if d.logger != nil {
		d.logger.Info("saved snapshot", "file", name)
	}
	return nil
}
