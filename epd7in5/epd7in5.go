// Package epd7in5 controls a Waveshare 7.5" V2 monochrome e-paper panel
// (UC8179 controller, 800×480) via SPI.
//
// The driver implements the epaper.Sink interface: full refreshes through
// ApplyFull and byte-aligned window refreshes through ApplyPartial. Buffers
// are row-major, 8 pixels per byte, MSB first, in the panel's wire
// polarity (1 = white).
//
// See the serve and demo commands for how the driver is wired up with
// periph.io host init, SPI registry and GPIO registry.
package epd7in5

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// Panel resolution of the 7.5" V2.
const (
	Width  = 800
	Height = 480
)

// UC8179 command bytes used by this driver.
const (
	cmdPanelSetting     = 0x00
	cmdPowerSetting     = 0x01
	cmdPowerOff         = 0x02
	cmdPowerOn          = 0x04
	cmdBoosterSoftStart = 0x06
	cmdDeepSleep        = 0x07
	cmdDataStartOld     = 0x10
	cmdDisplayRefresh   = 0x12
	cmdDataStartNew     = 0x13
	cmdDualSPI          = 0x15
	cmdVCOMDataInterval = 0x50
	cmdTCONSetting      = 0x60
	cmdResolution       = 0x61
	cmdPartialWindow    = 0x90
	cmdPartialIn        = 0x91
	cmdPartialOut       = 0x92
)

// refresh mode currently programmed into the controller.
type mode int

const (
	modeNone mode = iota
	modeFull
	modePartial
)

// busyTimeout caps one refresh wait. A full refresh on this panel takes
// up to ~5s; anything beyond this means the BUSY line is stuck.
const busyTimeout = 30 * time.Second

// Opts is the configuration for the panel.
type Opts struct {
	// Display dimensions in pixels. Defaults to 800×480. Width must be
	// a multiple of 8.
	W int
	H int

	// RST is the optional hardware reset pin.
	RST gpio.PinIO

	// BUSY is the optional busy pin. When nil the driver falls back to
	// fixed settle delays instead of reading the line.
	BUSY gpio.PinIn
}

// Dev is the device handle for the panel. It is not safe for concurrent
// use; the display is single-writer by nature.
type Dev struct {
	c    conn.Conn
	dc   gpio.PinOut
	rst  gpio.PinIO
	busy gpio.PinIn

	rect image.Rectangle
	mode mode

	halted bool
}

// NewSPI creates a new panel device connected via SPI.
//
// The SPI port is configured for 4MHz, Mode0, 8-bit transfers. The dc
// (Data/Command) pin must be configured as an output. opts can be nil to
// use the 800×480 defaults.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{W: Width, H: Height}
	}
	if err := validateOpts(opts); err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, errors.New("epd7in5: DC pin is required")
	}

	c, err := p.Connect(4*1000*1000, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}

	return &Dev{
		c:    c,
		dc:   dc,
		rst:  opts.RST,
		busy: opts.BUSY,
		rect: image.Rect(0, 0, opts.W, opts.H),
	}, nil
}

func validateOpts(opts *Opts) error {
	if opts.W <= 0 || opts.W%8 != 0 {
		return errors.New("epd7in5: width must be a positive multiple of 8")
	}
	if opts.H <= 0 {
		return errors.New("epd7in5: height must be positive")
	}
	return nil
}

// Bounds returns the panel dimensions.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("epd7in5.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

// reset performs the hardware reset sequence if a RST pin is wired.
func (d *Dev) reset() error {
	if d.rst == nil {
		return nil
	}
	if err := d.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("epd7in5: failed to pull RST high: %w", err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := d.rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("epd7in5: failed to pull RST low: %w", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := d.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("epd7in5: failed to pull RST high: %w", err)
	}
	time.Sleep(20 * time.Millisecond)
	return nil
}

// command sends a command byte followed by its data bytes.
func (d *Dev) command(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return d.sendData(data)
}

// sendData sends raw data bytes with DC held high, chunked to stay under
// the SPI driver's transfer size limit.
func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	const chunk = 4096
	for len(data) > 0 {
		n := len(data)
		if n > chunk {
			n = chunk
		}
		if err := d.c.Tx(data[:n], nil); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// waitBusy blocks until the BUSY line goes idle (high). Without a BUSY
// pin it sleeps a fixed settle time instead.
func (d *Dev) waitBusy(ctx context.Context) error {
	if d.busy == nil {
		time.Sleep(200 * time.Millisecond)
		return nil
	}

	deadline := time.Now().Add(busyTimeout)
	for d.busy.Read() == gpio.Low {
		if err := ctx.Err(); err != nil {
			return err
		}
		if time.Now().After(deadline) {
			return errors.New("epd7in5: timeout waiting for BUSY")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

// initFull programs the controller for full refreshes.
func (d *Dev) initFull(ctx context.Context) error {
	if err := d.reset(); err != nil {
		return err
	}

	steps := []struct {
		cmd  byte
		data []byte
	}{
		{cmdPowerSetting, []byte{0x07, 0x07, 0x3F, 0x3F}},
		{cmdBoosterSoftStart, []byte{0x17, 0x17, 0x28, 0x17}},
		{cmdPowerOn, nil},
	}
	for _, s := range steps {
		if err := d.command(s.cmd, s.data...); err != nil {
			return err
		}
	}
	if err := d.waitBusy(ctx); err != nil {
		return err
	}

	steps = []struct {
		cmd  byte
		data []byte
	}{
		{cmdPanelSetting, []byte{0x1F}}, // KW mode, LUT from OTP
		{cmdResolution, resolutionData(d.rect)},
		{cmdDualSPI, []byte{0x00}},
		{cmdVCOMDataInterval, []byte{0x10, 0x07}},
		{cmdTCONSetting, []byte{0x22}},
	}
	for _, s := range steps {
		if err := d.command(s.cmd, s.data...); err != nil {
			return err
		}
	}

	d.mode = modeFull
	return nil
}

// initPartial programs the controller for partial-window refreshes. The
// full init runs first when the controller was never initialized.
func (d *Dev) initPartial(ctx context.Context) error {
	if d.mode == modeNone {
		if err := d.initFull(ctx); err != nil {
			return err
		}
	}
	// Border floating during partial refreshes avoids a visible edge
	// flash around the window.
	if err := d.command(cmdVCOMDataInterval, 0x10, 0x07); err != nil {
		return err
	}
	d.mode = modePartial
	return nil
}

// ensureMode switches the controller into the wanted refresh mode.
func (d *Dev) ensureMode(ctx context.Context, m mode) error {
	if d.mode == m {
		return nil
	}
	if m == modePartial {
		return d.initPartial(ctx)
	}
	return d.initFull(ctx)
}

// ApplyFull refreshes the whole panel from a packed full-frame buffer.
// It implements the epaper.Sink interface.
func (d *Dev) ApplyFull(ctx context.Context, buf []byte) error {
	if d.halted {
		return errors.New("epd7in5: halted")
	}
	want := d.rect.Dx() / 8 * d.rect.Dy()
	if len(buf) != want {
		return fmt.Errorf("epd7in5: invalid buffer size %d, want %d", len(buf), want)
	}
	if err := d.ensureMode(ctx, modeFull); err != nil {
		return err
	}

	if err := d.command(cmdDataStartNew); err != nil {
		return err
	}
	if err := d.sendData(buf); err != nil {
		return err
	}
	return d.refresh(ctx)
}

// ApplyPartial refreshes one byte-aligned window. It implements the
// epaper.Sink interface.
func (d *Dev) ApplyPartial(ctx context.Context, region image.Rectangle, buf []byte) error {
	if d.halted {
		return errors.New("epd7in5: halted")
	}
	if region.Min.X%8 != 0 || region.Dx()%8 != 0 {
		return fmt.Errorf("epd7in5: window %v is not byte-aligned", region)
	}
	if !region.In(d.rect) || region.Empty() {
		return fmt.Errorf("epd7in5: window %v outside panel %v", region, d.rect)
	}
	want := region.Dx() / 8 * region.Dy()
	if len(buf) != want {
		return fmt.Errorf("epd7in5: invalid buffer size %d for window %v, want %d", len(buf), region, want)
	}
	if err := d.ensureMode(ctx, modePartial); err != nil {
		return err
	}

	if err := d.command(cmdPartialIn); err != nil {
		return err
	}
	if err := d.command(cmdPartialWindow, partialWindow(region)...); err != nil {
		return err
	}
	if err := d.command(cmdDataStartNew); err != nil {
		return err
	}
	if err := d.sendData(buf); err != nil {
		return err
	}
	if err := d.refresh(ctx); err != nil {
		return err
	}
	return d.command(cmdPartialOut)
}

// refresh triggers a display refresh and waits for it to finish.
func (d *Dev) refresh(ctx context.Context) error {
	if err := d.command(cmdDisplayRefresh); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return d.waitBusy(ctx)
}

// Clear whitens the whole panel.
func (d *Dev) Clear(ctx context.Context) error {
	blank := make([]byte, d.rect.Dx()/8*d.rect.Dy())
	for i := range blank {
		blank[i] = 0xFF // wire polarity: 1 = white
	}
	return d.ApplyFull(ctx, blank)
}

// Sleep powers the panel down into deep sleep. Images persist without
// power; call it whenever updates pause for a while to avoid damaging
// the panel with a held charge.
func (d *Dev) Sleep(ctx context.Context) error {
	if d.halted {
		return errors.New("epd7in5: halted")
	}
	if err := d.command(cmdPowerOff); err != nil {
		return err
	}
	if err := d.waitBusy(ctx); err != nil {
		return err
	}
	if err := d.command(cmdDeepSleep, 0xA5); err != nil {
		return err
	}
	d.mode = modeNone
	return nil
}

// Halt puts the panel to sleep and marks the handle unusable. Further
// calls fail until a new device is created.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	err := d.Sleep(context.Background())
	d.halted = true
	return err
}

// resolutionData encodes the panel resolution for the TRES command.
func resolutionData(r image.Rectangle) []byte {
	w, h := r.Dx(), r.Dy()
	return []byte{byte(w >> 8), byte(w), byte(h >> 8), byte(h)}
}

// partialWindow encodes a byte-aligned window for the PTL command:
// inclusive horizontal and vertical channel bounds, then the mode byte
// selecting scan inside the window only.
func partialWindow(r image.Rectangle) []byte {
	xe, ye := r.Max.X-1, r.Max.Y-1
	return []byte{
		byte(r.Min.X >> 8), byte(r.Min.X),
		byte(xe >> 8), byte(xe),
		byte(r.Min.Y >> 8), byte(r.Min.Y),
		byte(ye >> 8), byte(ye),
		0x01,
	}
}
