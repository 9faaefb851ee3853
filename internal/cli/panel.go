package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	epaper "github.com/alchemist-s/e-paper-simulation"
	"github.com/alchemist-s/e-paper-simulation/epd7in5"
	"github.com/alchemist-s/e-paper-simulation/simdisplay"
)

// Waveshare e-paper HAT pinout on the Raspberry Pi header.
const (
	pinRST  = "GPIO17"
	pinDC   = "GPIO25"
	pinBUSY = "GPIO24"
)

// Panel is what the commands need from a display: the sink contract
// plus the ability to blank it.
type Panel interface {
	epaper.Sink
	Clear(ctx context.Context) error
}

// sleeper is implemented by panels with a deep-sleep mode.
type sleeper interface {
	Sleep(ctx context.Context) error
}

// openPanel builds either the hardware driver or the simulator. The
// returned cleanup releases the SPI bus; it is a no-op for the
// simulator.
func openPanel(opts *rootOpts, logger *log.Logger) (Panel, func(), error) {
	if opts.sim {
		d, err := simdisplay.New(&simdisplay.Opts{
			W:         opts.width,
			H:         opts.height,
			OutputDir: opts.simDir,
			Logger:    logger,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using simulated display", "dir", opts.simDir)
		return d, func() {}, nil
	}

	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("init periph host: %w", err)
	}

	port, err := spireg.Open("")
	if err != nil {
		return nil, nil, fmt.Errorf("open SPI bus: %w", err)
	}

	dc := gpioreg.ByName(pinDC)
	if dc == nil {
		port.Close()
		return nil, nil, fmt.Errorf("GPIO pin %s not found", pinDC)
	}
	var rst gpio.PinIO
	if p := gpioreg.ByName(pinRST); p != nil {
		rst = p
	}
	var busy gpio.PinIn
	if p := gpioreg.ByName(pinBUSY); p != nil {
		busy = p
	}

	dev, err := epd7in5.NewSPI(port, dc, &epd7in5.Opts{
		W:    opts.width,
		H:    opts.height,
		RST:  rst,
		BUSY: busy,
	})
	if err != nil {
		port.Close()
		return nil, nil, err
	}
	logger.Info("panel connected", "dev", dev.String())
	return dev, func() { port.Close() }, nil
}

// sleepPanel puts the panel to sleep when it supports it.
func sleepPanel(ctx context.Context, p Panel, logger *log.Logger) {
	s, ok := p.(sleeper)
	if !ok {
		return
	}
	if err := s.Sleep(ctx); err != nil {
		logger.Warn("failed to sleep panel", "err", err)
	}
}
