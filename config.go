package epaper

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Polarity selects the bit convention of buffers handed to the sink.
type Polarity string

const (
	// PolarityNormal keeps the Frame convention: 1 = black ink.
	PolarityNormal Polarity = "normal"
	// PolarityInverted flips every byte: 1 = white. This is what the
	// Waveshare wire format expects and is the default.
	PolarityInverted Polarity = "inverted"
)

// Config tunes the partial-update pipeline.
//
// The zero value is not usable; start from DefaultConfig.
type Config struct {
	// MergeDistancePx is the maximum gap, on both axes, at which two
	// change regions are merged into one window.
	MergeDistancePx int `toml:"merge_distance_px"`

	// MinRegionPx drops regions narrower or shorter than this before
	// merging. A sub-minimum window costs as much fixed overhead per
	// refresh as a large one while conveying negligible visible change.
	MinRegionPx int `toml:"min_region_px"`

	// MaxRegionsPerCycle caps the number of windows emitted per cycle,
	// bounding worst-case refresh latency. Regions are ranked by area,
	// largest first, before the cap applies.
	MaxRegionsPerCycle int `toml:"max_regions_per_cycle"`

	// RegionPaddingPx pads each clustered bounding box symmetrically so
	// anti-aliased edges are not clipped.
	RegionPaddingPx int `toml:"region_padding_px"`

	// ByteAlignment is the panel's horizontal addressing granularity in
	// pixels. The supported hardware addresses 8 pixels per byte; any
	// other value is rejected.
	ByteAlignment int `toml:"byte_alignment"`

	// BitPolarity is the wire polarity of packed buffers.
	BitPolarity Polarity `toml:"bit_polarity"`
}

// DefaultConfig returns the configuration tuned for the 800×480 panel.
func DefaultConfig() Config {
	return Config{
		MergeDistancePx:    32,
		MinRegionPx:        16,
		MaxRegionsPerCycle: 10,
		RegionPaddingPx:    8,
		ByteAlignment:      8,
		BitPolarity:        PolarityInverted,
	}
}

// Validate checks the configuration for values the pipeline cannot honor.
func (c *Config) Validate() error {
	if c.ByteAlignment != 8 {
		return fmt.Errorf("epaper: byte_alignment must be 8, got %d", c.ByteAlignment)
	}
	if c.MergeDistancePx < 0 {
		return fmt.Errorf("epaper: merge_distance_px must be >= 0, got %d", c.MergeDistancePx)
	}
	if c.MinRegionPx < 0 {
		return fmt.Errorf("epaper: min_region_px must be >= 0, got %d", c.MinRegionPx)
	}
	if c.MaxRegionsPerCycle < 1 {
		return fmt.Errorf("epaper: max_regions_per_cycle must be >= 1, got %d", c.MaxRegionsPerCycle)
	}
	if c.RegionPaddingPx < 0 {
		return fmt.Errorf("epaper: region_padding_px must be >= 0, got %d", c.RegionPaddingPx)
	}
	switch c.BitPolarity {
	case PolarityNormal, PolarityInverted:
	default:
		return fmt.Errorf("epaper: bit_polarity must be %q or %q, got %q",
			PolarityNormal, PolarityInverted, c.BitPolarity)
	}
	return nil
}

// LoadConfig reads a TOML file over the defaults, so a config file only
// needs to name the values it changes.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("epaper: loading config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
