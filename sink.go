package epaper

import (
	"context"
	"image"
)

// Sink consumes update commands on behalf of a physical or simulated
// panel. Implementations own all blocking I/O; the planning engine itself
// never suspends. The engine assumes at most one in-flight apply per sink:
// the underlying display state is single-writer, so callers that can plan
// faster than the panel refreshes must serialize dispatch (see the queue
// package).
//
// Buffer layout for both calls: row-major, 1 byte per 8 horizontal pixels,
// MSB first, polarity per the planner's Config.
type Sink interface {
	// Bounds returns the panel dimensions.
	Bounds() image.Rectangle

	// ApplyFull refreshes the whole panel from a full-frame buffer.
	ApplyFull(ctx context.Context, buf []byte) error

	// ApplyPartial refreshes one byte-aligned window. region.Min.X and
	// region.Dx() are always multiples of 8.
	ApplyPartial(ctx context.Context, region image.Rectangle, buf []byte) error
}
