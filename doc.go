// Package epaper plans partial updates for a bistable monochrome e-paper
// panel.
//
// E-paper panels refresh economically only in small, byte-aligned
// rectangular windows; a full refresh is slow and visibly flickers. This
// package takes the previously displayed frame and a freshly rendered one
// and computes the smallest correct set of hardware-aligned windows to
// refresh, each paired with its packed pixel buffer.
//
// # Pipeline
//
// Each update cycle runs a fixed pipeline:
//
//	Frame(prev), Frame(next)
//	    → diff (byte-wise XOR, packed mask)
//	    → cluster (4-connected components, padded bounding boxes)
//	    → refine (size floor, proximity merge, area-ranked cap)
//	    → align (snap x bounds to the 8-pixel addressing grid)
//	    → pack (crop, MSB-first bit packing, wire polarity)
//	    → []UpdateCommand
//
// The Planner owns the retained "last displayed" frame and exposes the
// pipeline as Plan followed by an explicit Commit, so a caller can refuse
// to advance the baseline when the hardware rejects a cycle.
//
// # Basic Usage
//
//	cfg := epaper.DefaultConfig()
//	pl, err := epaper.NewPlanner(800, 480, cfg, nil)
//	if err != nil {
//		// ...
//	}
//
//	for frame := range frames {
//		if _, err := pl.Update(ctx, sink, frame); err != nil {
//			// per-window failures; baseline was not advanced
//		}
//	}
//
// Update is shorthand for Plan, per-command Apply against a Sink, and
// Commit. Callers that dispatch to hardware themselves can drive the three
// steps separately:
//
//	plan, err := pl.Plan(frame)
//	// send plan.Commands to the panel ...
//	pl.Commit(plan) // only after the panel accepted every command
//
// # Frames
//
// A Frame is an immutable 1-bit bitmap backed by image1bit.Horizontal
// (8 pixels per byte, MSB first, 1 = black ink). FrameFromImage converts
// and rescales arbitrary images to panel dimensions. The first planned
// frame, and any frame whose geometry differs from the retained one,
// produces a single full-panel command instead of partial windows.
//
// # Hardware alignment
//
// The panel addresses pixel columns in groups of 8. Region x bounds are
// snapped to that grid by the one canonical alignment rule in this
// package; emitted windows always have a width that is a multiple of 8 and
// always cover every changed pixel.
//
// # Sinks
//
// The engine never touches hardware. It emits commands through the Sink
// interface; epd7in5 implements it for the Waveshare 7.5" V2 panel over
// SPI, and simdisplay implements it as a PNG-snapshot simulator for
// development without a panel.
package epaper
