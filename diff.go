package epaper

import (
	"github.com/alchemist-s/e-paper-simulation/image1bit"
)

// DiffKind classifies the outcome of comparing two frames.
type DiffKind int

const (
	// NoChange means the frames are pixel-identical; nothing to send.
	NoChange DiffKind = iota
	// PartialChange means some pixels differ; Mask marks them.
	PartialChange
	// FullRepaint means incremental updates are forfeit: there is no
	// previous frame, or the geometry changed under us. Partial-region
	// math assumes stable panel geometry, so any mismatch forces a full
	// refresh rather than risking corrupt window addressing.
	FullRepaint
)

// String returns the kind name for logs.
func (k DiffKind) String() string {
	switch k {
	case NoChange:
		return "no-change"
	case PartialChange:
		return "partial"
	case FullRepaint:
		return "full"
	default:
		return "unknown"
	}
}

// DiffResult is the outcome of Diff. Mask is non-nil only for
// PartialChange and is ephemeral: clustering consumes it destructively.
type DiffResult struct {
	Kind DiffKind
	Mask *image1bit.Horizontal
}

// Diff compares the previously displayed frame against the next one.
// prev may be nil (first frame). The mask is computed with one byte-wise
// XOR pass over the packed pixel data, so a set mask bit is exactly a
// changed pixel.
func Diff(prev, next *Frame) DiffResult {
	if prev == nil || prev.Rect.Dx() != next.Rect.Dx() || prev.Rect.Dy() != next.Rect.Dy() {
		return DiffResult{Kind: FullRepaint}
	}

	mask := image1bit.NewHorizontal(next.Rect)
	changed := false
	for i, b := range next.Pix {
		d := prev.Pix[i] ^ b
		mask.Pix[i] = d
		changed = changed || d != 0
	}
	if !changed {
		return DiffResult{Kind: NoChange}
	}
	return DiffResult{Kind: PartialChange, Mask: mask}
}
