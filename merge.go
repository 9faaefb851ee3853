package epaper

import (
	"image"
	"sort"
)

// refineRegions applies the size floor, merges regions that overlap or sit
// within the merge distance, and ranks the survivors by area, largest
// first.
//
// escalate reports that the cycle cannot proceed as partial windows even
// though real change exists: either the size floor removed every candidate,
// or more windows survive than the per-cycle cap allows. Dropping the
// overflow would desync the panel from the committed baseline, so both
// cases fall back to a full repaint. A full refresh is one command, which
// also keeps the cap honored.
func refineRegions(regions []image.Rectangle, cfg *Config) (out []image.Rectangle, escalate bool) {
	if len(regions) == 0 {
		return nil, false
	}

	for _, r := range regions {
		if r.Dx() >= cfg.MinRegionPx && r.Dy() >= cfg.MinRegionPx {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, true
	}

	out = mergeNearby(out, cfg.MergeDistancePx)

	// Largest regions carry the most visible change and go first. Ties
	// break on position to keep the output deterministic regardless of
	// input order.
	sort.Slice(out, func(i, j int) bool {
		ai := out[i].Dx() * out[i].Dy()
		aj := out[j].Dx() * out[j].Dy()
		if ai != aj {
			return ai > aj
		}
		if out[i].Min.Y != out[j].Min.Y {
			return out[i].Min.Y < out[j].Min.Y
		}
		return out[i].Min.X < out[j].Min.X
	})
	if len(out) > cfg.MaxRegionsPerCycle {
		return nil, true
	}
	return out, false
}

// mergeNearby repeatedly merges any two regions whose boxes overlap or lie
// within dist on both axes into their union, until no merge applies.
// Regions are kept sorted by Min.X so the sweep is deterministic for any
// input order.
func mergeNearby(regions []image.Rectangle, dist int) []image.Rectangle {
	merged := append([]image.Rectangle(nil), regions...)

	for {
		sort.Slice(merged, func(i, j int) bool {
			if merged[i].Min.X != merged[j].Min.X {
				return merged[i].Min.X < merged[j].Min.X
			}
			return merged[i].Min.Y < merged[j].Min.Y
		})

		changed := false
		for i := 0; i < len(merged) && !changed; i++ {
			for j := i + 1; j < len(merged); j++ {
				if !withinDistance(merged[i], merged[j], dist) {
					continue
				}
				merged[i] = merged[i].Union(merged[j])
				merged = append(merged[:j], merged[j+1:]...)
				changed = true
				break
			}
		}
		if !changed {
			return merged
		}
	}
}

// withinDistance reports whether a and b overlap or are separated by at
// most dist pixels along both axes.
func withinDistance(a, b image.Rectangle, dist int) bool {
	return axisGap(a.Min.X, a.Max.X, b.Min.X, b.Max.X) <= dist &&
		axisGap(a.Min.Y, a.Max.Y, b.Min.Y, b.Max.Y) <= dist
}

// axisGap returns the separation between the intervals [aMin,aMax) and
// [bMin,bMax), or 0 if they overlap.
func axisGap(aMin, aMax, bMin, bMax int) int {
	switch {
	case aMax < bMin:
		return bMin - aMax
	case bMax < aMin:
		return aMin - bMax
	default:
		return 0
	}
}
