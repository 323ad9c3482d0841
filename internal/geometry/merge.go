package geometry

import "sort"

// MergeOverlapping collapses boxes that overlap each other by more than
// threshold (see OverlapRatio) into their union bounding boxes.
//
// One box is taken as an accumulator and every remaining box whose overlap
// with the accumulator exceeds threshold is absorbed, growing the accumulator,
// until nothing more can be absorbed. The process repeats with the next
// unmerged box until none are left, and whole passes repeat until no two
// output boxes overlap by more than threshold.
//
// The input is put in a canonical order first, so the resulting set depends
// only on the set of input boxes. Merging an already merged set returns it
// unchanged. The returned slice is in canonical (Y, X, W, H) order; callers
// that need reading order should Sort it.
func MergeOverlapping(boxes []Box, threshold float64) []Box {
	current := canonical(boxes)
	for {
		merged := mergePass(current, threshold)
		if len(merged) == len(current) {
			return merged
		}
		current = canonical(merged)
	}
}

func mergePass(boxes []Box, threshold float64) []Box {
	remaining := boxes
	merged := make([]Box, 0, len(boxes))

	for len(remaining) > 0 {
		acc := remaining[0]
		remaining = remaining[1:]

		for absorbed := true; absorbed; {
			absorbed = false
			kept := make([]Box, 0, len(remaining))
			for _, b := range remaining {
				if OverlapRatio(acc, b) > threshold {
					acc = Union(acc, b)
					absorbed = true
					continue
				}
				kept = append(kept, b)
			}
			remaining = kept
		}

		merged = append(merged, acc)
	}

	return canonical(merged)
}

// canonical returns a sorted copy of boxes ordered by Y, X, W, H.
func canonical(boxes []Box) []Box {
	out := make([]Box, len(boxes))
	copy(out, boxes)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		if a.W != b.W {
			return a.W < b.W
		}
		return a.H < b.H
	})
	return out
}
