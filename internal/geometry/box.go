// Package geometry provides the rectangle arithmetic shared by detection and
// recognition: reading-order comparison, overlap measurement and merging of
// overlapping boxes.
//
// All boxes are axis-aligned and expressed in source-image pixel coordinates
// with (0,0) at the top-left corner.
package geometry

import (
	"image"
	"sort"
)

// Box is an axis-aligned pixel rectangle. X and Y locate the top-left corner,
// W and H are the extent in pixels.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// FromRect converts an image.Rectangle (exclusive max corner) to a Box.
func FromRect(r image.Rectangle) Box {
	return Box{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Rect returns the box as an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// Area returns W*H, or 0 for degenerate boxes.
func (b Box) Area() int {
	if b.W <= 0 || b.H <= 0 {
		return 0
	}
	return b.W * b.H
}

// AspectRatio returns W/H. A box with no height reports W+1, so it always
// counts as wide.
func (b Box) AspectRatio() float64 {
	if b.H <= 0 {
		return float64(b.W) + 1
	}
	return float64(b.W) / float64(b.H)
}

// Contains reports whether o lies entirely inside b.
func (b Box) Contains(o Box) bool {
	return o.X >= b.X && o.Y >= b.Y && o.X+o.W <= b.X+b.W && o.Y+o.H <= b.Y+b.H
}

// rowOverlap reports whether the vertical spans of a and b intersect.
// Spans that only touch at an edge do not overlap.
func rowOverlap(a, b Box) bool {
	return a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

// Compare orders boxes top-to-bottom, then left-to-right. Two boxes whose
// vertical spans intersect are treated as the same row and compared by X;
// otherwise they are compared by Y. This tolerates small row misalignment
// produced by detection noise.
//
// Returns -1 if a sorts before b, +1 if after, 0 if neither.
func Compare(a, b Box) int {
	if rowOverlap(a, b) {
		return compareInt(a.X, b.X)
	}
	return compareInt(a.Y, b.Y)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Sort orders boxes in place using Compare. The sort is stable so boxes that
// compare equal keep their input order.
func Sort(boxes []Box) {
	sort.SliceStable(boxes, func(i, j int) bool {
		return Compare(boxes[i], boxes[j]) < 0
	})
}

// Intersect returns the overlapping area of a and b, or the zero Box when they
// are disjoint.
func Intersect(a, b Box) Box {
	r := a.Rect().Intersect(b.Rect())
	if r.Empty() {
		return Box{}
	}
	return FromRect(r)
}

// Union returns the smallest box containing both a and b.
func Union(a, b Box) Box {
	return FromRect(a.Rect().Union(b.Rect()))
}

// OverlapRatio returns the intersection area divided by the smaller of the two
// box areas. The result is in [0,1]; disjoint or degenerate boxes give 0.
func OverlapRatio(a, b Box) float64 {
	smaller := a.Area()
	if bArea := b.Area(); bArea < smaller {
		smaller = bArea
	}
	if smaller == 0 {
		return 0
	}
	return float64(Intersect(a, b).Area()) / float64(smaller)
}
