package detection

import (
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/ironsheep/equip-scan-mcp/internal/geometry"
)

// fillMask switches on every pixel of r.
func fillMask(mask *image.Gray, r image.Rectangle) {
	r = r.Intersect(mask.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
}

// outlineMask switches on a border of the given thickness inside r.
func outlineMask(mask *image.Gray, r image.Rectangle, thickness int) {
	fillMask(mask, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness))
	fillMask(mask, image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y))
	fillMask(mask, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y))
	fillMask(mask, image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y))
}

// nestedMask is a ring with a solid square floating in its hole.
func nestedMask() *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, 60, 60))
	outlineMask(mask, image.Rect(5, 5, 55, 55), 3)
	fillMask(mask, image.Rect(20, 20, 40, 40))
	return mask
}

func TestFindContours_External(t *testing.T) {
	got := findContours(nestedMask(), RetrieveExternal)
	want := []geometry.Box{{X: 5, Y: 5, W: 50, H: 50}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("external contours = %v, want %v", got, want)
	}
}

func TestFindContours_Tree(t *testing.T) {
	got := findContours(nestedMask(), RetrieveTree)
	want := []geometry.Box{
		{X: 5, Y: 5, W: 50, H: 50},   // ring
		{X: 20, Y: 20, W: 20, H: 20}, // inner square
		{X: 7, Y: 7, W: 46, H: 46},   // ring hole grown onto its border
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tree contours = %v, want %v", got, want)
	}
}

func TestFindContours_OpenRingIsNotAHole(t *testing.T) {
	mask := nestedMask()
	// cut a 2px gap in the ring's left side so its inside leaks out
	for y := 28; y < 30; y++ {
		for x := 5; x < 8; x++ {
			mask.SetGray(x, y, color.Gray{})
		}
	}

	got := findContours(mask, RetrieveExternal)
	if len(got) != 2 {
		t.Fatalf("expected ring and square both external, got %v", got)
	}
	if got[1] != (geometry.Box{X: 20, Y: 20, W: 20, H: 20}) {
		t.Errorf("square box = %v", got[1])
	}
}

func TestFindContours_DiagonalBorderStillCloses(t *testing.T) {
	// a diamond drawn with diagonal steps only: 8-connected shape, closed hole
	mask := image.NewGray(image.Rect(0, 0, 21, 21))
	for i := 0; i <= 5; i++ {
		for _, p := range []image.Point{
			{10 + i, 5 + i}, {15 - i, 10 + i}, {10 - i, 15 - i}, {5 + i, 10 - i},
		} {
			mask.SetGray(p.X, p.Y, color.Gray{Y: 255})
		}
	}
	fillMask(mask, image.Rect(10, 10, 11, 11))

	ext := findContours(mask, RetrieveExternal)
	if len(ext) != 1 {
		t.Errorf("external: got %v, want only the diamond", ext)
	}
	tree := findContours(mask, RetrieveTree)
	if len(tree) != 3 {
		t.Errorf("tree: got %v, want diamond, dot and hole", tree)
	}
}

func TestFindContours_BorderShapeIsExternal(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 30, 30))
	fillMask(mask, image.Rect(0, 0, 30, 30))
	// a background island in the middle of a full-frame shape
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			mask.SetGray(x, y, color.Gray{})
		}
	}

	got := findContours(mask, RetrieveExternal)
	want := []geometry.Box{{X: 0, Y: 0, W: 30, H: 30}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFindContours_Empty(t *testing.T) {
	if got := findContours(image.NewGray(image.Rect(0, 0, 10, 10)), RetrieveTree); len(got) != 0 {
		t.Errorf("empty mask produced %v", got)
	}
	if got := findContours(image.NewGray(image.Rect(0, 0, 0, 0)), RetrieveExternal); got != nil {
		t.Errorf("zero-size mask produced %v", got)
	}
}

func TestLabelComponents_Connectivity(t *testing.T) {
	// two pixels touching only at a corner
	on := []bool{
		true, false,
		false, true,
	}

	_, eight := labelComponents(on, 2, 2, true, neighbors8)
	if len(eight) != 1 {
		t.Errorf("8-connected: %d components, want 1", len(eight))
	}
	_, four := labelComponents(on, 2, 2, true, neighbors4)
	if len(four) != 2 {
		t.Errorf("4-connected: %d components, want 2", len(four))
	}
}
