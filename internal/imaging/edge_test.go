package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createEdgeTestImage creates an image with a black rectangle on white background
// to create clear edges for testing
func createEdgeTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	// Black rectangle in center (creates 4 edges)
	for y := height / 4; y < 3*height/4; y++ {
		for x := width / 4; x < 3*width/4; x++ {
			img.Set(x, y, color.Black)
		}
	}

	return img
}

func TestCanny(t *testing.T) {
	img := createEdgeTestImage(100, 100)

	edges := Canny(img, 50, 150)

	if edges.Bounds() != image.Rect(0, 0, 100, 100) {
		t.Fatalf("bounds = %v", edges.Bounds())
	}
	if CountOn(edges) == 0 {
		t.Fatal("expected edge pixels around the rectangle")
	}

	// edges hug the rectangle boundary at 25 and 75
	near := func(v, target int) bool { return v >= target-3 && v <= target+3 }
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if edges.GrayAt(x, y).Y != MaskOn {
				continue
			}
			if !(near(x, 25) || near(x, 75) || near(y, 25) || near(y, 75)) {
				t.Fatalf("unexpected edge pixel at (%d,%d)", x, y)
			}
		}
	}
}

func TestCanny_UniformImage(t *testing.T) {
	img := createInMemoryImage(50, 50, color.RGBA{128, 128, 128, 255})
	if got := CountOn(Canny(img, 50, 150)); got != 0 {
		t.Errorf("uniform image produced %d edge pixels", got)
	}
}

func TestCanny_Thresholds(t *testing.T) {
	// low-contrast step: only the permissive thresholds should see it
	img := image.NewRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			v := uint8(100)
			if x >= 30 {
				v = 120
			}
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}

	permissive := CountOn(Canny(img, 5, 20))
	strict := CountOn(Canny(img, 100, 200))
	if permissive == 0 {
		t.Error("permissive thresholds should find the step")
	}
	if strict != 0 {
		t.Errorf("strict thresholds found %d edge pixels", strict)
	}
}

func TestCanny_SmallImage(t *testing.T) {
	edges := Canny(createInMemoryImage(2, 2, color.White), 50, 150)
	if edges.Bounds().Dx() != 2 || CountOn(edges) != 0 {
		t.Errorf("tiny image: bounds %v, %d on", edges.Bounds(), CountOn(edges))
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0, 0, 0, 0},
	}
	for _, tt := range tests {
		if got := clamp(tt.val, tt.min, tt.max); got != tt.want {
			t.Errorf("clamp(%d,%d,%d) = %d, want %d", tt.val, tt.min, tt.max, got, tt.want)
		}
	}
}
