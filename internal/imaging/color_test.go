package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

var gold = color.RGBA{212, 175, 55, 255}

func TestHSVRange_Contains(t *testing.T) {
	goldRange := HSVRange{HueMin: 38, HueMax: 58, SatMin: 0.35, SatMax: 1, ValMin: 0.5, ValMax: 1}
	redRange := HSVRange{HueMin: 340, HueMax: 20, SatMin: 0.5, SatMax: 1, ValMin: 0.5, ValMax: 1}

	tests := []struct {
		name    string
		r       HSVRange
		h, s, v float64
		want    bool
	}{
		{"gold inside", goldRange, 46, 0.74, 0.83, true},
		{"hue too low", goldRange, 30, 0.74, 0.83, false},
		{"desaturated", goldRange, 46, 0.1, 0.83, false},
		{"too dark", goldRange, 46, 0.74, 0.2, false},
		{"inclusive bound", goldRange, 58, 1, 1, true},
		{"wrapping high side", redRange, 350, 0.9, 0.9, true},
		{"wrapping low side", redRange, 5, 0.9, 0.9, true},
		{"wrapping outside", redRange, 180, 0.9, 0.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Contains(tt.h, tt.s, tt.v); got != tt.want {
				t.Errorf("Contains(%v,%v,%v) = %v, want %v", tt.h, tt.s, tt.v, got, tt.want)
			}
		})
	}
}

func TestHSVMask(t *testing.T) {
	img := createInMemoryImage(40, 30, color.RGBA{40, 40, 40, 255}).(*image.RGBA)
	for y := 5; y < 15; y++ {
		for x := 10; x < 30; x++ {
			img.Set(x, y, gold)
		}
	}

	mask := HSVMask(img, []HSVRange{{HueMin: 38, HueMax: 58, SatMin: 0.35, SatMax: 1, ValMin: 0.5, ValMax: 1}})

	if mask.Bounds() != image.Rect(0, 0, 40, 30) {
		t.Fatalf("mask bounds = %v", mask.Bounds())
	}
	if got := CountOn(mask); got != 200 {
		t.Errorf("on pixels = %d, want 200", got)
	}
	if mask.GrayAt(15, 10).Y != MaskOn {
		t.Error("gold pixel should be on")
	}
	if mask.GrayAt(0, 0).Y != MaskOff {
		t.Error("gray pixel should be off")
	}
}

func TestHSVMask_MultipleRanges(t *testing.T) {
	img := createPatternImage(20, 20)
	ranges := []HSVRange{
		{HueMin: 350, HueMax: 10, SatMin: 0.5, SatMax: 1, ValMin: 0.5, ValMax: 1},  // red
		{HueMin: 230, HueMax: 250, SatMin: 0.5, SatMax: 1, ValMin: 0.5, ValMax: 1}, // blue
	}

	mask := HSVMask(img, ranges)
	if got := CountOn(mask); got != 200 {
		t.Errorf("on pixels = %d, want 200 (red and blue quadrants)", got)
	}
}

func TestHSVMask_OffsetBounds(t *testing.T) {
	src := createPatternImage(20, 20)
	sub := src.SubImage(image.Rect(10, 10, 20, 20))

	mask := HSVMask(sub, []HSVRange{{HueMin: 0, HueMax: 360, SatMin: 0, SatMax: 0.05, ValMin: 0.95, ValMax: 1}})
	if mask.Bounds() != image.Rect(0, 0, 10, 10) {
		t.Fatalf("mask bounds = %v, want origin-based", mask.Bounds())
	}
	if got := CountOn(mask); got != 100 {
		t.Errorf("on pixels = %d, want 100 (white quadrant)", got)
	}
}

func TestHSVMask_TransparentIgnored(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 5))
	mask := HSVMask(img, []HSVRange{{HueMin: 0, HueMax: 360, SatMin: 0, SatMax: 1, ValMin: 0, ValMax: 1}})
	if got := CountOn(mask); got != 0 {
		t.Errorf("transparent pixels produced %d on pixels", got)
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#D4AF37")
	if err != nil {
		t.Fatalf("ParseHexColor failed: %v", err)
	}
	if c != gold {
		t.Errorf("got %v, want %v", c, gold)
	}

	if _, err := ParseHexColor("not-a-color"); err == nil {
		t.Error("expected error for invalid color")
	}
}
