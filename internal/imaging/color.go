package imaging

import (
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSVRange selects pixels by hue, saturation and value.
//
// Hue is in degrees (0-360); saturation and value are fractions (0-1). All
// bounds are inclusive. When HueMin is greater than HueMax the hue range wraps
// through 0, which is how reds are expressed.
type HSVRange struct {
	HueMin float64 `json:"hue_min"`
	HueMax float64 `json:"hue_max"`
	SatMin float64 `json:"sat_min"`
	SatMax float64 `json:"sat_max"`
	ValMin float64 `json:"val_min"`
	ValMax float64 `json:"val_max"`
}

// Contains reports whether the HSV triple falls inside the range.
func (r HSVRange) Contains(h, s, v float64) bool {
	if s < r.SatMin || s > r.SatMax || v < r.ValMin || v > r.ValMax {
		return false
	}
	if r.HueMin <= r.HueMax {
		return h >= r.HueMin && h <= r.HueMax
	}
	return h >= r.HueMin || h <= r.HueMax
}

// Mask values. Masks are *image.Gray with origin (0,0) holding only these two
// levels.
const (
	MaskOff uint8 = 0
	MaskOn  uint8 = 255
)

// HSVMask builds a binary mask of img in which a pixel is on when its color
// falls inside any of the ranges. Fully transparent pixels are always off.
// The mask has origin (0,0) regardless of the bounds of img.
func HSVMask(img image.Image, ranges []HSVRange) *image.Gray {
	bounds := img.Bounds()
	mask := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			c, ok := colorful.MakeColor(img.At(x+bounds.Min.X, y+bounds.Min.Y))
			if !ok {
				continue
			}
			h, s, v := c.Hsv()
			for _, r := range ranges {
				if r.Contains(h, s, v) {
					mask.Pix[y*mask.Stride+x] = MaskOn
					break
				}
			}
		}
	}

	return mask
}

// ParseHexColor parses "#RRGGBB" into an opaque color.
func ParseHexColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
