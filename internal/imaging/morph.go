package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// Dilate grows the on-region of a binary mask by radius pixels, repeated
// iterations times.
func Dilate(mask *image.Gray, radius float64, iterations int) *image.Gray {
	out := mask
	for i := 0; i < iterations && radius > 0; i++ {
		out = binarize(effect.Dilate(out, radius))
	}
	return out
}

// Erode shrinks the on-region of a binary mask by radius pixels, repeated
// iterations times.
func Erode(mask *image.Gray, radius float64, iterations int) *image.Gray {
	out := mask
	for i := 0; i < iterations && radius > 0; i++ {
		out = binarize(effect.Erode(out, radius))
	}
	return out
}

// Close dilates then erodes, bridging small gaps in borders without growing
// the overall shape.
func Close(mask *image.Gray, radius float64, iterations int) *image.Gray {
	return Erode(Dilate(mask, radius, iterations), radius, iterations)
}

// Open erodes then dilates, removing speckles smaller than the kernel.
func Open(mask *image.Gray, radius float64, iterations int) *image.Gray {
	return Dilate(Erode(mask, radius, iterations), radius, iterations)
}

// binarize converts the output of a bild filter back to a 0/255 mask with
// origin (0,0).
func binarize(img image.Image) *image.Gray {
	bounds := img.Bounds()
	mask := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, _, _, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			if r>>8 >= 128 {
				mask.Pix[y*mask.Stride+x] = MaskOn
			}
		}
	}
	return mask
}

// CountOn returns the number of on pixels in a mask.
func CountOn(mask *image.Gray) int {
	n := 0
	for _, p := range mask.Pix {
		if p >= 128 {
			n++
		}
	}
	return n
}
