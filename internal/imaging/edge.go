package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// cannyBlurRadius is the Gaussian radius applied before gradient computation.
const cannyBlurRadius = 1.4

// Canny computes a binary edge map of img.
//
// Edge pixels are MaskOn, everything else MaskOff. The returned mask has origin
// (0,0). Thresholds are on the 0-255 scale:
//   - gradient magnitude >= thresholdHigh: strong edge, always kept
//   - between the two: weak edge, kept only next to a strong edge
//   - below thresholdLow: discarded
//
// # Algorithm
//
//  1. Grayscale conversion and Gaussian blur (bild)
//  2. Sobel gradients, magnitude and direction
//  3. Non-maximum suppression along the gradient direction
//  4. Hysteresis thresholding against the 8 neighbors
func Canny(img image.Image, thresholdLow, thresholdHigh int) *image.Gray {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	result := image.NewGray(image.Rect(0, 0, width, height))
	if width < 3 || height < 3 {
		return result
	}

	blurred := blur.Gaussian(effect.Grayscale(img), cannyBlurRadius)
	lum := make([][]float64, height)
	for y := 0; y < height; y++ {
		lum[y] = make([]float64, width)
		row := blurred.Pix[y*blurred.Stride:]
		for x := 0; x < width; x++ {
			lum[y][x] = float64(row[x*4]) / 255.0
		}
	}

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)

		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := lum[clamp(y+ky, 0, height-1)][clamp(x+kx, 0, width-1)]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		if y == 0 || y == height-1 {
			continue
		}
		for x := 1; x < width-1; x++ {
			n1, n2 := gradientNeighbors(magnitude, direction[y][x], x, y)
			if mag := magnitude[y][x]; mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	low := float64(thresholdLow) / 255.0
	high := float64(thresholdHigh) / 255.0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y][x]
			if val < low {
				continue
			}
			if val >= high || hasStrongNeighbor(suppressed, x, y, width, height, high) {
				result.Pix[y*result.Stride+x] = MaskOn
			}
		}
	}

	return result
}

// gradientNeighbors returns the magnitudes of the two pixels on either side of
// (x, y) along the gradient direction, quantized to 45 degrees.
func gradientNeighbors(magnitude [][]float64, angle float64, x, y int) (float64, float64) {
	switch {
	case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
		return magnitude[y][x-1], magnitude[y][x+1]
	case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
		return magnitude[y-1][x+1], magnitude[y+1][x-1]
	case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
		return magnitude[y-1][x], magnitude[y+1][x]
	default:
		return magnitude[y-1][x-1], magnitude[y+1][x+1]
	}
}

func hasStrongNeighbor(suppressed [][]float64, x, y, width, height int, high float64) bool {
	for ky := -1; ky <= 1; ky++ {
		for kx := -1; kx <= 1; kx++ {
			if suppressed[clamp(y+ky, 0, height-1)][clamp(x+kx, 0, width-1)] >= high {
				return true
			}
		}
	}
	return false
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
