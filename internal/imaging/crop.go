package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// ErrEmptyRegion is returned when a crop rectangle does not intersect the image.
var ErrEmptyRegion = errors.New("crop region does not intersect image")

// CropRegion copies the part of img covered by rect. Portions of rect outside
// the image bounds are clipped away; a rect with no pixels inside the image
// returns ErrEmptyRegion. The result is an independent copy with its origin
// at (0,0), so the source image is never shared or mutated.
func CropRegion(img image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	clipped := rect.Canon().Intersect(img.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("%w: %v outside %v", ErrEmptyRegion, rect, img.Bounds())
	}
	return imaging.Crop(img, clipped), nil
}

// Resize scales img to exactly width x height without preserving the aspect
// ratio.
func Resize(img image.Image, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	return imaging.Resize(img, width, height, imaging.Linear), nil
}

// EncodedImage is a PNG image encoded for transport.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// ToNRGBA returns img as a tightly packed NRGBA image with origin (0,0). An
// image already in that form is returned as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		return n
	}
	return imaging.Clone(img)
}
