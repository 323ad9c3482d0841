package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Label is a rectangle to draw on an annotated image with its caption.
type Label struct {
	Rect    image.Rectangle
	Caption string
}

// NumberedLabel captions a rectangle with "#id".
func NumberedLabel(rect image.Rectangle, id int) Label {
	return Label{Rect: rect, Caption: "#" + strconv.Itoa(id)}
}

// Annotate draws each label's rectangle outline and caption over a copy of
// img. The source image is not modified. Outlines are thickness pixels wide
// and drawn in the color given as "#RRGGBB"; an unparsable color falls back
// to red.
func Annotate(img image.Image, labels []Label, hexColor string, thickness int) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	stroke, err := ParseHexColor(hexColor)
	if err != nil {
		stroke = color.RGBA{255, 0, 0, 255}
	}
	if thickness < 1 {
		thickness = 1
	}

	for _, l := range labels {
		drawOutline(out, l.Rect, stroke, thickness)
		if l.Caption != "" {
			drawCaption(out, l.Rect.Min.X+thickness+1, l.Rect.Min.Y+thickness+1, l.Caption, stroke)
		}
	}

	return out
}

// drawOutline strokes rect inside its own bounds, clipped to the image.
func drawOutline(img *image.RGBA, rect image.Rectangle, c color.RGBA, thickness int) {
	src := image.NewUniform(c)
	r := rect.Canon()
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()), src, image.Point{}, draw.Src)
	}
}

// drawCaption writes text on a dark backing box with its top-left at (x, y).
func drawCaption(img *image.RGBA, x, y int, text string, fg color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Metrics().Height.Ceil()

	backing := image.Rect(x-1, y-1, x+width+1, y+height+1).Intersect(img.Bounds())
	draw.Draw(img, backing, image.NewUniform(color.RGBA{0, 0, 0, 180}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}
