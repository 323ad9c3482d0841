package detection

import (
	"fmt"
	"image"

	"github.com/ironsheep/equip-scan-mcp/internal/equipment"
	"github.com/ironsheep/equip-scan-mcp/internal/geometry"
	"github.com/ironsheep/equip-scan-mcp/internal/imaging"
)

// Detector locates candidate icon boxes in a screenshot using per-category
// Params. A Detector is immutable and safe for concurrent use.
type Detector struct {
	params map[equipment.Category]Params
}

// NewDetector builds a Detector. Categories missing from params fall back to
// DefaultParams; a nil map means all defaults.
func NewDetector(params map[equipment.Category]Params) (*Detector, error) {
	merged := DefaultParams()
	for c, p := range params {
		if _, err := equipment.ParseCategory(string(c)); err != nil {
			return nil, err
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%s params: %w", c, err)
		}
		merged[c] = p
	}
	return &Detector{params: merged}, nil
}

// Params returns the tuning used for a category.
func (d *Detector) Params(category equipment.Category) (Params, bool) {
	p, ok := d.params[category]
	return p, ok
}

// Detect returns the boxes likely to contain one icon each, in reading order
// (see geometry.Compare). Coordinates are in the image's own coordinate space.
//
// An image with no candidates yields an empty slice and a nil error; the
// caller is expected to fall back to manual placement. The only error is an
// unknown category.
//
// # Pipeline
//
//  1. Binary mask from HSV ranges or a Canny edge map
//  2. Morphological close, then open, then dilate (each optional)
//  3. Contour bounding boxes (external or tree retrieval)
//  4. Width-fraction, height and aspect filters
//  5. Nested box suppression, then overlap merge (each optional)
//  6. Reading-order sort
func (d *Detector) Detect(img image.Image, category equipment.Category) ([]geometry.Box, error) {
	p, ok := d.params[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", equipment.ErrUnknownCategory, category)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return []geometry.Box{}, nil
	}

	mask := buildMask(img, p)
	mask = imaging.Close(mask, p.Close.Radius, p.Close.Iterations)
	mask = imaging.Open(mask, p.Open.Radius, p.Open.Iterations)
	mask = imaging.Dilate(mask, p.Dilate.Radius, p.Dilate.Iterations)

	raw := findContours(mask, p.Retrieval)
	for i := range raw {
		raw[i].X += bounds.Min.X
		raw[i].Y += bounds.Min.Y
	}

	return refine(raw, p, bounds.Dx()), nil
}

func buildMask(img image.Image, p Params) *image.Gray {
	if p.Mask == MaskEdges {
		return imaging.Canny(img, p.CannyLow, p.CannyHigh)
	}
	return imaging.HSVMask(img, p.HSVRanges)
}

// refine applies the geometric filters and post-processing to raw contour
// boxes and returns them in reading order.
func refine(raw []geometry.Box, p Params, imageWidth int) []geometry.Box {
	boxes := make([]geometry.Box, 0, len(raw))
	for _, b := range raw {
		if p.accepts(b, imageWidth) {
			boxes = append(boxes, b)
		}
	}

	if p.SuppressNested {
		boxes = suppressNested(boxes)
	}
	if p.Merge {
		boxes = geometry.MergeOverlapping(boxes, p.MergeThreshold)
	}

	geometry.Sort(boxes)
	return boxes
}

func (p Params) accepts(b geometry.Box, imageWidth int) bool {
	if b.W <= 0 || b.H <= 0 || imageWidth <= 0 {
		return false
	}

	frac := float64(b.W) / float64(imageWidth)
	if frac < p.MinWidthFrac || frac > p.MaxWidthFrac {
		return false
	}
	if p.MinHeightToWidth > 0 && float64(b.H) <= p.MinHeightToWidth*float64(b.W) {
		return false
	}
	if p.MaxAspect > 0 {
		if aspect := b.AspectRatio(); aspect < p.MinAspect || aspect > p.MaxAspect {
			return false
		}
	}
	return true
}

// suppressNested drops every box contained in another box. Of identical
// boxes only the first is kept.
func suppressNested(boxes []geometry.Box) []geometry.Box {
	kept := make([]geometry.Box, 0, len(boxes))
	for i, b := range boxes {
		nested := false
		for j, o := range boxes {
			if i == j || !o.Contains(b) {
				continue
			}
			if o != b || j < i {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, b)
		}
	}
	return kept
}
