package detection

import (
	"errors"
	"fmt"

	"github.com/ironsheep/equip-scan-mcp/internal/equipment"
	"github.com/ironsheep/equip-scan-mcp/internal/imaging"
)

// MaskMode selects how the binary mask is built from the screenshot.
type MaskMode string

const (
	// MaskColor thresholds the image against HSV ranges matching the icon
	// border color.
	MaskColor MaskMode = "color"
	// MaskEdges runs Canny on the grayscale image, for layouts whose slots
	// share no reliable border color.
	MaskEdges MaskMode = "edges"
)

// Retrieval selects which contours become candidate boxes.
type Retrieval string

const (
	// RetrieveExternal keeps only outermost shapes; anything nested inside a
	// hole of another shape is ignored.
	RetrieveExternal Retrieval = "external"
	// RetrieveTree keeps every shape and every hole at any nesting depth.
	RetrieveTree Retrieval = "tree"
)

// Morph is one morphology step. A zero Radius or Iterations skips it.
type Morph struct {
	Radius     float64 `json:"radius"`
	Iterations int     `json:"iterations"`
}

// Params holds the tunables for one equipment category. They are data so
// they can be adjusted from a tuning file without touching the pipeline.
type Params struct {
	Mask      MaskMode           `json:"mask"`
	HSVRanges []imaging.HSVRange `json:"hsv_ranges,omitempty"`
	CannyLow  int                `json:"canny_low,omitempty"`
	CannyHigh int                `json:"canny_high,omitempty"`

	Close  Morph `json:"close"`
	Open   Morph `json:"open"`
	Dilate Morph `json:"dilate"`

	Retrieval Retrieval `json:"retrieval"`

	// Box width as a fraction of the image width.
	MinWidthFrac float64 `json:"min_width_frac"`
	MaxWidthFrac float64 `json:"max_width_frac"`

	// Boxes must satisfy h > MinHeightToWidth*w. Zero disables the check.
	MinHeightToWidth float64 `json:"min_height_to_width,omitempty"`

	// Aspect (w/h) bounds. A zero MaxAspect disables the check.
	MinAspect float64 `json:"min_aspect,omitempty"`
	MaxAspect float64 `json:"max_aspect,omitempty"`

	Merge          bool    `json:"merge"`
	MergeThreshold float64 `json:"merge_threshold,omitempty"`

	// SuppressNested drops boxes lying entirely inside another surviving box.
	SuppressNested bool `json:"suppress_nested"`
}

// Validate reports the first inconsistent setting.
func (p Params) Validate() error {
	switch p.Mask {
	case MaskColor:
		if len(p.HSVRanges) == 0 {
			return errors.New("color mask needs at least one HSV range")
		}
	case MaskEdges:
		if p.CannyLow < 0 || p.CannyHigh < p.CannyLow {
			return fmt.Errorf("invalid canny thresholds %d/%d", p.CannyLow, p.CannyHigh)
		}
	default:
		return fmt.Errorf("unknown mask mode %q", p.Mask)
	}

	if p.Retrieval != RetrieveExternal && p.Retrieval != RetrieveTree {
		return fmt.Errorf("unknown retrieval mode %q", p.Retrieval)
	}
	if p.MinWidthFrac < 0 || p.MaxWidthFrac <= 0 || p.MinWidthFrac > p.MaxWidthFrac {
		return fmt.Errorf("invalid width fraction bounds %.2f-%.2f", p.MinWidthFrac, p.MaxWidthFrac)
	}
	if p.MaxAspect > 0 && p.MinAspect > p.MaxAspect {
		return fmt.Errorf("invalid aspect bounds %.2f-%.2f", p.MinAspect, p.MaxAspect)
	}
	if p.Merge && (p.MergeThreshold < 0 || p.MergeThreshold >= 1) {
		return fmt.Errorf("merge threshold %.2f outside [0,1)", p.MergeThreshold)
	}
	return nil
}

// DefaultParams returns the tuning for the stock UI skin.
func DefaultParams() map[equipment.Category]Params {
	return map[equipment.Category]Params{
		// Character frames are gold or bronze depending on rarity.
		equipment.CategoryChara: {
			Mask: MaskColor,
			HSVRanges: []imaging.HSVRange{
				{HueMin: 38, HueMax: 58, SatMin: 0.35, SatMax: 1, ValMin: 0.55, ValMax: 1},
				{HueMin: 18, HueMax: 38, SatMin: 0.35, SatMax: 1, ValMin: 0.35, ValMax: 0.9},
			},
			Close:          Morph{Radius: 2, Iterations: 2},
			Retrieval:      RetrieveTree,
			MinWidthFrac:   0.10,
			MaxWidthFrac:   0.30,
			SuppressNested: true,
		},
		equipment.CategoryWeapon: {
			Mask: MaskColor,
			HSVRanges: []imaging.HSVRange{
				{HueMin: 40, HueMax: 56, SatMin: 0.45, SatMax: 1, ValMin: 0.6, ValMax: 1},
			},
			Close:            Morph{Radius: 2, Iterations: 1},
			Open:             Morph{Radius: 1, Iterations: 1},
			Retrieval:        RetrieveExternal,
			MinWidthFrac:     0.10,
			MaxWidthFrac:     0.30,
			MinHeightToWidth: 0.3,
		},
		equipment.CategorySummon: {
			Mask:           MaskEdges,
			CannyLow:       50,
			CannyHigh:      150,
			Close:          Morph{Radius: 2, Iterations: 1},
			Dilate:         Morph{Radius: 1, Iterations: 2},
			Retrieval:      RetrieveExternal,
			MinWidthFrac:   0.10,
			MaxWidthFrac:   0.50,
			MinAspect:      0.5,
			MaxAspect:      2.0,
			Merge:          true,
			MergeThreshold: 0.3,
		},
	}
}
