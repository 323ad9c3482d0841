// Package features turns detected icon regions into descriptors for the
// matching service: crop, resize to the detection type's canonical size, then
// compute ORB keypoint descriptors with OpenCV.
//
// Every OpenCV matrix is released with a deferred Close in the function that
// allocates it, so native memory is returned on both the success and the
// error path. Panics raised inside the native layer are recovered by Extract
// and reported as an error for that single region.
package features

import (
	"encoding/base64"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/equip-scan-mcp/internal/equipment"
	"github.com/ironsheep/equip-scan-mcp/internal/geometry"
	"github.com/ironsheep/equip-scan-mcp/internal/imaging"
)

// BudgetTable maps each detection type to its maximum keypoint count.
type BudgetTable map[equipment.DetectionType]int

// DefaultBudgets gives character art a larger keypoint budget; it has less
// distinctive texture per unit area than weapon and summon icons.
func DefaultBudgets() BudgetTable {
	return BudgetTable{
		equipment.DetectionChara:           1000,
		equipment.DetectionWeaponNormal:    500,
		equipment.DetectionWeaponMain:      500,
		equipment.DetectionSummonPartySub:  500,
		equipment.DetectionSummonPartyMain: 500,
	}
}

// ORB settings shared by every detection type. Canonical crops are small, so
// the border and patch size are half of OpenCV's defaults.
const (
	orbScaleFactor   = 1.2
	orbLevels        = 8
	orbEdgeThreshold = 15
	orbFirstLevel    = 0
	orbWTAK          = 2
	orbPatchSize     = 15
	orbFastThreshold = 20
)

// Extractor computes descriptors for regions of a screenshot. It holds no
// native resources between calls and is safe for concurrent use.
type Extractor struct {
	sizes   equipment.SizeTable
	budgets BudgetTable
}

// NewExtractor creates an Extractor. Detection types missing from sizes or
// budgets use the defaults.
func NewExtractor(sizes equipment.SizeTable, budgets BudgetTable) *Extractor {
	e := &Extractor{sizes: equipment.DefaultSizes(), budgets: DefaultBudgets()}
	for dt, s := range sizes {
		e.sizes[dt] = s
	}
	for dt, b := range budgets {
		e.budgets[dt] = b
	}
	return e
}

// Size returns the canonical size for a detection type.
func (e *Extractor) Size(dt equipment.DetectionType) (equipment.Size, bool) {
	s, ok := e.sizes[dt]
	return s, ok
}

// Normalize resizes img to the canonical size of dt, ignoring aspect ratio.
func (e *Extractor) Normalize(img image.Image, dt equipment.DetectionType) (*image.NRGBA, error) {
	size, ok := e.sizes[dt]
	if !ok {
		return nil, fmt.Errorf("no canonical size for detection type %q", dt)
	}
	return imaging.Resize(img, size.Width, size.Height)
}

// Descriptor computes the ORB descriptors of an already normalized image and
// serializes the descriptor matrix as base64. An image without keypoints
// yields an empty Descriptor and no error.
func (e *Extractor) Descriptor(img image.Image, dt equipment.DetectionType) (equipment.Descriptor, error) {
	budget, ok := e.budgets[dt]
	if !ok {
		return "", fmt.Errorf("no feature budget for detection type %q", dt)
	}

	src := imaging.ToNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()

	rgba, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, src.Pix)
	if err != nil {
		return "", fmt.Errorf("failed to wrap pixels: %w", err)
	}
	defer rgba.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(rgba, &gray, gocv.ColorRGBAToGray)

	mask := gocv.NewMat()
	defer mask.Close()

	orb := gocv.NewORBWithParams(budget, orbScaleFactor, orbLevels, orbEdgeThreshold,
		orbFirstLevel, orbWTAK, gocv.ORBScoreTypeHarris, orbPatchSize, orbFastThreshold)
	defer orb.Close()

	keypoints, desc := orb.DetectAndCompute(gray, mask)
	defer desc.Close()

	if len(keypoints) == 0 || desc.Empty() {
		return "", nil
	}
	return equipment.Descriptor(base64.StdEncoding.EncodeToString(desc.ToBytes())), nil
}

// Extract crops box out of img, normalizes it for dt and computes its
// descriptor. A region outside the image, or any failure in the native
// layer, is returned as an error for this region only.
func (e *Extractor) Extract(img image.Image, box geometry.Box, dt equipment.DetectionType) (desc equipment.Descriptor, err error) {
	defer func() {
		if r := recover(); r != nil {
			desc, err = "", fmt.Errorf("descriptor extraction panicked: %v", r)
		}
	}()

	crop, err := imaging.CropRegion(img, box.Rect())
	if err != nil {
		return "", err
	}
	normalized, err := e.Normalize(crop, dt)
	if err != nil {
		return "", err
	}
	return e.Descriptor(normalized, dt)
}
