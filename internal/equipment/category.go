// Package equipment defines the domain vocabulary of the recognition pipeline:
// equipment categories, the detection types they refine into, stable rectangle
// identities, descriptors and match candidates.
package equipment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned when a category string is not one of the
// supported equipment categories.
var ErrUnknownCategory = errors.New("unknown equipment category")

// Category is the coarse, user-facing equipment kind shown in a screenshot.
type Category string

const (
	CategoryChara  Category = "chara"
	CategoryWeapon Category = "weapon"
	CategorySummon Category = "summon"
)

// Categories lists every supported category.
func Categories() []Category {
	return []Category{CategoryChara, CategoryWeapon, CategorySummon}
}

// ParseCategory validates a category name. Matching is case-insensitive.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryChara, CategoryWeapon, CategorySummon:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// DetectionType refines a Category by the geometric role of the icon. It
// selects the canonical crop size and the matching service endpoint.
type DetectionType string

const (
	DetectionChara           DetectionType = "chara"
	DetectionWeaponNormal    DetectionType = "weapon/normal"
	DetectionWeaponMain      DetectionType = "weapon/main"
	DetectionSummonPartySub  DetectionType = "summon/party_sub"
	DetectionSummonPartyMain DetectionType = "summon/party_main"
)

// DetectionTypes lists every detection type.
func DetectionTypes() []DetectionType {
	return []DetectionType{
		DetectionChara,
		DetectionWeaponNormal,
		DetectionWeaponMain,
		DetectionSummonPartySub,
		DetectionSummonPartyMain,
	}
}

// QuickEligible reports whether the matching service offers a quick
// (priority) mode for this detection type.
func (d DetectionType) QuickEligible() bool {
	return d == DetectionWeaponMain || d == DetectionWeaponNormal
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SizeTable maps each detection type to the canonical size crops are resized
// to before descriptor extraction.
type SizeTable map[DetectionType]Size

// DefaultSizes returns the canonical crop sizes the matching service indexes
// its catalog at. Main/party-main slots are portrait, the others landscape.
func DefaultSizes() SizeTable {
	return SizeTable{
		DetectionChara:           {Width: 100, Height: 100},
		DetectionWeaponNormal:    {Width: 140, Height: 80},
		DetectionWeaponMain:      {Width: 100, Height: 210},
		DetectionSummonPartySub:  {Width: 140, Height: 80},
		DetectionSummonPartyMain: {Width: 100, Height: 210},
	}
}

// Descriptor is an opaque, serialized feature set for one normalized crop.
// It is only ever interpreted by the matching service.
type Descriptor string

// MatchCandidate is one catalog item the matching service considers a match.
type MatchCandidate struct {
	ID         string  `json:"id"`
	Confidence float64 `json:"confidence"`
}

// Result maps each attempted rectangle to its candidates in descending
// confidence order. An empty list means attempted but unmatched; a missing key
// means the rectangle was never resolved.
type Result map[RectID][]MatchCandidate
