package equipment

import "github.com/ironsheep/equip-scan-mcp/internal/geometry"

// DetectionTypeFor derives the detection type of a box from its category and
// aspect ratio. Wide boxes (w/h >= 1) are normal/sub slots, tall ones are
// main slots. Characters have a single type. The bool is false for an
// unknown category.
func DetectionTypeFor(category Category, b geometry.Box) (DetectionType, bool) {
	wide := b.AspectRatio() >= 1
	switch category {
	case CategoryChara:
		return DetectionChara, true
	case CategoryWeapon:
		if wide {
			return DetectionWeaponNormal, true
		}
		return DetectionWeaponMain, true
	case CategorySummon:
		if wide {
			return DetectionSummonPartySub, true
		}
		return DetectionSummonPartyMain, true
	}
	return "", false
}

// Assign partitions rectangles into detection-type buckets in a single pass.
// Every rectangle lands in exactly one bucket with its id unchanged, and the
// input order is kept within each bucket.
func Assign(rects []Rectangle, category Category) map[DetectionType][]Rectangle {
	buckets := make(map[DetectionType][]Rectangle)
	for _, r := range rects {
		dt, ok := DetectionTypeFor(category, r.Box)
		if !ok {
			continue
		}
		buckets[dt] = append(buckets[dt], r)
	}
	return buckets
}
