// Package detection locates equipment icons in a game screenshot.
//
// Detection is a classic mask-and-contour pipeline tuned per equipment
// category. Character and weapon frames have a distinctive gold (or bronze)
// border, so their mask is an HSV color threshold. Summon slots share no
// border color, so their mask is a Canny edge map instead. The mask is then
// cleaned with morphology, its connected shapes are boxed, and the boxes are
// filtered by size relative to the screenshot width.
//
// # Parameters
//
// Every threshold, kernel and filter bound lives in Params rather than in
// code. DefaultParams matches the stock UI skin; a tuning file can replace
// any category's Params without touching the pipeline.
//
// # Contours
//
// Contour retrieval is a connected-component labelling of the mask with
// 8-connected shapes and 4-connected background. External retrieval keeps
// only shapes reachable from the outside background, which discards artwork
// inside an icon frame. Tree retrieval keeps shapes and holes at every depth;
// pair it with Params.SuppressNested so a frame and its own interior do not
// both survive.
//
// # Coordinate System
//
// Returned boxes are in the source image's coordinate space, including any
// non-zero Bounds().Min, and in the reading order defined by geometry.Compare.
//
// # Failure Semantics
//
// Finding nothing is a normal outcome and yields an empty slice. No attempt is
// made to validate the count against an expected grid; partial detections are
// returned as they are.
package detection
