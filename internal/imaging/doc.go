// Package imaging provides the pixel-level building blocks of the equipment
// recognizer: decoding and caching screenshots, HSV color masks, binary
// morphology, Canny edge maps, clipped cropping, canonical resizing and
// annotated previews.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Rectangles use an inclusive
// top-left and exclusive bottom-right corner, as image.Rectangle does.
//
// # Masks
//
// Binary masks are *image.Gray values holding only MaskOff (0) and MaskOn
// (255), always with origin (0,0) even when the source image has a different
// origin. Callers translate mask coordinates back by adding the source
// image's Bounds().Min.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are stateless,
// never modify their input image, and return freshly allocated results, so a
// cached screenshot can be shared read-only by concurrent recognition tasks.
//
// # Error Handling
//
// Decoding failures wrap ErrDecode and are the only fatal error for a
// screenshot. Crops that fall entirely outside the image return
// ErrEmptyRegion; partially outside crops are clipped.
package imaging
