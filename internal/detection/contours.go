package detection

import (
	"image"

	"github.com/ironsheep/equip-scan-mcp/internal/geometry"
)

// component is one connected region of a binary mask.
type component struct {
	minX, minY, maxX, maxY int
	touchesBorder         bool
}

func (c component) box() geometry.Box {
	return geometry.Box{X: c.minX, Y: c.minY, W: c.maxX - c.minX + 1, H: c.maxY - c.minY + 1}
}

var (
	neighbors4 = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	neighbors8 = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// labelComponents groups the pixels where want(on[i]) holds into connected
// components. labels[i] is the 1-based component index of pixel i, or 0 when
// the pixel does not belong to any component.
//
// Uses an explicit stack rather than recursion so large regions cannot
// overflow the goroutine stack.
func labelComponents(on []bool, width, height int, want bool, offsets [][2]int) ([]int32, []component) {
	labels := make([]int32, len(on))
	comps := make([]component, 0)
	stack := make([]int, 0, 64)

	for start := range on {
		if on[start] != want || labels[start] != 0 {
			continue
		}

		id := int32(len(comps) + 1)
		c := component{minX: width, minY: height, maxX: -1, maxY: -1}
		labels[start] = id
		stack = append(stack[:0], start)

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%width, i/width

			if x < c.minX {
				c.minX = x
			}
			if x > c.maxX {
				c.maxX = x
			}
			if y < c.minY {
				c.minY = y
			}
			if y > c.maxY {
				c.maxY = y
			}
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				c.touchesBorder = true
			}

			for _, d := range offsets {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				n := ny*width + nx
				if on[n] == want && labels[n] == 0 {
					labels[n] = id
					stack = append(stack, n)
				}
			}
		}

		comps = append(comps, c)
	}

	return labels, comps
}

// findContours returns the bounding boxes of the shapes in mask, in raster
// order of their first pixel. Coordinates are relative to the mask origin.
//
// Shapes are 8-connected on-pixels and holes are 4-connected off-pixels, so
// a closed 8-connected border always separates its hole from the outside.
//
//   - RetrieveExternal: shapes that touch the image border or the outside
//     background. Shapes sitting inside another shape's hole are skipped.
//   - RetrieveTree: every shape plus every hole. A hole's box is grown by one
//     pixel to cover the border pixels that enclose it.
func findContours(mask *image.Gray, mode Retrieval) []geometry.Box {
	width, height := mask.Bounds().Dx(), mask.Bounds().Dy()
	if width == 0 || height == 0 {
		return nil
	}

	on := make([]bool, width*height)
	for y := 0; y < height; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+width]
		for x, p := range row {
			on[y*width+x] = p >= 128
		}
	}

	fgLabels, shapes := labelComponents(on, width, height, true, neighbors8)
	bgLabels, background := labelComponents(on, width, height, false, neighbors4)

	boxes := make([]geometry.Box, 0, len(shapes))

	if mode == RetrieveTree {
		for _, s := range shapes {
			boxes = append(boxes, s.box())
		}
		for _, h := range background {
			if h.touchesBorder {
				continue
			}
			grown := h.box().Rect().Inset(-1).Intersect(image.Rect(0, 0, width, height))
			boxes = append(boxes, geometry.FromRect(grown))
		}
		return boxes
	}

	external := make([]bool, len(shapes))
	for i, s := range shapes {
		external[i] = s.touchesBorder
	}
	for i, l := range fgLabels {
		if l == 0 || external[l-1] {
			continue
		}
		x, y := i%width, i/width
		for _, d := range neighbors4 {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || ny < 0 || nx >= width || ny >= height {
				continue
			}
			if b := bgLabels[ny*width+nx]; b != 0 && background[b-1].touchesBorder {
				external[l-1] = true
				break
			}
		}
	}

	for i, s := range shapes {
		if external[i] {
			boxes = append(boxes, s.box())
		}
	}
	return boxes
}
