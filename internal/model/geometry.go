package model

import "math"

// BBox is a page region [x0, y0, x1, y1] in the normalized 0-1000 space used by
// the layout extractor. The origin is the top-left corner of the page.
type BBox [4]float64

func (b BBox) X0() float64 { return b[0] }
func (b BBox) Y0() float64 { return b[1] }
func (b BBox) X1() float64 { return b[2] }
func (b BBox) Y1() float64 { return b[3] }

// Valid reports whether the box has non-negative extent on both axes.
func (b BBox) Valid() bool {
	return b[2] >= b[0] && b[3] >= b[1]
}

// Area returns the area of the box.
func (b BBox) Area() float64 {
	if !b.Valid() {
		return 0
	}
	return (b[2] - b[0]) * (b[3] - b[1])
}

// Union returns the smallest box covering both boxes.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		math.Min(b[0], other[0]),
		math.Min(b[1], other[1]),
		math.Max(b[2], other[2]),
		math.Max(b[3], other[3]),
	}
}

// Intersection returns the overlapping region, or the zero box when the boxes
// are disjoint.
func (b BBox) Intersection(other BBox) BBox {
	x0 := math.Max(b[0], other[0])
	y0 := math.Max(b[1], other[1])
	x1 := math.Min(b[2], other[2])
	y1 := math.Min(b[3], other[3])

	if x1 < x0 || y1 < y0 {
		return BBox{}
	}

	return BBox{x0, y0, x1, y1}
}

// IoU returns the intersection over union of two boxes.
func (b BBox) IoU(other BBox) float64 {
	inter := b.Intersection(other).Area()
	union := b.Area() + other.Area() - inter

	if union <= 0 {
		return 0
	}

	return inter / union
}

// UnionAll merges boxes; ok is false when the slice is empty.
func UnionAll(boxes []BBox) (BBox, bool) {
	if len(boxes) == 0 {
		return BBox{}, false
	}

	out := boxes[0]
	for _, b := range boxes[1:] {
		out = out.Union(b)
	}

	return out, true
}

// Normalize converts a box in page units (origin top-left) to the 0-1000
// space, truncating like the upstream services do.
func Normalize(b BBox, width, height float64) BBox {
	if width <= 0 || height <= 0 {
		return BBox{}
	}

	return BBox{
		math.Trunc(b[0] / width * 1000),
		math.Trunc(b[1] / height * 1000),
		math.Trunc(b[2] / width * 1000),
		math.Trunc(b[3] / height * 1000),
	}
}
