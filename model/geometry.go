package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect represents an axis-aligned bounding box in corner form. A valid Rect
// satisfies X0 < X1 and Y0 < Y1; use IsValid to check before trusting area
// or ratio computations.
//
// Rect marshals to and from JSON as a four-element array [x0, y0, x1, y1].
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// NewRect creates a rectangle from its corners. A rectangle whose corners
// are not strictly ordered (x0 >= x1 or y0 >= y1) is rejected rather than
// silently reinterpreted.
func NewRect(x0, y0, x1, y1 float64) (Rect, error) {
	r := Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
	if !r.IsValid() {
		return Rect{}, fmt.Errorf("invalid rect (%g,%g,%g,%g): corners must satisfy x0<x1, y0<y1", x0, y0, x1, y1)
	}
	return r, nil
}

// NormalizedRect creates a rectangle from two opposite corners in any order.
// It is intended for normalizing producer input whose corner order is not
// guaranteed, and for re-sorting corners after a transform that flips an axis.
func NormalizedRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// RectFromPoints creates a normalized rectangle spanning two points.
func RectFromPoints(p1, p2 Point) Rect {
	return NormalizedRect(p1.X, p1.Y, p2.X, p2.Y)
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Area returns the area of the rectangle.
func (r Rect) Area() float64 {
	return r.Width() * r.Height()
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{
		X: (r.X0 + r.X1) / 2,
		Y: (r.Y0 + r.Y1) / 2,
	}
}

// IsValid returns true if the rectangle has strictly positive width and height.
func (r Rect) IsValid() bool {
	return r.X0 < r.X1 && r.Y0 < r.Y1
}

// Intersects checks whether two rectangles overlap with positive area.
func (r Rect) Intersects(other Rect) bool {
	return r.Intersection(other).IsValid()
}

// Intersection returns the geometric intersection of two rectangles. When
// the rectangles do not overlap, the result has non-positive width or height
// and IsValid reports false.
func (r Rect) Intersection(other Rect) Rect {
	return Rect{
		X0: math.Max(r.X0, other.X0),
		Y0: math.Max(r.Y0, other.Y0),
		X1: math.Min(r.X1, other.X1),
		Y1: math.Min(r.Y1, other.Y1),
	}
}

// Union returns the smallest rectangle containing both rectangles.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, other.X0),
		Y0: math.Min(r.Y0, other.Y0),
		X1: math.Max(r.X1, other.X1),
		Y1: math.Max(r.Y1, other.Y1),
	}
}

// Translate returns the rectangle shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X0: r.X0 + dx, Y0: r.Y0 + dy, X1: r.X1 + dx, Y1: r.Y1 + dy}
}

// Clip returns the part of the rectangle that lies inside bounds. The result
// may be invalid when the rectangle lies entirely outside the bounds.
func (r Rect) Clip(bounds Rect) Rect {
	return r.Intersection(bounds)
}

// OverlapRatio returns the intersection area divided by this rectangle's own
// area, in [0, 1]. A rectangle with non-positive area yields 0.
func (r Rect) OverlapRatio(other Rect) float64 {
	area := r.Area()
	if area <= 0 {
		return 0
	}
	inter := r.Intersection(other)
	if !inter.IsValid() {
		return 0
	}
	return inter.Area() / area
}

// MarshalJSON encodes the rectangle as [x0, y0, x1, y1].
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{r.X0, r.Y0, r.X1, r.Y1})
}

// UnmarshalJSON decodes a [x0, y0, x1, y1] array.
func (r *Rect) UnmarshalJSON(data []byte) error {
	var v [4]float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("rect must be a [x0,y0,x1,y1] array: %w", err)
	}
	r.X0, r.Y0, r.X1, r.Y1 = v[0], v[1], v[2], v[3]
	return nil
}
