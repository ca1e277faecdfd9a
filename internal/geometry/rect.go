package geometry

import (
	"fmt"
	"math"
)

// Point is a location in page space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in page space.
type Rect struct {
	X0 float64 `json:"x0"` // Left edge
	Y0 float64 `json:"y0"` // Top edge
	X1 float64 `json:"x1"` // Right edge
	Y1 float64 `json:"y1"` // Bottom edge
}

// R is shorthand for constructing a Rect.
func R(x0, y0, x1, y1 float64) Rect {
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Center returns the midpoint of the rectangle's diagonal.
func (r Rect) Center() Point {
	return Center(r)
}

// Empty reports whether the rectangle has no area (right <= left or bottom <= top).
func (r Rect) Empty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Pad returns the rectangle grown by d on every side.
func (r Rect) Pad(d float64) Rect {
	return Rect{X0: r.X0 - d, Y0: r.Y0 - d, X1: r.X1 + d, Y1: r.Y1 + d}
}

// Intersects reports whether two rectangles share any area.
func (r Rect) Intersects(o Rect) bool {
	return r.X0 < o.X1 && r.X1 > o.X0 && r.Y0 < o.Y1 && r.Y1 > o.Y0
}

// Intersect returns the overlap of two rectangles. The result is Empty when they
// do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		X0: math.Max(r.X0, o.X0),
		Y0: math.Max(r.Y0, o.Y0),
		X1: math.Min(r.X1, o.X1),
		Y1: math.Min(r.Y1, o.Y1),
	}
}

// Union returns the smallest rectangle containing both rectangles.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, o.X0),
		Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1),
		Y1: math.Max(r.Y1, o.Y1),
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect(%.1f, %.1f, %.1f, %.1f)", r.X0, r.Y0, r.X1, r.Y1)
}

// Center returns the arithmetic midpoint of the rectangle's diagonal corners.
func Center(r Rect) Point {
	return Point{X: (r.X0 + r.X1) / 2, Y: (r.Y0 + r.Y1) / 2}
}

// Distance returns the Euclidean distance between two points.
func Distance(p, q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}
