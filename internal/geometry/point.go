package geometry

import "math"

// Point is a position in frame pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Circle is the main circular region of a mask.
type Circle struct {
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
	Radius  float64 `json:"radius"`
}

// DefaultCircle centers a circle in a width x height frame with a radius of a
// quarter of the shorter side.
func DefaultCircle(width, height int) Circle {
	return Circle{
		CenterX: float64(width) / 2,
		CenterY: float64(height) / 2,
		Radius:  math.Min(float64(width), float64(height)) / 4,
	}
}

// Center returns the circle center as a Point.
func (c Circle) Center() Point {
	return Point{X: c.CenterX, Y: c.CenterY}
}

// Contains reports whether p lies inside or on the circle.
func (c Circle) Contains(p Point) bool {
	return Distance(c.Center(), p) <= c.Radius
}
