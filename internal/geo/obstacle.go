package geo

import "math"

// ObstacleFunc reports whether a circle of the given radius centred at p
// touches an obstacle. A nil ObstacleFunc blocks nothing.
type ObstacleFunc func(p Vec2, radius float64) bool

// Shape is a static obstacle footprint.
type Shape interface {
	// Overlaps reports whether a circle at center with radius intersects the shape.
	// Touching edges do not count.
	Overlaps(center Vec2, radius float64) bool
}

// Circle is a round obstacle.
type Circle struct {
	Center Vec2
	Radius float64
}

// Overlaps implements Shape.
func (c Circle) Overlaps(center Vec2, radius float64) bool {
	return Distance(c.Center, center) < c.Radius+radius
}

// Rect is an axis-aligned box obstacle.
type Rect struct {
	Min, Max Vec2
}

// NewRect builds a Rect from its center and full size.
func NewRect(center, size Vec2) Rect {
	half := size.Scale(0.5)
	return Rect{Min: center.Sub(half), Max: center.Add(half)}
}

// Overlaps implements Shape.
func (r Rect) Overlaps(center Vec2, radius float64) bool {
	closest := Vec2{
		X: math.Max(r.Min.X, math.Min(center.X, r.Max.X)),
		Y: math.Max(r.Min.Y, math.Min(center.Y, r.Max.Y)),
	}
	if closest == center {
		return true // center inside the box
	}
	return Distance(closest, center) < radius
}

// ObstacleSet is a list of shapes treated as one obstacle layer.
type ObstacleSet []Shape

// Blocked reports whether any shape overlaps the circle. It has the
// ObstacleFunc signature so a set can be handed straight to grid construction.
func (s ObstacleSet) Blocked(p Vec2, radius float64) bool {
	for _, shape := range s {
		if shape.Overlaps(p, radius) {
			return true
		}
	}
	return false
}
