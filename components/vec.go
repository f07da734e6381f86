package components

import "math"

// Up is the canonical unit vector returned when a direction is undefined.
// Screen coordinates: y grows downward, so "up" is negative y.
var Up = Vector2D{X: 0, Y: -1}

// Vector2D is an immutable 2-D point or direction.
type Vector2D struct {
	X, Y float64
}

// Vec is shorthand for Vector2D{X: x, Y: y}.
func Vec(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// Add returns v + o.
func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v * s.
func (v Vector2D) Scale(s float64) Vector2D {
	return Vector2D{X: v.X * s, Y: v.Y * s}
}

// Distance returns the Euclidean distance between v and o.
func (v Vector2D) Distance(o Vector2D) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Magnitude returns the length of v.
func (v Vector2D) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector of v, or Up for the zero vector.
func (v Vector2D) Normalize() Vector2D {
	mag := v.Magnitude()
	if mag > 0 {
		return Vector2D{X: v.X / mag, Y: v.Y / mag}
	}
	return Up
}

// Clamp bounds v to [0, maxX] x [0, maxY].
func (v Vector2D) Clamp(maxX, maxY float64) Vector2D {
	return Vector2D{X: clamp(v.X, 0, maxX), Y: clamp(v.Y, 0, maxY)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
