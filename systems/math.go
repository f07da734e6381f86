package systems

import (
	"math"

	"github.com/pthm-cable/cspace/components"
)

// Clamp functions for common value ranges

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// falloff is the linear influence 1 - d/radius used by every resource
// interaction. Callers check d < radius first.
func falloff(d, radius float64) float64 {
	return 1 - d/radius
}

// signOf returns +1 for positive values and -1 otherwise, so zero maps to -1.
func signOf(v float64) float64 {
	if v > 0 {
		return 1
	}
	return -1
}

// Random helpers

// uniform returns a value in [lo, hi).
func uniform(rng RNG, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// randomSide returns -1 or +1 with equal probability.
func randomSide(rng RNG) int8 {
	if rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

// Vector helpers

// rotate turns v by angle radians. Screen coordinates, so positive angles
// rotate clockwise on screen.
func rotate(v components.Vector2D, angle float64) components.Vector2D {
	sin, cos := math.Sincos(angle)
	return components.Vector2D{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// fromAngle returns the vector of the given length pointing at angle.
func fromAngle(angle, length float64) components.Vector2D {
	sin, cos := math.Sincos(angle)
	return components.Vector2D{X: cos * length, Y: sin * length}
}
