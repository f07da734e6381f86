package systems

import (
	"github.com/pthm-cable/cspace/components"
)

// Field sampling constants.
const (
	complexityRadius = 100.0 // Reach of obstacles and supports
	waterRadius      = 100.0 // Reach of water uptake
	hydroRadius      = 150.0 // Reach of hydrotropism
	gradientDelta    = 5.0   // Finite-difference step
	baseComplexity   = 0.5
	baseEnergy       = 0.3
	waterInflowRate  = 0.05
)

// Field samples the scalar fields defined by a set of point resources.
// Every call recomputes from the resource list; nothing is cached.
type Field struct {
	Resources         []components.ResourcePoint
	MaxEnergyDistance float64 // Light falloff radius
}

// SpatialComplexity returns how cluttered the space is at p. Obstacles raise
// it, supports lower it, clamped to [MinSpatial, MaxSpatial].
func (f Field) SpatialComplexity(p components.Vector2D) float64 {
	s := baseComplexity
	for i := range f.Resources {
		r := &f.Resources[i]
		if r.Kind != components.ResourceObstacle && r.Kind != components.ResourceSupport {
			continue
		}
		d := p.Distance(r.Position)
		if d >= complexityRadius {
			continue
		}
		if r.Kind == components.ResourceObstacle {
			s += r.Intensity * falloff(d, complexityRadius)
		} else {
			s -= 0.5 * r.Intensity * falloff(d, complexityRadius)
		}
	}
	return clampFloat(s, components.MinSpatial, components.MaxSpatial)
}

// Energy returns the light energy available at p, clamped to
// [MinEnergy, MaxEnergy].
func (f Field) Energy(p components.Vector2D) float64 {
	e := baseEnergy
	for i := range f.Resources {
		r := &f.Resources[i]
		if r.Kind != components.ResourceLight {
			continue
		}
		d := p.Distance(r.Position)
		if d < f.MaxEnergyDistance {
			e += 2 * r.Intensity * falloff(d, f.MaxEnergyDistance)
		}
	}
	return clampFloat(e, components.MinEnergy, components.MaxEnergy)
}

// Gradient returns the forward-difference gradient of SpatialComplexity.
func (f Field) Gradient(p components.Vector2D) components.Vector2D {
	s := f.SpatialComplexity(p)
	sx := f.SpatialComplexity(components.Vec(p.X+gradientDelta, p.Y))
	sy := f.SpatialComplexity(components.Vec(p.X, p.Y+gradientDelta))
	return components.Vec((sx-s)/gradientDelta, (sy-s)/gradientDelta)
}

// Nearest returns the closest resource of the given kind and its distance.
func (f Field) Nearest(p components.Vector2D, kind components.ResourceKind) (components.ResourcePoint, float64, bool) {
	var (
		best  components.ResourcePoint
		bestD float64
		found bool
	)
	for _, r := range f.Resources {
		if r.Kind != kind {
			continue
		}
		d := p.Distance(r.Position)
		if !found || d < bestD {
			best, bestD, found = r, d, true
		}
	}
	return best, bestD, found
}

// WaterInflow returns the water a node at p absorbs per tick from nearby
// water resources.
func (f Field) WaterInflow(p components.Vector2D) float64 {
	var w float64
	for _, r := range f.Resources {
		if r.Kind != components.ResourceWater {
			continue
		}
		if d := p.Distance(r.Position); d < waterRadius {
			w += waterInflowRate * falloff(d, waterRadius)
		}
	}
	return w
}
