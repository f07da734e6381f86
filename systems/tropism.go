package systems

import (
	"github.com/pthm-cable/cspace/components"
)

// Tropism composes light seeking, gravity response and water seeking into a
// growth direction, weighted by what the node lacks.
type Tropism struct {
	MaxEnergyDistance float64
	Phototropism      float64
	Gravitropism      float64
	Strength          float64 // Scales the random jitter
}

// Direction returns the unit growth direction. Draw order: lateral side
// (lateral nodes only), then jitter x, then jitter y.
func (t Tropism) Direction(n *components.GrowthNode, f Field, rng RNG) components.Vector2D {
	photo := t.photo(n.Position, f).Scale(t.Phototropism)
	gravi := t.gravi(n.Role, rng)
	hydro := hydro(n.Position, f)

	energyNeed := 1 - n.Energy
	waterNeed := 1 - n.WaterLevel

	dir := photo.Scale(energyNeed * 1.5).
		Add(gravi).
		Add(hydro.Scale(waterNeed * 0.5))

	jitter := components.Vec(
		uniform(rng, -1, 1)*t.Strength/3,
		uniform(rng, -1, 1)*t.Strength/6,
	)
	return dir.Add(jitter).Normalize()
}

// photo pulls from straight up toward lights in range.
func (t Tropism) photo(p components.Vector2D, f Field) components.Vector2D {
	dir := components.Up
	var sum float64
	for _, r := range f.Resources {
		if r.Kind != components.ResourceLight {
			continue
		}
		d := p.Distance(r.Position)
		if d >= t.MaxEnergyDistance {
			continue
		}
		w := r.Intensity * falloff(d, t.MaxEnergyDistance)
		sum += w
		dir = dir.Add(r.Position.Sub(p).Normalize().Scale(w))
	}
	if sum > 0 {
		dir = dir.Scale(1 / (1 + sum))
	}
	return dir.Normalize()
}

// gravi is the role-dependent gravity response.
func (t Tropism) gravi(role components.BranchRole, rng RNG) components.Vector2D {
	switch role {
	case components.RoleMain:
		return components.Vec(0, -t.Gravitropism)
	case components.RoleLateral:
		return components.Vec(float64(randomSide(rng))*0.5, -0.5)
	default:
		return components.Vec(0, -0.5)
	}
}

// hydro points toward the nearest water resource, fading to zero at
// hydroRadius.
func hydro(p components.Vector2D, f Field) components.Vector2D {
	water, d, ok := f.Nearest(p, components.ResourceWater)
	if !ok || d >= hydroRadius {
		return components.Vector2D{}
	}
	return water.Position.Sub(p).Normalize().Scale(falloff(d, hydroRadius))
}
