package systems

import (
	"math"

	"github.com/pthm-cable/cspace/components"
)

// zeroWeightFloor replaces a zero total attention weight.
const zeroWeightFloor = 1e-9

// Attention weighs every resource by an exponential decay in metric distance,
// scaled by the node's coherence-to-distortion ratio. Denser nodes see
// further; coherent nodes attend more strongly.
type Attention struct {
	Lambda  float64
	Epsilon float64
}

// Direction returns the weighted mean of unit vectors toward each resource.
// The result is not renormalized. With no positive weight it returns Up.
func (a Attention) Direction(n *components.GrowthNode, f Field, _ RNG) components.Vector2D {
	if len(f.Resources) == 0 {
		return components.Up
	}

	rho := a.density(n)
	g11 := 1 / (n.Energy * n.Energy)
	ratio := n.Coherence / math.Max(n.Distortion, a.Epsilon)

	weights := make([]float64, len(f.Resources))
	var total float64
	for i, r := range f.Resources {
		d := n.Position.Distance(r.Position)
		w := math.Exp(-a.Lambda*d*g11/(rho+a.Epsilon)) * ratio
		weights[i] = w
		total += w
	}
	if total == 0 {
		total = zeroWeightFloor
	}

	var dir components.Vector2D
	positive := false
	for i, r := range f.Resources {
		w := weights[i]
		if !(w > 0) {
			continue
		}
		positive = true
		dir = dir.Add(r.Position.Sub(n.Position).Normalize().Scale(w / total))
	}
	if !positive {
		return components.Up
	}
	return dir
}

// density is the complex density rho_c. Below the minimum spatial complexity
// only the temporal component contributes.
func (a Attention) density(n *components.GrowthNode) float64 {
	s, t := n.SpatialComplexity, n.TemporalComplexity
	if s < 0.1 {
		return t * n.Energy
	}
	return math.Hypot(s, t) * n.Energy
}
