package systems

import (
	"math"

	"github.com/pthm-cable/cspace/components"
)

// Dynamics advances a node's coherence, distortion and temporal complexity by
// one tick.
type Dynamics struct {
	Alpha   float64 // Coherence decay rate
	Beta    float64 // Distortion and temporal growth rate
	Epsilon float64
}

// Deltas returns (dH, dD, dT) for the node at its current position without
// applying them.
func (d Dynamics) Deltas(n *components.GrowthNode, f Field) (dH, dD, dT float64) {
	e := f.Energy(n.Position)
	grad := f.Gradient(n.Position).Magnitude()

	dDdH := n.Distortion / (n.Coherence + d.Epsilon)
	dH = -d.Alpha * (dDdH + grad)
	dD = d.Beta * math.Log1p(math.Abs(dH)*e)
	dT = d.Beta * math.Tanh(math.Abs(dH)*e) * signOf(n.Coherence)
	return dH, dD, dT
}

// Step applies one tick: H and D floored at zero, T accumulated, S and E
// resampled at the node's position and age incremented.
func (d Dynamics) Step(n *components.GrowthNode, f Field) {
	dH, dD, dT := d.Deltas(n, f)
	n.Coherence = math.Max(0, n.Coherence+dH)
	n.Distortion = math.Max(0, n.Distortion+dD)
	n.TemporalComplexity += dT
	n.SpatialComplexity = f.SpatialComplexity(n.Position)
	n.Energy = f.Energy(n.Position)
	n.Age++
	n.Clamp()
}
