package systems

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/cspace/components"
)

// MetricTensor returns the diagonal metric g = diag(1/E^2, 1/(D+eps)) at a node.
func MetricTensor(n *components.GrowthNode, eps float64) *mat.DiagDense {
	return mat.NewDiagDense(2, []float64{
		1 / (n.Energy * n.Energy),
		1 / (n.Distortion + eps),
	})
}

// CycleDepthStep is the metric length sqrt(d^T g d) of the step from parent to
// child in (coherence, temporal complexity) space, measured with the parent's
// metric.
func CycleDepthStep(parent, child *components.GrowthNode, eps float64) float64 {
	d := mat.NewVecDense(2, []float64{
		child.Coherence - parent.Coherence,
		child.TemporalComplexity - parent.TemporalComplexity,
	})
	q := mat.Inner(d, MetricTensor(parent, eps), d)
	if !(q > 0) {
		return 0
	}
	return math.Sqrt(q)
}

// temporalFromHistory is ln(|C_t| + eps).
func temporalFromHistory(acc components.Vector2D, eps float64) float64 {
	return math.Log(acc.Magnitude() + eps)
}
