package engine

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/telemetry"
)

// collapse resolves a singularity: the node drops to the pure-time state
// (H = D = 0, T = E * ln(depth + eps)) and, unless the hierarchy is at
// max_depth, a child engine is seeded at its position with its energy. The
// child's generator is seeded from this engine's, so collapse always consumes
// one draw when a child is spawned.
func (e *Engine) collapse(n *components.GrowthNode) {
	spawned := e.cfg.MaxDepth == 0 || e.depth < e.cfg.MaxDepth
	if spawned {
		child := newEngine(e.cfg, e.bounds, rand.New(rand.NewSource(e.rng.Int63())), e.depth+1)
		child.recorder = e.recorder
		child.logger = e.logger
		child.perf = e.perf
		child.Initialize(n.Position, n.Energy)
		e.children = append(e.children, child)
	}

	n.Coherence = 0
	n.Distortion = 0
	n.TemporalComplexity = n.Energy * math.Log(n.CycleDepth+e.cfg.Epsilon)

	e.record(telemetry.NewCollapseEvent(e.tick, e.depth, n.ID, n.Position))
	e.logger.Debug("singularity",
		"tick", e.tick,
		"depth", e.depth,
		"node", n.ID,
		"x", n.Position.X,
		"y", n.Position.Y,
		"cycle_depth", n.CycleDepth,
		"spawned", spawned,
	)
}
