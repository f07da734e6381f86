package engine

import (
	"sort"
	"time"

	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/systems"
	"github.com/pthm-cable/cspace/telemetry"
)

// Update advances the engine one tick and recurses into child engines. It
// reports whether the engine is still below max_nodes.
//
// Order: every node runs dynamics (and plant per-tick updates) in descending
// energy order, collapsing if its distortion passes d_critical; then nodes
// are visited in random order for growth and branch attempts, adding at most
// min(3, max_nodes - count) new nodes; then the survivors-then-new list is
// truncated to max_nodes, paths are rebuilt and children are updated.
func (e *Engine) Update() bool {
	started := e.startTick()
	e.tick++

	survivors := make([]components.GrowthNode, len(e.nodes))
	copy(survivors, e.nodes)
	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Energy > survivors[j].Energy
	})
	maxNew := min(maxNewPerTick, e.cfg.MaxNodes-len(e.nodes))

	e.phase(telemetry.PhaseDynamics)
	collapsed := make([]bool, len(survivors))
	for i := range survivors {
		n := &survivors[i]
		e.dynamics.Step(n, e.field)
		e.grower.Tick(n, e.field)
		if n.Distortion > e.cfg.DCritical {
			e.collapse(n)
			collapsed[i] = true
		}
	}

	e.phase(telemetry.PhaseGrowth)
	var added []components.GrowthNode
	for _, i := range e.rng.Perm(len(survivors)) {
		if len(added) >= maxNew {
			break
		}
		if collapsed[i] {
			continue
		}
		n := &survivors[i]

		if e.rng.Float64() < e.grower.GrowthChance(n) && len(added) < maxNew {
			if out, ok := e.grower.Grow(n, e.field, e.bounds, e.rng); ok {
				added = append(added, e.accept(n, out, telemetry.EventGrowth))
			}
		}
		if e.rng.Float64() < e.grower.BranchChance(n) && len(added) < maxNew {
			if out, ok := e.grower.Branch(n, e.field, e.bounds, e.rng); ok {
				added = append(added, e.accept(n, out, telemetry.EventBranch))
			}
		}
	}

	e.phase(telemetry.PhasePaths)
	all := append(survivors, added...)
	if len(all) > e.cfg.MaxNodes {
		all = all[:e.cfg.MaxNodes]
	}
	e.nodes = all
	e.reindex()

	e.phase(telemetry.PhaseChildren)
	e.observeLevel(started)
	e.updateChildren()

	e.endTick()
	return len(e.nodes) < e.cfg.MaxNodes
}

// accept stamps a grown node with its identity, records leaf and flower
// output, and emits the growth or branch event.
func (e *Engine) accept(parent *components.GrowthNode, out systems.Outcome, kind telemetry.EventType) components.GrowthNode {
	child := out.Node
	child.ID = e.allocID()
	child.BornTick = e.tick
	child.Age = 0

	if kind == telemetry.EventBranch {
		e.record(telemetry.NewBranchEvent(e.tick, e.depth, child.ID, parent.ID, child.Position))
	} else {
		e.record(telemetry.NewGrowthEvent(e.tick, e.depth, child.ID, parent.ID, child.Position))
	}
	if out.Leaf {
		e.leaves = append(e.leaves, child.Position)
		e.record(telemetry.NewLeafEvent(e.tick, e.depth, child.ID, child.Position))
	}
	if out.Flowered {
		e.flowers = append(e.flowers, parent.Position)
		e.record(telemetry.NewFlowerEvent(e.tick, e.depth, parent.ID, parent.Position))
	}
	return child
}

// startTick opens a perf tick on the root engine. Every engine returns its
// own start time so nested levels can report their self time.
func (e *Engine) startTick() time.Time {
	if e.perf == nil {
		return time.Time{}
	}
	if e.depth == 0 {
		e.perf.StartTick()
	}
	return time.Now()
}

func (e *Engine) phase(name string) {
	if e.perf != nil && e.depth == 0 {
		e.perf.StartPhase(name)
	}
}

// observeLevel reports a nested engine's time up to its own children.
func (e *Engine) observeLevel(started time.Time) {
	if e.perf != nil && e.depth > 0 {
		e.perf.ObserveLevel(e.depth, time.Since(started))
	}
}

func (e *Engine) endTick() {
	if e.perf != nil && e.depth == 0 {
		e.perf.EndTick()
	}
}
