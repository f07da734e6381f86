package engine

import (
	"fmt"

	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/telemetry"
)

// ForceGrow grows the node with the given ID immediately, bypassing the
// growth probability gate. Model eligibility rules still apply, and leaf and
// flower generation stay stochastic. The tick counter does not advance.
func (e *Engine) ForceGrow(id uint64) (components.GrowthNode, error) {
	return e.force(id, telemetry.EventGrowth)
}

// ForceBranch branches the node with the given ID immediately, bypassing the
// branch probability gate.
func (e *Engine) ForceBranch(id uint64) (components.GrowthNode, error) {
	return e.force(id, telemetry.EventBranch)
}

// ForceGrowStrongest grows the most energetic node (earliest on ties).
func (e *Engine) ForceGrowStrongest() (components.GrowthNode, error) {
	if len(e.nodes) >= e.cfg.MaxNodes {
		return components.GrowthNode{}, ErrAtCapacity
	}
	if len(e.nodes) == 0 {
		return components.GrowthNode{}, fmt.Errorf("%w: engine has no nodes", ErrNoGrowth)
	}
	best := 0
	for i := range e.nodes {
		if e.nodes[i].Energy > e.nodes[best].Energy {
			best = i
		}
	}
	return e.ForceGrow(e.nodes[best].ID)
}

// ForceBranchEligible branches a node picked uniformly among those that meet
// the branch conditions.
func (e *Engine) ForceBranchEligible() (components.GrowthNode, error) {
	if len(e.nodes) >= e.cfg.MaxNodes {
		return components.GrowthNode{}, ErrAtCapacity
	}
	var eligible []uint64
	for i := range e.nodes {
		if e.grower.CanBranch(&e.nodes[i]) {
			eligible = append(eligible, e.nodes[i].ID)
		}
	}
	if len(eligible) == 0 {
		return components.GrowthNode{}, fmt.Errorf("%w: no node can branch", ErrNoGrowth)
	}
	return e.ForceBranch(eligible[e.rng.Intn(len(eligible))])
}

func (e *Engine) force(id uint64, kind telemetry.EventType) (components.GrowthNode, error) {
	i, ok := e.index[id]
	if !ok {
		return components.GrowthNode{}, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	if len(e.nodes) >= e.cfg.MaxNodes {
		return components.GrowthNode{}, ErrAtCapacity
	}

	parent := &e.nodes[i]
	grow := e.grower.Grow
	if kind == telemetry.EventBranch {
		grow = e.grower.Branch
	}
	out, ok := grow(parent, e.field, e.bounds, e.rng)
	if !ok {
		return components.GrowthNode{}, fmt.Errorf("%w: node %d (%s)", ErrNoGrowth, id, kind)
	}

	child := e.accept(parent, out, kind)
	e.nodes = append(e.nodes, child)
	e.reindex()
	return child, nil
}
