package game

import (
	"log/slog"
)

// logStatus emits the periodic status line every status_interval ticks.
// Counts stay numeric so JSON logs can be filtered on them.
func (g *Game) logStatus() {
	interval := int64(g.cfg.Simulation.StatusInterval)
	tick := g.engine.Tick()
	if interval <= 0 || tick%interval != 0 {
		return
	}

	state := g.engine.State()
	if len(state.Nodes) == 0 {
		return
	}
	seed := state.Nodes[0]
	slog.Info("status",
		"tick", tick,
		"nodes", len(state.Nodes),
		"hierarchy", state.HierarchySize(),
		"engines", state.EngineCount(),
		"seed_coherence", seed.Coherence,
		"seed_energy", seed.Energy,
	)
}
