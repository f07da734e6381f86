package game

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/cspace/engine"
	"github.com/pthm-cable/cspace/telemetry"
)

// flushTelemetry closes a stats window when one is due: it notifies the
// stats callback, logs, writes the run directory and checks for bookmarks.
func (g *Game) flushTelemetry() {
	tick := g.engine.Tick()
	if !g.collector.ShouldFlush(tick) {
		return
	}

	state := g.engine.State()
	stats := g.collector.Flush(tick, snapshotOf(&state, g.cfg.Engine.MaxNodes))
	perfStats := g.perfCollector.Stats()
	bookmarks := g.bookmarkDetector.Check(stats)

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
		for _, bm := range bookmarks {
			bm.LogBookmark()
		}
	}

	if g.outputManager == nil {
		return
	}
	if err := g.outputManager.WriteWindow(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, tick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
	if err := g.outputManager.WriteLevels(levelsOf(&state, tick)); err != nil {
		slog.Error("failed to write hierarchy", "error", err)
	}
	if err := g.outputManager.WriteBookmarks(bookmarks); err != nil {
		slog.Error("failed to write bookmarks", "error", err)
	}
}

// snapshotOf summarizes a hierarchy for the collector.
func snapshotOf(s *engine.State, maxNodes int) telemetry.Snapshot {
	snap := telemetry.Snapshot{
		Nodes:    s.Nodes,
		MaxNodes: maxNodes,
	}
	s.Walk(func(st *engine.State) {
		snap.Engines++
		snap.HierarchySize += len(st.Nodes)
		snap.MaxDepth = max(snap.MaxDepth, st.Depth)
		snap.TotalLeaves += len(st.Leaves)
		snap.TotalFlowers += len(st.Flowers)
	})
	return snap
}

// levelsOf tallies the hierarchy by depth, shallowest first.
func levelsOf(s *engine.State, windowEnd int64) []telemetry.LevelRecord {
	var (
		levels   []telemetry.LevelRecord
		energies [][]float64
	)
	s.Walk(func(st *engine.State) {
		for len(levels) <= st.Depth {
			levels = append(levels, telemetry.LevelRecord{WindowEnd: windowEnd, Depth: len(levels)})
			energies = append(energies, nil)
		}
		l := &levels[st.Depth]
		l.Engines++
		l.Nodes += len(st.Nodes)
		l.Leaves += len(st.Leaves)
		l.Flowers += len(st.Flowers)
		for _, n := range st.Nodes {
			if n.PureTime() {
				l.PureTime++
			}
			energies[st.Depth] = append(energies[st.Depth], n.Energy)
		}
	})
	for d := range levels {
		if len(energies[d]) > 0 {
			levels[d].MeanEnergy = stat.Mean(energies[d], nil)
		}
	}
	return levels
}
