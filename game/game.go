// Package game runs a growth session: it owns the engine, applies the
// configured scenario, queues driver intents between ticks, and drives
// telemetry and status logging. It has no graphics dependency; the viewer
// package draws a Game.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/config"
	"github.com/pthm-cable/cspace/engine"
	"github.com/pthm-cable/cspace/telemetry"
)

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool   // Log window stats, perf and bookmarks via slog
	OutputDir      string // CSV and config output (empty = disabled)
	StepsPerUpdate int    // Ticks per Update call (0 = config value)

	// StatsCallback, if set, receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete session state.
type Game struct {
	cfg     *config.Config
	rng     *rand.Rand
	rngSeed int64
	engine  *engine.Engine

	paused         bool
	done           bool // Root engine reached max_nodes
	stepsPerUpdate int
	intents        []Intent
	recorders      fanout // Extra event sinks beyond the collector

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
}

// NewGameWithOptions creates a session from the global config.
func NewGameWithOptions(opts Options) (*Game, error) {
	return NewGameWithConfig(config.Cfg(), opts)
}

// NewGameWithConfig creates a session from an explicit config.
func NewGameWithConfig(cfg *config.Config, opts Options) (*Game, error) {
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = cfg.Simulation.StepsPerUpdate
	}

	g := &Game{
		cfg:              cfg,
		rng:              rand.New(rand.NewSource(opts.Seed)),
		rngSeed:          opts.Seed,
		stepsPerUpdate:   steps,
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize),
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	if err := g.reset(); err != nil {
		om.Close()
		return nil, err
	}
	return g, nil
}

// reset replaces the engine with a fresh one seeded with the scenario.
func (g *Game) reset() error {
	rng := rand.New(rand.NewSource(g.rng.Int63()))
	e, err := engine.New(g.cfg.Engine, g.cfg.Derived.WorldW, g.cfg.Derived.WorldH, rng)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	e.SetRecorder(g.recorder())
	e.SetPerf(g.perfCollector)

	if err := applyScenario(e, g.cfg); err != nil {
		return err
	}
	g.engine = e
	g.done = false
	return nil
}

// AddRecorder attaches an extra event sink, such as an effect system, to the
// current engine and to every engine created by a later reset.
func (g *Game) AddRecorder(r engine.Recorder) {
	g.recorders = append(g.recorders, r)
	g.engine.SetRecorder(g.recorder())
}

func (g *Game) recorder() engine.Recorder {
	if len(g.recorders) == 0 {
		return g.collector
	}
	return append(fanout{g.collector}, g.recorders...)
}

// fanout forwards each event to every recorder in order.
type fanout []engine.Recorder

func (f fanout) Record(ev telemetry.Event) {
	for _, r := range f {
		r.Record(ev)
	}
}

// UpdateHeadless advances the session by stepsPerUpdate ticks, applying
// queued intents first. It reports false once the root engine is full.
func (g *Game) UpdateHeadless() bool {
	g.applyIntents()
	if g.paused {
		return !g.done
	}
	for i := 0; i < g.stepsPerUpdate && !g.done; i++ {
		g.step()
	}
	return !g.done
}

// step runs one engine tick plus logging and telemetry.
func (g *Game) step() {
	more := g.engine.Update()
	tick := g.engine.Tick()

	g.logStatus()
	g.flushTelemetry()

	if !more {
		g.done = true
		g.paused = true
		slog.Info("capacity reached",
			"max_nodes", g.cfg.Engine.MaxNodes,
			"tick", tick,
		)
	}
}

// Engine returns the root engine.
func (g *Game) Engine() *engine.Engine {
	return g.engine
}

// State exports the current hierarchy.
func (g *Game) State() engine.State {
	return g.engine.State()
}

// Config returns the session config.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Tick returns the root engine tick.
func (g *Game) Tick() int64 {
	return g.engine.Tick()
}

// Paused reports whether ticking is suspended.
func (g *Game) Paused() bool {
	return g.paused
}

// Done reports whether the root engine has reached max_nodes.
func (g *Game) Done() bool {
	return g.done
}

// StepsPerUpdate returns the current speed.
func (g *Game) StepsPerUpdate() int {
	return g.stepsPerUpdate
}

// PerfStats returns the rolling tick timing.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// RecordFrame records frame timing for the viewer.
func (g *Game) RecordFrame() {
	g.perfCollector.RecordFrame()
}

// Seed returns the session seed.
func (g *Game) Seed() int64 {
	return g.rngSeed
}

// Unload flushes and closes telemetry output.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// seedPosition returns where the scenario plants its seed.
func seedPosition(cfg *config.Config) components.Vector2D {
	return components.Vec(cfg.Derived.SeedX, cfg.Derived.SeedY)
}
