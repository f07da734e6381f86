// Package engine runs the growth simulation: per-tick node dynamics, capped
// growth and branching, singularity collapse into nested child engines, and
// read-only state export.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/config"
	"github.com/pthm-cable/cspace/systems"
	"github.com/pthm-cable/cspace/telemetry"
)

var (
	// ErrUnknownNode is returned when a node ID is not live in the engine.
	ErrUnknownNode = errors.New("unknown node")
	// ErrAtCapacity is returned when the engine already holds max_nodes nodes.
	ErrAtCapacity = errors.New("engine at capacity")
	// ErrNoGrowth is returned when the chosen node is not eligible to grow or branch.
	ErrNoGrowth = errors.New("no growth")
	// ErrInvalidResource is returned for resources with intensity outside (0, 1].
	ErrInvalidResource = errors.New("invalid resource")
)

// maxNewPerTick caps new nodes added by one Update.
const maxNewPerTick = 3

// Recorder receives telemetry events. Implementations must be safe for
// concurrent use when parallel_children is enabled.
type Recorder interface {
	Record(ev telemetry.Event)
}

// Engine owns one level of the growth hierarchy. It is not safe for
// concurrent use; child engines are exclusively owned by their parent.
type Engine struct {
	cfg    config.EngineConfig
	bounds systems.Bounds
	rng    *rand.Rand
	depth  int

	field    systems.Field
	dynamics systems.Dynamics
	grower   systems.Grower

	nodes  []components.GrowthNode
	index  map[uint64]int      // Node ID -> position in nodes
	paths  map[uint64][]uint64 // Parent ID -> child IDs in node order
	tick   int64
	nextID uint64

	children []*Engine
	leaves   []components.Vector2D
	flowers  []components.Vector2D

	recorder Recorder
	perf     *telemetry.PerfCollector
	logger   *slog.Logger
}

// New creates an empty engine over a width x height field. cfg is validated
// here; rng is owned by the engine from now on.
func New(cfg config.EngineConfig, width, height int, rng *rand.Rand) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: field size %dx%d must be positive", config.ErrInvalidConfig, width, height)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", config.ErrInvalidConfig)
	}
	return newEngine(cfg, systems.Bounds{Width: width, Height: height}, rng, 0), nil
}

func newEngine(cfg config.EngineConfig, bounds systems.Bounds, rng *rand.Rand, depth int) *Engine {
	return &Engine{
		cfg:    cfg,
		bounds: bounds,
		rng:    rng,
		depth:  depth,
		field:  systems.Field{MaxEnergyDistance: cfg.MaxEnergyDistance},
		dynamics: systems.Dynamics{
			Alpha:   cfg.Alpha,
			Beta:    cfg.Beta,
			Epsilon: cfg.Epsilon,
		},
		grower: systems.NewGrower(cfg),
		index:  make(map[uint64]int),
		paths:  make(map[uint64][]uint64),
		logger: slog.Default(),
	}
}

// SetRecorder attaches a telemetry recorder. Existing and future child
// engines share it.
func (e *Engine) SetRecorder(r Recorder) {
	e.recorder = r
	for _, c := range e.children {
		c.SetRecorder(r)
	}
}

// SetLogger replaces the engine's logger. Children inherit it.
func (e *Engine) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	e.logger = l
	for _, c := range e.children {
		c.SetLogger(l)
	}
}

// SetPerf attaches a tick timer. The root engine times its phases; existing
// and future child engines share the timer and report their self time per
// depth.
func (e *Engine) SetPerf(p *telemetry.PerfCollector) {
	e.perf = p
	for _, c := range e.children {
		c.SetPerf(p)
	}
}

// Initialize resets the engine to a single seed node at pos. Nodes, paths,
// child engines and leaf and flower records are cleared; resources, the tick
// counter and the ID sequence are kept.
func (e *Engine) Initialize(pos components.Vector2D, energy float64) {
	seed := components.NewSeed(pos, energy)
	seed.ID = e.allocID()
	seed.BornTick = e.tick

	e.nodes = []components.GrowthNode{seed}
	e.children = nil
	e.leaves = nil
	e.flowers = nil
	e.reindex()
}

// AddResource adds a resource point. Resources are never removed within a run.
func (e *Engine) AddResource(pos components.Vector2D, intensity float64, kind components.ResourceKind) error {
	if !(intensity > 0 && intensity <= 1) {
		return fmt.Errorf("%w: intensity %v outside (0, 1]", ErrInvalidResource, intensity)
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", components.ErrUnknownResourceKind, uint8(kind))
	}
	e.field.Resources = append(e.field.Resources, components.ResourcePoint{
		Position:  pos,
		Intensity: intensity,
		Kind:      kind,
	})
	return nil
}

// Tick returns the number of completed updates.
func (e *Engine) Tick() int64 { return e.tick }

// Depth returns the engine's level in the hierarchy, 0 for the root.
func (e *Engine) Depth() int { return e.depth }

// NodeCount returns the number of live nodes.
func (e *Engine) NodeCount() int { return len(e.nodes) }

// ChildCount returns the number of direct child engines.
func (e *Engine) ChildCount() int { return len(e.children) }

// Config returns the engine configuration.
func (e *Engine) Config() config.EngineConfig { return e.cfg }

// Node returns a copy of the live node with the given ID.
func (e *Engine) Node(id uint64) (components.GrowthNode, bool) {
	i, ok := e.index[id]
	if !ok {
		return components.GrowthNode{}, false
	}
	return e.nodes[i], true
}

// SpatialComplexity samples the engine's field at p.
func (e *Engine) SpatialComplexity(p components.Vector2D) float64 {
	return e.field.SpatialComplexity(p)
}

// Energy samples the engine's light field at p.
func (e *Engine) Energy(p components.Vector2D) float64 {
	return e.field.Energy(p)
}

func (e *Engine) allocID() uint64 {
	id := e.nextID
	e.nextID++
	return id
}

func (e *Engine) reindex() {
	clear(e.index)
	for i := range e.nodes {
		e.index[e.nodes[i].ID] = i
	}
	e.rebuildPaths()
}

func (e *Engine) record(ev telemetry.Event) {
	if e.recorder != nil {
		e.recorder.Record(ev)
	}
}
