package engine

import (
	"errors"
	"math/rand"
	"reflect"
	"sync"
	"testing"

	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/config"
	"github.com/pthm-cable/cspace/telemetry"
)

const (
	testW = 800
	testH = 600
)

var seedPos = components.Vec(400, 550)

func newTestEngine(t *testing.T, cfg config.EngineConfig, seed int64) *Engine {
	t.Helper()
	e, err := New(cfg, testW, testH, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// scenarioEngine builds an engine seeded with the default scenario resources.
func scenarioEngine(t *testing.T, cfg config.EngineConfig, seed int64) *Engine {
	t.Helper()
	e := newTestEngine(t, cfg, seed)
	for _, r := range config.Defaults().Scenario.Resources {
		kind, err := components.ParseResourceKind(r.Kind)
		if err != nil {
			t.Fatal(err)
		}
		if err := e.AddResource(components.Vec(r.X, r.Y), r.Intensity, kind); err != nil {
			t.Fatal(err)
		}
	}
	e.Initialize(seedPos, 0.5)
	return e
}

// collapsingEngine keeps its seed inside an obstacle gradient with a tiny
// singularity threshold, so the seed collapses every tick.
func collapsingEngine(t *testing.T, parallel bool, seed int64) *Engine {
	t.Helper()
	cfg := config.Defaults().Engine
	cfg.Alpha = 1
	cfg.Beta = 1
	cfg.DCritical = 1e-6
	cfg.MaxDepth = 1
	cfg.ParallelChildren = parallel

	e := newTestEngine(t, cfg, seed)
	if err := e.AddResource(components.Vec(400, 500), 0.3, components.ResourceObstacle); err != nil {
		t.Fatal(err)
	}
	e.Initialize(seedPos, 0.5)
	return e
}

// eventLog collects events. Safe for parallel children.
type eventLog struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (l *eventLog) Record(ev telemetry.Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) count(depth int, types ...telemetry.EventType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, ev := range l.events {
		if ev.Depth != depth {
			continue
		}
		for _, typ := range types {
			if ev.Type == typ {
				n++
			}
		}
	}
	return n
}

func TestNew_Validation(t *testing.T) {
	good := config.Defaults().Engine
	badModel := good
	badModel.Model = "tree"
	badNodes := good
	badNodes.MaxNodes = 0

	tests := []struct {
		name string
		cfg  config.EngineConfig
		w, h int
		rng  *rand.Rand
	}{
		{"unknown model", badModel, testW, testH, rand.New(rand.NewSource(1))},
		{"zero max nodes", badNodes, testW, testH, rand.New(rand.NewSource(1))},
		{"zero width", good, 0, testH, rand.New(rand.NewSource(1))},
		{"nil rng", good, testW, testH, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.w, tt.h, tt.rng)
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestAddResource_Validation(t *testing.T) {
	e := newTestEngine(t, config.Defaults().Engine, 1)
	p := components.Vec(10, 10)

	if err := e.AddResource(p, 0, components.ResourceLight); !errors.Is(err, ErrInvalidResource) {
		t.Errorf("zero intensity: expected ErrInvalidResource, got %v", err)
	}
	if err := e.AddResource(p, 1.5, components.ResourceLight); !errors.Is(err, ErrInvalidResource) {
		t.Errorf("intensity 1.5: expected ErrInvalidResource, got %v", err)
	}
	if err := e.AddResource(p, 0.5, components.ResourceKind(9)); !errors.Is(err, components.ErrUnknownResourceKind) {
		t.Errorf("bad kind: expected ErrUnknownResourceKind, got %v", err)
	}
	if err := e.AddResource(p, 1, components.ResourceWater); err != nil {
		t.Fatalf("valid resource rejected: %v", err)
	}
	if got := len(e.State().Resources); got != 1 {
		t.Errorf("resources = %d, want 1", got)
	}
}

func TestInitialize(t *testing.T) {
	e := newTestEngine(t, config.Defaults().Engine, 1)
	e.Initialize(seedPos, 0.5)

	if e.NodeCount() != 1 {
		t.Fatalf("nodes = %d, want 1", e.NodeCount())
	}
	seed, ok := e.Node(0)
	if !ok {
		t.Fatal("seed should have ID 0")
	}
	if _, has := seed.Parent(); has {
		t.Error("seed should have no parent")
	}
	if seed.Position != seedPos || seed.Coherence != 1 {
		t.Errorf("unexpected seed %+v", seed)
	}
	if seed.Energy != 0.5 || seed.Distortion != 0 || seed.Age != 0 {
		t.Errorf("seed E=%v D=%v age=%d, want 0.5, 0, 0", seed.Energy, seed.Distortion, seed.Age)
	}

	if _, err := e.ForceGrow(0); err != nil {
		t.Fatalf("ForceGrow: %v", err)
	}
	e.Initialize(seedPos, 0.5)
	if e.NodeCount() != 1 || e.ChildCount() != 0 {
		t.Errorf("re-initialize should leave one node and no children, got %d/%d", e.NodeCount(), e.ChildCount())
	}
	if _, ok := e.Node(2); !ok {
		t.Error("IDs should continue across Initialize")
	}
}

func TestInitialize_Postconditions(t *testing.T) {
	tests := []struct {
		name   string
		energy float64
		warmup int
	}{
		{"fresh engine", 0.5, 0},
		{"after a run", 0.9, 25},
		{"low energy", 0.1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := scenarioEngine(t, config.Defaults().Engine, 4)
			for i := 0; i < tt.warmup; i++ {
				e.Update()
			}
			e.Initialize(seedPos, tt.energy)

			st := e.State()
			if len(st.Nodes) != 1 || len(st.Children) != 0 {
				t.Fatalf("nodes=%d children=%d, want 1 and 0", len(st.Nodes), len(st.Children))
			}
			seed := st.Nodes[0]
			if seed.Position != seedPos || seed.Energy != tt.energy ||
				seed.Coherence != 1 || seed.Distortion != 0 {
				t.Errorf("seed P=%+v E=%v H=%v D=%v", seed.Position, seed.Energy, seed.Coherence, seed.Distortion)
			}
			if len(st.Resources) != len(config.Defaults().Scenario.Resources) {
				t.Errorf("resources = %d, Initialize must keep them", len(st.Resources))
			}

			// The seed's age counts ticks since Initialize.
			for k := 1; k <= 30; k++ {
				e.Update()
				n, ok := e.Node(seed.ID)
				if !ok {
					t.Fatalf("seed evicted at tick %d", k)
				}
				if n.Age != k {
					t.Fatalf("seed age %d after %d ticks", n.Age, k)
				}
			}
		})
	}
}

func TestUpdate_Invariants(t *testing.T) {
	cfg := config.Defaults().Engine
	cfg.MaxNodes = 80
	e := scenarioEngine(t, cfg, 7)

	prev := e.NodeCount()
	for tick := 0; tick < 400; tick++ {
		below := e.Update()
		count := e.NodeCount()

		if count > cfg.MaxNodes {
			t.Fatalf("tick %d: %d nodes exceeds max %d", tick, count, cfg.MaxNodes)
		}
		if count-prev > maxNewPerTick {
			t.Fatalf("tick %d: %d nodes added, max %d", tick, count-prev, maxNewPerTick)
		}
		if below != (count < cfg.MaxNodes) {
			t.Fatalf("tick %d: Update returned %v with %d nodes", tick, below, count)
		}
		prev = count

		st := e.State()
		st.Walk(func(s *State) { checkState(t, s) })
		if t.Failed() {
			t.Fatalf("invariants broken at tick %d", tick)
		}
		if !below {
			break
		}
	}
}

func checkState(t *testing.T, s *State) {
	t.Helper()
	ids := make(map[uint64]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if ids[n.ID] {
			t.Errorf("depth %d: duplicate node ID %d", s.Depth, n.ID)
		}
		ids[n.ID] = true

		if n.Energy < components.MinEnergy || n.Energy > components.MaxEnergy {
			t.Errorf("node %d: energy %v out of range", n.ID, n.Energy)
		}
		if n.SpatialComplexity < components.MinSpatial || n.SpatialComplexity > components.MaxSpatial {
			t.Errorf("node %d: spatial complexity %v out of range", n.ID, n.SpatialComplexity)
		}
		if n.WaterLevel < components.MinWater || n.WaterLevel > components.MaxWater {
			t.Errorf("node %d: water %v out of range", n.ID, n.WaterLevel)
		}
		if n.Coherence < 0 || n.Distortion < 0 {
			t.Errorf("node %d: negative H=%v or D=%v", n.ID, n.Coherence, n.Distortion)
		}
		if n.Position.X < 0 || n.Position.X > testW-1 || n.Position.Y < 0 || n.Position.Y > testH-1 {
			t.Errorf("node %d: position %+v out of bounds", n.ID, n.Position)
		}
		if want := int(s.Tick - n.BornTick); n.Age != want {
			t.Errorf("depth %d node %d: age %d, want tick %d - born %d", s.Depth, n.ID, n.Age, s.Tick, n.BornTick)
		}
	}

	// Paths only list live children, and every live child is listed under
	// its parent. Evicted parents may still key their survivors.
	for _, children := range s.Paths {
		for _, c := range children {
			if !ids[c] {
				t.Errorf("depth %d: path to dead child %d", s.Depth, c)
			}
		}
	}
	for _, n := range s.Nodes {
		pid, ok := n.Parent()
		if !ok {
			continue
		}
		found := false
		for _, c := range s.Paths[pid] {
			if c == n.ID {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("depth %d: node %d missing from paths of %d", s.Depth, n.ID, pid)
		}
	}
}

func TestUpdate_EventsMatchNewNodes(t *testing.T) {
	cfg := config.Defaults().Engine
	cfg.MaxNodes = 60
	e := scenarioEngine(t, cfg, 3)
	log := &eventLog{}
	e.SetRecorder(log)

	for i := 0; i < 300; i++ {
		if !e.Update() {
			break
		}
	}

	grown := log.count(0, telemetry.EventGrowth, telemetry.EventBranch)
	if grown != e.NodeCount()-1 {
		t.Errorf("%d growth/branch events for %d non-seed nodes", grown, e.NodeCount()-1)
	}
	if leaves := log.count(0, telemetry.EventLeaf); leaves != len(e.State().Leaves) {
		t.Errorf("%d leaf events, %d leaves recorded", leaves, len(e.State().Leaves))
	}
}

func TestUpdate_Reproducible(t *testing.T) {
	cfg := config.Defaults().Engine
	cfg.MaxNodes = 120

	a := scenarioEngine(t, cfg, 42)
	b := scenarioEngine(t, cfg, 42)
	for i := 0; i < 200; i++ {
		a.Update()
		b.Update()
	}
	if !reflect.DeepEqual(a.State(), b.State()) {
		t.Error("same seed and config should give identical states")
	}
}

func TestCollapse_SpawnsChildEngine(t *testing.T) {
	e := collapsingEngine(t, false, 5)
	log := &eventLog{}
	e.SetRecorder(log)

	const ticks = 20
	for i := 0; i < ticks; i++ {
		e.Update()
	}

	// The seed collapses every tick and cannot grow once coherence is gone.
	if e.ChildCount() != ticks {
		t.Errorf("children = %d, want %d", e.ChildCount(), ticks)
	}
	if got := log.count(0, telemetry.EventCollapse); got != ticks {
		t.Errorf("collapse events = %d, want %d", got, ticks)
	}

	seed, ok := e.Node(0)
	if !ok {
		t.Fatal("collapsed seed should stay live")
	}
	if !seed.PureTime() {
		t.Errorf("collapsed seed should be pure time, got H=%v D=%v", seed.Coherence, seed.Distortion)
	}

	st := e.State()
	if st.MaxDepth() != 1 {
		t.Errorf("max depth = %d, want 1", st.MaxDepth())
	}
	for _, c := range st.Children {
		if c.Depth != 1 {
			t.Errorf("child depth = %d, want 1", c.Depth)
		}
		if root, ok := c.Node(0); !ok || root.Position != seedPos {
			t.Error("child engine should be seeded at the collapse point")
		}
	}
}

func TestUpdateChildren_ParallelMatchesSequential(t *testing.T) {
	seq := collapsingEngine(t, false, 11)
	par := collapsingEngine(t, true, 11)

	for i := 0; i < 40; i++ {
		seq.Update()
		par.Update()
	}
	if seq.ChildCount() < parallelThreshold {
		t.Fatalf("need at least %d children to exercise the fan-out, got %d", parallelThreshold, seq.ChildCount())
	}
	if !reflect.DeepEqual(seq.State(), par.State()) {
		t.Error("parallel child updates diverged from sequential")
	}
}

func TestForce(t *testing.T) {
	cfg := config.Defaults().Engine
	cfg.MaxNodes = 3
	e := newTestEngine(t, cfg, 1)
	e.Initialize(seedPos, 0.5)

	if _, err := e.ForceGrow(99); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("unknown node: expected ErrUnknownNode, got %v", err)
	}
	if _, err := e.ForceBranch(0); !errors.Is(err, ErrNoGrowth) {
		t.Errorf("undistorted seed branch: expected ErrNoGrowth, got %v", err)
	}
	if _, err := e.ForceBranchEligible(); !errors.Is(err, ErrNoGrowth) {
		t.Errorf("no eligible node: expected ErrNoGrowth, got %v", err)
	}

	child, err := e.ForceGrowStrongest()
	if err != nil {
		t.Fatalf("ForceGrowStrongest: %v", err)
	}
	if pid, ok := child.Parent(); !ok || pid != 0 {
		t.Errorf("forced child parent = %d/%v, want seed", pid, ok)
	}
	if _, err := e.ForceGrow(0); err != nil {
		t.Fatalf("second ForceGrow: %v", err)
	}

	if e.Tick() != 0 {
		t.Errorf("forced growth advanced the tick to %d", e.Tick())
	}
	if got := e.Children(0); len(got) != 2 {
		t.Errorf("seed children = %v, want 2", got)
	}

	if _, err := e.ForceGrow(0); !errors.Is(err, ErrAtCapacity) {
		t.Errorf("full engine: expected ErrAtCapacity, got %v", err)
	}
	if e.Update() {
		t.Error("Update should report a full engine")
	}
}

func TestState_DeepCopy(t *testing.T) {
	e := newTestEngine(t, config.Defaults().Engine, 1)
	e.Initialize(seedPos, 0.5)
	if _, err := e.ForceGrow(0); err != nil {
		t.Fatal(err)
	}

	st := e.State()
	st.Nodes[0].Energy = 99
	st.Paths[0][0] = 1234
	st.Nodes = append(st.Nodes, components.GrowthNode{ID: 77})

	seed, _ := e.Node(0)
	if seed.Energy == 99 {
		t.Error("mutating State changed engine nodes")
	}
	if e.Children(0)[0] == 1234 {
		t.Error("mutating State changed engine paths")
	}
	if e.NodeCount() != 2 {
		t.Errorf("node count = %d, want 2", e.NodeCount())
	}
}

func TestPerf_TimesNestedLevels(t *testing.T) {
	tests := []struct {
		name     string
		parallel bool
	}{
		{"sequential", false},
		{"parallel", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := collapsingEngine(t, tt.parallel, 5)
			perf := telemetry.NewPerfCollector(10)
			e.SetPerf(perf)

			for i := 0; i < 5; i++ {
				e.Update()
			}

			s := perf.Stats()
			if s.Ticks != 5 {
				t.Errorf("perf ticks = %d, want one per root update", s.Ticks)
			}
			if got := s.Levels(); len(got) != 1 || got[0] != 1 {
				t.Errorf("timed levels = %v, want [1]", got)
			}
			if _, ok := s.PhaseAvg[telemetry.PhaseChildren]; !ok {
				t.Error("root children phase not timed")
			}
		})
	}
}
