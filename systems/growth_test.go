package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/config"
)

var testBounds = Bounds{Width: 800, Height: 600}

func engineConfig(model string) config.EngineConfig {
	cfg := config.Defaults().Engine
	cfg.Model = model
	return cfg
}

func TestNewGrower(t *testing.T) {
	if _, ok := NewGrower(engineConfig(config.ModelBase)).(*BaseGrowth); !ok {
		t.Error("base model should return *BaseGrowth")
	}
	if _, ok := NewGrower(engineConfig(config.ModelPlant)).(*PlantGrowth); !ok {
		t.Error("plant model should return *PlantGrowth")
	}
}

func TestBaseGrowth_Grow(t *testing.T) {
	g := NewGrower(engineConfig(config.ModelBase))
	n := components.NewSeed(components.Vec(400, 300), 0.5)
	n.ID = 7
	n.Distortion = 2

	out, ok := g.Grow(&n, Field{MaxEnergyDistance: 200}, testBounds, noJitter)
	if !ok {
		t.Fatal("fresh seed should grow")
	}
	child := out.Node

	// Empty field: attention gives Up, step = growth_rate * (0.5 + 0.3).
	if want := components.Vec(400, 296); child.Position.Distance(want) > 1e-9 {
		t.Errorf("child at %+v, want %+v", child.Position, want)
	}
	if child.Coherence != 0.9 {
		t.Errorf("child H = %v, want 0.9", child.Coherence)
	}
	if child.Distortion != 1 {
		t.Errorf("child D = %v, want 1", child.Distortion)
	}
	if pid, ok := child.Parent(); !ok || pid != 7 {
		t.Errorf("child parent = %d/%v, want 7", pid, ok)
	}
	if n.Accumulator != n.Position {
		t.Errorf("parent accumulator = %+v, want its position", n.Accumulator)
	}
	if want := math.Log(500 + 1e-9); math.Abs(child.TemporalComplexity-want) > 1e-9 {
		t.Errorf("child T = %v, want ln(|C_t|) = %v", child.TemporalComplexity, want)
	}
	if n.CycleDepth <= 0 {
		t.Errorf("parent cycle depth should grow, got %v", n.CycleDepth)
	}
}

func TestBaseGrowth_GrowRefused(t *testing.T) {
	g := NewGrower(engineConfig(config.ModelBase))
	tests := []struct {
		name  string
		setup func(*components.GrowthNode)
	}{
		{"low coherence", func(n *components.GrowthNode) { n.Coherence = 0.1 }},
		{"too old", func(n *components.GrowthNode) { n.Age = 20 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := components.NewSeed(components.Vec(400, 300), 0.5)
			tt.setup(&n)
			if _, ok := g.Grow(&n, Field{}, testBounds, noJitter); ok {
				t.Error("grow should be refused")
			}
			if n.Accumulator != (components.Vector2D{}) {
				t.Error("refused grow must not touch the parent")
			}
		})
	}
}

func TestBaseGrowth_Branch(t *testing.T) {
	g := NewGrower(engineConfig(config.ModelBase))
	n := components.NewSeed(components.Vec(400, 300), 0.5)
	n.Distortion = 20
	n.Age = 4

	out, ok := g.Branch(&n, Field{MaxEnergyDistance: 200}, testBounds, noJitter)
	if !ok {
		t.Fatal("distorted, energetic, old enough node should branch")
	}
	if out.Node.Coherence != 1 {
		t.Errorf("branch child H = %v, want 1", out.Node.Coherence)
	}
	if n.Distortion != 10 {
		t.Errorf("parent D = %v, want halved to 10", n.Distortion)
	}

	young := components.NewSeed(components.Vec(400, 300), 0.5)
	young.Distortion = 20
	young.Age = 3
	if g.CanBranch(&young) {
		t.Error("age 3 should not be able to branch")
	}
}

func TestPlantGrowth_Chances(t *testing.T) {
	g := NewGrower(engineConfig(config.ModelPlant))
	tests := []struct {
		name           string
		energy         float64
		age            int
		growth, branch float64
	}{
		{"young", 1, 5, 0.3, 0.1},
		{"middle aged boost", 1, 12, 0.3, 0.15},
		{"old halves growth", 1, 31, 0.15, 0.1},
		{"low energy gate", 0.4, 12, 0.12, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := components.GrowthNode{Energy: tt.energy, Age: tt.age, WaterLevel: 1}
			if got := g.GrowthChance(&n); math.Abs(got-tt.growth) > 1e-9 {
				t.Errorf("GrowthChance = %v, want %v", got, tt.growth)
			}
			if got := g.BranchChance(&n); math.Abs(got-tt.branch) > 1e-9 {
				t.Errorf("BranchChance = %v, want %v", got, tt.branch)
			}
		})
	}
}

func TestPlantGrowth_GrowNeedsWater(t *testing.T) {
	g := NewGrower(engineConfig(config.ModelPlant))
	n := components.NewSeed(components.Vec(400, 300), 0.5)
	n.WaterLevel = 0.15

	if _, ok := g.Grow(&n, Field{}, testBounds, noJitter); ok {
		t.Error("grow should be refused below the water threshold")
	}
}

func TestPlantGrowth_LeafAndFlower(t *testing.T) {
	g := NewGrower(engineConfig(config.ModelPlant))
	f := Field{MaxEnergyDistance: 200}
	n := components.NewSeed(components.Vec(400, 300), 1)
	n.Age = 20 // mature
	n.WaterLevel = 1

	// Every draw is 0, so both leaf and flower gates pass.
	always := fixedRNG{f: 0}
	out, ok := g.Grow(&n, f, testBounds, always)
	if !ok {
		t.Fatal("expected growth")
	}
	if !out.Leaf || out.Node.LeafCount != 1 {
		t.Errorf("expected a leaf on the child, got leaf=%v count=%d", out.Leaf, out.Node.LeafCount)
	}
	if !out.Flowered || !n.HasFlowered {
		t.Error("mature energetic parent should flower")
	}
	if math.Abs(n.WaterLevel-0.99) > 1e-9 {
		t.Errorf("parent water = %v, want 0.99", n.WaterLevel)
	}

	out, _ = g.Grow(&n, f, testBounds, always)
	if out.Flowered {
		t.Error("a node flowers at most once")
	}
}

func TestPlantGrowth_BranchAlternates(t *testing.T) {
	g := NewGrower(engineConfig(config.ModelPlant))
	f := Field{MaxEnergyDistance: 200}
	n := components.NewSeed(components.Vec(400, 300), 1)
	n.Age = 10
	n.Distortion = 20

	rng := fixedRNG{f: 0.5, n: 1}
	first, ok := g.Branch(&n, f, testBounds, rng)
	if !ok {
		t.Fatal("expected first branch")
	}
	if n.BranchSide != 1 {
		t.Fatalf("first side = %d, want +1", n.BranchSide)
	}

	n.Distortion = 20
	second, ok := g.Branch(&n, f, testBounds, rng)
	if !ok {
		t.Fatal("expected second branch")
	}
	if n.BranchSide != -1 {
		t.Errorf("second side = %d, want -1", n.BranchSide)
	}

	// Main stem grows up, so the sides land on opposite x.
	if (first.Node.Position.X-n.Position.X)*(second.Node.Position.X-n.Position.X) >= 0 {
		t.Errorf("branches not on opposite sides: %+v %+v", first.Node.Position, second.Node.Position)
	}
	if first.Node.Role != components.RoleLateral {
		t.Errorf("branch off main = %s, want lateral", first.Node.Role)
	}
	if math.Abs(first.Node.Energy-0.7) > 1e-9 {
		t.Errorf("branch energy = %v, want 0.7", first.Node.Energy)
	}

	lateral := first.Node
	lateral.Age = 10
	lateral.Distortion = 20
	lateral.Energy = 1
	out, ok := g.Branch(&lateral, f, testBounds, rng)
	if !ok || out.Node.Role != components.RoleTerminal {
		t.Errorf("branch off lateral should be terminal, got %s", out.Node.Role)
	}
}

func TestBounds_Clamp(t *testing.T) {
	g := NewGrower(engineConfig(config.ModelBase))
	n := components.NewSeed(components.Vec(10, 0), 0.5)

	out, ok := g.Grow(&n, Field{MaxEnergyDistance: 200}, testBounds, noJitter)
	if !ok {
		t.Fatal("expected growth")
	}
	if out.Node.Position.Y != 0 {
		t.Errorf("child y = %v, want clamped to 0", out.Node.Position.Y)
	}
}

func TestNewNode_SamplesParentPosition(t *testing.T) {
	// Light above the parent, so E differs between parent and child.
	f := Field{
		Resources: []components.ResourcePoint{
			res(400, 150, 0.2, components.ResourceLight),
			res(430, 300, 0.5, components.ResourceObstacle),
		},
		MaxEnergyDistance: 200,
	}
	parentPos := components.Vec(400, 300)
	wantE := f.Energy(parentPos)
	wantS := f.SpatialComplexity(parentPos)

	tests := []struct {
		name  string
		model string
		act   func(Grower, *components.GrowthNode) (Outcome, bool)
	}{
		{"base grow", config.ModelBase, func(g Grower, n *components.GrowthNode) (Outcome, bool) {
			return g.Grow(n, f, testBounds, noJitter)
		}},
		{"base branch", config.ModelBase, func(g Grower, n *components.GrowthNode) (Outcome, bool) {
			return g.Branch(n, f, testBounds, noJitter)
		}},
		{"plant grow", config.ModelPlant, func(g Grower, n *components.GrowthNode) (Outcome, bool) {
			// 0.99 keeps the leaf and flower gates shut.
			return g.Grow(n, f, testBounds, fixedRNG{f: 0.99})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := components.NewSeed(parentPos, 1)
			n.WaterLevel = 1
			n.Age = 5
			n.Distortion = 20

			out, ok := tt.act(NewGrower(engineConfig(tt.model)), &n)
			if !ok {
				t.Fatal("expected a new node")
			}
			if out.Node.Position == parentPos {
				t.Fatal("child should move away from the parent")
			}
			if math.Abs(out.Node.Energy-wantE) > 1e-9 {
				t.Errorf("child E = %v, want %v sampled at the parent (child position gives %v)",
					out.Node.Energy, wantE, f.Energy(out.Node.Position))
			}
			if math.Abs(out.Node.SpatialComplexity-wantS) > 1e-9 {
				t.Errorf("child S = %v, want %v sampled at the parent", out.Node.SpatialComplexity, wantS)
			}
		})
	}
}

func TestCanBranch_Thresholds(t *testing.T) {
	cfg := engineConfig(config.ModelBase)
	const above = 1e-6

	tests := []struct {
		name      string
		model     string
		threshold float64
	}{
		{"base", config.ModelBase, cfg.DCritical},
		{"plant", config.ModelPlant, cfg.DCritical * plantBranchFactor},
	}
	cases := []struct {
		name   string
		d, e   float64
		age    int
		branch bool
	}{
		{"distortion at threshold", 0, 0.5, 10, false},
		{"distortion just above", above, 0.5, 10, true},
		{"energy at 0.2", 1, 0.2, 10, false},
		{"energy just above 0.2", 1, 0.2 + above, 10, true},
		{"age 3", 1, 0.5, 3, false},
		{"age 4", 1, 0.5, 4, true},
	}
	for _, tt := range tests {
		g := NewGrower(engineConfig(tt.model))
		for _, c := range cases {
			t.Run(tt.name+"/"+c.name, func(t *testing.T) {
				n := components.GrowthNode{Distortion: tt.threshold + c.d, Energy: c.e, Age: c.age}
				if got := g.CanBranch(&n); got != c.branch {
					t.Errorf("CanBranch(D=%v, E=%v, age=%d) = %v, want %v",
						n.Distortion, n.Energy, n.Age, got, c.branch)
				}
			})
		}
	}
}
