package systems

import (
	"math"

	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/config"
)

// Growth thresholds shared by both models.
const (
	minGrowCoherence  = 0.1  // Grow fails at or below this coherence
	baseMaxGrowAge    = 20   // Base nodes stop growing at this age
	minBranchEnergy   = 0.2  // Branch requires energy above this
	minBranchAge      = 3    // Branch requires age above this
	plantBranchFactor = 0.7  // Plant branch threshold is d_critical scaled by this
	plantBranchGate   = 0.4  // Plant stochastic branch gate requires energy above this
	flowerChance      = 0.05 // Per-grow flowering probability once eligible
	leafMinEnergy     = 0.3
)

// Bounds is the growth field extent. Positions are clamped to
// [0, Width-1] x [0, Height-1].
type Bounds struct {
	Width, Height int
}

func (b Bounds) clamp(p components.Vector2D) components.Vector2D {
	return p.Clamp(float64(b.Width-1), float64(b.Height-1))
}

// Outcome is the result of a successful grow or branch.
type Outcome struct {
	Node     components.GrowthNode // New child; ID and BornTick are set by the caller
	Leaf     bool                  // A leaf was generated at the child position
	Flowered bool                  // The parent flowered during this growth
}

// Grower implements a growth model. Grow and Branch mutate the parent and
// report false when the node is not eligible. GrowthChance and BranchChance
// return the stochastic gate probabilities the engine draws against.
type Grower interface {
	Tick(n *components.GrowthNode, f Field)
	GrowthChance(n *components.GrowthNode) float64
	BranchChance(n *components.GrowthNode) float64
	CanBranch(n *components.GrowthNode) bool
	Grow(n *components.GrowthNode, f Field, b Bounds, rng RNG) (Outcome, bool)
	Branch(n *components.GrowthNode, f Field, b Bounds, rng RNG) (Outcome, bool)
}

// NewGrower returns the grower for the configured model.
func NewGrower(cfg config.EngineConfig) Grower {
	if cfg.Model == config.ModelBase {
		return &BaseGrowth{cfg: cfg, dir: NewDirectionModel(cfg)}
	}
	return &PlantGrowth{cfg: cfg, dir: NewDirectionModel(cfg)}
}

// link records the parent's position history and derives the child's
// temporal complexity and the parent's cycle depth. Must run before any
// parent distortion change.
func link(parent, child *components.GrowthNode, eps float64) {
	parent.Accumulator = parent.Accumulator.Add(parent.Position)
	child.TemporalComplexity = temporalFromHistory(parent.Accumulator, eps)
	parent.CycleDepth += CycleDepthStep(parent, child, eps)
	child.SetParent(parent.ID)
}

// BaseGrowth follows manifold attention and branches in random directions.
type BaseGrowth struct {
	cfg config.EngineConfig
	dir DirectionModel
}

// Tick is a no-op: the base model has no per-tick extras.
func (g *BaseGrowth) Tick(*components.GrowthNode, Field) {}

// GrowthChance returns growth_prob.
func (g *BaseGrowth) GrowthChance(*components.GrowthNode) float64 { return g.cfg.GrowthProb }

// BranchChance returns branch_prob.
func (g *BaseGrowth) BranchChance(*components.GrowthNode) float64 { return g.cfg.BranchProb }

// CanBranch reports D > d_critical, E > 0.2 and Age > 3.
func (g *BaseGrowth) CanBranch(n *components.GrowthNode) bool {
	return canBranch(n, g.cfg.DCritical)
}

// Grow extends the node along its attention direction.
func (g *BaseGrowth) Grow(n *components.GrowthNode, f Field, b Bounds, rng RNG) (Outcome, bool) {
	if n.Coherence <= minGrowCoherence || n.Age >= baseMaxGrowAge {
		return Outcome{}, false
	}

	e := f.Energy(n.Position)
	step := g.dir.Direction(n, f, rng).Scale(g.cfg.GrowthRate * (0.5 + e))
	pos := b.clamp(n.Position.Add(step))

	child := components.GrowthNode{
		Position:          pos,
		Energy:            e,
		SpatialComplexity: f.SpatialComplexity(n.Position),
		Coherence:         math.Max(0.5, 0.9*n.Coherence),
		Distortion:        0.5 * n.Distortion,
		GrowthDirection:   components.Up,
		StemThickness:     1.0,
		Role:              components.RoleMain,
		WaterLevel:        n.WaterLevel,
	}
	link(n, &child, g.cfg.Epsilon)
	child.Clamp()
	return Outcome{Node: child}, true
}

// Branch spawns a fully coherent child at a random angle and halves the
// parent's distortion.
func (g *BaseGrowth) Branch(n *components.GrowthNode, f Field, b Bounds, rng RNG) (Outcome, bool) {
	if !g.CanBranch(n) {
		return Outcome{}, false
	}

	e := f.Energy(n.Position)
	angle := uniform(rng, 0, 2*math.Pi)
	pos := b.clamp(n.Position.Add(fromAngle(angle, g.cfg.GrowthRate*(0.5+e))))

	child := components.GrowthNode{
		Position:          pos,
		Energy:            e,
		SpatialComplexity: f.SpatialComplexity(n.Position),
		Coherence:         1.0,
		GrowthDirection:   components.Up,
		StemThickness:     1.0,
		Role:              components.RoleMain,
		WaterLevel:        n.WaterLevel,
	}
	link(n, &child, g.cfg.Epsilon)
	n.Distortion *= 0.5
	child.Clamp()
	return Outcome{Node: child}, true
}

func canBranch(n *components.GrowthNode, threshold float64) bool {
	return n.Distortion > threshold && n.Energy > minBranchEnergy && n.Age > minBranchAge
}

// PlantGrowth follows tropisms, consumes water, grows leaves and flowers, and
// branches at alternating angles off the parent's growth direction.
type PlantGrowth struct {
	cfg config.EngineConfig
	dir DirectionModel
}

// Tick applies the plant per-tick updates after dynamics: stem thickening,
// water use and uptake, and leaf energy.
func (g *PlantGrowth) Tick(n *components.GrowthNode, f Field) {
	p := g.cfg.Plant
	n.StemThickness = (math.Min(3, float64(n.Age)/10) + 2*n.Energy) / 3
	n.WaterLevel = math.Max(components.MinWater, n.WaterLevel-p.WaterConsumption*(1+0.5*n.Energy))
	n.WaterLevel = math.Min(components.MaxWater, n.WaterLevel+f.WaterInflow(n.Position))
	n.Energy += float64(n.LeafCount) * p.LeafEnergyContribution
	n.Clamp()
}

// GrowthChance favors well-watered, energetic nodes and halves for old ones.
func (g *PlantGrowth) GrowthChance(n *components.GrowthNode) float64 {
	c := g.cfg.GrowthProb * n.WaterLevel * n.Energy
	if n.Age > 30 {
		c *= 0.5
	}
	return c
}

// BranchChance boosts middle-aged nodes and is zero for low-energy ones.
func (g *PlantGrowth) BranchChance(n *components.GrowthNode) float64 {
	if n.Energy <= plantBranchGate {
		return 0
	}
	c := g.cfg.BranchProb
	if n.Age >= 10 && n.Age <= 25 {
		c *= 1.5
	}
	return c
}

// CanBranch reports D > 0.7*d_critical, E > 0.2 and Age > 3.
func (g *PlantGrowth) CanBranch(n *components.GrowthNode) bool {
	return canBranch(n, g.cfg.DCritical*plantBranchFactor)
}

// Grow extends the node along its tropism direction. Draw order: direction,
// leaf, flower.
func (g *PlantGrowth) Grow(n *components.GrowthNode, f Field, b Bounds, rng RNG) (Outcome, bool) {
	p := g.cfg.Plant
	if n.Coherence <= minGrowCoherence || n.WaterLevel < p.WaterThreshold {
		return Outcome{}, false
	}

	e := f.Energy(n.Position)
	dir := g.dir.Direction(n, f, rng)
	length := g.cfg.GrowthRate * e * (1 - math.Min(float64(n.Age), 30)/40)
	pos := b.clamp(n.Position.Add(dir.Scale(length)))

	n.WaterLevel = math.Max(components.MinWater, n.WaterLevel-p.WaterConsumption)

	child := components.GrowthNode{
		Position:          pos,
		Energy:            e,
		SpatialComplexity: f.SpatialComplexity(n.Position),
		Coherence:         math.Max(0.5, 0.95*n.Coherence),
		Distortion:        0.7 * n.Distortion,
		GrowthDirection:   dir,
		StemThickness:     0.9 * n.StemThickness,
		Role:              n.Role,
		WaterLevel:        0.9 * n.WaterLevel,
	}
	link(n, &child, g.cfg.Epsilon)

	var out Outcome
	if rng.Float64() < p.LeafGenerationProbability && n.Energy > leafMinEnergy {
		child.LeafCount++
		child.Energy += p.LeafEnergyContribution
		out.Leaf = true
	}
	if rng.Float64() < flowerChance && n.Stage() == components.StageMature &&
		n.Energy > p.FlowerEnergyThreshold && !n.HasFlowered {
		n.HasFlowered = true
		out.Flowered = true
	}

	child.Clamp()
	out.Node = child
	return out, true
}

// Branch grows a lateral off the parent's direction, alternating sides.
func (g *PlantGrowth) Branch(n *components.GrowthNode, f Field, b Bounds, rng RNG) (Outcome, bool) {
	if !g.CanBranch(n) {
		return Outcome{}, false
	}

	side := -n.BranchSide
	if side == 0 {
		side = randomSide(rng)
	}
	v := g.cfg.Plant.BranchAngleVariance
	angle := float64(side) * (math.Pi/4 + uniform(rng, -v, v))
	dir := rotate(n.GrowthDirection.Normalize(), angle).Normalize()
	pos := b.clamp(n.Position.Add(dir.Scale(g.cfg.GrowthRate * 0.7 * n.Energy)))

	role := components.RoleTerminal
	if n.Role == components.RoleMain {
		role = components.RoleLateral
	}
	child := components.GrowthNode{
		Position:          pos,
		Energy:            0.7 * n.Energy,
		SpatialComplexity: f.SpatialComplexity(pos),
		Coherence:         1.0,
		GrowthDirection:   dir,
		StemThickness:     0.6 * n.StemThickness,
		Role:              role,
		WaterLevel:        0.8 * n.WaterLevel,
	}
	link(n, &child, g.cfg.Epsilon)
	n.Distortion *= 0.5
	n.BranchSide = side
	child.Clamp()
	return Outcome{Node: child}, true
}
