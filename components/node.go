// Package components defines the data types shared by the growth systems.
package components

// State ranges enforced after every mutation.
const (
	MinEnergy  = 0.1
	MaxEnergy  = 1.5
	MinSpatial = 0.1
	MaxSpatial = 1.0
	MinWater   = 0.1
	MaxWater   = 1.0
)

// GrowthStage is derived from a node's age.
type GrowthStage uint8

const (
	StageSeedling GrowthStage = iota
	StageGrowing
	StageMature
	StageFlowering
)

// String returns the stage name.
func (s GrowthStage) String() string {
	switch s {
	case StageSeedling:
		return "seedling"
	case StageGrowing:
		return "growing"
	case StageMature:
		return "mature"
	case StageFlowering:
		return "flowering"
	}
	return "unknown"
}

// StageForAge maps a tick age to its growth stage.
func StageForAge(age int) GrowthStage {
	switch {
	case age < 5:
		return StageSeedling
	case age < 15:
		return StageGrowing
	case age < 30:
		return StageMature
	default:
		return StageFlowering
	}
}

// BranchRole is the structural role of a node.
type BranchRole uint8

const (
	RoleMain BranchRole = iota
	RoleLateral
	RoleTerminal
)

// String returns the role name.
func (r BranchRole) String() string {
	switch r {
	case RoleMain:
		return "main"
	case RoleLateral:
		return "lateral"
	case RoleTerminal:
		return "terminal"
	}
	return "unknown"
}

// GrowthNode is the mutable per-node state. Base-model engines leave the
// plant fields at their seed values.
type GrowthNode struct {
	ID        uint64
	ParentID  uint64
	HasParent bool // false only for the seed
	BornTick  int64
	Age       int

	Position           Vector2D
	Energy             float64 // [MinEnergy, MaxEnergy]
	Coherence          float64 // >= 0, 1 = fully coherent
	Distortion         float64 // >= 0
	TemporalComplexity float64
	SpatialComplexity  float64 // [MinSpatial, MaxSpatial]

	Accumulator Vector2D // C_t: running sum of positions at each growth step
	CycleDepth  float64  // Metric-weighted path length, non-decreasing

	// Plant attributes
	GrowthDirection Vector2D
	StemThickness   float64
	Role            BranchRole
	WaterLevel      float64 // [MinWater, MaxWater]
	LeafCount       int
	HasFlowered     bool
	BranchSide      int8 // Side of the last branch (-1, +1), 0 = none yet
}

// NewSeed creates a fully coherent, undistorted root node.
func NewSeed(pos Vector2D, energy float64) GrowthNode {
	n := GrowthNode{
		Position:          pos,
		Energy:            energy,
		Coherence:         1.0,
		SpatialComplexity: 0.5,
		GrowthDirection:   Up,
		StemThickness:     1.0,
		Role:              RoleMain,
		WaterLevel:        0.8,
	}
	n.Clamp()
	return n
}

// Stage returns the growth stage for the node's current age.
func (n *GrowthNode) Stage() GrowthStage {
	return StageForAge(n.Age)
}

// Parent returns the parent ID and whether the node has one.
func (n *GrowthNode) Parent() (uint64, bool) {
	return n.ParentID, n.HasParent
}

// SetParent links the node to its parent.
func (n *GrowthNode) SetParent(id uint64) {
	n.ParentID = id
	n.HasParent = true
}

// Clamp enforces the state ranges.
func (n *GrowthNode) Clamp() {
	n.Energy = clamp(n.Energy, MinEnergy, MaxEnergy)
	n.SpatialComplexity = clamp(n.SpatialComplexity, MinSpatial, MaxSpatial)
	n.WaterLevel = clamp(n.WaterLevel, MinWater, MaxWater)
	if n.Coherence < 0 {
		n.Coherence = 0
	}
	if n.Distortion < 0 {
		n.Distortion = 0
	}
	if n.StemThickness < 0 {
		n.StemThickness = 0
	}
	if n.LeafCount < 0 {
		n.LeafCount = 0
	}
}

// PureTime reports whether the node has collapsed into the terminal
// zero-coherence state.
func (n *GrowthNode) PureTime() bool {
	return n.Coherence == 0 && n.Distortion == 0
}
