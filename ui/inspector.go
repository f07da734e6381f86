package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cspace/components"
)

// StageColors maps growth stages to stem colors.
var StageColors = map[components.GrowthStage]rl.Color{
	components.StageSeedling:  {R: 60, G: 179, B: 113, A: 255},
	components.StageGrowing:   {R: 34, G: 139, B: 34, A: 255},
	components.StageMature:    {R: 46, G: 139, B: 87, A: 255},
	components.StageFlowering: {R: 219, G: 112, B: 147, A: 255},
}

// NodeView is the data an inspector panel reads.
type NodeView struct {
	Node       components.GrowthNode
	Tick       int64
	NodeCount  int
	Depth      int
	Singular   bool // Distortion above d_critical this frame
	ChildCount int  // Children in the path tree
}

func view(data any) *NodeView {
	v, _ := data.(*NodeView)
	return v
}

func nodeField(id, label string, get func(*components.GrowthNode) float32) FieldDescriptor {
	return FieldDescriptor{
		ID:     id,
		Label:  label,
		Widget: WidgetText,
		Format: "%.3f",
		Getter: func(d any) float32 { return get(&view(d).Node) },
	}
}

// NodePanel describes the node inspector.
func NodePanel() PanelDescriptor {
	return PanelDescriptor{
		ID:     "node",
		Title:  "Node",
		Width:  230,
		Anchor: AnchorTopRight,
		Sections: []SectionDescriptor{
			{
				ID: "identity",
				Fields: []FieldDescriptor{
					{ID: "id", Label: "ID", Widget: WidgetText, TextGetter: func(d any) string {
						v := view(d)
						if p, ok := v.Node.Parent(); ok {
							return fmt.Sprintf("%d <- %d", v.Node.ID, p)
						}
						return fmt.Sprintf("%d (seed)", v.Node.ID)
					}},
					{ID: "age", Label: "Age", Widget: WidgetText, TextGetter: func(d any) string {
						n := &view(d).Node
						return fmt.Sprintf("%d (%s)", n.Age, n.Stage())
					}},
					{ID: "stage", Label: "Stage", Widget: WidgetColorSwatch, ColorGetter: func(d any) rl.Color {
						n := &view(d).Node
						return StageColors[n.Stage()]
					}},
					{ID: "depth", Label: "Engine", Widget: WidgetText, TextGetter: func(d any) string {
						return fmt.Sprintf("depth %d", view(d).Depth)
					}},
					{ID: "children", Label: "Children", Widget: WidgetText, TextGetter: func(d any) string {
						return fmt.Sprintf("%d", view(d).ChildCount)
					}},
				},
			},
			{
				ID:    "state",
				Title: "State",
				Fields: []FieldDescriptor{
					{ID: "energy", Label: "Energy", Widget: WidgetEnergyBar,
						Range:  FieldRange{Min: components.MinEnergy, Max: components.MaxEnergy},
						Getter: func(d any) float32 { return float32(view(d).Node.Energy) }},
					{ID: "coherence", Label: "Coherence", Widget: WidgetBar,
						Range:  DefaultRange(),
						Getter: func(d any) float32 { return float32(view(d).Node.Coherence) }},
					{ID: "distortion", Label: "Distortion", Widget: WidgetEnergyBar,
						Getter: func(d any) float32 { return float32(view(d).Node.Distortion) },
						Range:  FieldRange{Min: 0, Max: 20}},
					nodeField("temporal", "Temporal", func(n *components.GrowthNode) float32 { return float32(n.TemporalComplexity) }),
					{ID: "spatial", Label: "Spatial", Widget: WidgetBar,
						Range:  FieldRange{Min: components.MinSpatial, Max: components.MaxSpatial},
						Getter: func(d any) float32 { return float32(view(d).Node.SpatialComplexity) }},
					nodeField("cycle", "Cycle depth", func(n *components.GrowthNode) float32 { return float32(n.CycleDepth) }),
					{ID: "singular", Label: "Singular", Widget: WidgetText,
						Visible:    func(d any) bool { return view(d).Singular },
						TextGetter: func(any) string { return "collapsing" }},
					{ID: "pure", Label: "Pure time", Widget: WidgetText,
						Visible:    func(d any) bool { n := &view(d).Node; return n.PureTime() },
						TextGetter: func(any) string { return "yes" }},
				},
			},
			{
				ID:    "plant",
				Title: "Plant",
				Fields: []FieldDescriptor{
					{ID: "water", Label: "Water", Widget: WidgetEnergyBar,
						Range:  FieldRange{Min: 0, Max: components.MaxWater},
						Getter: func(d any) float32 { return float32(view(d).Node.WaterLevel) }},
					nodeField("stem", "Stem", func(n *components.GrowthNode) float32 { return float32(n.StemThickness) }),
					{ID: "role", Label: "Role", Widget: WidgetText, TextGetter: func(d any) string {
						return view(d).Node.Role.String()
					}},
					{ID: "side", Label: "Side", Widget: WidgetCenteredBar,
						Range:  FieldRange{Min: -1, Max: 1},
						Getter: func(d any) float32 { return float32(view(d).Node.BranchSide) }},
					{ID: "leaves", Label: "Leaves", Widget: WidgetText, TextGetter: func(d any) string {
						n := &view(d).Node
						if n.HasFlowered {
							return fmt.Sprintf("%d, flowered", n.LeafCount)
						}
						return fmt.Sprintf("%d", n.LeafCount)
					}},
				},
			},
		},
	}
}

// DebugPanel describes the seed readout shown in debug mode.
func DebugPanel() PanelDescriptor {
	return PanelDescriptor{
		ID:     "debug",
		Title:  "Seed",
		Width:  250,
		Anchor: AnchorBottomLeft,
		Sections: []SectionDescriptor{{
			ID: "seed",
			Fields: []FieldDescriptor{
				{ID: "time", Label: "Time", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("%d", view(d).Tick)
				}},
				{ID: "nodes", Label: "Nodes", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("%d", view(d).NodeCount)
				}},
				nodeField("h", "Coherence", func(n *components.GrowthNode) float32 { return float32(n.Coherence) }),
				nodeField("d", "Distortion", func(n *components.GrowthNode) float32 { return float32(n.Distortion) }),
				nodeField("e", "Energy", func(n *components.GrowthNode) float32 { return float32(n.Energy) }),
				nodeField("t", "Temporal", func(n *components.GrowthNode) float32 { return float32(n.TemporalComplexity) }),
				nodeField("s", "Spatial", func(n *components.GrowthNode) float32 { return float32(n.SpatialComplexity) }),
				nodeField("w", "Water", func(n *components.GrowthNode) float32 { return float32(n.WaterLevel) }),
			},
		}},
	}
}

// Inspector draws node panels.
type Inspector struct {
	renderer *Renderer
	node     PanelDescriptor
	debug    PanelDescriptor
}

// NewInspector creates an inspector with the node and debug panels.
func NewInspector() *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		node:     NodePanel(),
		debug:    DebugPanel(),
	}
}

// DrawNode draws the node panel for v.
func (ins *Inspector) DrawNode(v *NodeView, screenW, screenH int32) {
	ins.renderer.DrawPanelDescriptor(ins.node, v, screenW, screenH)
}

// DrawDebug draws the seed readout for v.
func (ins *Inspector) DrawDebug(v *NodeView, screenW, screenH int32) {
	ins.renderer.DrawPanelDescriptor(ins.debug, v, screenW, screenH)
}
