package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cspace/camera"
	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/engine"
)

var (
	stemYoung      = rl.Color{R: 60, G: 179, B: 113, A: 255}
	stemMain       = rl.Color{R: 34, G: 139, B: 34, A: 255}
	stemOld        = rl.Color{R: 46, G: 139, B: 87, A: 255}
	singularColor  = rl.Color{R: 255, G: 99, B: 71, A: 255}
	pureTimeColor  = rl.Color{R: 65, G: 105, B: 225, A: 255}
	highlightColor = rl.Color{R: 255, G: 214, B: 102, A: 255}
)

// StemColor returns the stem color for a node: lighter when young, darker
// when old.
func StemColor(n *components.GrowthNode) rl.Color {
	switch {
	case n.Age < 5:
		return stemYoung
	case n.Age > 15:
		return stemOld
	default:
		return stemMain
	}
}

// StemWidth returns the stem width in field units. The seed is always
// thickest; plant nodes scale with their stem thickness; base nodes grow
// with age and coherence.
func StemWidth(n *components.GrowthNode) float32 {
	if !n.HasParent {
		return 5
	}
	if n.StemThickness > 0 {
		return max(1, 1+2*float32(n.StemThickness))
	}
	age := min(1, float32(n.Age)/20)
	coh := min(1, float32(n.Coherence))
	return max(1, 3*(0.5+0.5*(age+coh)/2))
}

// NodeStyle returns the color and radius of a node marker.
func NodeStyle(n *components.GrowthNode, dCritical float64) (rl.Color, float32) {
	switch {
	case n.Distortion > dCritical:
		return singularColor, 5
	case n.SpatialComplexity < 0.2 && n.Energy > 0.7:
		return pureTimeColor, 4
	default:
		return StemColor(n), 3
	}
}

// PlantRenderer draws stems and node markers.
type PlantRenderer struct {
	index map[uint64]int
}

// NewPlantRenderer creates a new plant renderer.
func NewPlantRenderer() *PlantRenderer {
	return &PlantRenderer{index: make(map[uint64]int)}
}

// Draw renders one engine's nodes. Child engines are drawn by calling Draw
// again with their state and a lower alpha.
func (r *PlantRenderer) Draw(st *engine.State, cam *camera.Camera, dCritical float64, alpha uint8) {
	clear(r.index)
	for i := range st.Nodes {
		r.index[st.Nodes[i].ID] = i
	}

	// Stems first, parent to child
	for parentID, children := range st.Paths {
		pi, ok := r.index[parentID]
		if !ok {
			continue
		}
		parent := &st.Nodes[pi]
		color := fade(StemColor(parent), alpha)
		width := cam.Scale(StemWidth(parent))
		start := screenPos(cam, parent.Position)
		for _, id := range children {
			ci, ok := r.index[id]
			if !ok {
				continue
			}
			end := screenPos(cam, st.Nodes[ci].Position)
			rl.DrawLineEx(start, end, width, color)
			rl.DrawCircleV(end, width/2, color)
		}
	}

	// Nodes on top
	for i := range st.Nodes {
		n := &st.Nodes[i]
		x, y := float32(n.Position.X), float32(n.Position.Y)
		if !cam.IsVisible(x, y, 6) {
			continue
		}
		color, radius := NodeStyle(n, dCritical)
		rl.DrawCircleV(screenPos(cam, n.Position), cam.Scale(radius), fade(color, alpha))
	}
}

// Highlight rings a node, such as the one under the cursor.
func (r *PlantRenderer) Highlight(n *components.GrowthNode, cam *camera.Camera) {
	p := screenPos(cam, n.Position)
	rl.DrawCircleLines(int32(p.X), int32(p.Y), cam.Scale(7), highlightColor)
}

func screenPos(cam *camera.Camera, p components.Vector2D) rl.Vector2 {
	x, y := cam.WorldToScreen(float32(p.X), float32(p.Y))
	return rl.Vector2{X: x, Y: y}
}

func fade(c rl.Color, alpha uint8) rl.Color {
	c.A = uint8(uint16(c.A) * uint16(alpha) / 255)
	return c
}
