package viewer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cspace/engine"
	"github.com/pthm-cable/cspace/ui"
)

const controlsLegend = "[Space] Pause  [R] Reset  [+/-] Speed  [G] Grow  [B] Branch  " +
	"[LMB] Light  [MMB] Water  [RMB] Obstacle  [S] Support  [Wheel] Zoom  [F] Focus  [Tab] Overlays"

// childAlpha dims nested engines so the root plant stays readable.
const childAlpha = 110

func (v *Viewer) draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	v.background.Clear()
	v.drawField()
	v.drawUI()
}

// drawField renders everything in field space, back to front.
func (v *Viewer) drawField() {
	cfg := v.game.Config()

	if v.overlays.IsEnabled(ui.OverlayHeatmap) {
		v.heatmap.Update(v.game.Engine(), len(v.state.Resources))
		v.heatmap.Draw(v.camera)
	}
	if v.overlays.IsEnabled(ui.OverlayGrid) {
		v.background.DrawGrid(v.camera)
	}

	v.resources.Draw(v.state.Resources, v.camera)

	showChildren := v.overlays.IsEnabled(ui.OverlayChildren)
	if showChildren {
		for i := range v.state.Children {
			v.state.Children[i].Walk(func(st *engine.State) {
				v.plant.Draw(st, v.camera, cfg.Engine.DCritical, childAlpha)
			})
		}
	}
	v.plant.Draw(&v.state, v.camera, cfg.Engine.DCritical, 255)

	if v.overlays.IsEnabled(ui.OverlayEffects) {
		v.fx.SetShowChildren(showChildren)
		v.fx.Draw(v.effects, v.camera)
	}

	if v.hovered != nil {
		v.plant.Highlight(v.hovered, v.camera)
	}
}

func (v *Viewer) drawUI() {
	w, h := int32(v.screenW), int32(v.screenH)
	g := v.game
	cfg := g.Config()

	v.hud.Draw(10, ui.HUDData{
		Title:         title,
		Tick:          v.state.Tick,
		Nodes:         len(v.state.Nodes),
		MaxNodes:      cfg.Engine.MaxNodes,
		Engines:       v.state.EngineCount(),
		HierarchySize: v.state.HierarchySize(),
		MaxDepth:      v.state.MaxDepth(),
		Leaves:        len(v.state.Leaves),
		Flowers:       len(v.state.Flowers),
		Speed:         g.StepsPerUpdate(),
		FPS:           rl.GetFPS(),
		Paused:        g.Paused(),
		Done:          g.Done(),
	})

	if g.Done() {
		msg := "Max nodes reached. Press Enter for setup."
		mw := rl.MeasureText(msg, 20)
		rl.DrawText(msg, w/2-mw/2, h/2-10, 20, rl.Maroon)
	}

	// Panels stay clear of the legend and control bar
	panelH := h - ui.ControlBarHeight - 20

	if v.overlays.IsEnabled(ui.OverlayInspector) && v.hovered != nil {
		v.inspector.DrawNode(v.nodeView(v.hovered.ID), w, panelH)
	}
	if v.overlays.IsEnabled(ui.OverlayDebug) && len(v.state.Nodes) > 0 {
		v.inspector.DrawDebug(v.nodeView(v.state.Nodes[0].ID), w, panelH)
	}

	y := int32(100)
	if v.overlayPanel.IsVisible() {
		y = v.overlayPanel.Draw(v.overlays) + 10
	}
	if v.overlays.IsEnabled(ui.OverlayPerf) {
		v.perfPanel.SetPosition(10, y)
		v.perfPanel.Draw(g.PerfStats())
	}

	v.hud.DrawControls(h, controlsLegend)

	act := v.controls.Draw(w, h, ui.ControlBarState{
		Paused:   g.Paused(),
		Heatmap:  v.overlays.IsEnabled(ui.OverlayHeatmap),
		Debug:    v.overlays.IsEnabled(ui.OverlayDebug),
		Speed:    g.StepsPerUpdate(),
		MaxSpeed: cfg.Simulation.MaxSpeed,
		Info:     fmt.Sprintf("Zoom %.1fx | Seed %d", v.camera.Zoom, g.Seed()),
	})
	v.applyControls(act)
}

// nodeView builds the inspector data for a root-engine node.
func (v *Viewer) nodeView(id uint64) *ui.NodeView {
	n, ok := v.state.Node(id)
	if !ok {
		return nil
	}
	return &ui.NodeView{
		Node:       n,
		Tick:       v.state.Tick,
		NodeCount:  len(v.state.Nodes),
		Depth:      v.state.Depth,
		Singular:   n.Distortion > v.game.Config().Engine.DCritical,
		ChildCount: len(v.state.Paths[n.ID]),
	}
}
