package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/tanema/gween/ease"

	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/game"
	"github.com/pthm-cable/cspace/ui"
)

const (
	panSpeed  = 400.0 // Screen pixels per second
	zoomStep  = 1.1
	glideTime = 0.6
)

// handleInput turns keyboard and mouse input into camera moves, overlay
// toggles and game intents.
func (v *Viewer) handleInput() {
	g := v.game

	if g.Done() && rl.IsKeyPressed(rl.KeyEnter) {
		v.backToSetup()
		return
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.Submit(game.Intent{Kind: game.IntentTogglePause})
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.reset()
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.Submit(game.Intent{Kind: game.IntentSpeedUp})
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.Submit(game.Intent{Kind: game.IntentSlowDown})
	}
	if rl.IsKeyPressed(rl.KeyG) {
		g.Submit(game.Intent{Kind: game.IntentForceGrow})
	}
	if rl.IsKeyPressed(rl.KeyB) {
		g.Submit(game.Intent{Kind: game.IntentForceBranch})
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.overlayPanel.Toggle()
	}

	for _, key := range v.overlays.Keys() {
		if !rl.IsKeyPressed(key) {
			continue
		}
		if id, on, ok := v.overlays.HandleKeyPress(key); ok {
			slog.Debug("overlay toggled", "overlay", string(id), "enabled", on)
		}
	}

	v.handleCamera()
	v.handleFieldClicks()
}

// reset restarts the engine with the same config and clears the effects.
func (v *Viewer) reset() {
	v.game.Submit(game.Intent{Kind: game.IntentReset})
	v.effects.Clear()
	v.heatmap.Invalidate()
}

func (v *Viewer) handleCamera() {
	dt := rl.GetFrameTime()
	step := float32(panSpeed) * dt

	var dx, dy float32
	if rl.IsKeyDown(rl.KeyLeft) {
		dx -= step
	}
	if rl.IsKeyDown(rl.KeyRight) {
		dx += step
	}
	if rl.IsKeyDown(rl.KeyUp) {
		dy -= step
	}
	if rl.IsKeyDown(rl.KeyDown) {
		dy += step
	}
	if dx != 0 || dy != 0 {
		v.camera.Pan(dx, dy)
	}

	// Zoom around the cursor
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		factor := float32(zoomStep)
		if wheel < 0 {
			factor = 1 / factor
		}
		v.camera.ZoomAt(mouse.X, mouse.Y, factor)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
	if rl.IsKeyPressed(rl.KeyF) {
		v.focusPlant()
	}
}

// focusPlant glides the camera to fit the root engine's nodes.
func (v *Viewer) focusPlant() {
	nodes := v.state.Nodes
	if len(nodes) == 0 {
		return
	}
	minP, maxP := nodes[0].Position, nodes[0].Position
	for _, n := range nodes[1:] {
		minP.X = min(minP.X, n.Position.X)
		minP.Y = min(minP.Y, n.Position.Y)
		maxP.X = max(maxP.X, n.Position.X)
		maxP.Y = max(maxP.Y, n.Position.Y)
	}

	const margin = 60
	w := float32(maxP.X-minP.X) + 2*margin
	h := float32(maxP.Y-minP.Y) + 2*margin
	viewH := v.screenH - ui.ControlBarHeight
	zoom := min(v.screenW/w, viewH/h)

	cx := float32(minP.X+maxP.X) / 2
	cy := float32(minP.Y+maxP.Y) / 2
	v.camera.GlideTo(cx, cy, zoom, glideTime, ease.OutCubic)
}

// handleFieldClicks places resources where the user clicks: left for
// light, middle for water, right for an obstacle, S for a support.
func (v *Viewer) handleFieldClicks() {
	mouse := rl.GetMousePosition()
	if mouse.Y >= v.screenH-ui.ControlBarHeight {
		return
	}

	kind, ok := clickedResource()
	if !ok {
		return
	}
	wx, wy := v.camera.ScreenToWorld(mouse.X, mouse.Y)
	v.game.Submit(game.AddResourceIntent(components.Vec(float64(wx), float64(wy)), kind))
}

// clickedResource maps this frame's mouse buttons and the S key to a
// resource kind.
func clickedResource() (components.ResourceKind, bool) {
	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
		return components.ResourceLight, true
	case rl.IsMouseButtonPressed(rl.MouseButtonMiddle):
		return components.ResourceWater, true
	case rl.IsMouseButtonPressed(rl.MouseButtonRight):
		return components.ResourceObstacle, true
	case rl.IsKeyPressed(rl.KeyS):
		return components.ResourceSupport, true
	}
	return 0, false
}

// applyControls turns control-bar presses into intents and overlay changes.
func (v *Viewer) applyControls(act ui.ControlAction) {
	g := v.game
	if act.TogglePause {
		g.Submit(game.Intent{Kind: game.IntentTogglePause})
	}
	if act.ToggleHeatmap {
		v.overlays.Toggle(ui.OverlayHeatmap)
	}
	if act.ToggleDebug {
		v.overlays.Toggle(ui.OverlayDebug)
	}
	if act.Reset {
		v.reset()
	}
	if act.Grow {
		g.Submit(game.Intent{Kind: game.IntentForceGrow})
	}
	if act.Branch {
		g.Submit(game.Intent{Kind: game.IntentForceBranch})
	}
	if act.Speed > 0 {
		g.Submit(game.Intent{Kind: game.IntentSetSpeed, Speed: act.Speed})
	}
}
