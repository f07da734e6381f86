// Package viewer is the raylib front end: a setup screen for parameters and
// pre-placed resources, then a live view of a game.Game with mouse and
// keyboard controls.
package viewer

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cspace/camera"
	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/config"
	"github.com/pthm-cable/cspace/effects"
	"github.com/pthm-cable/cspace/engine"
	"github.com/pthm-cable/cspace/game"
	"github.com/pthm-cable/cspace/renderer"
	"github.com/pthm-cable/cspace/ui"
)

const title = "C-Space Plants: Geometric Computational Growth"

type mode uint8

const (
	modeSetup mode = iota
	modeRunning
)

// Viewer owns the window-side state. It must be created after the raylib
// window is open.
type Viewer struct {
	base *config.Config
	opts game.Options
	game *game.Game
	mode mode

	screenW, screenH float32

	camera  *camera.Camera
	effects *effects.System

	background *renderer.BackgroundRenderer
	heatmap    *renderer.HeatmapRenderer
	resources  *renderer.ResourceRenderer
	plant      *renderer.PlantRenderer
	fx         *renderer.EffectRenderer

	hud          *ui.HUD
	controls     *ui.ControlBar
	overlays     *ui.OverlayRegistry
	overlayPanel *ui.OverlayPanel
	inspector    *ui.Inspector
	perfPanel    *ui.PerfPanel
	setupPanel   *ui.SetupPanel

	setup setupState

	// Per-frame
	state   engine.State
	hovered *components.GrowthNode
}

// New creates a viewer. With skipSetup the game starts immediately from
// base; otherwise the setup screen is shown first.
func New(base *config.Config, opts game.Options, skipSetup bool) (*Viewer, error) {
	w, h := float32(base.Screen.Width), float32(base.Screen.Height)
	worldW, worldH := base.Derived.WorldW, base.Derived.WorldH

	v := &Viewer{
		base:         base,
		opts:         opts,
		screenW:      w,
		screenH:      h,
		camera:       camera.New(w, h, float32(worldW), float32(worldH)),
		effects:      effects.New(),
		background:   renderer.NewBackgroundRenderer(248, 249, 250, 50),
		heatmap:      renderer.NewHeatmapRenderer(worldW, worldH),
		resources:    renderer.NewResourceRenderer(),
		plant:        renderer.NewPlantRenderer(),
		fx:           renderer.NewEffectRenderer(),
		hud:          ui.NewHUD(),
		controls:     ui.NewControlBar(),
		overlays:     ui.NewOverlayRegistry(),
		overlayPanel: ui.NewOverlayPanel(10, 100, 200),
		inspector:    ui.NewInspector(),
		perfPanel:    ui.NewPerfPanel(10, 100),
		setupPanel:   ui.NewSetupPanel(),
		setup:        newSetupState(base),
	}

	if skipSetup {
		if err := v.start(base.Clone()); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// start creates a game from cfg and switches to the live view.
func (v *Viewer) start(cfg *config.Config) error {
	if err := cfg.Refresh(); err != nil {
		return err
	}
	g, err := game.NewGameWithConfig(cfg, v.opts)
	if err != nil {
		return fmt.Errorf("starting game: %w", err)
	}
	g.AddRecorder(v.effects)

	v.game = g
	v.mode = modeRunning
	v.effects.Clear()
	v.heatmap.Invalidate()
	v.camera.Reset()

	slog.Info("simulation started",
		"seed", g.Seed(),
		"model", cfg.Engine.Model,
		"max_nodes", cfg.Engine.MaxNodes,
		"resources", len(cfg.Scenario.Resources),
	)
	return nil
}

// backToSetup discards the running game and shows the setup screen.
func (v *Viewer) backToSetup() {
	if v.game != nil {
		v.game.Unload()
		v.game = nil
	}
	v.effects.Clear()
	v.setup = newSetupState(v.base)
	v.mode = modeSetup
}

// Game returns the running game, or nil on the setup screen.
func (v *Viewer) Game() *game.Game {
	return v.game
}

// Frame handles input, advances the game and draws one frame.
func (v *Viewer) Frame() {
	dt := rl.GetFrameTime()
	v.handleResize()

	if v.mode == modeSetup {
		v.frameSetup()
		return
	}

	v.handleInput()
	v.game.UpdateHeadless()
	v.effects.Update(dt)
	v.camera.Update(dt)
	v.game.RecordFrame()

	v.state = v.game.State()
	v.hovered = v.nodeUnderCursor()
	v.draw()
}

// Unload releases GPU resources and closes telemetry output.
func (v *Viewer) Unload() {
	v.heatmap.Unload()
	if v.game != nil {
		v.game.Unload()
	}
}

func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenW && h == v.screenH {
		return
	}
	v.screenW, v.screenH = w, h
	v.camera.Resize(w, h)
}

// nodeUnderCursor returns the root-engine node nearest the mouse within a
// few pixels.
func (v *Viewer) nodeUnderCursor() *components.GrowthNode {
	mouse := rl.GetMousePosition()
	wx, wy := v.camera.ScreenToWorld(mouse.X, mouse.Y)
	p := components.Vec(float64(wx), float64(wy))
	limit := float64(8 / v.camera.Zoom)

	var best *components.GrowthNode
	bestDist := limit
	for i := range v.state.Nodes {
		n := &v.state.Nodes[i]
		if d := n.Position.Distance(p); d <= bestDist {
			best, bestDist = n, d
		}
	}
	return best
}
