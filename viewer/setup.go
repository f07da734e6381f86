package viewer

import (
	"log/slog"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/config"
	"github.com/pthm-cable/cspace/game"
	"github.com/pthm-cable/cspace/ui"
)

var setupHelp = []string{
	"Adjust the growth parameters, then place resources on the field.",
	"Left click: light   Middle click: water   Right click: obstacle   S: support",
	"R clears placed resources. Press Enter or Start to begin.",
}

// setupState holds the values edited on the setup screen.
type setupState struct {
	maxNodes          float64
	growthRate        float64
	growthProb        float64
	branchProb        float64
	maxEnergyDistance float64
	dCritical         float64

	resources []components.ResourcePoint
}

func newSetupState(base *config.Config) setupState {
	e := base.Engine
	return setupState{
		maxNodes:          float64(e.MaxNodes),
		growthRate:        e.GrowthRate,
		growthProb:        e.GrowthProb,
		branchProb:        e.BranchProb,
		maxEnergyDistance: e.MaxEnergyDistance,
		dCritical:         e.DCritical,
	}
}

func (s *setupState) params() []ui.Param {
	return []ui.Param{
		{Label: "Max nodes", Value: &s.maxNodes, Min: 50, Max: 2000, Step: 50, Format: "%.0f"},
		{Label: "Growth rate", Value: &s.growthRate, Min: 1, Max: 20, Step: 0.5, Format: "%.1f"},
		{Label: "Growth probability", Value: &s.growthProb, Min: 0.01, Max: 1, Step: 0.01, Format: "%.2f"},
		{Label: "Branch probability", Value: &s.branchProb, Min: 0, Max: 1, Step: 0.01, Format: "%.2f"},
		{Label: "Light range", Value: &s.maxEnergyDistance, Min: 50, Max: 600, Step: 10, Format: "%.0f"},
		{Label: "Singularity threshold", Value: &s.dCritical, Min: 1, Max: 50, Step: 0.5, Format: "%.1f"},
	}
}

// apply writes the edited values and placed resources into cfg.
func (s *setupState) apply(cfg *config.Config) {
	cfg.Engine.MaxNodes = int(math.Round(s.maxNodes))
	cfg.Engine.GrowthRate = s.growthRate
	cfg.Engine.GrowthProb = s.growthProb
	cfg.Engine.BranchProb = s.branchProb
	cfg.Engine.MaxEnergyDistance = s.maxEnergyDistance
	cfg.Engine.DCritical = s.dCritical

	for _, r := range s.resources {
		cfg.Scenario.Resources = append(cfg.Scenario.Resources, config.ResourceConfig{
			X:         r.Position.X,
			Y:         r.Position.Y,
			Intensity: r.Intensity,
			Kind:      r.Kind.String(),
		})
	}
}

// frameSetup draws and handles one frame of the setup screen.
func (v *Viewer) frameSetup() {
	w, h := int32(v.screenW), int32(v.screenH)
	params := v.setup.params()
	sliders, start := v.setupPanel.Bounds(w, h, len(setupHelp), len(params))

	v.handleSetupInput(sliders, start)

	rl.BeginDrawing()
	v.background.Clear()
	v.background.DrawGrid(v.camera)
	v.resources.Draw(v.setup.resources, v.camera)
	pressed := v.setupPanel.Draw(w, h, title, setupHelp, params)
	rl.EndDrawing()

	if pressed || rl.IsKeyPressed(rl.KeyEnter) {
		cfg := v.base.Clone()
		v.setup.apply(cfg)
		if err := v.start(cfg); err != nil {
			slog.Error("failed to start simulation", "error", err)
		}
	}
}

func (v *Viewer) handleSetupInput(sliders, start rl.Rectangle) {
	if rl.IsKeyPressed(rl.KeyR) {
		v.setup.resources = nil
	}

	mouse := rl.GetMousePosition()
	if rl.CheckCollisionPointRec(mouse, sliders) || rl.CheckCollisionPointRec(mouse, start) {
		return
	}
	kind, ok := clickedResource()
	if !ok {
		return
	}
	wx, wy := v.camera.ScreenToWorld(mouse.X, mouse.Y)
	in := game.AddResourceIntent(components.Vec(float64(wx), float64(wy)), kind)
	v.setup.resources = append(v.setup.resources, components.ResourcePoint{
		Position:  in.Position,
		Intensity: in.Intensity,
		Kind:      in.Resource,
	})
}
