package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cspace/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Tick          int64
	Nodes         int
	MaxNodes      int
	Engines       int
	HierarchySize int
	MaxDepth      int
	Leaves        int
	Flowers       int
	Speed         int
	FPS           int32
	Paused        bool
	Done          bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD in the top-left corner, below y.
func (h *HUD) Draw(y int32, data HUDData) {
	rl.DrawText(data.Title, 10, y, 20, rl.DarkGray)

	rl.DrawText(
		fmt.Sprintf("Nodes: %d/%d | Engines: %d | Hierarchy: %s | Depth: %d",
			data.Nodes, data.MaxNodes, data.Engines, humanize.Comma(int64(data.HierarchySize)), data.MaxDepth),
		10, y+25, 16, rl.Gray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %s | Speed: %dx | FPS: %d | Leaves: %d | Flowers: %d",
			humanize.Comma(data.Tick), data.Speed, data.FPS, data.Leaves, data.Flowers),
		10, y+45, 16, rl.Gray,
	)

	status, color := "Growing", rl.DarkGreen
	switch {
	case data.Done:
		status, color = "Complete", rl.Maroon
	case data.Paused:
		status, color = "PAUSED", rl.Orange
	}
	rl.DrawText(status, 10, y+65, 16, color)
}

// DrawControls renders the control legend just above the control bar.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-ControlBarHeight-18, 12, rl.Gray)
}

// PerfPanel renders per-phase tick timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel: root tick phases, then the self time of each
// nested depth.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	phases := telemetry.Phases().All()
	levels := stats.Levels()
	lineHeight := int32(14)
	height := lineHeight*int32(len(phases)+len(levels)+2) + p.renderer.Theme.Padding*2
	p.renderer.DrawPanel(p.x, p.y, 240, height)

	x := p.x + p.renderer.Theme.Padding
	y := p.y + p.renderer.Theme.Padding

	rl.DrawText(fmt.Sprintf("Tick: %s (%.0f/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, p.renderer.Theme.SectionHeader)
	y += lineHeight + 4

	for _, phase := range phases {
		pct := stats.PhasePct[phase.ID]
		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", phase.Name, stats.PhaseAvg[phase.ID].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += lineHeight
	}

	for _, depth := range levels {
		rl.DrawText(
			fmt.Sprintf("%-10s %8s", fmt.Sprintf("depth %d", depth), stats.LevelAvg[depth].Round(time.Microsecond)),
			x, y, 12, rl.SkyBlue,
		)
		y += lineHeight
	}
}
