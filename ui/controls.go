package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlBarHeight is the height of the bottom control strip. Clicks inside
// it never reach the field.
const ControlBarHeight = 50

// ControlAction reports what the user pressed in the control bar this frame.
type ControlAction struct {
	TogglePause   bool
	ToggleHeatmap bool
	ToggleDebug   bool
	Reset         bool
	Grow          bool
	Branch        bool
	Speed         int // New speed, or 0 if unchanged
}

// ControlBarState is what the bar displays.
type ControlBarState struct {
	Paused   bool
	Heatmap  bool
	Debug    bool
	Speed    int
	MaxSpeed int
	Info     string
}

// ControlBar renders the bottom strip of raygui buttons and the speed slider.
type ControlBar struct {
	renderer *Renderer
}

// NewControlBar creates a control bar.
func NewControlBar() *ControlBar {
	return &ControlBar{renderer: NewRenderer()}
}

// Draw renders the bar and returns the actions taken.
func (c *ControlBar) Draw(screenW, screenH int32, st ControlBarState) ControlAction {
	var act ControlAction
	top := float32(screenH - ControlBarHeight)
	rl.DrawRectangle(0, screenH-ControlBarHeight, screenW, ControlBarHeight, rl.Color{R: 240, G: 240, B: 240, A: 255})
	rl.DrawLine(0, screenH-ControlBarHeight, screenW, screenH-ControlBarHeight, rl.LightGray)

	x := float32(10)
	button := func(w float32, label string) bool {
		pressed := gui.Button(rl.Rectangle{X: x, Y: top + 10, Width: w, Height: 30}, label)
		x += w + 8
		return pressed
	}

	act.TogglePause = button(70, toggleText(st.Paused, "Resume", "Pause"))
	act.ToggleHeatmap = button(110, toggleText(st.Heatmap, "Hide Complexity", "Show Complexity"))
	act.ToggleDebug = button(80, toggleText(st.Debug, "Hide Debug", "Debug Info"))
	act.Reset = button(60, "Reset")
	act.Grow = button(50, "Grow")
	act.Branch = button(60, "Branch")

	rl.DrawText("Speed", int32(x), int32(top)+18, 12, rl.DarkGray)
	x += 40
	speed := gui.SliderBar(
		rl.Rectangle{X: x, Y: top + 15, Width: 90, Height: 20},
		"", fmt.Sprintf("%dx", st.Speed),
		float32(st.Speed), 1, float32(max(1, st.MaxSpeed)),
	)
	if s := int(math.Round(float64(speed))); s != st.Speed {
		act.Speed = s
	}

	if st.Info != "" {
		w := rl.MeasureText(st.Info, 14)
		rl.DrawText(st.Info, screenW-w-10, int32(top)+18, 14, rl.DarkGray)
	}
	return act
}

// OverlayPanel lists overlays and their key bindings.
type OverlayPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewOverlayPanel creates a new overlay panel.
func NewOverlayPanel(x, y, width int32) *OverlayPanel {
	return &OverlayPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// IsVisible returns whether the panel is shown.
func (c *OverlayPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *OverlayPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the overlay list.
func (c *OverlayPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	totalItems := 0
	for _, cat := range categories {
		totalItems += len(overlays.ByCategory(cat)) + 1 // +1 for category header
	}
	panelHeight := int32(totalItems)*lineHeight + int32(len(categories))*4 + padding*2 + lineHeight + 4

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
		y += 4
	}
	return y
}

func (c *OverlayPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "field":
		return "Field"
	case "plant":
		return "Plant"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

// Param is one adjustable value on the setup screen.
type Param struct {
	Label    string
	Value    *float64
	Min, Max float64
	Step     float64
	Format   string
}

// Snap rounds v to the parameter's step and clamps it to its range.
func (p Param) Snap(v float64) float64 {
	if p.Step > 0 {
		v = p.Min + math.Round((v-p.Min)/p.Step)*p.Step
	}
	return math.Max(p.Min, math.Min(p.Max, v))
}

// SetupPanel renders the pre-run parameter screen.
type SetupPanel struct{}

// NewSetupPanel creates a setup panel.
func NewSetupPanel() *SetupPanel {
	return &SetupPanel{}
}

// Bounds returns the screen rectangle covered by the sliders and the start
// button, so clicks there are not treated as field clicks.
func (s *SetupPanel) Bounds(screenW, screenH int32, helpLines, params int) (sliders, start rl.Rectangle) {
	top := float32(60 + 22*helpLines + 20)
	sliders = rl.Rectangle{X: float32(screenW/2 - 200), Y: top, Width: 420, Height: float32(30 * params)}
	start = rl.Rectangle{X: float32(screenW/2 - 60), Y: float32(screenH - 60), Width: 120, Height: 40}
	return sliders, start
}

// Draw renders the title, help text, one slider per param and a start
// button. It writes slider changes through Param.Value and reports whether
// start was pressed.
func (s *SetupPanel) Draw(screenW, screenH int32, title string, help []string, params []Param) bool {
	tw := rl.MeasureText(title, 24)
	rl.DrawText(title, screenW/2-tw/2, 20, 24, rl.DarkGray)

	y := int32(60)
	for _, line := range help {
		w := rl.MeasureText(line, 14)
		rl.DrawText(line, screenW/2-w/2, y, 14, rl.Gray)
		y += 22
	}

	sliders, start := s.Bounds(screenW, screenH, len(help), len(params))
	panelX, panelY := sliders.X, sliders.Y
	for _, p := range params {
		rl.DrawText(p.Label, int32(panelX), int32(panelY)+3, 14, rl.DarkGray)
		v := gui.SliderBar(
			rl.Rectangle{X: panelX + 160, Y: panelY, Width: 180, Height: 20},
			"", "",
			float32(*p.Value), float32(p.Min), float32(p.Max),
		)
		if snapped := p.Snap(float64(v)); snapped != *p.Value {
			*p.Value = snapped
		}
		rl.DrawText(fmt.Sprintf(p.Format, *p.Value), int32(panelX)+350, int32(panelY)+3, 14, rl.DarkGray)
		panelY += 30
	}

	return gui.Button(start, "Start Simulation")
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
