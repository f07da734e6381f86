// Package renderer draws the growth field, its resources, the plant and its
// effects through a camera.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cspace/camera"
)

// BackgroundRenderer clears the field and draws a faint grid.
type BackgroundRenderer struct {
	baseColor rl.Color
	gridColor rl.Color
	spacing   float32
}

// NewBackgroundRenderer creates a background with the given base color and
// a grid every spacing field units.
func NewBackgroundRenderer(baseR, baseG, baseB uint8, spacing float32) *BackgroundRenderer {
	return &BackgroundRenderer{
		baseColor: rl.Color{R: baseR, G: baseG, B: baseB, A: 255},
		gridColor: rl.Color{R: 221, G: 221, B: 221, A: 255},
		spacing:   spacing,
	}
}

// Clear fills the screen with the base color.
func (b *BackgroundRenderer) Clear() {
	rl.ClearBackground(b.baseColor)
}

// DrawGrid draws grid lines over the visible part of the field.
func (b *BackgroundRenderer) DrawGrid(cam *camera.Camera) {
	if b.spacing <= 0 {
		return
	}
	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	minX, minY = max(minX, 0), max(minY, 0)
	maxX, maxY = min(maxX, cam.WorldW), min(maxY, cam.WorldH)

	_, top := cam.WorldToScreen(0, minY)
	_, bottom := cam.WorldToScreen(0, maxY)
	for x := firstLine(minX, b.spacing); x <= maxX; x += b.spacing {
		sx, _ := cam.WorldToScreen(x, 0)
		rl.DrawLineV(rl.Vector2{X: sx, Y: top}, rl.Vector2{X: sx, Y: bottom}, b.gridColor)
	}

	left, _ := cam.WorldToScreen(minX, 0)
	right, _ := cam.WorldToScreen(maxX, 0)
	for y := firstLine(minY, b.spacing); y <= maxY; y += b.spacing {
		_, sy := cam.WorldToScreen(0, y)
		rl.DrawLineV(rl.Vector2{X: left, Y: sy}, rl.Vector2{X: right, Y: sy}, b.gridColor)
	}
}

// firstLine returns the first multiple of spacing at or after v.
func firstLine(v, spacing float32) float32 {
	n := float32(int(v / spacing))
	if n*spacing < v {
		n++
	}
	return n * spacing
}
