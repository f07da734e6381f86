package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cspace/camera"
	"github.com/pthm-cable/cspace/components"
)

// HeatmapCell is the side length, in field units, of one heatmap sample.
const HeatmapCell = 20

// FieldSampler evaluates the field at a point.
type FieldSampler interface {
	SpatialComplexity(p components.Vector2D) float64
	Energy(p components.Vector2D) float64
}

// DensityColor maps spatial complexity and energy to a translucent color:
// red rises with complexity, green falls with it, blue tracks energy.
func DensityColor(s, e float64) color.RGBA {
	s = min(1, max(0, s))
	e = min(2.55, max(0, e))
	return color.RGBA{
		R: uint8(s * 255),
		G: uint8((1 - s) * 255),
		B: uint8(e * 100),
		A: 50,
	}
}

// HeatmapPixels samples f at the center of each cell of a gridW×gridH grid.
func HeatmapPixels(f FieldSampler, gridW, gridH int) []color.RGBA {
	pixels := make([]color.RGBA, gridW*gridH)
	for gy := 0; gy < gridH; gy++ {
		for gx := 0; gx < gridW; gx++ {
			p := components.Vec(float64(gx*HeatmapCell)+HeatmapCell/2, float64(gy*HeatmapCell)+HeatmapCell/2)
			pixels[gy*gridW+gx] = DensityColor(f.SpatialComplexity(p), f.Energy(p))
		}
	}
	return pixels
}

// HeatmapRenderer draws the complexity field as a nearest-filtered texture
// with one texel per cell. The texture is only rebuilt when the resource
// set changes.
type HeatmapRenderer struct {
	tex         rl.Texture2D
	texW, texH  int
	resources   int
	initialized bool
}

// NewHeatmapRenderer creates a heatmap for a field of the given size.
func NewHeatmapRenderer(worldW, worldH int) *HeatmapRenderer {
	return &HeatmapRenderer{
		texW:      (worldW + HeatmapCell - 1) / HeatmapCell,
		texH:      (worldH + HeatmapCell - 1) / HeatmapCell,
		resources: -1,
	}
}

// Init creates the texture (must be called after the raylib window is created).
func (h *HeatmapRenderer) Init() {
	if h.initialized {
		return
	}
	img := rl.GenImageColor(h.texW, h.texH, rl.Blank)
	h.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(h.tex, rl.FilterPoint)
	rl.UnloadImage(img)
	h.initialized = true
}

// Update resamples the field when the number of resources differs from the
// last upload. Resources are only ever added, so the count is a version.
func (h *HeatmapRenderer) Update(f FieldSampler, resourceCount int) {
	if !h.initialized {
		h.Init()
	}
	if resourceCount == h.resources {
		return
	}
	h.resources = resourceCount
	rl.UpdateTexture(h.tex, HeatmapPixels(f, h.texW, h.texH))
}

// Invalidate forces the next Update to resample.
func (h *HeatmapRenderer) Invalidate() {
	h.resources = -1
}

// Draw renders the heatmap through the camera.
func (h *HeatmapRenderer) Draw(cam *camera.Camera) {
	if !h.initialized {
		return
	}
	sx, sy := cam.WorldToScreen(0, 0)
	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(h.texW), Height: float32(h.texH)}
	dstRect := rl.Rectangle{
		X:      sx,
		Y:      sy,
		Width:  cam.Scale(float32(h.texW * HeatmapCell)),
		Height: cam.Scale(float32(h.texH * HeatmapCell)),
	}
	rl.DrawTexturePro(h.tex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (h *HeatmapRenderer) Unload() {
	if !h.initialized {
		return
	}
	rl.UnloadTexture(h.tex)
	h.initialized = false
}
