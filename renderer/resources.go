package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cspace/camera"
	"github.com/pthm-cable/cspace/components"
)

var (
	lightColor    = rl.Color{R: 255, G: 255, B: 0, A: 255}
	lightGlow     = rl.Color{R: 255, G: 255, B: 150, A: 60}
	waterColor    = rl.Color{R: 0, G: 191, B: 255, A: 255}
	supportColor  = rl.Color{R: 139, G: 69, B: 19, A: 255}
	obstacleColor = rl.Color{R: 255, G: 99, B: 71, A: 75}
)

// ResourceRenderer draws resource points.
type ResourceRenderer struct{}

// NewResourceRenderer creates a new resource renderer.
func NewResourceRenderer() *ResourceRenderer {
	return &ResourceRenderer{}
}

// Draw renders every visible resource. Obstacles go first so they sit
// beneath everything else.
func (r *ResourceRenderer) Draw(resources []components.ResourcePoint, cam *camera.Camera) {
	for _, res := range resources {
		if res.Kind == components.ResourceObstacle {
			r.drawOne(res, cam)
		}
	}
	for _, res := range resources {
		if res.Kind != components.ResourceObstacle {
			r.drawOne(res, cam)
		}
	}
}

func (r *ResourceRenderer) drawOne(res components.ResourcePoint, cam *camera.Camera) {
	x, y := float32(res.Position.X), float32(res.Position.Y)
	if !cam.IsVisible(x, y, 40) {
		return
	}
	sx, sy := cam.WorldToScreen(x, y)
	center := rl.Vector2{X: sx, Y: sy}
	intensity := float32(res.Intensity)

	switch res.Kind {
	case components.ResourceLight:
		rl.DrawCircleV(center, cam.Scale(15+10*intensity), lightGlow)
		rl.DrawCircleV(center, cam.Scale(15), lightColor)
	case components.ResourceWater:
		rl.DrawCircleV(center, cam.Scale(10), waterColor)
	case components.ResourceSupport:
		w, h := cam.Scale(4), cam.Scale(20)
		rl.DrawRectangleV(rl.Vector2{X: sx - w/2, Y: sy - h/2}, rl.Vector2{X: w, Y: h}, supportColor)
	case components.ResourceObstacle:
		rl.DrawCircleV(center, cam.Scale(30), obstacleColor)
	}
}
