package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cspace/camera"
	"github.com/pthm-cable/cspace/effects"
)

var (
	leafColor   = rl.Color{R: 50, G: 205, B: 50, A: 255}
	leafVein    = rl.Color{R: 30, G: 100, B: 30, A: 255}
	petalColor  = rl.Color{R: 255, G: 182, B: 193, A: 255}
	flowerEye   = rl.Color{R: 255, G: 215, B: 0, A: 255}
	rippleColor = rl.Color{R: 255, G: 99, B: 71, A: 255}
)

// EffectRenderer draws leaves, flowers and singularity ripples.
type EffectRenderer struct {
	showChildren bool
}

// NewEffectRenderer creates a new effect renderer.
func NewEffectRenderer() *EffectRenderer {
	return &EffectRenderer{}
}

// SetShowChildren controls whether effects from child engines are drawn.
func (r *EffectRenderer) SetShowChildren(show bool) {
	r.showChildren = show
}

// Draw renders every live effect.
func (r *EffectRenderer) Draw(sys *effects.System, cam *camera.Camera) {
	sys.Each(func(e effects.Effect) {
		if e.Depth > 0 && !r.showChildren {
			return
		}
		if !cam.IsVisible(e.X, e.Y, e.Size+2) {
			return
		}
		sx, sy := cam.WorldToScreen(e.X, e.Y)
		center := rl.Vector2{X: sx, Y: sy}
		size := cam.Scale(e.Size)

		switch e.Kind {
		case effects.KindLeaf:
			drawLeaf(center, size)
		case effects.KindFlower:
			drawFlower(center, size)
		case effects.KindRipple:
			c := rippleColor
			c.A = uint8(255 * e.Alpha)
			rl.DrawRing(center, max(0, size-cam.Scale(1.5)), size, 0, 360, 36, c)
		}
	})
}

func drawLeaf(center rl.Vector2, size float32) {
	if size <= 0 {
		return
	}
	rl.DrawEllipse(int32(center.X), int32(center.Y), size, size*0.6, leafColor)
	rl.DrawLineV(
		rl.Vector2{X: center.X - size, Y: center.Y},
		rl.Vector2{X: center.X + size, Y: center.Y},
		leafVein,
	)
}

func drawFlower(center rl.Vector2, size float32) {
	if size <= 0 {
		return
	}
	const petals = 5
	for i := 0; i < petals; i++ {
		a := float64(i) * 2 * math.Pi / petals
		p := rl.Vector2{
			X: center.X + float32(math.Cos(a))*size*0.6,
			Y: center.Y + float32(math.Sin(a))*size*0.6,
		}
		rl.DrawCircleV(p, size*0.45, petalColor)
	}
	rl.DrawCircleV(center, size*0.35, flowerEye)
}
