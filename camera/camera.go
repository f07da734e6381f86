// Package camera provides a 2D camera for viewport control over the bounded
// growth field.
package camera

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// glide holds active tweens for an animated camera move.
type glide struct {
	x, y, zoom *gween.Tween
}

// Camera controls the viewport into the field.
// Supports pan and zoom; the view never leaves the field.
type Camera struct {
	// Position is the camera center in field coordinates
	X, Y float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Field dimensions
	WorldW, WorldH float32

	// Zoom constraints
	MinZoom, MaxZoom float32

	glide *glide
}

// New creates a camera centered on the field with the smallest zoom that
// keeps the viewport inside it.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	c := &Camera{
		X:         worldW / 2,
		Y:         worldH / 2,
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		MaxZoom:   6.0,
	}
	c.MinZoom = minZoom(viewportW, viewportH, worldW, worldH)
	c.Zoom = max(1.0, c.MinZoom)
	c.clampCenter()
	return c
}

// At zoom Z the visible area is (viewportW/Z, viewportH/Z), which must not
// exceed the field.
func minZoom(viewportW, viewportH, worldW, worldH float32) float32 {
	return max(viewportW/worldW, viewportH/worldH)
}

// WorldToScreen converts field coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to field coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// Scale converts a field length to screen pixels.
func (c *Camera) Scale(length float32) float32 {
	return length * c.Zoom
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = minZoom(viewportW, viewportH, c.WorldW, c.WorldH)
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.glide = nil
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.glide = nil
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor while keeping the field point under (sx, sy) fixed
// on screen.
func (c *Camera) ZoomAt(sx, sy, factor float32) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.ZoomBy(factor)
	nx, ny := c.ScreenToWorld(sx, sy)
	c.X += wx - nx
	c.Y += wy - ny
	c.clampCenter()
}

// GlideTo animates the camera to center (x, y) at the given zoom.
func (c *Camera) GlideTo(x, y, zoom, duration float32, easeFn ease.TweenFunc) {
	zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.glide = &glide{
		x:    gween.New(c.X, x, duration, easeFn),
		y:    gween.New(c.Y, y, duration, easeFn),
		zoom: gween.New(c.Zoom, zoom, duration, easeFn),
	}
}

// Gliding reports whether an animated move is in progress.
func (c *Camera) Gliding() bool {
	return c.glide != nil
}

// Update advances an active glide by dt seconds.
func (c *Camera) Update(dt float32) {
	if c.glide == nil {
		return
	}
	x, doneX := c.glide.x.Update(dt)
	y, doneY := c.glide.y.Update(dt)
	z, doneZ := c.glide.zoom.Update(dt)
	c.X, c.Y = x, y
	c.Zoom = clamp(z, c.MinZoom, c.MaxZoom)
	c.clampCenter()
	if doneX && doneY && doneZ {
		c.glide = nil
	}
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.glide = nil
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.SetZoom(1.0)
}

// VisibleWorldBounds returns the field-coordinate bounds of the visible area
// as (minX, minY, maxX, maxY).
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = c.X - halfW
	maxX = c.X + halfW
	minY = c.Y - halfH
	maxY = c.Y + halfH
	return
}

// clampCenter keeps the visible area inside the field.
func (c *Camera) clampCenter() {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	c.X = clampAxis(c.X, halfW, c.WorldW)
	c.Y = clampAxis(c.Y, halfH, c.WorldH)
}

// clampAxis centers the view when it is wider than the field.
func clampAxis(center, half, size float32) float32 {
	if 2*half >= size {
		return size / 2
	}
	return clamp(center, half, size-half)
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
