// Package viewport implements pan and zoom state for a 2D map view.
//
// Model coordinates are mapped to the screen as
//
//	screen = center + (pan + model*scale)
//
// where center is the middle of the viewport. The identity transform thus
// shows the model origin in the middle of the screen at scale 1.
package viewport

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Zoom limits and step factors.
const (
	MinScale = 0.1
	MaxScale = 5.0

	WheelZoomIn  = 1.1
	WheelZoomOut = 0.9

	ButtonZoomIn  = 1.2
	ButtonZoomOut = 0.8
)

// clickSlop is how far a pointer may travel between down and up and still
// count as a click.
const clickSlop = 3.0

// Transform is the pan offset and zoom factor of a view.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Identity returns the transform {0, 0, 1}.
func Identity() Transform { return Transform{Scale: 1} }

// Pan returns the pan offset as a vector.
func (t Transform) Pan() r2.Vec { return r2.Vec{X: t.X, Y: t.Y} }

// Option configures a Controller.
type Option func(*Controller)

// WithScaleBounds overrides the zoom limits.
func WithScaleBounds(min, max float64) Option {
	return func(c *Controller) {
		c.minScale, c.maxScale = min, max
	}
}

// WithTransform sets the initial transform.
func WithTransform(t Transform) Option {
	return func(c *Controller) { c.t = t }
}

// Controller owns the transform of one view and updates it from input
// events. It is not safe for concurrent use.
type Controller struct {
	t             Transform
	width, height float64
	minScale      float64
	maxScale      float64

	dragging bool
	moved    bool
	origin   r2.Vec
	last     r2.Vec
}

// New creates a controller for a viewport of the given size.
func New(width, height float64, opts ...Option) *Controller {
	c := &Controller{
		t:        Identity(),
		width:    width,
		height:   height,
		minScale: MinScale,
		maxScale: MaxScale,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.t }

// Size returns the viewport size.
func (c *Controller) Size() (width, height float64) { return c.width, c.height }

// Resize changes the viewport size. The model point at the center stays
// at the center.
func (c *Controller) Resize(width, height float64) {
	c.width, c.height = width, height
}

// Center returns the screen position of the viewport center.
func (c *Controller) Center() r2.Vec {
	return r2.Vec{X: c.width / 2, Y: c.height / 2}
}

// Apply maps a model point to screen coordinates.
func (c *Controller) Apply(model r2.Vec) r2.Vec {
	return r2.Add(c.Center(), r2.Add(c.t.Pan(), r2.Scale(c.t.Scale, model)))
}

// Invert maps a screen point to model coordinates.
func (c *Controller) Invert(screen r2.Vec) r2.Vec {
	return r2.Scale(1/c.t.Scale, r2.Sub(r2.Sub(screen, c.Center()), c.t.Pan()))
}

// ZoomAt multiplies the scale by delta keeping the model point under the
// screen position p fixed. If the new scale would leave the allowed range
// nothing changes and ZoomAt returns false.
func (c *Controller) ZoomAt(p r2.Vec, delta float64) bool {
	scale := c.t.Scale * delta
	if scale < c.minScale || scale > c.maxScale {
		return false
	}
	q := r2.Sub(p, c.Center())
	pan := r2.Sub(q, r2.Scale(delta, r2.Sub(q, c.t.Pan())))
	c.t = Transform{X: pan.X, Y: pan.Y, Scale: scale}
	return true
}

// Wheel zooms at p by one wheel step. A positive deltaY (scrolling down)
// zooms out.
func (c *Controller) Wheel(p r2.Vec, deltaY float64) bool {
	if deltaY > 0 {
		return c.ZoomAt(p, WheelZoomOut)
	}
	return c.ZoomAt(p, WheelZoomIn)
}

// ZoomIn zooms in one button step around the viewport center.
func (c *Controller) ZoomIn() bool { return c.ZoomAt(c.Center(), ButtonZoomIn) }

// ZoomOut zooms out one button step around the viewport center.
func (c *Controller) ZoomOut() bool { return c.ZoomAt(c.Center(), ButtonZoomOut) }

// PanBy adds a screen-space offset to the pan.
func (c *Controller) PanBy(dx, dy float64) {
	c.t.X += dx
	c.t.Y += dy
}

// PointerDown starts a drag at p.
func (c *Controller) PointerDown(p r2.Vec) {
	c.dragging = true
	c.moved = false
	c.origin = p
	c.last = p
}

// PointerMove pans by the movement since the last event while a drag is
// active. It reports whether the transform changed.
func (c *Controller) PointerMove(p r2.Vec) bool {
	if !c.dragging {
		return false
	}
	d := r2.Sub(p, c.last)
	c.last = p
	if r2.Norm(r2.Sub(p, c.origin)) > clickSlop {
		c.moved = true
	}
	if d.X == 0 && d.Y == 0 {
		return false
	}
	c.PanBy(d.X, d.Y)
	return true
}

// PointerUp ends a drag. It reports whether the gesture was a click, that
// is the pointer never left the click slop around its press position.
func (c *Controller) PointerUp() (click bool) {
	click = c.dragging && !c.moved
	c.dragging = false
	c.moved = false
	return click
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// Reset restores the identity transform and cancels any drag.
func (c *Controller) Reset() {
	c.t = Identity()
	c.dragging = false
	c.moved = false
}

// CenterOn pans so that the model point lands on the viewport center at
// the current scale.
func (c *Controller) CenterOn(model r2.Vec) {
	c.t.X = -model.X * c.t.Scale
	c.t.Y = -model.Y * c.t.Scale
}

// Fit centers the model origin and picks the largest scale within the
// bounds at which a disc of the given radius fits the viewport.
func (c *Controller) Fit(radius float64) {
	c.t = Identity()
	if radius <= 0 || c.width <= 0 || c.height <= 0 {
		return
	}
	scale := min(c.width, c.height) / (2 * radius)
	c.t.Scale = max(c.minScale, min(c.maxScale, scale))
}
