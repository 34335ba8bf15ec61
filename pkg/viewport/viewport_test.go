package viewport

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestNewStartsAtIdentity(t *testing.T) {
	c := New(800, 600)
	assert.Equal(t, Transform{X: 0, Y: 0, Scale: 1}, c.Transform())
	assert.Equal(t, r2.Vec{X: 400, Y: 300}, c.Apply(r2.Vec{}))
}

func TestZoomAtKeepsPointFixed(t *testing.T) {
	c := New(800, 600)
	c.PanBy(35, -20)
	p := r2.Vec{X: 610, Y: 120}
	model := c.Invert(p)

	require.True(t, c.ZoomAt(p, WheelZoomIn))
	got := c.Apply(model)
	assert.InDelta(t, p.X, got.X, 1e-9)
	assert.InDelta(t, p.Y, got.Y, 1e-9)
	assert.InDelta(t, 1.1, c.Transform().Scale, 1e-12)
}

func TestZoomAtFormula(t *testing.T) {
	c := New(0, 0, WithTransform(Transform{X: 10, Y: 20, Scale: 1}))
	require.True(t, c.ZoomAt(r2.Vec{X: 100, Y: 50}, 0.9))
	tr := c.Transform()
	// newPan = p - (p - pan) * delta
	assert.InDelta(t, 100-(100-10)*0.9, tr.X, 1e-12)
	assert.InDelta(t, 50-(50-20)*0.9, tr.Y, 1e-12)
	assert.InDelta(t, 0.9, tr.Scale, 1e-12)
}

func TestZoomOutOfBoundsIsNoop(t *testing.T) {
	c := New(800, 600, WithTransform(Transform{X: 5, Y: 6, Scale: 4.5}))
	before := c.Transform()
	assert.False(t, c.ZoomAt(r2.Vec{X: 1, Y: 2}, 1.2))
	assert.Equal(t, before, c.Transform())

	c = New(800, 600, WithTransform(Transform{Scale: 0.11}))
	assert.False(t, c.ZoomOut())
	assert.Equal(t, 0.11, c.Transform().Scale)
}

func TestWheelDirection(t *testing.T) {
	c := New(800, 600)
	require.True(t, c.Wheel(r2.Vec{X: 400, Y: 300}, 120))
	assert.InDelta(t, 0.9, c.Transform().Scale, 1e-12)

	c = New(800, 600)
	require.True(t, c.Wheel(r2.Vec{X: 400, Y: 300}, -120))
	assert.InDelta(t, 1.1, c.Transform().Scale, 1e-12)
}

func TestButtonZoomAnchorsCenter(t *testing.T) {
	c := New(800, 600)
	c.CenterOn(r2.Vec{X: 250, Y: -80})
	require.True(t, c.ZoomIn())
	got := c.Apply(r2.Vec{X: 250, Y: -80})
	assert.InDelta(t, 400, got.X, 1e-9)
	assert.InDelta(t, 300, got.Y, 1e-9)
}

func TestDragPans(t *testing.T) {
	c := New(800, 600)
	assert.False(t, c.PointerMove(r2.Vec{X: 10, Y: 10}), "move without drag must not pan")

	c.PointerDown(r2.Vec{X: 100, Y: 100})
	assert.True(t, c.Dragging())
	c.PointerMove(r2.Vec{X: 110, Y: 95})
	c.PointerMove(r2.Vec{X: 130, Y: 90})
	assert.False(t, c.PointerUp(), "a long drag is not a click")
	assert.False(t, c.Dragging())

	assert.Equal(t, Transform{X: 30, Y: -10, Scale: 1}, c.Transform())
}

func TestClickDetection(t *testing.T) {
	c := New(800, 600)
	c.PointerDown(r2.Vec{X: 100, Y: 100})
	c.PointerMove(r2.Vec{X: 101, Y: 101})
	assert.True(t, c.PointerUp())
	assert.False(t, c.PointerUp(), "no click without a press")
}

func TestReset(t *testing.T) {
	c := New(800, 600)
	c.PanBy(40, 40)
	c.ZoomIn()
	c.PointerDown(r2.Vec{})
	c.Reset()
	assert.Equal(t, Identity(), c.Transform())
	assert.False(t, c.Dragging())
}

func TestInvertRoundTrip(t *testing.T) {
	c := New(1024, 768, WithTransform(Transform{X: -37, Y: 12, Scale: 2.5}))
	m := r2.Vec{X: 123.5, Y: -400}
	back := c.Invert(c.Apply(m))
	assert.InDelta(t, m.X, back.X, 1e-9)
	assert.InDelta(t, m.Y, back.Y, 1e-9)
}

func TestResizeKeepsCenteredNode(t *testing.T) {
	c := New(800, 600)
	c.CenterOn(r2.Vec{X: 10, Y: 20})
	c.Resize(1000, 500)
	assert.Equal(t, r2.Vec{X: 500, Y: 250}, c.Apply(r2.Vec{X: 10, Y: 20}))
	w, h := c.Size()
	assert.Equal(t, 1000.0, w)
	assert.Equal(t, 500.0, h)
}

func TestViewportProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("zooming in never exceeds the maximum scale", prop.ForAll(
		func(steps int) bool {
			c := New(800, 600)
			for range steps {
				c.ZoomIn()
				if c.Transform().Scale > MaxScale {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 100),
	))

	properties.Property("zooming out never goes below the minimum scale", prop.ForAll(
		func(steps int) bool {
			c := New(800, 600)
			for range steps {
				c.Wheel(r2.Vec{X: 13, Y: 7}, 1)
				if c.Transform().Scale < MinScale {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 100),
	))

	properties.Property("centering puts the node exactly at the viewport center", prop.ForAll(
		func(x, y, scale, w, h float64) bool {
			c := New(w, h, WithTransform(Transform{X: 3, Y: -9, Scale: scale}))
			c.CenterOn(r2.Vec{X: x, Y: y})
			got := c.Apply(r2.Vec{X: x, Y: y})
			return got.X == w/2 && got.Y == h/2
		},
		gen.Float64Range(-5000, 5000),
		gen.Float64Range(-5000, 5000),
		gen.Float64Range(MinScale, MaxScale),
		gen.Float64Range(100, 4000),
		gen.Float64Range(100, 4000),
	))

	properties.TestingRun(t)
}

func TestCenterOnExact(t *testing.T) {
	c := New(801, 599, WithTransform(Transform{Scale: 1.1 * 1.1 * 0.9}))
	node := r2.Vec{X: 0.1 + 0.2, Y: -math.Pi * 100}
	c.CenterOn(node)
	assert.Equal(t, r2.Vec{X: 400.5, Y: 299.5}, c.Apply(node))
}

func TestFit(t *testing.T) {
	c := New(800, 600)
	c.PanBy(30, 40)
	c.Fit(600)
	assert.Equal(t, Transform{Scale: 0.5}, c.Transform())

	c.Fit(10)
	assert.Equal(t, MaxScale, c.Transform().Scale, "fit is clamped to the zoom bounds")

	c.Fit(0)
	assert.Equal(t, Identity(), c.Transform())
}
