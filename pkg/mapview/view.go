package mapview

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/auroramap/pkg/layout"
	"github.com/matzehuels/auroramap/pkg/render"
	"github.com/matzehuels/auroramap/pkg/starmap"
	"github.com/matzehuels/auroramap/pkg/viewport"
)

// DefaultHitRadius is the minimum screen radius around a system that
// still counts as a hit.
const DefaultHitRadius = 6.0

// State is the transient interaction state. Zero ids mean none.
type State struct {
	Selected   int64
	Hovered    int64
	SearchOpen bool
	Term       string
	Results    []int64
}

// Option configures a View.
type Option func(*View)

// WithHitRadius overrides [DefaultHitRadius].
func WithHitRadius(px float64) Option {
	return func(v *View) { v.hitRadius = px }
}

// WithViewport passes options to the underlying viewport controller.
func WithViewport(opts ...viewport.Option) Option {
	return func(v *View) { v.vpOpts = append(v.vpOpts, opts...) }
}

// View is one interactive star map. It is not safe for concurrent use.
type View struct {
	g        *starmap.Graph
	res      *layout.Result
	factions map[string]string

	vp        *viewport.Controller
	vpOpts    []viewport.Option
	hitRadius float64
	state     State
	pointer   r2.Vec
}

// New creates a view of size width×height showing g laid out as res.
func New(g *starmap.Graph, res *layout.Result, factions map[string]string, width, height float64, opts ...Option) *View {
	v := &View{g: g, res: res, factions: factions, hitRadius: DefaultHitRadius}
	for _, opt := range opts {
		opt(v)
	}
	v.vp = viewport.New(width, height, v.vpOpts...)
	return v
}

// State returns a copy of the interaction state.
func (v *View) State() State {
	s := v.state
	s.Results = append([]int64(nil), v.state.Results...)
	return s
}

// Viewport returns the view's viewport controller.
func (v *View) Viewport() *viewport.Controller { return v.vp }

// Graph returns the displayed graph.
func (v *View) Graph() *starmap.Graph { return v.g }

// Layout returns the displayed layout.
func (v *View) Layout() *layout.Result { return v.res }

// Empty reports whether there is nothing to show.
func (v *View) Empty() bool { return v.g.Empty() || v.res == nil || v.res.Empty() }

// SetMap replaces the displayed map, for example after a reload. The
// selection and hover survive if their systems still exist; the search is
// rerun against the new graph.
func (v *View) SetMap(g *starmap.Graph, res *layout.Result, factions map[string]string) {
	v.g, v.res, v.factions = g, res, factions
	if _, ok := g.Node(v.state.Selected); !ok {
		v.state.Selected = 0
	}
	if _, ok := g.Node(v.state.Hovered); !ok {
		v.state.Hovered = 0
	}
	v.state.Results = Search(g, v.state.Term)
}

// Scene returns the drawing for the current state.
func (v *View) Scene() *render.Scene {
	return render.Build(v.g, v.res, render.Focus{Selected: v.state.Selected, Hovered: v.state.Hovered}, v.factions)
}

// Info returns the detail panel of the selected system.
func (v *View) Info() (render.Info, bool) {
	if v.state.Selected == 0 || v.Empty() {
		return render.Info{}, false
	}
	return render.Describe(v.g, v.res.RootID, v.state.Selected)
}

// Tooltip returns the hover text, or "" when nothing is hovered.
func (v *View) Tooltip() string {
	n, ok := v.g.Node(v.state.Hovered)
	if !ok {
		return ""
	}
	return render.Tooltip(n)
}

// Handle applies e and reports whether the view changed.
func (v *View) Handle(e Event) bool {
	switch e := e.(type) {
	case PointerDown:
		v.pointer = r2.Vec{X: e.X, Y: e.Y}
		v.vp.PointerDown(v.pointer)
		return false
	case PointerMove:
		v.pointer = r2.Vec{X: e.X, Y: e.Y}
		if v.vp.PointerMove(v.pointer) {
			return true
		}
		if v.vp.Dragging() {
			return false
		}
		return v.hover(v.HitTest(v.pointer))
	case PointerUp:
		if v.vp.PointerUp() {
			if id, ok := v.HitTest(v.pointer); ok {
				v.toggle(id)
				return true
			}
		}
		return false
	case Wheel:
		return v.vp.Wheel(r2.Vec{X: e.X, Y: e.Y}, e.DeltaY)
	case ZoomIn:
		return v.vp.ZoomIn()
	case ZoomOut:
		return v.vp.ZoomOut()
	case Reset:
		v.vp.Reset()
		v.state.Selected = 0
		return true
	case Resize:
		v.vp.Resize(e.Width, e.Height)
		return true
	case ToggleSearch:
		v.state.SearchOpen = !v.state.SearchOpen
		if !v.state.SearchOpen {
			v.state.Term, v.state.Results = "", nil
		}
		return true
	case SearchInput:
		v.state.Term = e.Term
		v.state.Results = Search(v.g, e.Term)
		return true
	case SelectNode:
		return v.focus(e.ID)
	case SelectResult:
		if e.Index < 0 || e.Index >= len(v.state.Results) {
			return false
		}
		id := v.state.Results[e.Index]
		v.state.SearchOpen, v.state.Term, v.state.Results = false, "", nil
		v.focus(id)
		return true
	}
	return false
}

// HitTest returns the system drawn under the screen point p. When several
// overlap the closest wins.
func (v *View) HitTest(p r2.Vec) (int64, bool) {
	if v.Empty() {
		return 0, false
	}
	scale := v.vp.Transform().Scale
	best, bestD2 := int64(0), math.Inf(1)
	for _, n := range v.g.Nodes() {
		d2 := r2.Norm2(r2.Sub(v.vp.Apply(r2.Vec{X: n.X, Y: n.Y}), p))
		r := math.Max(render.NodeSize(n)*scale, v.hitRadius)
		if d2 <= r*r && d2 < bestD2 {
			best, bestD2 = n.ID, d2
		}
	}
	return best, !math.IsInf(bestD2, 1)
}

func (v *View) hover(id int64, ok bool) bool {
	if !ok {
		id = 0
	}
	if id == v.state.Hovered {
		return false
	}
	v.state.Hovered = id
	return true
}

func (v *View) toggle(id int64) {
	if v.state.Selected == id {
		v.state.Selected = 0
		return
	}
	v.state.Selected = id
}

// focus selects id and centers the viewport on it.
func (v *View) focus(id int64) bool {
	n, ok := v.g.Node(id)
	if !ok {
		return false
	}
	v.state.Selected = id
	v.vp.CenterOn(r2.Vec{X: n.X, Y: n.Y})
	return true
}
