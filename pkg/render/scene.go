package render

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/auroramap/pkg/layout"
	"github.com/matzehuels/auroramap/pkg/starmap"
)

// EmptyMessage is shown in place of a map with no systems.
const EmptyMessage = "No systems found"

// Focus is the transient interaction state that affects drawing.
// Zero ids mean nothing is selected or hovered.
type Focus struct {
	Selected int64
	Hovered  int64
}

// Ring is a dashed level circle around the root.
type Ring struct {
	Depth  int
	Radius float64
}

// Line is a styled edge between two positioned systems.
type Line struct {
	A, B           int64
	X1, Y1, X2, Y2 float64
	Style          EdgeStyle
}

// Mark is a styled, positioned system.
type Mark struct {
	ID        int64
	Name      string
	X, Y      float64
	Size      float64
	Color     string
	Glow      bool
	Highlight bool
	Selected  bool
	Hovered   bool

	Label      string
	LabelColor string
	LabelBold  bool
	Tooltip    string
}

// LegendEntry pairs a swatch color with its meaning.
type LegendEntry struct {
	Color string
	Label string
}

// Scene is a format-independent drawing of a star map.
type Scene struct {
	// Message is set instead of primitives when there is nothing to draw.
	Message string

	RootID int64
	Rings  []Ring
	Lines  []Line
	Marks  []Mark
	Legend []LegendEntry

	// Extent is the largest distance of any drawn primitive from the root.
	Extent float64
}

// Empty reports whether the scene shows the empty state.
func (s *Scene) Empty() bool { return s.Message != "" }

// Mark returns the mark for id.
func (s *Scene) Mark(id int64) (Mark, bool) {
	for _, m := range s.Marks {
		if m.ID == id {
			return m, true
		}
	}
	return Mark{}, false
}

// Build draws g with the positions of res. factions maps foreign race
// names to colors and may be nil.
//
// Marks are ordered so that highlighted systems are drawn last; among
// equals the order is ascending id.
func Build(g *starmap.Graph, res *layout.Result, focus Focus, factions map[string]string) *Scene {
	if g.Empty() || res == nil || res.Empty() {
		return &Scene{Message: EmptyMessage}
	}

	s := &Scene{RootID: res.RootID}
	for d, r := range res.Rings {
		if d == 0 {
			continue
		}
		s.Rings = append(s.Rings, Ring{Depth: d, Radius: r})
		s.Extent = math.Max(s.Extent, r)
	}

	for _, e := range g.Edges() {
		a, _ := g.Node(e.A)
		b, _ := g.Node(e.B)
		s.Lines = append(s.Lines, Line{
			A: e.A, B: e.B,
			X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y,
			Style: StyleEdge(e, focus.Selected),
		})
	}
	// Selected edges on top.
	slices.SortStableFunc(s.Lines, func(x, y Line) int {
		return cmpBool(x.Style.Width > 1, y.Style.Width > 1)
	})

	lit := highlighted(g, focus)
	for _, n := range g.Nodes() {
		m := Mark{
			ID:        n.ID,
			Name:      n.Name,
			X:         n.X,
			Y:         n.Y,
			Size:      NodeSize(n),
			Color:     NodeColor(n, res.RootID, factions),
			Glow:      n.HasColony,
			Highlight: lit[n.ID],
			Selected:  n.ID == focus.Selected,
			Hovered:   n.ID == focus.Hovered,
			Label:     Label(n),
			Tooltip:   Tooltip(n),
		}
		switch {
		case m.Highlight:
			m.LabelColor, m.LabelBold = ColorSelected, true
		case n.HasColony:
			m.LabelColor = ColorLabel
		default:
			m.LabelColor = ColorLabelDim
		}
		s.Marks = append(s.Marks, m)
		s.Extent = math.Max(s.Extent, math.Hypot(n.X, n.Y)+m.Size)
	}
	slices.SortStableFunc(s.Marks, func(x, y Mark) int {
		return cmpBool(x.Highlight, y.Highlight)
	})

	s.Legend = Legend(g, res.RootID, factions)
	return s
}

// highlighted returns the selected node, its neighbors and the hovered node.
func highlighted(g *starmap.Graph, focus Focus) map[int64]bool {
	lit := make(map[int64]bool)
	if focus.Hovered != 0 {
		lit[focus.Hovered] = true
	}
	if n, ok := g.Node(focus.Selected); ok {
		lit[n.ID] = true
		for _, id := range n.ConnectedIDs {
			lit[id] = true
		}
	}
	return lit
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

// Label returns the text drawn next to n.
func Label(n *starmap.Node) string {
	if n.HasColony {
		return fmt.Sprintf("%s (%.1f)", n.Name, n.Population)
	}
	return n.Name
}
