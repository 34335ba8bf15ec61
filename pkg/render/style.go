package render

import (
	"math"

	"github.com/matzehuels/auroramap/pkg/palette"
	"github.com/matzehuels/auroramap/pkg/starmap"
)

// Colors used by the style rules.
const (
	ColorRoot        = "#FFD700"
	ColorForeign     = palette.FallbackFactionColor
	ColorLarge       = "#FF5733"
	ColorMedium      = "#FFC300"
	ColorSmall       = "#33A8FF"
	ColorMinor       = "#85C1E9"
	ColorUninhabited = "#9BA5B7"

	ColorGate     = "#FFA500"
	ColorEdge     = "#8B95A5"
	ColorSelected = "#FFFFFF"

	ColorRing       = "#2D3748"
	ColorLabel      = "#B2B9C5"
	ColorLabelDim   = "#6C757D"
	ColorBackground = "#111827"
)

// Population tier thresholds in millions.
const (
	TierLarge  = 100
	TierMedium = 10
	TierSmall  = 1
)

// Gradient stops for edges gated at one end.
const (
	GateStop    = 0.45
	NeutralStop = 0.55
)

// NodeSize returns the drawn radius of n.
func NodeSize(n *starmap.Node) float64 {
	if !n.HasColony {
		return 3
	}
	return 4 + 3*math.Log10(n.Population+1)
}

// NodeColor returns the fill color of n. factions maps foreign race names
// to colors; a missing entry falls back to [ColorForeign].
func NodeColor(n *starmap.Node, rootID int64, factions map[string]string) string {
	switch {
	case n.ID == rootID:
		return ColorRoot
	case n.HasForeignColony():
		if c, ok := factions[n.ForeignController()]; ok && c != "" {
			return c
		}
		return ColorForeign
	case !n.HasColony:
		return ColorUninhabited
	case n.Population > TierLarge:
		return ColorLarge
	case n.Population > TierMedium:
		return ColorMedium
	case n.Population > TierSmall:
		return ColorSmall
	default:
		return ColorMinor
	}
}

// EdgeKind classifies an edge by its jump gates.
type EdgeKind int

const (
	EdgeNeutral EdgeKind = iota
	EdgeHalfGated
	EdgeGated
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeGated:
		return "gated"
	case EdgeHalfGated:
		return "half-gated"
	default:
		return "neutral"
	}
}

// EdgeStyle is the stroke of one edge.
//
// For [EdgeHalfGated] edges From is the gated end: the stroke runs from
// [ColorGate] at From to [ColorEdge] at the other end.
type EdgeStyle struct {
	Kind    EdgeKind
	Color   string
	From    int64
	Width   float64
	Opacity float64
}

// StyleEdge returns the stroke for e. Edges touching selected are drawn
// wider and opaque; pass 0 when nothing is selected.
func StyleEdge(e starmap.Edge, selected int64) EdgeStyle {
	s := EdgeStyle{Color: ColorEdge, Width: 0.75, Opacity: 0.5}
	switch {
	case e.Gated() == 2:
		s.Kind, s.Color = EdgeGated, ColorGate
	case e.GateFromA != 0:
		s.Kind, s.Color, s.From = EdgeHalfGated, ColorGate, e.A
	case e.GateFromB != 0:
		s.Kind, s.Color, s.From = EdgeHalfGated, ColorGate, e.B
	}
	if selected != 0 && e.Touches(selected) {
		s.Width, s.Opacity = 1.5, 1
		if s.Kind == EdgeNeutral {
			s.Color = ColorSelected
		}
	}
	return s
}
