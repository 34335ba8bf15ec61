package layout

import (
	"github.com/matzehuels/auroramap/pkg/starmap"
)

// Result describes a finished layout.
type Result struct {
	RootID int64
	Levels [][]int64
	Parent map[int64]int64
	// Rings holds the radius of every level; Rings[0] is 0.
	Rings []float64
	// Reached is the number of levels connected to the root.
	Reached int
}

// Empty reports whether the layout has no nodes.
func (r *Result) Empty() bool { return len(r.Levels) == 0 }

// Compute places and relaxes g around root, writing Depth, X and Y onto
// the graph nodes. A root of 0 selects the root with [ChooseRoot]. An
// empty graph yields an empty result.
func Compute(g *starmap.Graph, root int64, cfg Config) *Result {
	cfg.SetDefaults()

	id, ok := ChooseRoot(g, root, cfg.RootName)
	if !ok {
		return &Result{}
	}

	p := Place(g, id, cfg)
	Relax(p, cfg)

	depth := p.Depth()
	for _, n := range g.Nodes() {
		pos := p.Pos[n.ID]
		n.Depth = depth[n.ID]
		n.X, n.Y = pos.X, pos.Y
	}

	rings := make([]float64, len(p.Levels))
	for d := range rings {
		rings[d] = cfg.Radius(d)
	}
	return &Result{
		RootID:  id,
		Levels:  p.Levels,
		Parent:  p.Parent,
		Rings:   rings,
		Reached: p.Reached(),
	}
}
