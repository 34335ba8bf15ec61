package layout

import (
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/auroramap/pkg/starmap"
)

// Placement is the result of [Place]: the BFS layering and the position of
// every node.
type Placement struct {
	RootID int64
	Levels [][]int64
	Parent map[int64]int64
	Pos    map[int64]r2.Vec
}

// Depth returns the ring index of every node.
func (p *Placement) Depth() map[int64]int {
	out := make(map[int64]int, len(p.Pos))
	for d, ids := range p.Levels {
		for _, id := range ids {
			out[id] = d
		}
	}
	return out
}

// Reached returns the number of levels reached from the root by traversal.
// Levels beyond hold disconnected nodes.
func (p *Placement) Reached() int {
	n := 1
	for d := 1; d < len(p.Levels); d++ {
		if _, ok := p.Parent[p.Levels[d][0]]; !ok {
			break
		}
		n++
	}
	return n
}

// ChooseRoot picks the layout center: preferred if it names a node, else
// the first node named cfg.RootName, else the lowest id. It returns false
// for an empty graph.
func ChooseRoot(g *starmap.Graph, preferred int64, rootName string) (int64, bool) {
	if g.Empty() {
		return 0, false
	}
	if preferred != 0 {
		if _, ok := g.Node(preferred); ok {
			return preferred, true
		}
	}
	if rootName != "" {
		if n, ok := g.FindByName(rootName); ok {
			return n.ID, true
		}
	}
	return g.IDs()[0], true
}

// Place layers g breadth-first from root and assigns initial ring positions.
func Place(g *starmap.Graph, root int64, cfg Config) *Placement {
	p := &Placement{
		RootID: root,
		Parent: make(map[int64]int64),
		Pos:    make(map[int64]r2.Vec, g.Len()),
	}
	if _, ok := g.Node(root); !ok {
		return p
	}

	p.Levels = layer(g, root, p.Parent)
	p.Pos[root] = r2.Vec{}

	for d := 1; d < len(p.Levels); d++ {
		radius := cfg.Radius(d)
		sectors := make(map[int][]int64)
		for _, id := range p.Levels[d] {
			angle := 0.0
			if parent, ok := p.Parent[id]; ok {
				pp := p.Pos[parent]
				angle = math.Atan2(pp.Y, pp.X)
			}
			k := cfg.sectorOf(angle)
			sectors[k] = append(sectors[k], id)
		}

		width := cfg.sectorWidth()
		for _, k := range slices.Sorted(maps.Keys(sectors)) {
			ids := sectors[k]
			start := cfg.sectorStart(k)
			for i, id := range ids {
				angle := start + width*(float64(i)+0.5)/float64(len(ids))
				p.Pos[id] = r2.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
			}
		}
	}
	return p
}

// layer runs an explicit-queue BFS from root. The first node to reach a
// neighbor becomes its parent. Unreached nodes each get a trailing level.
func layer(g *starmap.Graph, root int64, parent map[int64]int64) [][]int64 {
	depth := map[int64]int{root: 0}
	levels := [][]int64{{root}}
	queue := []int64{root}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n, _ := g.Node(id)
		for _, nid := range n.ConnectedIDs {
			if _, seen := depth[nid]; seen {
				continue
			}
			d := depth[id] + 1
			depth[nid] = d
			parent[nid] = id
			if d == len(levels) {
				levels = append(levels, nil)
			}
			levels[d] = append(levels[d], nid)
			queue = append(queue, nid)
		}
	}

	for _, id := range g.IDs() {
		if _, seen := depth[id]; !seen {
			depth[id] = len(levels)
			levels = append(levels, []int64{id})
		}
	}
	return levels
}
