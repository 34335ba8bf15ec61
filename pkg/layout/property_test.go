package layout

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/auroramap/pkg/starmap"
)

func randomGraph(seed uint64, n int) *starmap.Graph {
	r := rand.New(rand.NewPCG(seed, 7))
	systems := make([]starmap.SystemConnection, n)
	for i := range systems {
		var links []starmap.Link
		for range r.IntN(4) {
			links = append(links, starmap.Link{SystemID: int64(r.IntN(n) + 1)})
		}
		name := "S"
		if i == 0 && r.IntN(2) == 0 {
			name = "Sol"
		}
		systems[i] = starmap.SystemConnection{SystemID: int64(i + 1), SystemName: name, ConnectedTo: links}
	}
	return starmap.Build(systems, nil)
}

func TestLayoutProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)
	cfg := DefaultConfig()

	properties.Property("root sits at the origin with depth 0", prop.ForAll(
		func(seed uint64, n int) bool {
			g := randomGraph(seed, n)
			res := Compute(g, 0, cfg)
			root, ok := g.Node(res.RootID)
			return ok && root.Depth == 0 && root.X == 0 && root.Y == 0
		},
		gen.UInt64(),
		gen.IntRange(1, 60),
	))

	properties.Property("every node lies on the ring of its depth", prop.ForAll(
		func(seed uint64, n int) bool {
			g := randomGraph(seed, n)
			Compute(g, 0, cfg)
			for _, node := range g.Nodes() {
				if node.Depth < 0 {
					return false
				}
				want := cfg.Radius(node.Depth)
				got := math.Hypot(node.X, node.Y)
				if math.Abs(got-want) > 1e-6*math.Max(1, want) {
					return false
				}
			}
			return true
		},
		gen.UInt64(),
		gen.IntRange(1, 60),
	))

	properties.Property("placement alone keeps the ring invariant", prop.ForAll(
		func(seed uint64, n int) bool {
			g := randomGraph(seed, n)
			root, _ := ChooseRoot(g, 0, cfg.RootName)
			p := Place(g, root, cfg)
			for d, ids := range p.Levels {
				for _, id := range ids {
					v := p.Pos[id]
					if math.Abs(math.Hypot(v.X, v.Y)-cfg.Radius(d)) > 1e-6*math.Max(1, cfg.Radius(d)) {
						return false
					}
				}
			}
			return true
		},
		gen.UInt64(),
		gen.IntRange(1, 60),
	))

	properties.Property("every node is assigned exactly one level", prop.ForAll(
		func(seed uint64, n int) bool {
			g := randomGraph(seed, n)
			res := Compute(g, 0, cfg)
			count := 0
			seen := make(map[int64]bool)
			for _, ids := range res.Levels {
				for _, id := range ids {
					if seen[id] {
						return false
					}
					seen[id] = true
					count++
				}
			}
			return count == g.Len()
		},
		gen.UInt64(),
		gen.IntRange(1, 60),
	))

	properties.TestingRun(t)
}
