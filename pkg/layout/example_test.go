package layout_test

import (
	"fmt"
	"math"

	"github.com/matzehuels/auroramap/pkg/layout"
	"github.com/matzehuels/auroramap/pkg/starmap"
)

func ExampleCompute() {
	g := starmap.Build([]starmap.SystemConnection{
		{SystemID: 1, SystemName: "Sol", ConnectedTo: []starmap.Link{{SystemID: 2}}},
		{SystemID: 2, SystemName: "Proxima Centauri", ConnectedTo: []starmap.Link{{SystemID: 3}}},
		{SystemID: 3, SystemName: "Wolf 359"},
	}, nil)

	layout.Compute(g, 0, layout.DefaultConfig())
	for _, n := range g.Nodes() {
		fmt.Printf("%s: depth %d, radius %.0f\n", n.Name, n.Depth, math.Hypot(n.X, n.Y))
	}
	// Output:
	// Sol: depth 0, radius 0
	// Proxima Centauri: depth 1, radius 250
	// Wolf 359: depth 2, radius 400
}
