package starmap_test

import (
	"fmt"

	"github.com/matzehuels/auroramap/pkg/starmap"
)

func ExampleBuild() {
	systems := []starmap.SystemConnection{
		{SystemID: 1, SystemName: "Sol", ConnectedTo: []starmap.Link{{SystemID: 2, GateRaceID: 623}, {SystemID: 3}}},
		{SystemID: 2, SystemName: "Alpha Centauri", ConnectedTo: []starmap.Link{{SystemID: 1, GateRaceID: 623}}},
		{SystemID: 3, SystemName: "Barnards Star", ConnectedTo: []starmap.Link{{SystemID: 1}}},
	}

	g := starmap.Build(systems, nil)
	for _, e := range g.Edges() {
		a, _ := g.Node(e.A)
		b, _ := g.Node(e.B)
		fmt.Printf("%s - %s (gated ends: %d)\n", a.Name, b.Name, e.Gated())
	}
	// Output:
	// Sol - Alpha Centauri (gated ends: 2)
	// Sol - Barnards Star (gated ends: 0)
}
