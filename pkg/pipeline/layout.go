package pipeline

import (
	"github.com/google/uuid"

	"github.com/matzehuels/auroramap/pkg/errors"
	"github.com/matzehuels/auroramap/pkg/graph"
	"github.com/matzehuels/auroramap/pkg/layout"
	"github.com/matzehuels/auroramap/pkg/palette"
	"github.com/matzehuels/auroramap/pkg/render"
	"github.com/matzehuels/auroramap/pkg/starmap"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout builds the star map graph from ds and lays it out.
//
// The root is opts.RootID when it names a system, else the race's capital
// system, else the system named opts.Layout.RootName, else the lowest id.
// Every layout gets a fresh id.
func GenerateLayout(ds *starmap.Dataset, opts Options) (graph.Layout, error) {
	opts.SetLayoutDefaults()

	g := starmap.Build(ds.Systems, ds.Population)
	factions, err := palette.AssignFactions(g.Factions(), []string{render.ColorBackground}, opts.Seed)
	if err != nil {
		return graph.Layout{}, errors.Wrap(errors.ErrCodeInternal, err, "assign faction colors")
	}

	root := opts.RootID
	if _, ok := g.Node(root); !ok {
		root = ds.CapitalSystemID
	}
	res := layout.Compute(g, root, opts.Layout)

	doc := graph.Export(g, res, factions)
	doc.ID = uuid.NewString()
	if ds.Population != nil {
		doc.RaceName = ds.Population.RaceName
	}

	s := g.Stats()
	opts.Logger.Debug("built star map",
		"systems", g.Len(),
		"edges", len(g.Edges()),
		"dangling", s.DanglingLinks,
		"duplicate_links", s.DuplicateLinks,
		"unmatched_population", s.UnmatchedPopulation,
		"root", res.RootID,
		"levels", len(res.Levels))
	return doc, nil
}
