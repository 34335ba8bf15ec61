// Package starmap turns raw star-system connectivity and colony records into
// an undirected system graph.
//
// # Input
//
// A [Dataset] bundles what a data source extracts from a game save: one
// [SystemConnection] per surveyed system with its outgoing jump links, and an
// optional [PopulationData] describing the viewing race's colonies. The JSON
// field names match the extraction format, so files written by older tools
// load unchanged:
//
//	ds, err := starmap.ReadDatasetFile("campaign.json")
//	g := starmap.Build(ds.Systems, ds.Population)
//
// # Graph
//
// [Build] creates one [Node] per system record and exactly one [Edge] per
// undirected connection. Links are kept in the direction they were recorded;
// an edge {a, b} is emitted only when the lower-id system lists the
// higher-id one. Links to unknown systems and self-links are dropped.
//
// Population is joined to nodes by system name. The first node (lowest id)
// with a matching name receives the system's totals; names that match no
// node are skipped and counted in [BuildStats].
//
// Nodes carry Depth and position fields that are left zero by Build and
// filled in by the layout package.
package starmap
