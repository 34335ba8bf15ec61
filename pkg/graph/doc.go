// Package graph provides the serialization format for laid-out star maps.
//
// This package defines the canonical wire format for auroramap layouts,
// used for layout.json files, API responses, caching and re-rendering
// without touching the save database again.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Layout]: Serialization type (this package)
//   - pkg/starmap.Graph: Internal system graph
//   - pkg/layout.Result: Internal level and ring assignment
//
// Use [Export] and [Import] to convert between them.
//
// # Layout Serialization
//
// Layouts use a flat node-link JSON format with positions attached:
//
//	{
//	  "version": 1,
//	  "rootId": 1,
//	  "rings": [0, 250],
//	  "levels": [[1], [2, 3]],
//	  "nodes": [{"id": 1, "name": "Sol", "x": 0, "y": 0, ...}],
//	  "edges": [{"a": 1, "b": 2, "gateFromA": 623}]
//	}
//
// Node colors and sizes are precomputed so that thin clients can draw the
// map without reimplementing the style rules.
package graph
