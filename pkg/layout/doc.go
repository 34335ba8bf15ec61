// Package layout computes ring coordinates for a star map.
//
// Layout runs in two stages over a [starmap.Graph]:
//
//  1. [Place] picks a root, layers the graph breadth-first and puts every
//     node on the ring of its depth. Siblings are grouped into angular
//     sectors by the direction of their parent, so branches stay together.
//  2. [Relax] runs a fixed number of passes of inverse-square repulsion
//     between nodes of the same ring, then snaps every node back onto its
//     ring. Only angles change.
//
// [Compute] runs both and writes Depth, X and Y back onto the graph nodes.
//
// The root sits at the origin. A node at depth d sits at distance
// BaseRadius + LevelSpacing*d. Nodes the traversal never reaches are each
// given their own ring beyond the deepest reached one.
package layout
