package starmap

import (
	"slices"
	"strings"
)

// Colony is a colony attached to a node.
type Colony struct {
	Name       string  `json:"name"`
	BodyName   string  `json:"bodyName"`
	Population float64 `json:"population"`

	// ControlledBy names the foreign race holding the colony, if any.
	ControlledBy string `json:"controlledBy,omitempty"`
}

// Foreign reports whether the colony is held by another race.
func (c Colony) Foreign() bool { return c.ControlledBy != "" }

// Node is a star system in the graph.
type Node struct {
	ID           int64
	Name         string
	Degree       int
	ConnectedIDs []int64
	Population   float64
	Colonies     []Colony
	HasColony    bool

	// Set by layout.
	Depth int
	X, Y  float64

	gates map[int64]int64
}

// GateTo returns the gate race recorded on this node's link to id, or zero.
func (n *Node) GateTo(id int64) int64 {
	return n.gates[id]
}

// SetGate records the gate race on this node's link to id.
func (n *Node) SetGate(id, race int64) {
	if race == 0 {
		delete(n.gates, id)
		return
	}
	if n.gates == nil {
		n.gates = make(map[int64]int64)
	}
	n.gates[id] = race
}

// Gates returns a copy of the non-zero gate races keyed by neighbor id.
func (n *Node) Gates() map[int64]int64 {
	out := make(map[int64]int64, len(n.gates))
	for id, race := range n.gates {
		if race != 0 {
			out[id] = race
		}
	}
	return out
}

// HasForeignColony reports whether any colony at the node is foreign-held.
func (n *Node) HasForeignColony() bool {
	for _, c := range n.Colonies {
		if c.Foreign() {
			return true
		}
	}
	return false
}

// ForeignController returns the first foreign race holding a colony here.
func (n *Node) ForeignController() string {
	for _, c := range n.Colonies {
		if c.Foreign() {
			return c.ControlledBy
		}
	}
	return ""
}

// Edge is an undirected connection with A < B.
type Edge struct {
	A, B      int64
	GateFromA int64
	GateFromB int64
}

// Gated reports how many ends of the edge carry a jump gate.
func (e Edge) Gated() int {
	n := 0
	if e.GateFromA != 0 {
		n++
	}
	if e.GateFromB != 0 {
		n++
	}
	return n
}

// Touches reports whether id is one of the edge's endpoints.
func (e Edge) Touches(id int64) bool { return e.A == id || e.B == id }

// BuildStats counts input records Build had to skip. A repeated link is
// counted in DuplicateLinks; its gate still applies when the first was 0.
type BuildStats struct {
	DuplicateSystems    int
	DanglingLinks       int
	SelfLinks           int
	DuplicateLinks      int
	UnmatchedPopulation int
	ForeignColonies     int
}

// Graph is the undirected system graph produced by [Build].
type Graph struct {
	nodes map[int64]*Node
	order []int64
	edges []Edge
	stats BuildStats
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Empty reports whether the graph has no nodes.
func (g *Graph) Empty() bool { return len(g.order) == 0 }

// Node returns the node with the given id.
func (g *Graph) Node(id int64) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in ascending id order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// IDs returns all node ids in ascending order.
func (g *Graph) IDs() []int64 { return slices.Clone(g.order) }

// Edges returns the deduplicated edges in emission order.
func (g *Graph) Edges() []Edge { return g.edges }

// Stats returns what Build skipped.
func (g *Graph) Stats() BuildStats { return g.stats }

// FindByName returns the first node (lowest id) whose name equals name.
func (g *Graph) FindByName(name string) (*Node, bool) {
	for _, id := range g.order {
		if n := g.nodes[id]; n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// Neighbors returns the nodes id links to, in link order.
func (g *Graph) Neighbors(id int64) []*Node {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	out := make([]*Node, 0, len(n.ConnectedIDs))
	for _, nid := range n.ConnectedIDs {
		out = append(out, g.nodes[nid])
	}
	return out
}

// Factions returns the distinct foreign colony controllers, sorted by name.
func (g *Graph) Factions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range g.order {
		for _, c := range g.nodes[id].Colonies {
			if c.Foreign() && !seen[c.ControlledBy] {
				seen[c.ControlledBy] = true
				out = append(out, c.ControlledBy)
			}
		}
	}
	slices.SortFunc(out, strings.Compare)
	return out
}
