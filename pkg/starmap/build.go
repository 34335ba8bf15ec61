package starmap

import "slices"

// Build creates the system graph from source records.
//
// pop may be nil. Build never fails: malformed references are skipped and
// counted in the returned graph's [BuildStats].
func Build(systems []SystemConnection, pop *PopulationData) *Graph {
	g := &Graph{nodes: make(map[int64]*Node, len(systems))}

	for i := range systems {
		s := &systems[i]
		if _, dup := g.nodes[s.SystemID]; dup {
			g.stats.DuplicateSystems++
			continue
		}
		g.nodes[s.SystemID] = &Node{ID: s.SystemID, Name: s.SystemName}
		g.order = append(g.order, s.SystemID)
	}
	slices.Sort(g.order)

	seen := make(map[int64]bool, len(systems))
	for i := range systems {
		s := &systems[i]
		if seen[s.SystemID] {
			continue
		}
		seen[s.SystemID] = true
		addLinks(g, g.nodes[s.SystemID], s.ConnectedTo)
	}

	if pop != nil {
		attachPopulation(g, pop)
	}

	for _, id := range g.order {
		n := g.nodes[id]
		for _, nid := range n.ConnectedIDs {
			if nid <= id {
				continue
			}
			e := Edge{A: id, B: nid, GateFromA: n.GateTo(nid)}
			if other, ok := g.nodes[nid]; ok {
				e.GateFromB = other.GateTo(id)
			}
			g.edges = append(g.edges, e)
		}
	}
	return g
}

func addLinks(g *Graph, n *Node, links []Link) {
	for _, l := range links {
		switch {
		case l.SystemID == n.ID:
			g.stats.SelfLinks++
			continue
		case g.nodes[l.SystemID] == nil:
			g.stats.DanglingLinks++
			continue
		}
		if n.gates == nil {
			n.gates = make(map[int64]int64)
		}
		gate, linked := n.gates[l.SystemID]
		if linked {
			g.stats.DuplicateLinks++
		} else {
			n.ConnectedIDs = append(n.ConnectedIDs, l.SystemID)
		}
		if gate == 0 {
			n.gates[l.SystemID] = l.GateRaceID
		}
	}
	n.Degree = len(n.ConnectedIDs)
}

func attachPopulation(g *Graph, pop *PopulationData) {
	byName := make(map[string]*ColonyRecord, len(pop.Colonies))
	for i := range pop.Colonies {
		c := &pop.Colonies[i]
		if _, ok := byName[c.Name]; !ok {
			byName[c.Name] = c
		}
	}

	for _, sd := range pop.SystemDistribution {
		n, ok := g.FindByName(sd.SystemName)
		if !ok {
			g.stats.UnmatchedPopulation++
			continue
		}
		n.Population = sd.TotalPopulation
		n.Colonies = make([]Colony, 0, len(sd.Colonies))
		for _, name := range sd.Colonies {
			col := Colony{Name: name}
			if rec, ok := byName[name]; ok {
				col.Population = rec.Population
				col.BodyName = rec.BodyName
			}
			n.Colonies = append(n.Colonies, col)
		}
		n.HasColony = true
	}

	for _, rec := range pop.Colonies {
		if rec.ControllingRaceName == "" || rec.ControllingRaceName == pop.RaceName {
			continue
		}
		n, ok := g.FindByName(rec.SystemName)
		if !ok {
			g.stats.UnmatchedPopulation++
			continue
		}
		n.Colonies = append(n.Colonies, Colony{
			Name:         rec.Name,
			BodyName:     rec.BodyName,
			Population:   rec.Population,
			ControlledBy: rec.ControllingRaceName,
		})
		n.HasColony = true
		g.stats.ForeignColonies++
	}
}

// Restore rebuilds a graph from nodes that were built before, for example
// nodes decoded from a layout document. Node fields are kept as given;
// connected ids are copied, skipping those that point outside the node set,
// back at the node itself or repeat an earlier id. Edges are derived with
// the same rule as [Build].
func Restore(nodes []*Node) *Graph {
	g := &Graph{nodes: make(map[int64]*Node, len(nodes))}
	for _, n := range nodes {
		if _, dup := g.nodes[n.ID]; dup {
			g.stats.DuplicateSystems++
			continue
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}
	slices.Sort(g.order)

	for _, id := range g.order {
		n := g.nodes[id]
		kept := make([]int64, 0, len(n.ConnectedIDs))
		for _, nid := range n.ConnectedIDs {
			switch _, ok := g.nodes[nid]; {
			case nid == id:
				g.stats.SelfLinks++
			case !ok:
				g.stats.DanglingLinks++
			case slices.Contains(kept, nid):
				g.stats.DuplicateLinks++
			default:
				kept = append(kept, nid)
			}
		}
		n.ConnectedIDs = kept
		n.Degree = len(kept)
	}

	for _, id := range g.order {
		n := g.nodes[id]
		for _, nid := range n.ConnectedIDs {
			if nid > id {
				g.edges = append(g.edges, Edge{A: id, B: nid, GateFromA: n.GateTo(nid), GateFromB: g.nodes[nid].GateTo(id)})
			}
		}
	}
	return g
}
