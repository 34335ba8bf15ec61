package starmap

import (
	"slices"
	"testing"
)

func sys(id int64, name string, links ...Link) SystemConnection {
	return SystemConnection{SystemID: id, SystemName: name, ConnectedTo: links, ConnectionCount: len(links)}
}

func to(id int64) Link { return Link{SystemID: id} }

func gated(id, race int64) Link { return Link{SystemID: id, GateRaceID: race} }

func TestBuildEdgesEmittedOnce(t *testing.T) {
	g := Build([]SystemConnection{
		sys(1, "Sol", to(2), to(3)),
		sys(2, "B", to(1), to(3)),
		sys(3, "C", to(1), to(2)),
	}, nil)

	want := []Edge{{A: 1, B: 2}, {A: 1, B: 3}, {A: 2, B: 3}}
	if got := g.Edges(); !slices.Equal(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}
	for _, n := range g.Nodes() {
		if n.Degree != 2 {
			t.Errorf("node %d degree = %d, want 2", n.ID, n.Degree)
		}
	}
}

func TestBuildDropsDanglingAndSelfLinks(t *testing.T) {
	g := Build([]SystemConnection{
		sys(1, "Sol", to(2), to(99), to(1)),
		sys(2, "B", to(1)),
	}, nil)

	if got := len(g.Edges()); got != 1 {
		t.Fatalf("len(Edges()) = %d, want 1", got)
	}
	sol, _ := g.Node(1)
	if !slices.Equal(sol.ConnectedIDs, []int64{2}) {
		t.Errorf("ConnectedIDs = %v, want [2]", sol.ConnectedIDs)
	}
	st := g.Stats()
	if st.DanglingLinks != 1 || st.SelfLinks != 1 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestBuildDeduplicatesRepeatedLinks(t *testing.T) {
	g := Build([]SystemConnection{
		sys(1, "Sol", to(2), gated(2, 7)),
		sys(2, "B"),
	}, nil)

	sol, _ := g.Node(1)
	if sol.Degree != 1 || len(sol.ConnectedIDs) != 1 {
		t.Errorf("degree = %d, connected = %v", sol.Degree, sol.ConnectedIDs)
	}
	if gate := sol.GateTo(2); gate != 7 {
		t.Errorf("GateTo(2) = %d, want 7", gate)
	}
	if st := g.Stats(); st.DuplicateLinks != 1 || st.DanglingLinks != 0 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestBuildAsymmetricLinkFromHigherIDEmitsNoEdge(t *testing.T) {
	g := Build([]SystemConnection{
		sys(1, "A"),
		sys(2, "B", to(1)),
	}, nil)
	if len(g.Edges()) != 0 {
		t.Errorf("Edges() = %v, want none", g.Edges())
	}
	b, _ := g.Node(2)
	if b.Degree != 1 {
		t.Errorf("degree = %d, want 1", b.Degree)
	}
}

func TestBuildGateAttributes(t *testing.T) {
	g := Build([]SystemConnection{
		sys(1, "Sol", gated(2, 623), gated(3, 623)),
		sys(2, "B", gated(1, 623)),
		sys(3, "C", to(1)),
	}, nil)

	edges := g.Edges()
	if len(edges) != 2 {
		t.Fatalf("len(Edges()) = %d", len(edges))
	}
	if e := edges[0]; e.GateFromA != 623 || e.GateFromB != 623 || e.Gated() != 2 {
		t.Errorf("Sol-B edge = %+v", e)
	}
	if e := edges[1]; e.GateFromA != 623 || e.GateFromB != 0 || e.Gated() != 1 {
		t.Errorf("Sol-C edge = %+v", e)
	}
}

func TestBuildNodesAscending(t *testing.T) {
	g := Build([]SystemConnection{sys(30, "C"), sys(10, "A"), sys(20, "B")}, nil)
	if got := g.IDs(); !slices.Equal(got, []int64{10, 20, 30}) {
		t.Errorf("IDs() = %v", got)
	}
}

func TestBuildDuplicateSystemFirstWins(t *testing.T) {
	g := Build([]SystemConnection{sys(1, "Sol"), sys(1, "Impostor")}, nil)
	n, _ := g.Node(1)
	if n.Name != "Sol" || g.Len() != 1 {
		t.Errorf("node = %+v, len = %d", n, g.Len())
	}
	if g.Stats().DuplicateSystems != 1 {
		t.Errorf("DuplicateSystems = %d", g.Stats().DuplicateSystems)
	}
}

func TestBuildPopulation(t *testing.T) {
	pop := &PopulationData{
		RaceName: "Imperium",
		Colonies: []ColonyRecord{
			{Name: "Earth", Population: 850.5, SystemName: "Sol", BodyName: "Earth"},
			{Name: "Mars", Population: 12, SystemName: "Sol", BodyName: "Mars"},
		},
		SystemDistribution: []SystemDistribution{
			{SystemName: "Sol", ColonyCount: 3, TotalPopulation: 862.5, Colonies: []string{"Earth", "Mars", "Luna"}},
		},
	}
	g := Build([]SystemConnection{sys(1, "Sol", to(2)), sys(2, "B", to(1))}, pop)

	sol, _ := g.Node(1)
	if !sol.HasColony || sol.Population != 862.5 {
		t.Fatalf("sol = %+v", sol)
	}
	want := []Colony{
		{Name: "Earth", BodyName: "Earth", Population: 850.5},
		{Name: "Mars", BodyName: "Mars", Population: 12},
		{Name: "Luna"},
	}
	if !slices.Equal(sol.Colonies, want) {
		t.Errorf("Colonies = %+v, want %+v", sol.Colonies, want)
	}
	b, _ := g.Node(2)
	if b.HasColony {
		t.Error("B should not have a colony")
	}
}

func TestBuildPopulationUnmatchedName(t *testing.T) {
	pop := &PopulationData{
		SystemDistribution: []SystemDistribution{{SystemName: "Vega", TotalPopulation: 5}},
	}
	g := Build([]SystemConnection{sys(1, "Sol"), sys(2, "B")}, pop)

	for _, n := range g.Nodes() {
		if n.HasColony || n.Population != 0 {
			t.Errorf("node %s gained population: %+v", n.Name, n)
		}
	}
	if g.Stats().UnmatchedPopulation != 1 {
		t.Errorf("UnmatchedPopulation = %d", g.Stats().UnmatchedPopulation)
	}
}

func TestBuildPopulationDuplicateNameFirstMatch(t *testing.T) {
	pop := &PopulationData{
		SystemDistribution: []SystemDistribution{{SystemName: "Twin", TotalPopulation: 3}},
	}
	g := Build([]SystemConnection{sys(8, "Twin"), sys(4, "Twin")}, pop)

	first, _ := g.Node(4)
	second, _ := g.Node(8)
	if !first.HasColony || second.HasColony {
		t.Errorf("lowest id should win: first=%v second=%v", first.HasColony, second.HasColony)
	}
}

func TestBuildForeignColonies(t *testing.T) {
	pop := &PopulationData{
		RaceName: "Imperium",
		Colonies: []ColonyRecord{
			{Name: "Home", Population: 100, SystemName: "Sol", ControllingRaceName: "Imperium"},
			{Name: "Outpost", Population: 2, SystemName: "B", BodyName: "B II", ControllingRaceName: "Hegemony"},
			{Name: "Lost", Population: 1, SystemName: "Nowhere", ControllingRaceName: "Hegemony"},
		},
		SystemDistribution: []SystemDistribution{{SystemName: "Sol", TotalPopulation: 100, Colonies: []string{"Home"}}},
	}
	g := Build([]SystemConnection{sys(1, "Sol"), sys(2, "B")}, pop)

	b, _ := g.Node(2)
	if !b.HasColony || !b.HasForeignColony() || b.ForeignController() != "Hegemony" {
		t.Errorf("B = %+v", b)
	}
	if b.Population != 0 {
		t.Errorf("foreign colonies must not add population, got %v", b.Population)
	}
	sol, _ := g.Node(1)
	if sol.HasForeignColony() {
		t.Error("own colonies are not foreign")
	}
	if got := g.Factions(); !slices.Equal(got, []string{"Hegemony"}) {
		t.Errorf("Factions() = %v", got)
	}
	if st := g.Stats(); st.ForeignColonies != 1 || st.UnmatchedPopulation != 1 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestGraphLookups(t *testing.T) {
	g := Build([]SystemConnection{sys(1, "Sol", to(2), to(3)), sys(2, "B"), sys(3, "C")}, nil)

	if n, ok := g.FindByName("C"); !ok || n.ID != 3 {
		t.Errorf("FindByName(C) = %v, %v", n, ok)
	}
	if _, ok := g.FindByName("Nope"); ok {
		t.Error("FindByName should miss")
	}
	var names []string
	for _, n := range g.Neighbors(1) {
		names = append(names, n.Name)
	}
	if !slices.Equal(names, []string{"B", "C"}) {
		t.Errorf("Neighbors(1) = %v", names)
	}
	if g.Neighbors(42) != nil {
		t.Error("Neighbors of unknown id should be nil")
	}
}

func TestBuildEmpty(t *testing.T) {
	g := Build(nil, nil)
	if !g.Empty() || g.Len() != 0 || len(g.Edges()) != 0 {
		t.Errorf("empty build produced %d nodes", g.Len())
	}
}

func TestRestore(t *testing.T) {
	cIDs := []int64{1, 7, 3}
	solIDs := []int64{3, 3}
	a := &Node{ID: 3, Name: "C", ConnectedIDs: cIDs}
	b := &Node{ID: 1, Name: "Sol", ConnectedIDs: solIDs, HasColony: true, Population: 10}
	b.SetGate(3, 623)
	a.SetGate(1, 623)

	g := Restore([]*Node{a, b, {ID: 1, Name: "dup"}})
	if got := g.IDs(); !slices.Equal(got, []int64{1, 3}) {
		t.Fatalf("IDs() = %v", got)
	}
	if !slices.Equal(a.ConnectedIDs, []int64{1}) || a.Degree != 1 {
		t.Errorf("C connected = %v, degree %d", a.ConnectedIDs, a.Degree)
	}
	if !slices.Equal(b.ConnectedIDs, []int64{3}) || b.Degree != 1 {
		t.Errorf("Sol connected = %v, degree %d", b.ConnectedIDs, b.Degree)
	}
	if !slices.Equal(cIDs, []int64{1, 7, 3}) || !slices.Equal(solIDs, []int64{3, 3}) {
		t.Errorf("Restore changed the caller's slices: %v, %v", cIDs, solIDs)
	}
	want := []Edge{{A: 1, B: 3, GateFromA: 623, GateFromB: 623}}
	if !slices.Equal(g.Edges(), want) {
		t.Errorf("Edges() = %v, want %v", g.Edges(), want)
	}
	wantStats := BuildStats{DuplicateSystems: 1, DanglingLinks: 1, SelfLinks: 1, DuplicateLinks: 1}
	if st := g.Stats(); st != wantStats {
		t.Errorf("Stats() = %+v, want %+v", st, wantStats)
	}
	sol, _ := g.Node(1)
	if !sol.HasColony || sol.Population != 10 {
		t.Error("Restore must keep node fields")
	}
}

func TestNodeGates(t *testing.T) {
	var n Node
	n.SetGate(2, 5)
	n.SetGate(3, 0)
	if got := n.Gates(); len(got) != 1 || got[2] != 5 {
		t.Errorf("Gates() = %v", got)
	}
	n.SetGate(2, 0)
	if n.GateTo(2) != 0 {
		t.Error("SetGate(0) should clear the gate")
	}
}
