package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/auroramap/pkg/layout"
	"github.com/matzehuels/auroramap/pkg/starmap"
)

// sampleMap is Sol linked to Alpha (gated both ways) and Barnard (gated
// from Sol only), with colonies on Sol and Alpha and a foreign outpost in
// Barnard.
func sampleMap(t *testing.T) (*starmap.Graph, *layout.Result) {
	t.Helper()
	systems := []starmap.SystemConnection{
		{SystemID: 1, SystemName: "Sol", ConnectedTo: []starmap.Link{
			{SystemID: 2, GateRaceID: 623}, {SystemID: 3, GateRaceID: 623},
		}},
		{SystemID: 2, SystemName: "Alpha Centauri", ConnectedTo: []starmap.Link{{SystemID: 1, GateRaceID: 623}}},
		{SystemID: 3, SystemName: "Barnard's Star", ConnectedTo: []starmap.Link{{SystemID: 1}}},
		{SystemID: 4, SystemName: "Lonely"},
	}
	pop := &starmap.PopulationData{
		RaceName: "Terran Federation",
		Colonies: []starmap.ColonyRecord{
			{Name: "Earth", Population: 850, SystemName: "Sol", BodyName: "Earth"},
			{Name: "Proxima Base", Population: 5, SystemName: "Alpha Centauri", BodyName: "Proxima b"},
			{Name: "Outpost", Population: 0.2, SystemName: "Barnard's Star", ControllingRaceName: "Martian Republic"},
		},
		SystemDistribution: []starmap.SystemDistribution{
			{SystemName: "Sol", ColonyCount: 1, TotalPopulation: 850, Colonies: []string{"Earth"}},
			{SystemName: "Alpha Centauri", ColonyCount: 1, TotalPopulation: 5, Colonies: []string{"Proxima Base"}},
		},
	}
	g := starmap.Build(systems, pop)
	return g, layout.Compute(g, 0, layout.DefaultConfig())
}

func TestNodeColor(t *testing.T) {
	factions := map[string]string{"Martian Republic": "#00AA00"}
	tests := []struct {
		name string
		node starmap.Node
		want string
	}{
		{"Root", starmap.Node{ID: 1, HasColony: true, Population: 500}, ColorRoot},
		{"Uninhabited", starmap.Node{ID: 2}, ColorUninhabited},
		{"Large", starmap.Node{ID: 2, HasColony: true, Population: 101}, ColorLarge},
		{"LargeBoundary", starmap.Node{ID: 2, HasColony: true, Population: 100}, ColorMedium},
		{"Medium", starmap.Node{ID: 2, HasColony: true, Population: 11}, ColorMedium},
		{"Small", starmap.Node{ID: 2, HasColony: true, Population: 1.5}, ColorSmall},
		{"Minor", starmap.Node{ID: 2, HasColony: true, Population: 1}, ColorMinor},
		{"Faction", starmap.Node{ID: 2, HasColony: true, Colonies: []starmap.Colony{{ControlledBy: "Martian Republic"}}}, "#00AA00"},
		{"UnknownFaction", starmap.Node{ID: 2, HasColony: true, Colonies: []starmap.Colony{{ControlledBy: "Hive"}}}, ColorForeign},
		{"RootBeatsFaction", starmap.Node{ID: 1, HasColony: true, Colonies: []starmap.Colony{{ControlledBy: "Hive"}}}, ColorRoot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NodeColor(&tt.node, 1, factions); got != tt.want {
				t.Errorf("NodeColor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNodeSize(t *testing.T) {
	if got := NodeSize(&starmap.Node{}); got != 3 {
		t.Errorf("uninhabited size = %v, want 3", got)
	}
	if got := NodeSize(&starmap.Node{HasColony: true, Population: 9}); got != 7 {
		t.Errorf("colony size = %v, want 7", got)
	}
	if got := NodeSize(&starmap.Node{HasColony: true}); got != 4 {
		t.Errorf("empty colony size = %v, want 4", got)
	}
}

func TestStyleEdge(t *testing.T) {
	tests := []struct {
		name     string
		edge     starmap.Edge
		selected int64
		kind     EdgeKind
		color    string
		from     int64
		width    float64
	}{
		{"Neutral", starmap.Edge{A: 1, B: 2}, 0, EdgeNeutral, ColorEdge, 0, 0.75},
		{"Gated", starmap.Edge{A: 1, B: 2, GateFromA: 5, GateFromB: 6}, 0, EdgeGated, ColorGate, 0, 0.75},
		{"HalfFromA", starmap.Edge{A: 1, B: 2, GateFromA: 5}, 0, EdgeHalfGated, ColorGate, 1, 0.75},
		{"HalfFromB", starmap.Edge{A: 1, B: 2, GateFromB: 5}, 0, EdgeHalfGated, ColorGate, 2, 0.75},
		{"SelectedNeutral", starmap.Edge{A: 1, B: 2}, 2, EdgeNeutral, ColorSelected, 0, 1.5},
		{"SelectedGated", starmap.Edge{A: 1, B: 2, GateFromA: 5, GateFromB: 5}, 1, EdgeGated, ColorGate, 0, 1.5},
		{"OtherSelected", starmap.Edge{A: 1, B: 2}, 3, EdgeNeutral, ColorEdge, 0, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := StyleEdge(tt.edge, tt.selected)
			if s.Kind != tt.kind || s.Color != tt.color || s.From != tt.from || s.Width != tt.width {
				t.Errorf("StyleEdge() = %+v, want kind %v color %s from %d width %v", s, tt.kind, tt.color, tt.from, tt.width)
			}
		})
	}
}

func TestBuildEmpty(t *testing.T) {
	g := starmap.Build(nil, nil)
	s := Build(g, layout.Compute(g, 0, layout.DefaultConfig()), Focus{}, nil)
	if !s.Empty() || s.Message != EmptyMessage {
		t.Fatalf("Build(empty) message = %q", s.Message)
	}
	if len(s.Marks) != 0 || len(s.Lines) != 0 {
		t.Error("empty scene must not carry primitives")
	}
}

func TestBuildScene(t *testing.T) {
	g, res := sampleMap(t)
	s := Build(g, res, Focus{}, map[string]string{"Martian Republic": "#00AA00"})

	if s.Empty() {
		t.Fatal("scene unexpectedly empty")
	}
	if s.RootID != 1 {
		t.Errorf("RootID = %d, want 1", s.RootID)
	}
	// Levels: {Sol}, {Alpha, Barnard}, {Lonely}.
	if len(s.Rings) != 2 || s.Rings[0].Radius != 250 || s.Rings[1].Radius != 400 {
		t.Errorf("Rings = %+v", s.Rings)
	}
	if len(s.Lines) != 2 || len(s.Marks) != 4 {
		t.Fatalf("got %d lines, %d marks", len(s.Lines), len(s.Marks))
	}

	sol, _ := s.Mark(1)
	if sol.Color != ColorRoot || !sol.Glow || sol.Label != "Sol (850.0)" || sol.LabelColor != ColorLabel {
		t.Errorf("Sol mark = %+v", sol)
	}
	barnard, _ := s.Mark(3)
	if barnard.Color != "#00AA00" {
		t.Errorf("Barnard color = %s, want faction color", barnard.Color)
	}
	lonely, _ := s.Mark(4)
	if lonely.Glow || lonely.LabelColor != ColorLabelDim || lonely.Label != "Lonely" {
		t.Errorf("Lonely mark = %+v", lonely)
	}
	if s.Extent < 400 {
		t.Errorf("Extent = %v, want at least the outer ring", s.Extent)
	}
}

func TestBuildHighlightsSelection(t *testing.T) {
	g, res := sampleMap(t)
	s := Build(g, res, Focus{Selected: 2, Hovered: 4}, nil)

	lit := map[int64]bool{}
	for _, m := range s.Marks {
		lit[m.ID] = m.Highlight
	}
	want := map[int64]bool{1: true, 2: true, 3: false, 4: true}
	for id, w := range want {
		if lit[id] != w {
			t.Errorf("highlight[%d] = %v, want %v", id, lit[id], w)
		}
	}
	// Highlighted marks are drawn after the rest.
	if s.Marks[0].ID != 3 {
		t.Errorf("first mark = %d, want the only unlit system 3", s.Marks[0].ID)
	}
	last := s.Lines[len(s.Lines)-1]
	if last.A != 2 && last.B != 2 {
		t.Errorf("last line = %+v, want the selected edge", last)
	}
	alpha, _ := s.Mark(2)
	if !alpha.Selected || !alpha.LabelBold || alpha.LabelColor != ColorSelected {
		t.Errorf("selected mark = %+v", alpha)
	}
}

func TestDescribe(t *testing.T) {
	g, res := sampleMap(t)

	info, ok := Describe(g, res.RootID, 1)
	if !ok {
		t.Fatal("Describe(1) not found")
	}
	if !info.Root || info.Connections != 2 || len(info.Neighbors) != 2 {
		t.Errorf("info = %+v", info)
	}
	if nb := info.Neighbors[1]; nb.ID != 3 || nb.GateOut != 623 || nb.GateIn != 0 {
		t.Errorf("Barnard neighbor = %+v", nb)
	}
	text := info.String()
	for _, want := range []string{"Sol (#1)", "Root system", "Earth: 850.00m", "Barnard's Star [gate]"} {
		if !strings.Contains(text, want) {
			t.Errorf("info text missing %q:\n%s", want, text)
		}
	}

	if _, ok := Describe(g, res.RootID, 99); ok {
		t.Error("Describe(99) should not be found")
	}
}

func TestTooltip(t *testing.T) {
	g, _ := sampleMap(t)
	n, _ := g.Node(3)
	tip := Tooltip(n)
	if !strings.Contains(tip, "Outpost: 0.20m (Martian Republic)") {
		t.Errorf("Tooltip() = %q", tip)
	}
	if !strings.HasSuffix(tip, "Connections: 1") {
		t.Errorf("Tooltip() = %q", tip)
	}
}

func TestLegend(t *testing.T) {
	g, res := sampleMap(t)
	legend := Legend(g, res.RootID, nil)
	if legend[0].Color != ColorRoot || legend[0].Label != "Root: Sol (850.0m)" {
		t.Errorf("legend[0] = %+v", legend[0])
	}
	if legend[1].Label != "Martian Republic colony" || legend[1].Color != ColorForeign {
		t.Errorf("legend[1] = %+v", legend[1])
	}
}
