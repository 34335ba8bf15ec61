package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/auroramap/pkg/layout"
	"github.com/matzehuels/auroramap/pkg/render"
	"github.com/matzehuels/auroramap/pkg/starmap"
)

// Version is the current layout document version.
const Version = 1

// =============================================================================
// Layout - Serialized Star Map
// =============================================================================

// Layout is a laid-out star map ready for rendering.
type Layout struct {
	Version  int                `json:"version"`
	ID       string             `json:"id,omitempty"`
	RaceName string             `json:"raceName,omitempty"`
	RootID   int64              `json:"rootId"`
	Rings    []float64          `json:"rings"`
	Levels   [][]int64          `json:"levels"`
	Parent   map[int64]int64    `json:"parent,omitempty"`
	Reached  int                `json:"reached"`
	Nodes    []Node             `json:"nodes"`
	Edges    []Edge             `json:"edges"`
	Factions map[string]string  `json:"factions,omitempty"`
	Stats    starmap.BuildStats `json:"stats"`
}

// Node is a positioned system.
type Node struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Depth        int              `json:"depth"`
	X            float64          `json:"x"`
	Y            float64          `json:"y"`
	Degree       int              `json:"degree"`
	ConnectedIDs []int64          `json:"connected"`
	Gates        map[int64]int64  `json:"gates,omitempty"`
	Population   float64          `json:"population,omitempty"`
	HasColony    bool             `json:"hasColony,omitempty"`
	Colonies     []starmap.Colony `json:"colonies,omitempty"`

	// Precomputed style.
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

// Edge is an undirected jump link.
type Edge struct {
	A         int64 `json:"a"`
	B         int64 `json:"b"`
	GateFromA int64 `json:"gateFromA,omitempty"`
	GateFromB int64 `json:"gateFromB,omitempty"`
}

// Empty reports whether the layout has no systems.
func (l *Layout) Empty() bool { return len(l.Nodes) == 0 }

// =============================================================================
// Conversion
// =============================================================================

// Export converts a laid-out graph to its serialized form. factions maps
// foreign race names to their colors and may be nil.
func Export(g *starmap.Graph, res *layout.Result, factions map[string]string) Layout {
	l := Layout{
		Version:  Version,
		RootID:   res.RootID,
		Rings:    slices.Clone(res.Rings),
		Reached:  res.Reached,
		Factions: factions,
		Stats:    g.Stats(),
		Nodes:    make([]Node, 0, g.Len()),
		Edges:    make([]Edge, 0, len(g.Edges())),
	}
	for _, lvl := range res.Levels {
		l.Levels = append(l.Levels, slices.Clone(lvl))
	}
	if len(res.Parent) > 0 {
		l.Parent = make(map[int64]int64, len(res.Parent))
		for k, v := range res.Parent {
			l.Parent[k] = v
		}
	}

	for _, n := range g.Nodes() {
		gates := n.Gates()
		if len(gates) == 0 {
			gates = nil
		}
		l.Nodes = append(l.Nodes, Node{
			ID:           n.ID,
			Name:         n.Name,
			Depth:        n.Depth,
			X:            n.X,
			Y:            n.Y,
			Degree:       n.Degree,
			ConnectedIDs: slices.Clone(n.ConnectedIDs),
			Gates:        gates,
			Population:   n.Population,
			HasColony:    n.HasColony,
			Colonies:     slices.Clone(n.Colonies),
			Size:         render.NodeSize(n),
			Color:        render.NodeColor(n, res.RootID, factions),
		})
	}
	for _, e := range g.Edges() {
		l.Edges = append(l.Edges, Edge(e))
	}
	return l
}

// Import rebuilds the graph and layout result from a serialized layout.
// Edges are rederived from the nodes' connected ids and gates.
func Import(l Layout) (*starmap.Graph, *layout.Result) {
	nodes := make([]*starmap.Node, 0, len(l.Nodes))
	for _, ln := range l.Nodes {
		n := &starmap.Node{
			ID:           ln.ID,
			Name:         ln.Name,
			ConnectedIDs: slices.Clone(ln.ConnectedIDs),
			Population:   ln.Population,
			Colonies:     slices.Clone(ln.Colonies),
			HasColony:    ln.HasColony,
			Depth:        ln.Depth,
			X:            ln.X,
			Y:            ln.Y,
		}
		for id, race := range ln.Gates {
			n.SetGate(id, race)
		}
		nodes = append(nodes, n)
	}
	g := starmap.Restore(nodes)

	res := &layout.Result{
		RootID:  l.RootID,
		Rings:   slices.Clone(l.Rings),
		Reached: l.Reached,
		Parent:  make(map[int64]int64, len(l.Parent)),
	}
	for _, lvl := range l.Levels {
		res.Levels = append(res.Levels, slices.Clone(lvl))
	}
	for k, v := range l.Parent {
		res.Parent[k] = v
	}
	return g, res
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Version == 0 {
		l.Version = Version
	}
	if err := validate(l); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayout writes a Layout as JSON to w.
func WriteLayout(l Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}

func validate(l Layout) error {
	if l.Version > Version {
		return fmt.Errorf("layout version %d is newer than supported version %d", l.Version, Version)
	}
	if len(l.Nodes) == 0 {
		return nil
	}
	found := false
	for _, n := range l.Nodes {
		if n.ID == l.RootID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("layout root %d is not among its nodes", l.RootID)
	}
	if len(l.Rings) < len(l.Levels) {
		return fmt.Errorf("layout has %d levels but only %d rings", len(l.Levels), len(l.Rings))
	}
	return nil
}
