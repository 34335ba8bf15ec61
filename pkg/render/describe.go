package render

import (
	"fmt"
	"strings"

	"github.com/matzehuels/auroramap/pkg/starmap"
)

// Tooltip returns the hover text for n.
func Tooltip(n *starmap.Node) string {
	var b strings.Builder
	b.WriteString(n.Name)
	if n.HasColony {
		fmt.Fprintf(&b, "\nPopulation: %.2fm", n.Population)
		for _, c := range n.Colonies {
			b.WriteString("\n  ")
			b.WriteString(colonyLine(c))
		}
	}
	fmt.Fprintf(&b, "\nConnections: %d", n.Degree)
	return b.String()
}

func colonyLine(c starmap.Colony) string {
	s := c.Name
	if c.BodyName != "" && c.BodyName != c.Name {
		s += " [" + c.BodyName + "]"
	}
	s += fmt.Sprintf(": %.2fm", c.Population)
	if c.Foreign() {
		s += " (" + c.ControlledBy + ")"
	}
	return s
}

// Neighbor is a linked system as listed in [Info].
type Neighbor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// GateOut and GateIn are the gate races on the outgoing and
	// returning jump points.
	GateOut int64 `json:"gateOut,omitempty"`
	GateIn  int64 `json:"gateIn,omitempty"`
}

// Info is the detail panel of a selected system.
type Info struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Depth       int              `json:"depth"`
	Connections int              `json:"connections"`
	Population  float64          `json:"population"`
	Colonies    []starmap.Colony `json:"colonies,omitempty"`
	Neighbors   []Neighbor       `json:"neighbors"`
	Root        bool             `json:"root,omitempty"`
}

// Describe returns the info panel for id.
func Describe(g *starmap.Graph, rootID, id int64) (Info, bool) {
	n, ok := g.Node(id)
	if !ok {
		return Info{}, false
	}
	info := Info{
		ID:          n.ID,
		Name:        n.Name,
		Depth:       n.Depth,
		Connections: n.Degree,
		Population:  n.Population,
		Colonies:    n.Colonies,
		Neighbors:   make([]Neighbor, 0, n.Degree),
		Root:        n.ID == rootID,
	}
	for _, nb := range g.Neighbors(id) {
		info.Neighbors = append(info.Neighbors, Neighbor{
			ID:      nb.ID,
			Name:    nb.Name,
			GateOut: n.GateTo(nb.ID),
			GateIn:  nb.GateTo(n.ID),
		})
	}
	return info, true
}

// String formats the panel as plain text lines.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (#%d)\n", i.Name, i.ID)
	if i.Root {
		b.WriteString("Root system\n")
	}
	fmt.Fprintf(&b, "Depth: %d\nConnections: %d\n", i.Depth, i.Connections)
	if len(i.Colonies) > 0 {
		fmt.Fprintf(&b, "Population: %.2fm\nColonies:\n", i.Population)
		for _, c := range i.Colonies {
			fmt.Fprintf(&b, "  %s\n", colonyLine(c))
		}
	}
	if len(i.Neighbors) > 0 {
		b.WriteString("Jump links:\n")
		for _, nb := range i.Neighbors {
			gate := ""
			if nb.GateOut != 0 || nb.GateIn != 0 {
				gate = " [gate]"
			}
			fmt.Fprintf(&b, "  %s%s\n", nb.Name, gate)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Legend lists the colors in use: the root, each faction present in g and
// the fixed tiers.
func Legend(g *starmap.Graph, rootID int64, factions map[string]string) []LegendEntry {
	var out []LegendEntry
	if n, ok := g.Node(rootID); ok {
		label := "Root: " + n.Name
		if n.HasColony {
			label = fmt.Sprintf("Root: %s (%.1fm)", n.Name, n.Population)
		}
		out = append(out, LegendEntry{Color: ColorRoot, Label: label})
	}
	for _, f := range g.Factions() {
		c, ok := factions[f]
		if !ok || c == "" {
			c = ColorForeign
		}
		out = append(out, LegendEntry{Color: c, Label: f + " colony"})
	}
	return append(out,
		LegendEntry{Color: ColorLarge, Label: "Population > 100m"},
		LegendEntry{Color: ColorMedium, Label: "Population > 10m"},
		LegendEntry{Color: ColorSmall, Label: "Population > 1m"},
		LegendEntry{Color: ColorMinor, Label: "Population ≤ 1m"},
		LegendEntry{Color: ColorUninhabited, Label: "Uninhabited"},
		LegendEntry{Color: ColorGate, Label: "Jump gate"},
		LegendEntry{Color: ColorEdge, Label: "Jump point"},
	)
}
