package mapview

import (
	"strings"

	"github.com/matzehuels/auroramap/pkg/starmap"
)

// MaxResults is the number of search matches returned.
const MaxResults = 5

// Search returns the ids of the first [MaxResults] systems, in ascending
// id order, whose name contains term ignoring case. Whitespace is part of
// the term. An empty term matches nothing.
func Search(g *starmap.Graph, term string) []int64 {
	term = strings.ToLower(term)
	if term == "" {
		return nil
	}
	var out []int64
	for _, n := range g.Nodes() {
		if strings.Contains(strings.ToLower(n.Name), term) {
			out = append(out, n.ID)
			if len(out) == MaxResults {
				break
			}
		}
	}
	return out
}
