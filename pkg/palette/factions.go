package palette

import "strings"

// FallbackFactionColor is used when no distinct color could be generated.
const FallbackFactionColor = "#FF00FF"

// AssignFactions gives every faction a color that contrasts with the
// reserved colors and with the colors of earlier factions. Factions are
// processed in the given order, so a sorted input yields a stable mapping
// for a given seed.
func AssignFactions(factions []string, reserved []string, seed uint64) (map[string]string, error) {
	out := make(map[string]string, len(factions))
	if len(factions) == 0 {
		return out, nil
	}

	g := New(seed)
	pool := make([]string, len(reserved))
	copy(pool, reserved)

	for _, f := range factions {
		if _, done := out[f]; done {
			continue
		}
		colors, err := g.NextN(1, pool)
		if err != nil {
			return nil, err
		}
		if len(colors) == 0 {
			out[f] = FallbackFactionColor
			continue
		}
		out[f] = strings.ToUpper(colors[0])
		pool = append(pool, colors[0])
	}
	return out, nil
}
