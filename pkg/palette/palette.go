// Package palette generates colors that stay readable next to a set of
// existing colors.
//
// Readability is measured with the WCAG contrast ratio of relative
// luminances. A [Generator] first works out which luminance intervals keep
// the required ratio against every existing color, then picks a random hue
// and saturation and searches the HSV value for a color inside one of those
// intervals. When no interval exists the required ratio is lowered in small
// steps.
package palette

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// DefaultMinContrast is the WCAG AA ratio for normal text.
	DefaultMinContrast = 4.5

	// DefaultMaxAttempts bounds candidates tried per color.
	DefaultMaxAttempts = 50

	// DefaultSeed makes generated palettes reproducible.
	DefaultSeed = uint64(42)

	ratioStep    = 0.01
	minRangeSize = 0.001
	searchSteps  = 20
)

// Generator produces high-contrast colors from a seeded source.
type Generator struct {
	rng         *rand.Rand
	minContrast float64
	maxAttempts int
}

// Option configures a Generator.
type Option func(*Generator)

// WithMinContrast sets the required contrast ratio.
func WithMinContrast(ratio float64) Option {
	return func(g *Generator) { g.minContrast = ratio }
}

// WithMaxAttempts sets how many candidates are tried per color.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) { g.maxAttempts = n }
}

// New returns a generator seeded with seed.
func New(seed uint64, opts ...Option) *Generator {
	g := &Generator{
		rng:         rand.New(rand.NewPCG(seed, seed^0x5bd1e995)),
		minContrast: DefaultMinContrast,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (colorful.Color, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return c, nil
}

// Luminance returns the WCAG relative luminance of c.
func Luminance(c colorful.Color) float64 {
	r, g, b := c.Clamped().LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ContrastRatio returns the WCAG contrast ratio between a and b, in [1, 21].
func ContrastRatio(a, b colorful.Color) float64 {
	la, lb := Luminance(a), Luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// Next returns a color with at least the generator's contrast ratio against
// every color in existing. It returns false when every attempt missed.
func (g *Generator) Next(existing []colorful.Color) (colorful.Color, bool) {
	if len(existing) == 0 {
		return colorful.Hsv(g.rng.Float64()*360, 0.7, 0.8).Clamped(), true
	}

	lums := make([]float64, len(existing))
	for i, c := range existing {
		lums[i] = Luminance(c)
	}

	ratio := g.minContrast
	ranges := validRanges(lums, ratio)
	for len(ranges) == 0 && ratio > 1 {
		ratio -= ratioStep
		ranges = validRanges(lums, ratio)
	}
	if len(ranges) == 0 {
		return colorful.Color{}, false
	}

	total := 0.0
	for _, r := range ranges {
		total += r.size()
	}

	for range g.maxAttempts {
		pick := g.rng.Float64() * total
		sel := ranges[0]
		for _, r := range ranges {
			if pick <= r.size() {
				sel = r
				break
			}
			pick -= r.size()
		}

		target := sel.min + g.rng.Float64()*sel.size()
		candidate := g.withLuminance(target)
		if meetsAll(candidate, existing, ratio) {
			return candidate, true
		}
	}
	return colorful.Color{}, false
}

// NextN appends n generated colors to existing, each contrasting with all
// colors before it, and returns the hex strings of the generated colors
// only. Colors the generator failed to produce are skipped.
func (g *Generator) NextN(n int, existing []string) ([]string, error) {
	pool := make([]colorful.Color, 0, len(existing)+n)
	for _, s := range existing {
		c, err := ParseHex(s)
		if err != nil {
			return nil, err
		}
		pool = append(pool, c)
	}

	out := make([]string, 0, n)
	for range n {
		c, ok := g.Next(pool)
		if !ok {
			continue
		}
		pool = append(pool, c)
		out = append(out, strings.ToUpper(c.Hex()))
	}
	return out, nil
}

// withLuminance binary-searches the HSV value of a random hue and
// saturation for a color close to the target luminance.
func (g *Generator) withLuminance(target float64) colorful.Color {
	hue := g.rng.Float64() * 360
	sat := 0.3 + g.rng.Float64()*0.7

	lo, hi := 0.0, 1.0
	best, bestDiff := 0.5, math.Inf(1)
	for range searchSteps {
		v := (lo + hi) / 2
		l := Luminance(colorful.Hsv(hue, sat, v))
		if d := math.Abs(l - target); d < bestDiff {
			best, bestDiff = v, d
		}
		if l < target {
			lo = v
		} else {
			hi = v
		}
	}
	c := colorful.Hsv(hue, sat, best).Clamped()
	// Quantize so the contrast check sees the color that will be emitted.
	q, _ := colorful.Hex(c.Hex())
	return q
}

func meetsAll(c colorful.Color, existing []colorful.Color, ratio float64) bool {
	for _, e := range existing {
		if ContrastRatio(c, e) < ratio {
			return false
		}
	}
	return true
}

type lumRange struct{ min, max float64 }

func (r lumRange) size() float64 { return r.max - r.min }

// validRanges returns the luminance intervals in [0, 1] that keep ratio
// against every luminance in lums.
func validRanges(lums []float64, ratio float64) []lumRange {
	forbidden := make([]lumRange, 0, len(lums))
	for _, l := range lums {
		forbidden = append(forbidden, lumRange{
			min: math.Max(0, (l+0.05)/ratio-0.05),
			max: math.Min(1, (l+0.05)*ratio-0.05),
		})
	}
	slices.SortFunc(forbidden, func(a, b lumRange) int {
		switch {
		case a.min < b.min:
			return -1
		case a.min > b.min:
			return 1
		}
		return 0
	})

	var merged []lumRange
	for _, r := range forbidden {
		if len(merged) == 0 || merged[len(merged)-1].max < r.min {
			merged = append(merged, r)
			continue
		}
		last := &merged[len(merged)-1]
		last.max = math.Max(last.max, r.max)
	}

	var valid []lumRange
	cur := 0.0
	for _, f := range merged {
		if cur < f.min {
			valid = append(valid, lumRange{cur, f.min})
		}
		cur = math.Max(cur, f.max)
	}
	if cur < 1 {
		valid = append(valid, lumRange{cur, 1})
	}

	return slices.DeleteFunc(valid, func(r lumRange) bool { return r.size() <= minRangeSize })
}
