package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/auroramap/pkg/render"
)

// DOTOptions configures DOT output.
type DOTOptions struct {
	// Labels includes system names in node labels. When false, nodes are
	// drawn as bare points.
	Labels bool
}

// ToDOT converts a scene to Graphviz DOT with every node pinned to its
// layout position. The result is meant for the neato engine; see
// [RenderDOT].
func ToDOT(s *render.Scene, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", render.ColorBackground)
	buf.WriteString("  outputorder=edgesfirst;\n")
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fixedsize=true, penwidth=0, fontsize=10, fontcolor=%q];\n", render.ColorLabel)
	buf.WriteString("\n")

	if s.Empty() {
		fmt.Fprintf(&buf, "  empty [shape=plaintext, style=\"\", fixedsize=false, label=%q];\n", s.Message)
		buf.WriteString("}\n")
		return buf.String()
	}

	for _, m := range s.Marks {
		fmt.Fprintf(&buf, "  %d [%s];\n", m.ID, strings.Join(markAttrs(m, opts.Labels), ", "))
	}

	buf.WriteString("\n")
	for _, l := range s.Lines {
		a, b := l.A, l.B
		color := l.Style.Color
		if l.Style.Kind == render.EdgeHalfGated {
			if l.Style.From == l.B {
				a, b = b, a
			}
			color = fmt.Sprintf("%s;%.2f:%s", render.ColorGate, render.GateStop+(render.NeutralStop-render.GateStop)/2, neutralColor(l))
		}
		fmt.Fprintf(&buf, "  %d -- %d [color=%q, penwidth=%.2f];\n", a, b, color, l.Style.Width)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func markAttrs(m render.Mark, labels bool) []string {
	// DOT positions are in points with y pointing up.
	y := -m.Y
	if y == 0 {
		y = 0
	}
	attrs := []string{
		fmt.Sprintf("pos=\"%.2f,%.2f!\"", m.X, y),
		fmt.Sprintf("width=%.3f", 2*m.Size/72),
		fmt.Sprintf("fillcolor=%q", m.Color),
		fmt.Sprintf("tooltip=%q", m.Tooltip),
	}
	if labels {
		attrs = append(attrs, fmt.Sprintf("xlabel=%q", m.Label), `label=""`)
	} else {
		attrs = append(attrs, `label=""`)
	}
	if m.Selected {
		attrs = append(attrs, fmt.Sprintf("color=%q", render.ColorSelected), "penwidth=1.5")
	}
	return attrs
}

// RenderDOT renders a DOT graph to SVG using Graphviz with the neato
// engine, which keeps pinned positions.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one
// sized in pixels so the output scales like [SVG].
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="%s %s %.2f %.2f" width="%.0f" height="%.0f">`,
		match[1], match[2], w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
