package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/auroramap/pkg/render"
	"github.com/matzehuels/auroramap/pkg/viewport"
)

const fontFamily = "ui-monospace, SFMono-Regular, Menlo, Consolas, monospace"

const mapCSS = `
    .ring { fill: none; stroke-dasharray: 4 4; }
    .system { cursor: pointer; }
    .system.dim { opacity: 0.35; }
    .label { pointer-events: none; }
    .legend text { font-size: 11px; }`

const mapJS = `
    const links = {};
    document.querySelectorAll('.edge').forEach(e => {
      (links[e.dataset.a] ||= []).push(e.dataset.b);
      (links[e.dataset.b] ||= []).push(e.dataset.a);
    });
    function focus(id) {
      const lit = new Set([id, ...(links[id] || [])]);
      document.querySelectorAll('.system').forEach(s => s.classList.toggle('dim', !lit.has(s.dataset.id)));
    }
    function clearFocus() {
      document.querySelectorAll('.system').forEach(s => s.classList.remove('dim'));
    }
    document.querySelectorAll('.system').forEach(el => {
      el.addEventListener('mouseenter', () => focus(el.dataset.id));
      el.addEventListener('mouseleave', clearFocus);
    });`

// fitMargin is the model-space padding around the outermost primitive
// when the view is fitted automatically.
const fitMargin = 60.0

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width, height float64
	transform     *viewport.Transform
	labels        bool
	legend        bool
	interactive   bool
}

// WithSize sets the image size in pixels. The default is a square that
// fits the whole map at scale 1.
func WithSize(w, h float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = w, h }
}

// WithTransform draws the map with a fixed pan and zoom instead of
// fitting it to the image.
func WithTransform(t viewport.Transform) SVGOption {
	return func(r *svgRenderer) { r.transform = &t }
}

// WithoutLabels hides system labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// WithLegend adds the color legend in the top-left corner.
func WithLegend() SVGOption { return func(r *svgRenderer) { r.legend = true } }

// WithInteractive embeds a script that dims unrelated systems on hover.
func WithInteractive() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// SVG renders the scene as a standalone SVG document.
func SVG(s *render.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	if r.width <= 0 || r.height <= 0 {
		side := 2 * (s.Extent + fitMargin)
		if s.Empty() {
			side = 400
		}
		r.width, r.height = side, side
	}

	vp := viewport.New(r.width, r.height)
	if r.transform != nil {
		vp = viewport.New(r.width, r.height, viewport.WithTransform(*r.transform))
	} else if !s.Empty() {
		vp.Fit(s.Extent + fitMargin)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", mapCSS)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", render.ColorBackground)

	if s.Empty() {
		c := vp.Center()
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" font-family="%s" font-size="16" fill="%s">%s</text>`+"\n",
			c.X, c.Y, fontFamily, render.ColorLabel, escapeXML(s.Message))
		buf.WriteString("</svg>\n")
		return buf.Bytes()
	}

	renderDefs(&buf, s)

	t := vp.Transform()
	origin := vp.Apply(r2.Vec{})
	fmt.Fprintf(&buf, `  <g transform="translate(%.2f %.2f) scale(%.4f)">`+"\n", origin.X, origin.Y, t.Scale)
	renderRings(&buf, s)
	renderLines(&buf, s)
	renderMarks(&buf, s, r.labels)
	buf.WriteString("  </g>\n")

	if r.legend {
		renderLegend(&buf, s.Legend)
	}
	if r.interactive {
		fmt.Fprintf(&buf, "  <script><![CDATA[%s\n  ]]></script>\n", mapJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, s *render.Scene) {
	buf.WriteString("  <defs>\n")
	for _, l := range s.Lines {
		if l.Style.Kind != render.EdgeHalfGated {
			continue
		}
		x1, y1, x2, y2 := l.X1, l.Y1, l.X2, l.Y2
		if l.Style.From == l.B {
			x1, y1, x2, y2 = x2, y2, x1, y1
		}
		fmt.Fprintf(buf, `    <linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f">`+"\n",
			gradientID(l), x1, y1, x2, y2)
		fmt.Fprintf(buf, `      <stop offset="%.0f%%" stop-color="%s"/>`+"\n", render.GateStop*100, render.ColorGate)
		fmt.Fprintf(buf, `      <stop offset="%.0f%%" stop-color="%s"/>`+"\n", render.NeutralStop*100, neutralColor(l))
		buf.WriteString("    </linearGradient>\n")
	}
	buf.WriteString("  </defs>\n")
}

// neutralColor is the color of the ungated half of a line.
func neutralColor(l render.Line) string {
	if l.Style.Width > 1 {
		return render.ColorSelected
	}
	return render.ColorEdge
}

func gradientID(l render.Line) string {
	return fmt.Sprintf("edge-%d-%d", l.A, l.B)
}

func renderRings(buf *bytes.Buffer, s *render.Scene) {
	for _, ring := range s.Rings {
		fmt.Fprintf(buf, `    <circle class="ring" data-depth="%d" cx="0" cy="0" r="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
			ring.Depth, ring.Radius, render.ColorRing)
	}
}

func renderLines(buf *bytes.Buffer, s *render.Scene) {
	for _, l := range s.Lines {
		stroke := l.Style.Color
		if l.Style.Kind == render.EdgeHalfGated {
			stroke = "url(#" + gradientID(l) + ")"
		}
		fmt.Fprintf(buf, `    <line class="edge" data-a="%d" data-b="%d" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f" stroke-opacity="%.2f"/>`+"\n",
			l.A, l.B, l.X1, l.Y1, l.X2, l.Y2, stroke, l.Style.Width, l.Style.Opacity)
	}
}

func renderMarks(buf *bytes.Buffer, s *render.Scene, labels bool) {
	for _, m := range s.Marks {
		fmt.Fprintf(buf, `    <g class="system" id="system-%d" data-id="%d">`+"\n", m.ID, m.ID)
		fmt.Fprintf(buf, "      <title>%s</title>\n", escapeXML(m.Tooltip))
		if m.Glow {
			fmt.Fprintf(buf, `      <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="0.25"/>`+"\n",
				m.X, m.Y, m.Size*2, m.Color)
		}
		stroke := ""
		if m.Selected || m.Hovered {
			stroke = fmt.Sprintf(` stroke="%s" stroke-width="1.5"`, render.ColorSelected)
		}
		fmt.Fprintf(buf, `      <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"%s/>`+"\n", m.X, m.Y, m.Size, m.Color, stroke)
		if labels {
			weight := "normal"
			if m.LabelBold {
				weight = "bold"
			}
			fmt.Fprintf(buf, `      <text class="label" x="%.2f" y="%.2f" font-family="%s" font-size="10" font-weight="%s" fill="%s">%s</text>`+"\n",
				m.X+m.Size+3, m.Y+3, fontFamily, weight, m.LabelColor, escapeXML(m.Label))
		}
		buf.WriteString("    </g>\n")
	}
}

func renderLegend(buf *bytes.Buffer, legend []render.LegendEntry) {
	const x, y0, step = 16.0, 20.0, 16.0
	fmt.Fprintf(buf, `  <g class="legend" font-family="%s">`+"\n", fontFamily)
	for i, e := range legend {
		y := y0 + float64(i)*step
		fmt.Fprintf(buf, `    <circle cx="%.1f" cy="%.1f" r="5" fill="%s"/>`+"\n", x, y, e.Color)
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" fill="%s">%s</text>`+"\n", x+12, y+4, render.ColorLabel, escapeXML(e.Label))
	}
	buf.WriteString("  </g>\n")
}

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
