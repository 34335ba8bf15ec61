package sink

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/auroramap/pkg/render"
	"github.com/matzehuels/auroramap/pkg/viewport"
)

// CellHeight is the height of a terminal cell in screen units; cells are
// one unit wide. A viewport drawn with [Terminal] on cols×rows cells is
// cols wide and rows*CellHeight high.
const CellHeight = 2.0

// CellToScreen returns the screen point at the middle of a terminal cell.
func CellToScreen(col, row int) r2.Vec {
	return r2.Vec{X: float64(col) + 0.5, Y: (float64(row) + 0.5) * CellHeight}
}

// Glyphs used by the terminal raster.
const (
	glyphRing     = '·'
	glyphSystem   = '●'
	glyphColony   = '◉'
	glyphSelected = '◆'
)

type cell struct {
	r     rune
	color string
	bold  bool
	// layer orders overlapping glyphs; higher wins.
	layer int
}

const (
	layerRing = iota + 1
	layerLine
	layerLabel
	layerMark
)

type raster struct {
	cols, rows int
	cells      [][]cell
}

func newRaster(cols, rows int) *raster {
	r := &raster{cols: cols, rows: rows, cells: make([][]cell, rows)}
	for i := range r.cells {
		r.cells[i] = make([]cell, cols)
	}
	return r
}

func (r *raster) set(col, row int, c cell) {
	if col < 0 || row < 0 || col >= r.cols || row >= r.rows {
		return
	}
	if r.cells[row][col].layer > c.layer {
		return
	}
	r.cells[row][col] = c
}

func (r *raster) at(col, row int) cell {
	if col < 0 || row < 0 || col >= r.cols || row >= r.rows {
		return cell{}
	}
	return r.cells[row][col]
}

func (r *raster) text(col, row int, s string, color string, bold bool, layer int) {
	for i, ch := range []rune(s) {
		r.set(col+i, row, cell{r: ch, color: color, bold: bold, layer: layer})
	}
}

// Terminal draws the scene on a cols×rows character grid using the given
// pan and zoom and returns it as lipgloss-styled lines.
func Terminal(s *render.Scene, t viewport.Transform, cols, rows int) string {
	return rasterize(s, t, cols, rows).String()
}

func rasterize(s *render.Scene, t viewport.Transform, cols, rows int) *raster {
	r := newRaster(max(cols, 0), max(rows, 0))
	if cols <= 0 || rows <= 0 {
		return r
	}
	vp := viewport.New(float64(cols), float64(rows)*CellHeight, viewport.WithTransform(t))

	if s.Empty() {
		msg := []rune(s.Message)
		r.text((cols-len(msg))/2, rows/2, s.Message, render.ColorLabel, false, layerLabel)
		return r
	}

	toCell := func(model r2.Vec) (int, int) {
		p := vp.Apply(model)
		return int(math.Floor(p.X)), int(math.Floor(p.Y / CellHeight))
	}

	for _, ring := range s.Rings {
		// One sample per cell of circumference.
		steps := max(16, int(2*math.Pi*ring.Radius*t.Scale))
		for i := 0; i < steps; i += 2 {
			a := 2 * math.Pi * float64(i) / float64(steps)
			col, row := toCell(r2.Vec{X: ring.Radius * math.Cos(a), Y: ring.Radius * math.Sin(a)})
			r.set(col, row, cell{r: glyphRing, color: render.ColorRing, layer: layerRing})
		}
	}

	for _, l := range s.Lines {
		c0, r0 := toCell(r2.Vec{X: l.X1, Y: l.Y1})
		c1, r1 := toCell(r2.Vec{X: l.X2, Y: l.Y2})
		glyph := lineGlyph(c1-c0, r1-r0)
		gatedFromA := l.Style.Kind == render.EdgeHalfGated && l.Style.From == l.A
		pts := bresenham(c0, r0, c1, r1)
		for i, p := range pts {
			color := l.Style.Color
			if l.Style.Kind == render.EdgeHalfGated {
				frac := float64(i) / float64(max(len(pts)-1, 1))
				if !gatedFromA {
					frac = 1 - frac
				}
				if frac > render.GateStop {
					color = neutralColor(l)
				}
			}
			r.set(p[0], p[1], cell{r: glyph, color: color, bold: l.Style.Width > 1, layer: layerLine})
		}
	}

	for _, m := range s.Marks {
		col, row := toCell(r2.Vec{X: m.X, Y: m.Y})
		glyph := glyphSystem
		switch {
		case m.Selected:
			glyph = glyphSelected
		case m.Glow:
			glyph = glyphColony
		}
		r.set(col, row, cell{r: glyph, color: m.Color, bold: m.Highlight, layer: layerMark})
	}

	// Labels go last so they never hide a system, and only where they fit.
	for _, m := range s.Marks {
		col, row := toCell(r2.Vec{X: m.X, Y: m.Y})
		label := m.Label
		if !m.Highlight && t.Scale < 0.5 {
			label = m.Name
		}
		if fitsLabel(r, col+2, row, label) {
			r.text(col+2, row, label, m.LabelColor, m.LabelBold, layerLabel)
		}
	}
	return r
}

func fitsLabel(r *raster, col, row int, s string) bool {
	n := len([]rune(s))
	if row < 0 || row >= r.rows || col < 0 || col+n > r.cols {
		return false
	}
	for i := -1; i <= n; i++ {
		if r.at(col+i, row).layer >= layerLabel {
			return false
		}
	}
	return true
}

func lineGlyph(dx, dy int) rune {
	switch {
	case dy == 0 || abs(dx) > 2*abs(dy):
		return '─'
	case dx == 0 || abs(dy) > 2*abs(dx):
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

func bresenham(x0, y0, x1, y1 int) [][2]int {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	var pts [][2]int
	e := dx + dy
	for {
		pts = append(pts, [2]int{x0, y0})
		if x0 == x1 && y0 == y1 {
			return pts
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// String renders the grid with lipgloss, merging runs of equal style.
func (r *raster) String() string {
	var b strings.Builder
	for row := range r.cells {
		if row > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		var cur cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur.color == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(cur.color)).Bold(cur.bold).Render(run.String()))
			}
			run.Reset()
		}
		for _, c := range r.cells[row] {
			if c.r == 0 {
				c = cell{r: ' '}
			}
			if c.color != cur.color || c.bold != cur.bold {
				flush()
				cur = c
			}
			run.WriteRune(c.r)
		}
		flush()
	}
	return b.String()
}

// Plain returns the grid without styling.
func (r *raster) Plain() string {
	var b strings.Builder
	for row := range r.cells {
		if row > 0 {
			b.WriteByte('\n')
		}
		for _, c := range r.cells[row] {
			if c.r == 0 {
				c.r = ' '
			}
			b.WriteRune(c.r)
		}
	}
	return b.String()
}
