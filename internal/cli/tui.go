package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/auroramap/pkg/layout"
	"github.com/matzehuels/auroramap/pkg/mapview"
	"github.com/matzehuels/auroramap/pkg/pipeline"
	"github.com/matzehuels/auroramap/pkg/render"
	"github.com/matzehuels/auroramap/pkg/render/sink"
	"github.com/matzehuels/auroramap/pkg/viewport"
)

const (
	panelWidth    = 34
	minPanelCols  = 80
	headerRows    = 1
	footerRows    = 2
	panStep       = 4.0
	termHitRadius = 1.5
	// termMinScale lets a whole map fit a terminal, where a cell is far
	// coarser than a pixel.
	termMinScale = 0.02
	fitMargin    = 40.0
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	footerStyle = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Messages
// =============================================================================

// updateMsg carries a loader update into the program.
type updateMsg pipeline.Update

// reloadDoneMsg ends a reload started from the keyboard.
type reloadDoneMsg struct{ err error }

func waitForUpdate(ch <-chan pipeline.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return updateMsg(u)
	}
}

// =============================================================================
// MapModel - Interactive star map
// =============================================================================

// MapModel is the bubbletea model of the interactive star map.
type MapModel struct {
	view     *mapview.View
	title    string
	loader   *pipeline.Loader
	updates  <-chan pipeline.Update
	factions map[string]string

	width, height int
	fitted        bool
	status        string
	err           error
}

// NewMapModel creates a map model showing res. When loader is non-nil,
// updates published on it replace the map and 'r' triggers a reload.
func NewMapModel(ctx context.Context, res *pipeline.Result, loader *pipeline.Loader, scaleMax float64) *MapModel {
	v := mapview.New(res.Graph, res.Layout, res.Document.Factions, 0, 0,
		mapview.WithHitRadius(termHitRadius),
		mapview.WithViewport(viewport.WithScaleBounds(termMinScale, scaleMax)),
	)
	m := &MapModel{
		view:     v,
		title:    mapTitle(res),
		loader:   loader,
		factions: res.Document.Factions,
	}
	if loader != nil {
		m.updates = loader.Subscribe(ctx)
	}
	return m
}

func mapTitle(res *pipeline.Result) string {
	name := res.Document.RaceName
	if name == "" {
		name = "Star map"
	}
	return fmt.Sprintf("%s · %d systems · %d links", name, res.Stats.SystemCount, res.Stats.EdgeCount)
}

// fitRadius is the model radius that shows every ring.
func fitRadius(res *layout.Result) float64 {
	if res == nil || len(res.Rings) == 0 {
		return 0
	}
	return res.Rings[len(res.Rings)-1] + fitMargin
}

func (m *MapModel) Init() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return waitForUpdate(m.updates)
}

func (m *MapModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cols, rows := m.mapSize()
		m.view.Handle(mapview.Resize{Width: float64(cols), Height: float64(rows) * sink.CellHeight})
		if !m.fitted {
			m.view.Viewport().Fit(fitRadius(m.view.Layout()))
			m.fitted = true
		}
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case updateMsg:
		if msg.Err != nil {
			m.err = msg.Err
		} else {
			m.err = nil
			m.factions = msg.Result.Document.Factions
			m.view.SetMap(msg.Result.Graph, msg.Result.Layout, m.factions)
			m.title = mapTitle(msg.Result)
			m.status = fmt.Sprintf("reloaded (generation %d)", msg.Generation)
		}
		return m, waitForUpdate(m.updates)
	case reloadDoneMsg:
		if msg.err != nil {
			m.err = msg.err
		}
	}
	return m, nil
}

func (m *MapModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.view.State().SearchOpen {
		return m.handleSearchKey(msg)
	}
	v := m.view
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "+", "=":
		v.Handle(mapview.ZoomIn{})
	case "-", "_":
		v.Handle(mapview.ZoomOut{})
	case "0":
		v.Handle(mapview.Reset{})
		v.Viewport().Fit(fitRadius(v.Layout()))
	case "/":
		v.Handle(mapview.ToggleSearch{})
	case "left", "h":
		v.Viewport().PanBy(panStep, 0)
	case "right", "l":
		v.Viewport().PanBy(-panStep, 0)
	case "up", "k":
		v.Viewport().PanBy(0, panStep*sink.CellHeight)
	case "down", "j":
		v.Viewport().PanBy(0, -panStep*sink.CellHeight)
	case "r":
		if m.loader == nil {
			return nil
		}
		m.status = "reloading..."
		loader := m.loader
		return func() tea.Msg {
			_, _, err := loader.Reload(context.Background())
			return reloadDoneMsg{err: err}
		}
	}
	return nil
}

func (m *MapModel) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	v := m.view
	term := v.State().Term
	switch msg.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEsc:
		v.Handle(mapview.ToggleSearch{})
	case tea.KeyEnter:
		v.Handle(mapview.SelectResult{Index: 0})
	case tea.KeyBackspace:
		if term != "" {
			r := []rune(term)
			v.Handle(mapview.SearchInput{Term: string(r[:len(r)-1])})
		}
	case tea.KeySpace:
		v.Handle(mapview.SearchInput{Term: term + " "})
	case tea.KeyRunes:
		// Plain digits are part of names ("Gliese 581"); alt+digit picks.
		if msg.Alt {
			if len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '0'+mapview.MaxResults {
				v.Handle(mapview.SelectResult{Index: int(msg.Runes[0] - '1')})
			}
			return nil
		}
		v.Handle(mapview.SearchInput{Term: term + string(msg.Runes)})
	}
	return nil
}

func (m *MapModel) handleMouse(msg tea.MouseMsg) {
	row := msg.Y - headerRows
	cols, rows := m.mapSize()
	inMap := msg.X >= 0 && msg.X < cols && row >= 0 && row < rows
	p := sink.CellToScreen(msg.X, row)
	v := m.view

	switch {
	case msg.Button == tea.MouseButtonWheelUp && inMap:
		v.Handle(mapview.Wheel{X: p.X, Y: p.Y, DeltaY: -1})
	case msg.Button == tea.MouseButtonWheelDown && inMap:
		v.Handle(mapview.Wheel{X: p.X, Y: p.Y, DeltaY: 1})
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && inMap:
		v.Handle(mapview.PointerDown{X: p.X, Y: p.Y})
	case msg.Action == tea.MouseActionMotion:
		v.Handle(mapview.PointerMove{X: p.X, Y: p.Y})
	case msg.Action == tea.MouseActionRelease:
		v.Handle(mapview.PointerUp{})
	}
}

// mapSize returns the cells available to the map.
func (m *MapModel) mapSize() (cols, rows int) {
	cols = m.width
	if m.width >= minPanelCols {
		cols -= panelWidth
	}
	rows = m.height - headerRows - footerRows
	return max(cols, 1), max(rows, 1)
}

func (m *MapModel) View() string {
	if m.width == 0 {
		return ""
	}
	cols, rows := m.mapSize()
	body := sink.Terminal(m.view.Scene(), m.view.Viewport().Transform(), cols, rows)
	if m.width >= minPanelCols {
		panel := panelStyle.Width(panelWidth - 2).Height(rows - 2).Render(m.panel())
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(truncate(m.title, m.width)))
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(truncate(m.help(), m.width)))
	return b.String()
}

// panel shows search results, the selected system, or the legend.
func (m *MapModel) panel() string {
	v := m.view
	state := v.State()
	if state.SearchOpen {
		var b strings.Builder
		b.WriteString(StyleTitle.Render("Search") + "\n")
		b.WriteString("/ " + state.Term + "_\n\n")
		for i, id := range state.Results {
			n, _ := v.Graph().Node(id)
			fmt.Fprintf(&b, "%d %s\n", i+1, n.Name)
		}
		if state.Term != "" && len(state.Results) == 0 {
			b.WriteString(StyleDim.Render("no match"))
		}
		return b.String()
	}
	if info, ok := v.Info(); ok {
		return info.String()
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Legend") + "\n")
	rootID := int64(0)
	if v.Layout() != nil {
		rootID = v.Layout().RootID
	}
	for _, e := range render.Legend(v.Graph(), rootID, m.factions) {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("●")
		b.WriteString(dot + " " + truncate(e.Label, panelWidth-6) + "\n")
	}
	return b.String()
}

func (m *MapModel) statusLine() string {
	if m.err != nil {
		return errorStyle.Render(truncate("error: "+m.err.Error(), m.width))
	}
	if tip := m.view.Tooltip(); tip != "" {
		return StyleValue.Render(truncate(strings.ReplaceAll(tip, "\n", " · "), m.width))
	}
	scale := m.view.Viewport().Transform().Scale
	return StyleDim.Render(truncate(fmt.Sprintf("zoom %.2f  %s", scale, m.status), m.width))
}

func (m *MapModel) help() string {
	if m.view.State().SearchOpen {
		return "type to search  alt+1-5 pick  enter first  esc close"
	}
	h := "drag pan  wheel/+/- zoom  0 reset  click select  / search  q quit"
	if m.loader != nil {
		h += "  r reload"
	}
	return h
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
