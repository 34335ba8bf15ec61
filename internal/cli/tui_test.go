package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/auroramap/pkg/layout"
	"github.com/matzehuels/auroramap/pkg/pipeline"
	"github.com/matzehuels/auroramap/pkg/render/sink"
	"github.com/matzehuels/auroramap/pkg/starmap"
)

func loadResult(t *testing.T) (*pipeline.Result, *pipeline.Loader) {
	t.Helper()
	return loadDataset(t, testDataset())
}

func loadDataset(t *testing.T, ds *starmap.Dataset) (*pipeline.Result, *pipeline.Loader) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, starmap.WriteDatasetFile(ds, path))
	loader := pipeline.NewLoader(pipeline.NewRunner(nil, nil, nil), pipeline.Options{DatasetPath: path})
	res, ok, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	return res, loader
}

func sized(t *testing.T, m *MapModel, w, h int) {
	t.Helper()
	m.Update(tea.WindowSizeMsg{Width: w, Height: h})
}

func TestMapModelView(t *testing.T) {
	res, _ := loadResult(t)
	m := NewMapModel(context.Background(), res, nil, 5)
	assert.Equal(t, "", m.View(), "nothing is drawn before the size is known")

	sized(t, m, 120, 40)
	out := m.View()
	assert.Contains(t, out, "Terran Federation")
	assert.Contains(t, out, "4 systems")
	assert.Contains(t, out, "Legend")
	assert.NotContains(t, out, "r reload", "no reload without a loader")
}

func TestMapModelZoomKeys(t *testing.T) {
	res, _ := loadResult(t)
	m := NewMapModel(context.Background(), res, nil, 5)
	sized(t, m, 120, 40)

	fitted := m.view.Viewport().Transform().Scale
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	assert.Greater(t, m.view.Viewport().Transform().Scale, fitted)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'0'}})
	assert.InDelta(t, fitted, m.view.Viewport().Transform().Scale, 1e-9)

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, panStep, m.view.Viewport().Transform().X)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestMapModelSearch(t *testing.T) {
	res, _ := loadResult(t)
	m := NewMapModel(context.Background(), res, nil, 5)
	sized(t, m, 120, 40)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	require.True(t, m.view.State().SearchOpen)
	for _, r := range "sir" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Equal(t, []int64{4}, m.view.State().Results)
	assert.Contains(t, m.panel(), "1 Sirius")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	state := m.view.State()
	assert.False(t, state.SearchOpen)
	assert.Equal(t, int64(4), state.Selected)
	assert.Contains(t, m.panel(), "Martian Republic")
}

func typeKeys(m *MapModel, s string) {
	for _, r := range s {
		if r == ' ' {
			m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestMapModelSearchDigits(t *testing.T) {
	res, _ := loadDataset(t, &starmap.Dataset{
		GameID: 1,
		RaceID: 10,
		Systems: []starmap.SystemConnection{
			{SystemID: 1, SystemName: "Sol", ConnectedTo: []starmap.Link{{SystemID: 2}, {SystemID: 3}}},
			{SystemID: 2, SystemName: "Gliese 1", ConnectedTo: []starmap.Link{{SystemID: 1}}},
			{SystemID: 3, SystemName: "Gliese 581", ConnectedTo: []starmap.Link{{SystemID: 1}}},
		},
	})
	m := NewMapModel(context.Background(), res, nil, 5)
	sized(t, m, 120, 40)

	typeKeys(m, "/Gliese 5")
	state := m.view.State()
	assert.True(t, state.SearchOpen)
	assert.Equal(t, "Gliese 5", state.Term)
	assert.Equal(t, []int64{3}, state.Results)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	typeKeys(m, "/Gliese 1")
	state = m.view.State()
	assert.True(t, state.SearchOpen, "a digit never closes the search")
	assert.Equal(t, "Gliese 1", state.Term)
	assert.Equal(t, []int64{2}, state.Results)
	assert.Zero(t, state.Selected)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}, Alt: true})
	state = m.view.State()
	assert.False(t, state.SearchOpen)
	assert.Equal(t, int64(2), state.Selected)
}

func TestMapModelSearchAltPickOutOfRange(t *testing.T) {
	res, _ := loadResult(t)
	m := NewMapModel(context.Background(), res, nil, 5)
	sized(t, m, 120, 40)

	typeKeys(m, "/sir")
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}, Alt: true})
	state := m.view.State()
	assert.True(t, state.SearchOpen)
	assert.Equal(t, "sir", state.Term)
	assert.Zero(t, state.Selected)
}

func TestMapModelClickSelects(t *testing.T) {
	res, _ := loadResult(t)
	m := NewMapModel(context.Background(), res, nil, 5)
	sized(t, m, 120, 40)

	// The root sits at the model origin, which the fitted view centers.
	cols, rows := m.mapSize()
	col, row := cols/2, rows/2
	p := sink.CellToScreen(col, row)
	id, ok := m.view.HitTest(p)
	require.True(t, ok)

	press := tea.MouseMsg{X: col, Y: row + headerRows, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
	release := tea.MouseMsg{X: col, Y: row + headerRows, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease}
	m.Update(press)
	m.Update(release)
	assert.Equal(t, id, m.view.State().Selected)

	m.Update(press)
	m.Update(release)
	assert.Zero(t, m.view.State().Selected, "clicking the selection again clears it")
}

func TestMapModelWheel(t *testing.T) {
	res, _ := loadResult(t)
	m := NewMapModel(context.Background(), res, nil, 5)
	sized(t, m, 120, 40)

	before := m.view.Viewport().Transform().Scale
	m.Update(tea.MouseMsg{X: 10, Y: 10, Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	assert.Greater(t, m.view.Viewport().Transform().Scale, before)
}

func TestMapModelFollowsLoader(t *testing.T) {
	res, loader := loadResult(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewMapModel(ctx, res, loader, 5)
	sized(t, m, 120, 40)
	assert.Contains(t, m.View(), "r reload")

	cmd := m.Init()
	require.NotNil(t, cmd)
	_, _, err := loader.Reload(ctx)
	require.NoError(t, err)

	msg := cmd()
	require.IsType(t, updateMsg{}, msg)
	_, next := m.Update(msg)
	assert.NotNil(t, next, "the model keeps listening")
	assert.Contains(t, m.View(), "generation 2")
}

func TestFitRadius(t *testing.T) {
	assert.Zero(t, fitRadius(nil))
	assert.Zero(t, fitRadius(&layout.Result{}))
	assert.Equal(t, 250+fitMargin, fitRadius(&layout.Result{Rings: []float64{0, 100, 250}}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc…", truncate("abcdef", 4))
	assert.Equal(t, "…", truncate("abcdef", 1))
	assert.True(t, strings.HasPrefix(truncate("Alpha Centauri", 6), "Alpha"))
}
