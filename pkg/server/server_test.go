package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/auroramap/pkg/graph"
	"github.com/matzehuels/auroramap/pkg/metrics"
	"github.com/matzehuels/auroramap/pkg/observability"
	"github.com/matzehuels/auroramap/pkg/pipeline"
	"github.com/matzehuels/auroramap/pkg/render"
	"github.com/matzehuels/auroramap/pkg/starmap"
)

func testDataset() *starmap.Dataset {
	return &starmap.Dataset{
		GameID: 1,
		RaceID: 10,
		Systems: []starmap.SystemConnection{
			{SystemID: 1, SystemName: "Sol", ConnectedTo: []starmap.Link{{SystemID: 2}, {SystemID: 3}}},
			{SystemID: 2, SystemName: "Alpha Centauri", ConnectedTo: []starmap.Link{{SystemID: 1}}},
			{SystemID: 3, SystemName: "Barnard's Star", ConnectedTo: []starmap.Link{{SystemID: 1}}},
		},
		Population: &starmap.PopulationData{
			RaceName: "Terran Federation",
			Colonies: []starmap.ColonyRecord{
				{Name: "Earth", Population: 850, SystemName: "Sol", BodyName: "Earth"},
			},
		},
	}
}

func newTestServer(t *testing.T, load bool, opts ...Option) (*Server, *pipeline.Loader) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, starmap.WriteDatasetFile(testDataset(), path))

	runner := pipeline.NewRunner(nil, nil, nil)
	loader := pipeline.NewLoader(runner, pipeline.Options{DatasetPath: path})
	if load {
		_, ok, err := loader.Load(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
	}
	return New(loader, runner, opts...), loader
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, true)
	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"generation":1`)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDPropagates(t *testing.T) {
	s, _ := newTestServer(t, true)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestNotReady(t *testing.T) {
	s, _ := newTestServer(t, false)
	for _, target := range []string{"/api/layout", "/api/layout.svg", "/api/systems/1", "/api/search?q=sol"} {
		rec := get(t, s, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
		assert.Equal(t, "NOT_READY", decodeError(t, rec).Code, target)
	}
}

func TestLayout(t *testing.T) {
	s, _ := newTestServer(t, true)
	rec := get(t, s, "/api/layout")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	doc, err := graph.UnmarshalLayout(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 3)
	assert.Len(t, doc.Edges, 2)
	assert.Equal(t, "Terran Federation", doc.RaceName)
	assert.NotEmpty(t, doc.ID)
}

func TestArtifact(t *testing.T) {
	s, _ := newTestServer(t, true)

	rec := get(t, s, "/api/layout.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")
	assert.Contains(t, rec.Body.String(), "Alpha Centauri")

	rec = get(t, s, "/api/layout.svg?labels=false")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Alpha Centauri</text>")

	rec = get(t, s, "/api/layout.dot")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/vnd.graphviz"))
	assert.Contains(t, rec.Body.String(), "graph")

	rec = get(t, s, "/api/layout.gif")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_FORMAT", decodeError(t, rec).Code)
}

func TestSystem(t *testing.T) {
	s, _ := newTestServer(t, true)

	rec := get(t, s, "/api/systems/1")
	require.Equal(t, http.StatusOK, rec.Code)
	var info render.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "Sol", info.Name)
	assert.True(t, info.Root)
	assert.Equal(t, 2, info.Connections)
	assert.Len(t, info.Colonies, 1)

	tests := []struct {
		target string
		status int
		code   string
	}{
		{"/api/systems/99", http.StatusNotFound, "NOT_FOUND"},
		{"/api/systems/0", http.StatusBadRequest, "INVALID_INPUT"},
		{"/api/systems/abc", http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		rec := get(t, s, tt.target)
		assert.Equal(t, tt.status, rec.Code, tt.target)
		assert.Equal(t, tt.code, decodeError(t, rec).Code, tt.target)
	}
}

func TestSearch(t *testing.T) {
	s, _ := newTestServer(t, true)

	rec := get(t, s, "/api/search?q=STAR")
	require.Equal(t, http.StatusOK, rec.Code)
	var matches []SearchMatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matches))
	assert.Equal(t, []SearchMatch{{ID: 3, Name: "Barnard's Star"}}, matches)

	rec = get(t, s, "/api/search?q=")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = get(t, s, "/api/search?q="+strings.Repeat("x", 500))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReload(t *testing.T) {
	s, loader := newTestServer(t, true)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReloadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Published)
	assert.Equal(t, uint64(2), resp.Generation)
	assert.Equal(t, 3, resp.Systems)

	res, gen := loader.Current()
	assert.Equal(t, uint64(2), gen)
	assert.Equal(t, res.Document.ID, resp.LayoutID)

	rec = get(t, s, "/api/reload")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	t.Cleanup(observability.Reset)
	reg := metrics.NewRegistry()
	reg.Install()
	s, _ := newTestServer(t, true, WithMetrics(reg.Handler()))

	get(t, s, "/api/systems/2")
	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `auroramap_http_requests_total{method="GET",route="/api/systems/{id}",status="200"} 1`)
}

func TestNoMetricsRoute(t *testing.T) {
	s, _ := newTestServer(t, true)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/metrics").Code)
}

func TestEvents(t *testing.T) {
	s, loader := newTestServer(t, true)
	ts := httptest.NewServer(s)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventLayout, ev.Type)
	assert.Equal(t, uint64(1), ev.Generation)
	assert.Equal(t, 3, ev.Systems)

	// The subscription is registered before the snapshot is sent.
	_, _, err = loader.Reload(context.Background())
	require.NoError(t, err)

	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventLayout, ev.Type)
	assert.Equal(t, uint64(2), ev.Generation)
}

func TestListenAndServeShutdown(t *testing.T) {
	s, _ := newTestServer(t, true, WithConfig(Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
