package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/auroramap/pkg/errors"
	"github.com/matzehuels/auroramap/pkg/graph"
	"github.com/matzehuels/auroramap/pkg/mapview"
	"github.com/matzehuels/auroramap/pkg/pipeline"
	"github.com/matzehuels/auroramap/pkg/render"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchMatch is one /api/search result.
type SearchMatch struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ReloadResponse is the /api/reload result.
type ReloadResponse struct {
	Published  bool   `json:"published"`
	Generation uint64 `json:"generation"`
	LayoutID   string `json:"layoutId,omitempty"`
	Systems    int    `json:"systems"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_, gen := s.loader.Current()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "generation": gen})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	res, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.Document)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	res, ok := s.current(w)
	if !ok {
		return
	}
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}

	opts := s.loader.Options()
	opts.Formats = []string{format}
	q := r.URL.Query()
	if v := q.Get("labels"); v != "" {
		opts.NoLabels = !parseBool(v)
	}
	if v := q.Get("legend"); v != "" {
		opts.Legend = parseBool(v)
	}

	data, err := s.renderShared(r.Context(), res.Document, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// renderShared renders one format, collapsing concurrent requests for the
// same layout and flags into a single render.
func (s *Server) renderShared(ctx context.Context, doc graph.Layout, opts pipeline.Options) ([]byte, error) {
	format := opts.Formats[0]
	key := fmt.Sprintf("%s/%s/%t/%t", doc.ID, format, opts.NoLabels, opts.Legend)
	v, err, _ := s.renders.Do(key, func() (any, error) {
		out, err := s.runner.Render(context.WithoutCancel(ctx), doc, opts)
		if err != nil {
			return nil, err
		}
		return out[format], nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	res, ok := s.current(w)
	if !ok {
		return
	}
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid system id %q", raw))
		return
	}
	if err := errors.ValidateID("system", id); err != nil {
		writeError(w, err)
		return
	}
	info, found := render.Describe(res.Graph, res.Layout.RootID, id)
	if !found {
		writeError(w, errors.New(errors.ErrCodeNotFound, "system %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	res, ok := s.current(w)
	if !ok {
		return
	}
	term := r.URL.Query().Get("q")
	if err := errors.ValidateSearchTerm(term); err != nil {
		writeError(w, err)
		return
	}
	matches := make([]SearchMatch, 0, mapview.MaxResults)
	for _, id := range mapview.Search(res.Graph, term) {
		n, _ := res.Graph.Node(id)
		matches = append(matches, SearchMatch{ID: id, Name: n.Name})
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	res, published, err := s.loader.Reload(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	_, gen := s.loader.Current()
	if !published {
		writeJSON(w, http.StatusAccepted, ReloadResponse{Generation: gen})
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{
		Published:  true,
		Generation: gen,
		LayoutID:   res.Document.ID,
		Systems:    res.Stats.SystemCount,
	})
}

// current returns the published result or answers 503.
func (s *Server) current(w http.ResponseWriter) (*pipeline.Result, bool) {
	res, _ := s.loader.Current()
	if res == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Code:    "NOT_READY",
			Message: "no layout has been loaded yet",
		})
		return nil, false
	}
	return res, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.HTTPStatus(err), errorBody{
		Code:    string(errors.GetCodeOr(err, errors.ErrCodeInternal)),
		Message: errors.UserMessage(err),
	})
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
