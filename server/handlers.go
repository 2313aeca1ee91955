package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/catscan"
	"github.com/poiesic/catscan/core"
	"github.com/poiesic/catscan/dataset"
	"github.com/poiesic/catscan/scanner"
	"github.com/poiesic/catscan/search"
	"github.com/poiesic/catscan/storage"
)

// maxRequestBody bounds JSON request bodies.
const maxRequestBody = 64 << 10

// PageView is the JSON form of a wiki entry.
type PageView struct {
	ID    core.ID          `json:"id"`
	Title string           `json:"title"`
	Type  core.ArticleType `json:"type"`
	URL   string           `json:"url"`
}

// ScanRequest is the body for POST /scan.
type ScanRequest struct {
	URL string `json:"url"`
}

// ScanResponse is the result of POST /scan.
type ScanResponse struct {
	URL        string     `json:"url"`
	Domain     string     `json:"domain,omitempty"`
	Skipped    string     `json:"skipped,omitempty"`
	Strategy   string     `json:"strategy,omitempty"`
	Entity     string     `json:"entity,omitempty"`
	Matched    int        `json:"matched"`
	Suppressed int        `json:"suppressed"`
	Pages      []PageView `json:"pages"`
	Errors     []string   `json:"errors,omitempty"`
}

// SearchResponse is the result of GET /search.
type SearchResponse struct {
	Mode  search.Mode `json:"mode"`
	Query string      `json:"query"`
	Pages []PageView  `json:"pages"`
}

// StateResponse is the result of GET /pages/{id}/state.
type StateResponse struct {
	ID    core.ID `json:"id"`
	State string  `json:"state"`
}

// DatasetResponse describes a loaded or cached dataset.
type DatasetResponse struct {
	Source    string    `json:"source"`
	Checksum  string    `json:"checksum"`
	FetchedAt time.Time `json:"fetched_at"`
	Size      int64     `json:"size"`
	Changed   *bool     `json:"changed,omitempty"`
	Entries   int       `json:"entries,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func pageViews(results *search.ResultSet) []PageView {
	views := make([]PageView, 0, results.Len())
	for entry := range results.All() {
		views = append(views, PageView{
			ID:    entry.EntryID(),
			Title: entry.Title(),
			Type:  entry.ArticleType(),
			URL:   entry.URL(),
		})
	}
	return views
}

func datasetResponse(snapshot *core.DatasetSnapshot) DatasetResponse {
	return DatasetResponse{
		Source:    snapshot.Source,
		Checksum:  snapshot.Checksum,
		FetchedAt: snapshot.FetchedAt,
		Size:      snapshot.Size,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"entries":  s.engine.Store().Len(),
		"checksum": s.engine.DatasetChecksum(),
	})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		s.writeError(w, r, http.StatusBadRequest, "url required")
		return
	}

	report, err := s.engine.CheckPage(r.Context(), req.URL, nil)
	switch {
	case errors.Is(err, scanner.ErrInvalidURL):
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("error checking page", "url", req.URL, "err", err)
		s.writeError(w, r, http.StatusInternalServerError, "scan failed")
		return
	}

	resp := ScanResponse{
		URL:        report.URL,
		Domain:     report.Params.Domain,
		Skipped:    string(report.Skipped),
		Strategy:   report.Strategy,
		Entity:     report.Entity,
		Matched:    report.Matched,
		Suppressed: report.Suppressed,
		Pages:      pageViews(report.Pages),
	}
	for _, stepErr := range report.Errors {
		resp.Errors = append(resp.Errors, stepErr.Error())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	mode, err := search.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	results, err := s.engine.Store().Query(mode, query)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, SearchResponse{Mode: mode, Query: query, Pages: pageViews(results)})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	pageID, ok := s.pageID(w, r)
	if !ok {
		return
	}
	state, err := s.engine.State(r.Context(), pageID)
	if err != nil {
		s.logger.Error("error reading page state", "page_id", pageID, "err", err)
		s.writeError(w, r, http.StatusInternalServerError, "state lookup failed")
		return
	}
	s.writeJSON(w, http.StatusOK, StateResponse{ID: pageID, State: state.String()})
}

func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	s.suppress(w, r, s.engine.Mute)
}

func (s *Server) handleHide(w http.ResponseWriter, r *http.Request) {
	s.suppress(w, r, s.engine.Hide)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.suppress(w, r, s.engine.Reset)
}

func (s *Server) suppress(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, pageID core.ID) error) {
	pageID, ok := s.pageID(w, r)
	if !ok {
		return
	}
	err := apply(r.Context(), pageID)
	switch {
	case errors.Is(err, catscan.ErrUnknownPage):
		s.writeError(w, r, http.StatusNotFound, err.Error())
	case err != nil:
		s.logger.Error("error suppressing page", "page_id", pageID, "err", err)
		s.writeError(w, r, http.StatusInternalServerError, "suppression failed")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleDatasetInfo(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.engine.DatasetInfo(r.Context())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.writeJSON(w, http.StatusOK, DatasetResponse{Source: dataset.BundledSource})
	case err != nil:
		s.logger.Error("error reading dataset info", "err", err)
		s.writeError(w, r, http.StatusInternalServerError, "dataset lookup failed")
	default:
		s.writeJSON(w, http.StatusOK, datasetResponse(snapshot))
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.Refresh(r.Context())
	switch {
	case errors.Is(err, dataset.ErrFetchFailed):
		s.writeError(w, r, http.StatusBadGateway, err.Error())
		return
	case errors.Is(err, dataset.ErrInvalidDataset):
		s.writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		s.logger.Error("error refreshing dataset", "err", err)
		s.writeError(w, r, http.StatusInternalServerError, "refresh failed")
		return
	}

	resp := datasetResponse(result.Snapshot)
	resp.Changed = &result.Changed
	resp.Entries = result.Entries
	s.writeJSON(w, http.StatusOK, resp)
}

// pageID parses the {id} URL parameter, writing a 400 on failure.
func (s *Server) pageID(w http.ResponseWriter, r *http.Request) (core.ID, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, http.StatusBadRequest, "invalid page id")
		return 0, false
	}
	return core.ID(id), true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("error encoding response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg, RequestID: middleware.GetReqID(r.Context())})
}
