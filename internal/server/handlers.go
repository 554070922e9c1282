// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	commonerrors "founder-intake/internal/common/errors"
	"founder-intake/internal/common/logger"
	"founder-intake/internal/dashboard"
	"founder-intake/internal/generation"
	"founder-intake/internal/models"
	"founder-intake/internal/search"
	"founder-intake/internal/wizard"
)

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	registry    *SessionRegistry
	gateway     *generation.Gateway
	readModel   *dashboard.ReadModel
	searchIndex *search.Index
	dashPass    string
	log         logger.Logger
}

func NewServer(registry *SessionRegistry, gateway *generation.Gateway, readModel *dashboard.ReadModel, searchIndex *search.Index, dashboardPassword string, log logger.Logger) *Server {
	return &Server{
		registry:    registry,
		gateway:     gateway,
		readModel:   readModel,
		searchIndex: searchIndex,
		dashPass:    dashboardPassword,
		log:         log,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	if stdErr, ok := err.(*commonerrors.StandardError); ok {
		writeJSON(w, status, map[string]interface{}{"error": stdErr})
		return
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{"message": err.Error()},
	})
}

func (s *Server) session(r *http.Request) *wizard.Machine {
	return s.registry.Get(r.Context(), chi.URLParam(r, "sessionID"))
}

// POST /api/v1/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	m := s.registry.Create(r.Context())
	writeJSON(w, http.StatusCreated, renderState(m.State()))
}

// GET /api/v1/sessions/{sessionID}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, renderState(s.session(r).State()))
}

// POST /api/v1/sessions/{sessionID}/advance
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	m := s.session(r)
	if err := m.Advance(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, renderState(m.State()))
}

// POST /api/v1/sessions/{sessionID}/retreat
func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	m := s.session(r)
	m.Retreat()
	writeJSON(w, http.StatusOK, renderState(m.State()))
}

// POST /api/v1/sessions/{sessionID}/jump
func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Screen int `json:"screen"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	m := s.session(r)
	if err := m.JumpTo(wizard.ScreenID(body.Screen)); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, renderState(m.State()))
}

// PATCH /api/v1/sessions/{sessionID}/draft
func (s *Server) handleMergeUpdate(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validatePatchPayload(raw); err != nil {
		writeError(w, http.StatusUnprocessableEntity, commonerrors.NewInvalidPatchError(err.Error()))
		return
	}
	var patch map[string]interface{}
	if err := json.Unmarshal(raw, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m := s.session(r)
	if err := m.MergeUpdate(r.Context(), patch); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, renderState(m.State()))
}

var generationFields = map[generation.Mode][]string{
	generation.ModeNarratives: {"pmf", "biz", "vision"},
	generation.ModeIndustry:   {"industryFit", "industryFitAlt", "productDescription"},
}

// POST /api/v1/sessions/{sessionID}/generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode        string `json:"mode"`
		TargetField string `json:"targetField"`
		Guidance    string `json:"guidance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	mode := generation.Mode(body.Mode)
	fields, ok := generationFields[mode]
	if !ok {
		writeError(w, http.StatusBadRequest, commonerrors.NewGenerationFailedError(
			fmt.Errorf("unknown generation mode %q", body.Mode)))
		return
	}
	if body.TargetField != "" {
		fields = []string{body.TargetField}
	}

	m := s.session(r)

	// capture per-field edit revisions before the call so responses that
	// arrive after a manual edit are dropped
	revs := make(map[string]uint64, len(fields))
	for _, f := range fields {
		revs[f] = m.FieldRevision(f)
	}

	result, err := s.gateway.Generate(r.Context(), mode, m.State().Draft, body.TargetField, body.Guidance)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	applied := make(map[string]string, len(result))
	skipped := make([]string, 0)
	for field, text := range result {
		rev, captured := revs[field]
		if !captured {
			skipped = append(skipped, field)
			continue
		}
		ok, err := m.ApplyGeneration(r.Context(), field, rev, text)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		if !ok {
			skipped = append(skipped, field)
			continue
		}
		applied[field] = text
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"applied": applied,
		"skipped": skipped,
		"state":   renderState(m.State()),
	})
}

// POST /api/v1/sessions/{sessionID}/suggestions
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	out, err := s.gateway.SuggestProblems(r.Context(), body.Tags)
	if err != nil {
		status := http.StatusBadGateway
		if len(body.Tags) == 0 {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/v1/sessions/{sessionID}/submit
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	m := s.session(r)
	if err := m.Submit(r.Context()); err != nil {
		status := http.StatusBadGateway
		if stdErr, ok := err.(*commonerrors.StandardError); ok &&
			stdErr.Code == commonerrors.ErrCodeScreenValidationFailed {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, renderState(m.State()))
}

// GET /api/v1/sessions/{sessionID}/tags
func (s *Server) handleProductTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"tags": models.ProductTags})
}

type dashboardRow struct {
	ID          string `json:"id"`
	CompanyName string `json:"companyName"`
	Stage       string `json:"stage"`
	City        string `json:"city"`
	Country     string `json:"country"`
	SubmittedAt string `json:"submittedAt,omitempty"`
}

// GET /api/v1/admin/submissions
func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	entries := s.readModel.Entries()
	rows := make([]dashboardRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, dashboardRow{
			ID:          e.ID,
			CompanyName: e.Draft.CompanyName,
			Stage:       e.Draft.Stage,
			City:        e.Draft.City,
			Country:     e.Draft.Country,
			SubmittedAt: e.Draft.SubmittedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": rows})
}

// GET /api/v1/admin/submissions/{documentID}
func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "documentID")
	entry, ok := s.readModel.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, commonerrors.NewDraftNotFoundError(id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": entry.ID, "draft": entry.Draft})
}

// DELETE /api/v1/admin/submissions/{documentID}
func (s *Server) handleDeleteSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "documentID")
	if err := s.readModel.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/admin/submissions/export.csv
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="intake-forms.csv"`)
	if err := dashboard.WriteCSV(w, s.readModel.Entries()); err != nil {
		s.log.Error("csv export failed", map[string]interface{}{"error": err.Error()})
	}
}

// GET /api/v1/admin/search?q=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.searchIndex == nil {
		writeError(w, http.StatusNotImplemented, commonerrors.NewSearchQueryFailedError(
			errors.New("search index not configured")))
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"hits": []search.Hit{}})
		return
	}
	hits, err := s.searchIndex.Search(r.Context(), query, 25)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"hits": hits})
}

// requireDashboardPassword gates admin routes with the shared static
// password. Deliberately not hardened beyond a constant header check.
func (s *Server) requireDashboardPassword(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.dashPass == "" || r.Header.Get("X-Dashboard-Password") != s.dashPass {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"error": map[string]string{"message": "invalid dashboard password"},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
