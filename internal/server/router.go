// internal/server/router.go
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires the wizard, dashboard, and operational endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Post("/advance", s.handleAdvance)
				r.Post("/retreat", s.handleRetreat)
				r.Post("/jump", s.handleJump)
				r.Patch("/draft", s.handleMergeUpdate)
				r.Post("/generate", s.handleGenerate)
				r.Post("/suggestions", s.handleSuggestions)
				r.Post("/submit", s.handleSubmit)
				r.Get("/tags", s.handleProductTags)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireDashboardPassword)
			r.Get("/submissions", s.handleListSubmissions)
			r.Get("/submissions/export.csv", s.handleExportCSV)
			r.Get("/submissions/{documentID}", s.handleGetSubmission)
			r.Delete("/submissions/{documentID}", s.handleDeleteSubmission)
			r.Get("/search", s.handleSearch)
		})
	})

	return r
}
