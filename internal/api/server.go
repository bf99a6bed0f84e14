// Package api exposes the dashboard as a JSON API. It returns tables and
// series; charting is left to the client.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"evalboard/app"
	"evalboard/internal/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server routes JSON requests to the dashboard
type Server struct {
	router    *chi.Mux
	dashboard *app.Dashboard
}

// NewServer creates a JSON API over dashboard
func NewServer(dashboard *app.Dashboard) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		dashboard: dashboard,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/sections", s.handleSections)
		r.Post("/reload", s.handleReload)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleCategories)
			r.Route("/{category}", func(r chi.Router) {
				r.Get("/subjects", s.handleSubjects)
				r.Get("/stats", s.handleGroupStats)
				r.Get("/zscores", s.handleGroupZScores)
				r.Route("/subjects/{subject}", func(r chi.Router) {
					r.Get("/profile", s.handleProfile)
					r.Get("/comparison", s.handleComparison)
					r.Get("/zscores", s.handleSubjectZScores)
				})
			})
		})

		r.Route("/injuries", func(r chi.Router) {
			r.Get("/players/{player}", s.handleInjurySummary)
			r.Get("/players/{player}/days", s.handleInjuryEventDays)
			r.Get("/ranking", s.handleInjuryRanking)
			r.Get("/regions", s.handleInjuryRegions)
			r.Get("/monthly", s.handleInjuryMonthly)
			r.Get("/recovery", s.handleInjuryRecovery)
		})
	})
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

// statusFor maps application error codes onto HTTP statuses
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeDataUnavailable:
		return http.StatusServiceUnavailable
	case errors.CodeInvalidInput, errors.CodeUnknownMetric:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] Internal error: %v", err)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

// pathParam returns a decoded URL parameter. Subject names carry spaces and
// accents, so they usually arrive escaped.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// selectionFrom reads ?section= and ?metrics=; metrics may be repeated or
// comma separated.
func selectionFrom(r *http.Request) app.Selection {
	q := r.URL.Query()
	sel := app.Selection{Section: strings.TrimSpace(q.Get("section"))}
	for _, v := range q["metrics"] {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				sel.Metrics = append(sel.Metrics, name)
			}
		}
	}
	return sel
}

func boolQuery(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.InvalidInput(name + " must be a boolean")
	}
	return b, nil
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.InvalidInput(name + " must be an integer")
	}
	return n, nil
}
