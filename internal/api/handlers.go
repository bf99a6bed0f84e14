package api

import (
	"net/http"

	"evalboard/app"
	"evalboard/internal/engine"
	"evalboard/internal/errors"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	table, err := s.dashboard.Table(r.Context())
	if err != nil {
		writeJSON(w, statusFor(err), map[string]interface{}{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": table.Version,
		"rows":    len(table.Rows),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	table, err := s.dashboard.Reload(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "reloaded",
		"version": table.Version,
		"rows":    len(table.Rows),
	})
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	catalog := s.dashboard.Catalog()
	sections := make([]map[string]interface{}, 0, len(catalog.Sections))
	for _, section := range catalog.Sections {
		sections = append(sections, map[string]interface{}{
			"name":     section.Name,
			"metrics":  section.MetricNames(),
			"defaults": section.DefaultSelection(),
		})
	}
	writeJSON(w, http.StatusOK, sections)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.dashboard.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.dashboard.Subjects(r.Context(), pathParam(r, "category"))
	if err != nil {
		writeError(w, err)
		return
	}
	if subjects == nil {
		subjects = []string{}
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (s *Server) handleGroupStats(w http.ResponseWriter, r *http.Request) {
	result, err := s.dashboard.GroupStats(r.Context(), pathParam(r, "category"), selectionFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roundedStats(result))
}

// roundedStats copies a result with its statistics rounded for display. The
// memoized result keeps full precision.
func roundedStats(result *app.GroupStatsResult) *app.GroupStatsResult {
	out := *result
	out.Rows = make([]engine.GroupTableRow, len(result.Rows))
	for i, row := range result.Rows {
		row.Stats = row.Stats.Rounded()
		out.Rows[i] = row
	}
	return &out
}

func (s *Server) handleGroupZScores(w http.ResponseWriter, r *http.Request) {
	points, err := s.dashboard.GroupZScores(r.Context(), pathParam(r, "category"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	result, err := s.dashboard.Profile(r.Context(), pathParam(r, "category"), pathParam(r, "subject"), selectionFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	exclude, err := boolQuery(r, "exclude_subject")
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.dashboard.Comparison(r.Context(), app.ComparisonRequest{
		Category:       pathParam(r, "category"),
		Subject:        pathParam(r, "subject"),
		Selection:      selectionFrom(r),
		ExcludeSubject: exclude,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSubjectZScores(w http.ResponseWriter, r *http.Request) {
	subject := pathParam(r, "subject")
	points, found, err := s.dashboard.SubjectZScores(r.Context(), pathParam(r, "category"), subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subject": subject,
		"found":   found,
		"points":  points,
	})
}

func (s *Server) handleInjurySummary(w http.ResponseWriter, r *http.Request) {
	calc, err := s.dashboard.Injuries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calc.Summary(pathParam(r, "player")))
}

func (s *Server) handleInjuryEventDays(w http.ResponseWriter, r *http.Request) {
	event := r.URL.Query().Get("event")
	if event == "" {
		writeError(w, errors.InvalidInput("event is required"))
		return
	}
	calc, err := s.dashboard.Injuries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	days, ok := calc.EventDays(pathParam(r, "player"), event)
	if !ok {
		writeError(w, errors.NotFound("injury event "+event))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"event": event, "days": days})
}

func (s *Server) handleInjuryRanking(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 10)
	if err != nil {
		writeError(w, err)
		return
	}
	calc, err := s.dashboard.Injuries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calc.Ranking(limit))
}

func (s *Server) handleInjuryRegions(w http.ResponseWriter, r *http.Request) {
	calc, err := s.dashboard.Injuries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calc.ByRegion())
}

func (s *Server) handleInjuryMonthly(w http.ResponseWriter, r *http.Request) {
	calc, err := s.dashboard.Injuries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calc.Monthly())
}

func (s *Server) handleInjuryRecovery(w http.ResponseWriter, r *http.Request) {
	calc, err := s.dashboard.Injuries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calc.Recovery())
}
