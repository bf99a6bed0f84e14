package ui

import (
	"html/template"
	"net/http"
	"strings"

	"evalboard/app"
	"evalboard/domain/evaluation"
	"evalboard/internal/errors"

	"github.com/gin-gonic/gin"
)

// selectorData feeds the section and metric pickers shared by several pages
type selectorData struct {
	Sections []evaluation.Section
	Section  string
	Metrics  []string
	Unknown  []string
}

func (s *Server) selection(c *gin.Context) (app.Selection, selectorData) {
	catalog := s.dashboard.Catalog()
	sel := app.Selection{Section: strings.TrimSpace(c.Query("section"))}
	for _, v := range c.QueryArray("metrics") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				sel.Metrics = append(sel.Metrics, name)
			}
		}
	}
	if sel.Section == "" && len(sel.Metrics) == 0 && len(catalog.Sections) > 0 {
		sel.Section = catalog.Sections[0].Name
	}
	return sel, selectorData{Sections: catalog.Sections, Section: sel.Section, Metrics: sel.Metrics}
}

func (s *Server) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeDataUnavailable:
		status = http.StatusServiceUnavailable
	case errors.CodeInvalidInput, errors.CodeUnknownMetric:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}
	s.renderTemplate(c, status, "error.html", gin.H{"Status": status, "Message": err.Error()})
}

type categorySummary struct {
	Name     string
	Subjects []string
}

func (s *Server) handleIndex(c *gin.Context) {
	ctx := c.Request.Context()
	categories, err := s.dashboard.Categories(ctx)
	if err != nil {
		s.renderError(c, err)
		return
	}

	summaries := make([]categorySummary, 0, len(categories))
	for _, category := range categories {
		subjects, err := s.dashboard.Subjects(ctx, category)
		if err != nil {
			s.renderError(c, err)
			return
		}
		summaries = append(summaries, categorySummary{Name: category, Subjects: subjects})
	}

	s.renderTemplate(c, http.StatusOK, "index.html", gin.H{
		"Title":      "Evaluaciones",
		"Categories": summaries,
		"Sections":   s.dashboard.Catalog().Sections,
	})
}

func (s *Server) handleCategory(c *gin.Context) {
	ctx := c.Request.Context()
	category := c.Param("category")
	sel, picker := s.selection(c)

	subjects, err := s.dashboard.Subjects(ctx, category)
	if err != nil {
		s.renderError(c, err)
		return
	}
	stats, err := s.dashboard.GroupStats(ctx, category, sel)
	if err != nil {
		s.renderError(c, err)
		return
	}
	zscores, err := s.dashboard.GroupZScores(ctx, category)
	if err != nil {
		s.renderError(c, err)
		return
	}
	picker.Unknown = stats.Unknown

	s.renderTemplate(c, http.StatusOK, "category.html", gin.H{
		"Title":    category,
		"Category": category,
		"Subjects": subjects,
		"Stats":    stats,
		"ZScores":  zscores,
		"Picker":   picker,
	})
}

func (s *Server) handlePlayer(c *gin.Context) {
	ctx := c.Request.Context()
	category, subject := c.Param("category"), c.Param("subject")
	sel, picker := s.selection(c)

	profile, err := s.dashboard.Profile(ctx, category, subject, sel)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if !profile.Found {
		s.renderError(c, errors.NotFound("subject "+subject+" in category "+category))
		return
	}
	zscores, _, err := s.dashboard.SubjectZScores(ctx, category, subject)
	if err != nil {
		s.renderError(c, err)
		return
	}
	picker.Unknown = profile.Unknown

	data := gin.H{
		"Title":    subject,
		"Category": category,
		"Subject":  subject,
		"Profile":  profile,
		"ZScores":  zscores,
		"Picker":   picker,
	}
	if calc, err := s.dashboard.Injuries(ctx); err == nil {
		summary := calc.Summary(subject)
		data["Injuries"] = &summary
	}
	s.renderTemplate(c, http.StatusOK, "player.html", data)
}

func (s *Server) handleCompare(c *gin.Context) {
	ctx := c.Request.Context()
	category, subject := c.Param("category"), c.Param("subject")
	sel, picker := s.selection(c)
	// the player is left out of the baseline unless asked otherwise
	exclude := c.DefaultQuery("exclude", "true") != "false"

	result, err := s.dashboard.Comparison(ctx, app.ComparisonRequest{
		Category:       category,
		Subject:        subject,
		Selection:      sel,
		ExcludeSubject: exclude,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	if !result.Found {
		s.renderError(c, errors.NotFound("subject "+subject+" in category "+category))
		return
	}
	picker.Unknown = result.Unknown

	s.renderTemplate(c, http.StatusOK, "compare.html", gin.H{
		"Title":      subject + " vs " + category,
		"Category":   category,
		"Subject":    subject,
		"Comparison": result,
		"Picker":     picker,
	})
}

func (s *Server) handleReport(c *gin.Context) {
	ctx := c.Request.Context()
	category, subject := c.Param("category"), c.Param("subject")
	sel, _ := s.selection(c)

	r, err := s.dashboard.PlayerReport(ctx, category, subject, sel)
	if err != nil {
		s.renderError(c, err)
		return
	}

	if c.Query("format") == "md" {
		c.Header("Content-Disposition", `attachment; filename="`+reportFilename(subject)+`.md"`)
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(r.Markdown()))
		return
	}
	s.renderTemplate(c, http.StatusOK, "report.html", gin.H{
		"Title":    "Informe " + subject,
		"Category": category,
		"Subject":  subject,
		"Body":     template.HTML(r.HTML()),
	})
}

// reportFilename turns a subject name into a safe file name
func reportFilename(subject string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '-' || r == '_':
			return '_'
		case r == '.' || r == '/' || r == '\\' || r == '"':
			return -1
		}
		return r
	}, strings.TrimSpace(subject))
	if name == "" {
		return "informe"
	}
	return "informe_" + name
}

func (s *Server) handleInjuries(c *gin.Context) {
	calc, err := s.dashboard.Injuries(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}

	data := gin.H{
		"Title":    "Lesiones",
		"Ranking":  calc.Ranking(10),
		"Regions":  calc.ByRegion(),
		"Monthly":  calc.Monthly(),
		"Recovery": calc.Recovery(),
	}
	if player := strings.TrimSpace(c.Query("player")); player != "" {
		summary := calc.Summary(player)
		data["Player"] = &summary
		if event := c.Query("event"); event != "" {
			if days, ok := calc.EventDays(player, event); ok {
				data["Event"] = gin.H{"Key": event, "Days": days}
			}
		}
	}
	s.renderTemplate(c, http.StatusOK, "injuries.html", data)
}
