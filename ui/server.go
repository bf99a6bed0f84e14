// Package ui serves the HTML dashboard: categories, player profiles,
// player-vs-group comparisons, injuries and report export.
package ui

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"evalboard/app"
	"evalboard/domain/evaluation"
	"evalboard/internal/report"
	"evalboard/ui/middleware"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// Server represents the web server for the evaluation dashboard
type Server struct {
	router    *gin.Engine
	dashboard *app.Dashboard
	templates *template.Template
}

// NewServer creates the dashboard web server
func NewServer(dashboard *app.Dashboard) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		dashboard: dashboard,
		templates: templates,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"fmt1": func(v float64) string {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return "—"
			}
			return fmt.Sprintf("%.1f", v)
		},
		"signed":  func(v float64) string { return fmt.Sprintf("%+.1f", v) },
		"signed2": func(v float64) string { return fmt.Sprintf("%+.2f", v) },
		"lsi": func(v *float64) string {
			if v == nil {
				return "—"
			}
			return fmt.Sprintf("%.1f", *v)
		},
		"zone": func(v *float64) string {
			if v == nil {
				return ""
			}
			return report.LSIZone(*v)
		},
		"zoneClass": func(v *float64) string {
			if v == nil {
				return "none"
			}
			switch report.LSIZone(*v) {
			case report.ZoneOptimal:
				return "optimal"
			case report.ZoneAlert:
				return "alert"
			default:
				return "risk"
			}
		},
		"side": report.SideLabel,
		"path": url.PathEscape,
		"join": strings.Join,
		"zbar": func(p evaluation.ZScorePoint) float64 {
			// percentage of the half-width bar, display range is [-3, 3]
			return math.Abs(p.Value) / 3 * 50
		},
		"date": func(t time.Time) string { return t.Format("2006-01-02") },
	}
}

func parseTemplates() (*template.Template, error) {
	templatesFS, err := fs.Sub(embeddedFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}
	templates, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return templates, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery())
	s.router.Use(middleware.Timing(500 * time.Millisecond))

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		log.Printf("[setupMiddleware] Error creating static filesystem: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	pages := s.router.Group("/", middleware.RequireData(func(ctx context.Context) error {
		_, err := s.dashboard.Table(ctx)
		return err
	}))

	pages.GET("/", s.handleIndex)
	pages.GET("/categories/:category", s.handleCategory)
	pages.GET("/players/:category/:subject", s.handlePlayer)
	pages.GET("/players/:category/:subject/compare", s.handleCompare)
	pages.GET("/players/:category/:subject/report", s.handleReport)

	// injuries come from their own log and stay reachable without evaluations
	s.router.GET("/injuries", s.handleInjuries)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting evaluation dashboard on http://%s", addr)
	return s.router.Run(addr)
}

// renderTemplate executes a template into a buffer first so a failing
// template never leaves a half-written page
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		log.Printf("Template data type: %T", data)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("Error writing template response: %v", err)
	}
}
