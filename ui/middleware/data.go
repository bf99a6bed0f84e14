package middleware

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"time"

	"evalboard/internal/errors"

	"github.com/gin-gonic/gin"
)

// RequireData aborts with 503 when the evaluation table cannot be loaded, so
// page handlers can assume data is present
func RequireData(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := check(c.Request.Context()); err != nil {
			status := http.StatusInternalServerError
			if errors.IsDataUnavailable(err) {
				status = http.StatusServiceUnavailable
			}
			log.Printf("[RequireData] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			c.Data(status, "text/html; charset=utf-8", []byte("<h1>Datos no disponibles</h1><p>"+
				template.HTMLEscapeString(err.Error())+"</p>"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Timing logs slow page renders
func Timing(threshold time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if elapsed := time.Since(start); elapsed > threshold {
			log.Printf("[Timing] %s %s took %.2fms", c.Request.Method, c.Request.URL.Path, float64(elapsed.Nanoseconds())/1e6)
		}
	}
}
