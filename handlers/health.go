package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
)

var startTime = time.Now()

// readyProbeKey is read, never written; a not-found answer proves the backend
// is reachable.
const readyProbeKey = "\x00ready"

// RegisterHealth adds /health (liveness) and /ready (backing store reachable).
func RegisterHealth(r *gin.Engine, s kv.Store, backend string) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		deps := gin.H{"store": backend}
		uptime := time.Since(startTime).String()
		if _, err := s.Get(ctx, readyProbeKey); err != nil && !errors.Is(err, kv.ErrNotFound) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "error": err.Error(), "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	})
}
