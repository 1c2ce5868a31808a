package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
)

func TestHealthAndReady(t *testing.T) {
	g := gin.New()
	RegisterHealth(g, kv.NewMemoryStore(), "memory")

	w := do(g, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "healthy", w.Body.String())

	w = do(g, http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"ready"`)
}

func TestReadyReportsStoreOutage(t *testing.T) {
	g := gin.New()
	RegisterHealth(g, downStore{}, "redis")

	w := do(g, http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "not_ready")
}
