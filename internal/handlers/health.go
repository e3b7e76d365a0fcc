package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neurastate/datahub/internal/database"
)

// HealthHandler handles health and readiness probes.
type HealthHandler struct {
	db  *database.Database
	env string
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(db *database.Database, env string) *HealthHandler {
	return &HealthHandler{
		db:  db,
		env: env,
	}
}

// Health handles GET /health. Liveness only; no dependencies checked.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles GET /health/ready. It verifies the database is reachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// Info handles GET /api/v1/info.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "neurastate-datahub",
		"environment": h.env,
	})
}
