package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency that can report its connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler over the named dependencies.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// GetHealth responds with service uptime and dependency status. Any
// disconnected dependency turns the response into a 503.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	healthy := true
	deps := gin.H{}
	for name, dep := range h.deps {
		status := "connected"
		if err := dep.Ping(ctx); err != nil {
			status = "disconnected"
			healthy = false
		}
		deps[name] = status
	}

	data := gin.H{
		"status":       "healthy",
		"version":      "1.0.0",
		"uptime":       int(time.Since(startTime).Seconds()),
		"dependencies": deps,
	}
	if !healthy {
		data["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, utils.Response{
			Success: false,
			Code:    http.StatusServiceUnavailable,
			Message: "Service is degraded",
			Data:    data,
		})
		return
	}
	utils.Success(c, http.StatusOK, "Service is healthy", data)
}
