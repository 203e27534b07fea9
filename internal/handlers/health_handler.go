package handlers

import (
	"context"
	"net/http"
	"time"

	"sosapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	version string
	checks  map[string]HealthCheck
	clients func() int
}

// NewHealthHandler builds the handler. clients reports connected devices and
// may be nil.
func NewHealthHandler(version string, checks map[string]HealthCheck, clients func() int) *HealthHandler {
	return &HealthHandler{
		version: version,
		checks:  checks,
		clients: clients,
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	dependencies := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			dependencies[name] = err.Error()
			status = "degraded"
			continue
		}
		dependencies[name] = "ok"
	}

	body := gin.H{
		"status":       status,
		"version":      h.version,
		"dependencies": dependencies,
	}
	if h.clients != nil {
		body["devices"] = h.clients()
	}

	if status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, utils.APIResponse{
			Status:    utils.StatusError,
			Message:   "Service degraded",
			Data:      body,
			Timestamp: time.Now(),
		})
		return
	}

	utils.SuccessResponse(c, "Service healthy", body)
}
